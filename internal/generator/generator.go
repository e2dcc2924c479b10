// Package generator builds random plain rule tables for a source alphabet.
package generator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/whit3rabbit/textmixer/internal/rule"
)

const (
	// Every replacement starts with a lead rune and continues with tail runes.
	// The two sets are disjoint, so a replacement can only match at the start
	// of another replacement in obfuscated text.
	leadIdentifier = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tailIdentifier = "abcdefghijklmnopqrstuvwxyz0123456789"
	leadHex        = "ABCDEF"
	tailHex        = "0123456789abcdef"
	leadNumeric    = "O"
	tailNumeric    = "0123456789"

	minLength        = 1
	maxLength        = 16
	maxRegenAttempts = 50
	enumerateLimit   = 1 << 16
)

var (
	// ErrAlphabetTooLarge is returned when the mode and length cannot produce
	// one distinct replacement per source rune.
	ErrAlphabetTooLarge = errors.New("not enough distinct replacements for alphabet")
	// ErrEmptyAlphabet is returned for an empty source alphabet.
	ErrEmptyAlphabet = errors.New("alphabet is empty")
)

// Mode selects the replacement character sets.
type Mode string

const (
	ModeIdentifier Mode = "identifier"
	ModeHexa       Mode = "hexa"
	ModeNumeric    Mode = "numeric"
)

// ParseMode converts a mode name. The empty string selects ModeIdentifier.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeIdentifier, nil
	case ModeIdentifier, ModeHexa, ModeNumeric:
		return m, nil
	default:
		return "", fmt.Errorf("invalid generator mode: '%s'", s)
	}
}

// Generator produces fixed-length replacements for each rune of an alphabet.
type Generator struct {
	mode   Mode
	length int
}

// New creates a generator. Length is clamped to [1, 16].
func New(mode Mode, length int) (*Generator, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = ModeIdentifier
	}
	length = max(length, minLength)
	length = min(length, maxLength)
	return &Generator{mode: mode, length: length}, nil
}

// Length returns the replacement length in runes.
func (g *Generator) Length() int { return g.length }

// Generate returns a plain table mapping every distinct rune of alphabet to a
// unique replacement. Replacements never contain alphabet runes, so the table
// passes rule.Validate and has no rule.Overlaps.
func (g *Generator) Generate(alphabet string) (*rule.Table[string], error) {
	keys := distinct(alphabet)
	if len(keys) == 0 {
		return nil, ErrEmptyAlphabet
	}

	lead, tail := g.charsets(keys)
	capacity := g.capacity(len(lead), len(tail))
	if capacity < int64(len(keys)) {
		return nil, fmt.Errorf("%w: %d runes, %d possible replacements in %s mode of length %d",
			ErrAlphabetTooLarge, len(keys), capacity, g.mode, g.length)
	}

	var replacements []string
	var err error
	if capacity <= enumerateLimit {
		replacements = g.pick(lead, tail, len(keys))
	} else {
		replacements, err = g.draw(lead, tail, len(keys))
		if err != nil {
			return nil, err
		}
	}

	rules := make([]rule.Rule[string], len(keys))
	for i, k := range keys {
		rules[i] = rule.Plain(k, replacements[i])
	}
	return rule.Build(rules...)
}

func (g *Generator) charsets(keys []rune) (lead, tail []rune) {
	var leadChars, tailChars string
	switch g.mode {
	case ModeHexa:
		leadChars, tailChars = leadHex, tailHex
	case ModeNumeric:
		leadChars, tailChars = leadNumeric, tailNumeric
	default:
		leadChars, tailChars = leadIdentifier, tailIdentifier
	}

	excluded := make(map[rune]bool, len(keys))
	for _, k := range keys {
		excluded[k] = true
	}
	filter := func(chars string) []rune {
		var out []rune
		for _, c := range chars {
			if !excluded[c] {
				out = append(out, c)
			}
		}
		return out
	}
	return filter(leadChars), filter(tailChars)
}

// capacity is the number of distinct replacements, saturating at enumerateLimit+1
// once it is clear the alphabet fits.
func (g *Generator) capacity(lead, tail int) int64 {
	total := int64(lead)
	for i := 1; i < g.length; i++ {
		total *= int64(tail)
		if total > enumerateLimit {
			return enumerateLimit + 1
		}
	}
	return total
}

// pick enumerates every candidate and takes n of them after a partial shuffle.
func (g *Generator) pick(lead, tail []rune, n int) []string {
	candidates := make([]string, 0, enumerateLimit)
	var build func(prefix []rune)
	build = func(prefix []rune) {
		if len(prefix) == g.length {
			candidates = append(candidates, string(prefix))
			return
		}
		for _, c := range tail {
			build(append(prefix, c))
		}
	}
	for _, c := range lead {
		build([]rune{c})
	}

	for i := 0; i < n; i++ {
		j := i + randInt(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:n]
}

// draw generates random candidates, regenerating on collision.
func (g *Generator) draw(lead, tail []rune, n int) ([]string, error) {
	used := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		var candidate string
		attempt := 0
		for ; attempt < maxRegenAttempts; attempt++ {
			candidate = g.randomName(lead, tail)
			if !used[candidate] {
				break
			}
		}
		if attempt == maxRegenAttempts {
			return nil, fmt.Errorf("failed to generate a unique replacement after %d attempts", maxRegenAttempts)
		}
		used[candidate] = true
		out = append(out, candidate)
	}
	return out, nil
}

func (g *Generator) randomName(lead, tail []rune) string {
	sb := strings.Builder{}
	sb.Grow(g.length * 4)
	sb.WriteRune(lead[randInt(len(lead))])
	for i := 1; i < g.length; i++ {
		sb.WriteRune(tail[randInt(len(tail))])
	}
	return sb.String()
}

func distinct(s string) []rune {
	seen := make(map[rune]bool)
	var out []rune
	for _, c := range s {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func randInt(max int) int {
	if max <= 0 {
		return 0
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return int(nBig.Int64())
}
