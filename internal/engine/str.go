package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/whit3rabbit/textmixer/internal/rule"
)

// StringEngine substitutes a character with an arbitrary string, such as a
// digit with a word. Output length differs from input length, so the index
// gate of a rule is checked against the position in the output.
type StringEngine struct {
	table *rule.Table[string]
}

// NewStringEngine creates an engine over a string table.
func NewStringEngine(table *rule.Table[string]) *StringEngine {
	return &StringEngine{table: table}
}

// Table returns the rules the engine was built with.
func (e *StringEngine) Table() *rule.Table[string] { return e.table }

// Obfuscate replaces every mapped character with its replacement, or with
// the operated key when the rule's operation applies at the current output
// position.
func (e *StringEngine) Obfuscate(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	out := 0
	for _, c := range text {
		r, ok := e.table.Lookup(c)
		switch {
		case !ok:
			sb.WriteRune(c)
			out++
		case r.AppliesAt(out):
			sb.WriteRune(r.Operation().Apply(c))
			out++
		default:
			sb.WriteString(r.Replacement())
			out += utf8.RuneCountInString(r.Replacement())
		}
	}
	return sb.String()
}

// Disentangle reverses Obfuscate in two passes over the rules in declaration
// order.
//
// The first pass handles operating rules. Only the first occurrence of the
// operated key decides: if its index is one of the rule's indexes, every
// occurrence of the operated key is turned back into the source key,
// otherwise the operated key is left alone. Both are single characters, so no
// position shifts during this pass.
//
// The second pass globally replaces each plain replacement with its source key.
// Replacements that are substrings of one another resolve in declaration
// order; see rule.Overlaps.
func (e *StringEngine) Disentangle(text string) string {
	rules := e.table.Rules()

	for _, r := range rules {
		if !r.Operates() {
			continue
		}
		operated := string(r.Operated())
		first := strings.Index(text, operated)
		if first < 0 || !r.HasIndex(utf8.RuneCountInString(text[:first])) {
			continue
		}
		text = strings.ReplaceAll(text, operated, string(r.Key()))
	}

	for _, r := range rules {
		text = strings.ReplaceAll(text, r.Replacement(), string(r.Key()))
	}
	return text
}
