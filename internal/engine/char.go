package engine

import (
	"strings"

	"github.com/whit3rabbit/textmixer/internal/rule"
)

// CharEngine substitutes one character for one character, so positions in
// the obfuscated text line up with positions in the input.
type CharEngine struct {
	table *rule.Table[rune]
}

// NewCharEngine creates an engine over a single-character table.
func NewCharEngine(table *rule.Table[rune]) *CharEngine {
	return &CharEngine{table: table}
}

// Table returns the rules the engine was built with.
func (e *CharEngine) Table() *rule.Table[rune] { return e.table }

// Obfuscate replaces every mapped character. At a position listed in the
// rule's indexes, the rule's operation is applied to the source character
// instead of emitting the replacement.
func (e *CharEngine) Obfuscate(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	pos := 0
	for _, c := range text {
		r, ok := e.table.Lookup(c)
		switch {
		case !ok:
			sb.WriteRune(c)
		case r.AppliesAt(pos):
			sb.WriteRune(r.Operation().Apply(c))
		default:
			sb.WriteRune(r.Replacement())
		}
		pos++
	}
	return sb.String()
}

// Disentangle reverses Obfuscate. An operated match gated at the current
// position wins over a replacement match, mirroring Obfuscate's preference.
// The result is only guaranteed for tables that pass rule.Validate.
func (e *CharEngine) Disentangle(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	pos := 0
	for _, o := range text {
		if r, ok := e.table.Operated(o, pos); ok {
			sb.WriteRune(r.Key())
		} else if r, ok := e.table.ByReplacement(o); ok {
			sb.WriteRune(r.Key())
		} else {
			sb.WriteRune(o)
		}
		pos++
	}
	return sb.String()
}
