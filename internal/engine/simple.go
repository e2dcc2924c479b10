package engine

import (
	"strings"

	"github.com/whit3rabbit/textmixer/internal/rule"
)

// KeyObfuscator is the baseline engine: plain key to value substitution with
// no operations or indexes.
type KeyObfuscator struct {
	table *rule.Table[string]
}

// NewKeyObfuscator builds a table from a flat map and wraps it.
func NewKeyObfuscator(m map[string]string) (*KeyObfuscator, error) {
	table, err := rule.FromMap(m)
	if err != nil {
		return nil, err
	}
	return &KeyObfuscator{table: table}, nil
}

// Table returns the rules the engine was built with.
func (k *KeyObfuscator) Table() *rule.Table[string] { return k.table }

// Obfuscate emits the mapped value for every character that is a key.
func (k *KeyObfuscator) Obfuscate(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, c := range text {
		if r, ok := k.table.Lookup(c); ok {
			sb.WriteString(r.Replacement())
		} else {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Disentangle replaces every occurrence of each value with its key, one
// pair at a time in key order. Values sharing a prefix can interfere.
func (k *KeyObfuscator) Disentangle(text string) string {
	for _, r := range k.table.Rules() {
		text = strings.ReplaceAll(text, r.Replacement(), string(r.Key()))
	}
	return text
}
