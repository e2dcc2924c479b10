package rule

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Table is a read-only set of rules with a forward view keyed by source
// character and inverse views keyed by replacement and by operated key.
//
// A Table is never mutated after Build returns, so it can be shared by
// concurrent obfuscate/disentangle calls.
type Table[V Value] struct {
	rules         []Rule[V] // declaration order
	byKey         map[rune]int
	byReplacement map[V]int
	byOperated    map[rune][]int
}

// Build creates a table from rules in declaration order.
func Build[V Value](rules ...Rule[V]) (*Table[V], error) {
	t := &Table[V]{
		rules:         make([]Rule[V], 0, len(rules)),
		byKey:         make(map[rune]int, len(rules)),
		byReplacement: make(map[V]int, len(rules)),
		byOperated:    make(map[rune][]int),
	}

	var zero V
	for _, r := range rules {
		if _, exists := t.byKey[r.key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, r.key)
		}
		if r.replacement == zero {
			return nil, fmt.Errorf("%w: key %q", ErrEmptyReplacement, r.key)
		}
		if prev, exists := t.byReplacement[r.replacement]; exists {
			return nil, fmt.Errorf("%w: %q used by keys %q and %q",
				ErrDuplicateReplacement, r.replacement, t.rules[prev].key, r.key)
		}

		pos := len(t.rules)
		t.rules = append(t.rules, r)
		t.byKey[r.key] = pos
		t.byReplacement[r.replacement] = pos
		if r.Operates() {
			op := r.Operated()
			t.byOperated[op] = append(t.byOperated[op], pos)
		}
	}
	return t, nil
}

// FromMap builds a plain string table from a flat key/value map. Every key
// must be exactly one character. Rules are ordered by key.
func FromMap(m map[string]string) (*Table[string], error) {
	keys := lo.Keys(m)
	slices.Sort(keys)

	rules := make([]Rule[string], 0, len(keys))
	for _, k := range keys {
		if utf8.RuneCountInString(k) != 1 {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidKey, k)
		}
		key, _ := utf8.DecodeRuneInString(k)
		rules = append(rules, Plain(key, m[k]))
	}
	return Build(rules...)
}

// Len returns the number of rules.
func (t *Table[V]) Len() int { return len(t.rules) }

// Rules returns the rules in declaration order.
func (t *Table[V]) Rules() []Rule[V] {
	return slices.Clone(t.rules)
}

// Lookup returns the rule for a source key.
func (t *Table[V]) Lookup(key rune) (Rule[V], bool) {
	pos, ok := t.byKey[key]
	if !ok {
		return Rule[V]{}, false
	}
	return t.rules[pos], true
}

// ByReplacement returns the rule whose plain replacement is v.
func (t *Table[V]) ByReplacement(v V) (Rule[V], bool) {
	pos, ok := t.byReplacement[v]
	if !ok {
		return Rule[V]{}, false
	}
	return t.rules[pos], true
}

// Operated returns the first rule, in declaration order, whose operated key
// is c and whose operation applies at pos.
func (t *Table[V]) Operated(c rune, pos int) (Rule[V], bool) {
	for _, i := range t.byOperated[c] {
		if t.rules[i].AppliesAt(pos) {
			return t.rules[i], true
		}
	}
	return Rule[V]{}, false
}

// OperatedAny returns every operating rule whose operated key is c,
// regardless of position.
func (t *Table[V]) OperatedAny(c rune) []Rule[V] {
	return lo.Map(t.byOperated[c], func(i int, _ int) Rule[V] {
		return t.rules[i]
	})
}
