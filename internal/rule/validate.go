package rule

import (
	"fmt"
	"strings"
)

// Ambiguity records a rule whose replacement equals the key of Collides.
// Collides may be the rule itself.
type Ambiguity[V Value] struct {
	Rule     Rule[V]
	Collides Rule[V]
}

func (a Ambiguity[V]) String() string {
	return fmt.Sprintf("replacement %q of key %q is also the key of rule %q",
		a.Rule.replacement, a.Rule.key, a.Collides.key)
}

// Ambiguities lists every rule whose replacement is also a source key.
// Disentangle is unspecified for tables with ambiguities.
func Ambiguities[V Value](t *Table[V]) []Ambiguity[V] {
	keys := make(map[V]Rule[V], len(t.rules))
	for _, r := range t.rules {
		keys[V(r.key)] = r
	}

	var out []Ambiguity[V]
	for _, r := range t.rules {
		if other, ok := keys[r.replacement]; ok {
			out = append(out, Ambiguity[V]{Rule: r, Collides: other})
		}
	}
	return out
}

// Validate reports whether t satisfies the ambiguity invariant: no rule's
// replacement equals any rule's key. Engines never call it.
func Validate[V Value](t *Table[V]) bool {
	return len(Ambiguities(t)) == 0
}

// Overlap records a fragment (a replacement or an operated key of Inner)
// found inside the replacement of Outer.
type Overlap struct {
	Inner    Rule[string]
	Outer    Rule[string]
	Fragment string
}

func (o Overlap) String() string {
	return fmt.Sprintf("%q (key %q) occurs inside replacement %q (key %q)",
		o.Fragment, o.Inner.key, o.Outer.replacement, o.Outer.key)
}

// Overlaps lists the places where the string engine's substring scan can
// resolve the wrong rule: a replacement, or an operated key, contained in
// another rule's replacement.
func Overlaps(t *Table[string]) []Overlap {
	var out []Overlap
	for _, inner := range t.rules {
		fragments := []string{inner.replacement}
		if inner.Operates() {
			fragments = append(fragments, string(inner.Operated()))
		}
		for _, outer := range t.rules {
			if outer.key == inner.key {
				continue
			}
			for _, f := range fragments {
				if strings.Contains(outer.replacement, f) {
					out = append(out, Overlap{Inner: inner, Outer: outer, Fragment: f})
				}
			}
		}
	}
	return out
}
