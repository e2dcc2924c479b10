package rule

import (
	"fmt"
	"slices"
)

// Value is the set of replacement types a rule can carry.
type Value interface {
	~rune | ~string
}

// Rule describes how one source character is substituted.
//
// The replacement is emitted by default. When the rule has an operation and
// the current position is one of its indexes, the operation is applied to the
// key instead and the replacement is not used.
type Rule[V Value] struct {
	key         rune
	replacement V
	op          Operation
	indexes     map[int]struct{}
}

// New creates a rule. Indexes are zero-based text positions.
func New[V Value](key rune, replacement V, op Operation, indexes ...int) Rule[V] {
	set := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		set[i] = struct{}{}
	}
	return Rule[V]{
		key:         key,
		replacement: replacement,
		op:          op,
		indexes:     set,
	}
}

// Plain creates a rule without operation or indexes.
func Plain[V Value](key rune, replacement V) Rule[V] {
	return New(key, replacement, None)
}

func (r Rule[V]) Key() rune            { return r.key }
func (r Rule[V]) Replacement() V       { return r.replacement }
func (r Rule[V]) Operation() Operation { return r.op }

// Operated is the key with the rule's operation applied.
func (r Rule[V]) Operated() rune { return r.op.Apply(r.key) }

// HasIndex reports whether pos is one of the rule's indexes.
func (r Rule[V]) HasIndex(pos int) bool {
	_, ok := r.indexes[pos]
	return ok
}

// Operates reports whether the operation can ever replace the plain replacement.
func (r Rule[V]) Operates() bool {
	return r.op != None && len(r.indexes) > 0
}

// AppliesAt reports whether the operation governs the output at pos.
func (r Rule[V]) AppliesAt(pos int) bool {
	return r.op != None && r.HasIndex(pos)
}

// Indexes returns the rule's positions in ascending order.
func (r Rule[V]) Indexes() []int {
	out := make([]int, 0, len(r.indexes))
	for i := range r.indexes {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

func (r Rule[V]) String() string {
	if r.op == None {
		return fmt.Sprintf("%q -> %q", r.key, r.replacement)
	}
	return fmt.Sprintf("%q -> %q (%s at %v)", r.key, r.replacement, r.op, r.Indexes())
}
