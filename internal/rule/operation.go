// Package rule defines substitution rules and the read-only tables built from them.
package rule

import (
	"fmt"
	"strings"
	"unicode"
)

// Operation is a single-character case transform applied to a rule's key
// at the positions listed in the rule's indexes.
type Operation int

const (
	None Operation = iota
	Uppercase
	Lowercase
	Titlecase
)

var operationNames = map[Operation]string{
	None:      "none",
	Uppercase: "uppercase",
	Lowercase: "lowercase",
	Titlecase: "titlecase",
}

// Apply transforms r. None returns r unchanged.
func (o Operation) Apply(r rune) rune {
	switch o {
	case Uppercase:
		return unicode.ToUpper(r)
	case Lowercase:
		return unicode.ToLower(r)
	case Titlecase:
		return unicode.ToTitle(r)
	default:
		return r
	}
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// ParseOperation converts a name such as "uppercase" to its Operation.
// The empty string maps to None.
func ParseOperation(s string) (Operation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return None, nil
	}
	for op, opName := range operationNames {
		if opName == name {
			return op, nil
		}
	}
	return None, fmt.Errorf("%w: '%s'", ErrInvalidOperation, s)
}
