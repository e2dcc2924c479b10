// Package engine implements the obfuscate/disentangle algorithms over rule tables.
//
// Every engine is a pure function of its table and the input text. Engines hold
// no mutable state and may be shared between goroutines.
package engine

import (
	"fmt"
	"strings"
)

// Engine obfuscates text and restores it.
type Engine interface {
	Obfuscate(text string) string
	Disentangle(text string) string
}

// Kind selects an engine implementation.
type Kind string

const (
	KindChar   Kind = "char"
	KindString Kind = "string"
	KindSimple Kind = "simple"
)

// AllKinds lists the known engine kinds.
var AllKinds = []Kind{KindChar, KindString, KindSimple}

// ParseKind converts a name to its Kind.
func ParseKind(s string) (Kind, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds {
		if string(k) == lower {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid engine kind specified: '%s'", s)
}
