package rule

import "errors"

var (
	// ErrDuplicateKey is returned when two rules share the same source key.
	ErrDuplicateKey = errors.New("duplicate rule key")
	// ErrDuplicateReplacement is returned when two rules share the same replacement,
	// which would make the inverse view ambiguous.
	ErrDuplicateReplacement = errors.New("duplicate rule replacement")
	// ErrEmptyReplacement is returned for a rule whose replacement is the zero value.
	ErrEmptyReplacement = errors.New("empty rule replacement")
	// ErrInvalidKey is returned when a map key is not exactly one character.
	ErrInvalidKey = errors.New("rule key must be a single character")
	// ErrInvalidOperation is returned when an operation name cannot be parsed.
	ErrInvalidOperation = errors.New("invalid operation")
)
