/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error kinds reported by the fuzzy inference engine. Configuration errors are
raised while building an engine and are fatal to construction; session errors are
recoverable and the caller may correct inputs and retry on the same session.
*/

package fuzzy

import "errors"

// Configuration errors, detected when variables and engines are built
var (
	ErrDuplicateLabel    = errors.New("duplicate label")
	ErrInvalidShape      = errors.New("invalid membership function shape")
	ErrUnknownTerm       = errors.New("unknown term")
	ErrDuplicateVariable = errors.New("duplicate variable")
	ErrInvalidUniverse   = errors.New("invalid universe")
	ErrInvalidRule       = errors.New("invalid rule")
	ErrImmutable         = errors.New("variable is owned by a built engine")
)

// Session errors
var (
	ErrUnknownVariable = errors.New("unknown variable")
	ErrMissingInput    = errors.New("missing input")
	ErrNotComputed     = errors.New("outputs not computed")
	ErrInvalidInput    = errors.New("invalid input value")
)

var engineErrors = []error{
	ErrDuplicateLabel,
	ErrInvalidShape,
	ErrUnknownTerm,
	ErrDuplicateVariable,
	ErrInvalidUniverse,
	ErrInvalidRule,
	ErrImmutable,
	ErrUnknownVariable,
	ErrMissingInput,
	ErrNotComputed,
	ErrInvalidInput,
}

// IsEngineError reports whether err is, or wraps, one of the error kinds declared by this
// package. Callers that tolerate per-computation failures use it to tell engine-reported
// conditions apart from unrelated failures.
func IsEngineError(err error) bool {
	if err == nil {
		return false
	}
	for _, kind := range engineErrors {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
