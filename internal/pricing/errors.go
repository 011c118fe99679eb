package pricing

import "errors"

// Error kinds. Every validation error returned by NewCalculator matches
// exactly one of these with errors.Is.
var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidRange = errors.New("value out of range")
	ErrBusinessRule = errors.New("business rule violation")
)

// Validation errors returned by NewCalculator.
var (
	ErrCargoDimensionRequired = &ValidationError{kind: ErrMissingField, msg: "Cargo dimension cannot be null"}
	ErrServiceLoadRequired    = &ValidationError{kind: ErrMissingField, msg: "Delivery service load cannot be null"}
	ErrIncorrectDistance      = &ValidationError{kind: ErrInvalidRange, msg: "Incorrect destination distance"}
	ErrFragileTooFar          = &ValidationError{kind: ErrBusinessRule, msg: "Fragile goods cannot be delivered over a distance of more than 30 km."}
)

// ValidationError is a rejected delivery request. Error returns the
// caller-facing message; Unwrap exposes the kind.
type ValidationError struct {
	kind error
	msg  string
}

func (e *ValidationError) Error() string { return e.msg }

func (e *ValidationError) Unwrap() error { return e.kind }
