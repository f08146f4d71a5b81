package cryptolab

import (
	"errors"
	"fmt"
)

// Common errors returned by the cryptolab packages.
var (
	ErrNonInvertible     = errors.New("element has no modular inverse")
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrKeyGeneration     = errors.New("key generation failed")
)

// ParamError represents a rejected caller-supplied parameter.
// It allows the request layer to report exactly which input was malformed.
type ParamError struct {
	Param  string
	Reason string
	Err    error
}

func (e *ParamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid parameter %s: %s: %v", e.Param, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// Unwrap returns the underlying cause, or ErrInvalidParameters when there is none.
func (e *ParamError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidParameters
}

// Is reports every ParamError as ErrInvalidParameters, whatever its cause.
func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidParameters
}

// NewParamError creates a new ParamError.
func NewParamError(param, reason string, err error) *ParamError {
	return &ParamError{
		Param:  param,
		Reason: reason,
		Err:    err,
	}
}
