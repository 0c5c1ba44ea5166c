package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a missing product or investment.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated reports an operation attempted without a session.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrForbidden reports an operation the session's role may not perform.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientFunds reports a debit larger than the balance.
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// ValidationError rejects input before any state is mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// fallbackEligible is implemented by transport errors that permit degrading
// to local data.
type fallbackEligible interface {
	FallbackEligible() bool
}

// IsFallbackEligible reports whether err is a network or server failure for
// which a local fallback is acceptable. Validation, auth and other client-side
// rejections are not.
func IsFallbackEligible(err error) bool {
	var fe fallbackEligible
	if errors.As(err, &fe) {
		return fe.FallbackEligible()
	}
	return false
}
