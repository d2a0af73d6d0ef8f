// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input data errors.
	ErrNoReviews     = errors.New("no reviews to analyze")
	ErrMissingColumn = errors.New("required column missing")

	// Training errors.
	ErrTooFewClasses  = errors.New("fewer than two sentiment classes with examples")
	ErrTrainingFailed = errors.New("model training failed")

	// Suggestion errors.
	ErrLLMUnavailable = errors.New("inference service unavailable")
	ErrEmptyResponse  = errors.New("inference service returned no usable suggestions")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
