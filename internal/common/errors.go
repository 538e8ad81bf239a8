// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("match conflict")

	// Input errors.
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmptyInventory = errors.New("inventory is empty")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConflictError reports a refused acceptance: the attempted pair collided
// with an existing accepted decision on the sell or buy side. It wraps
// ErrConflict so callers can branch with errors.Is.
type ConflictError struct {
	Type           string
	SellID         string
	BuyID          string
	ExistingSellID string
	ExistingBuyID  string
	ExistingID     int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: (%s, %s) conflicts with existing accepted pair (%s, %s)",
		e.Type, e.SellID, e.BuyID, e.ExistingSellID, e.ExistingBuyID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

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
