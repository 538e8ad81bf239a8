package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cardmatch/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidDecision = errors.New("invalid decision")
	ErrInvalidNonMatch = errors.New("invalid non-match")
	ErrInvalidSession  = errors.New("invalid session")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDecision validates a decision before it hits the ledger.
func validateDecision(d *model.MatchDecision) error {
	if d == nil {
		return fmt.Errorf("%w: decision", ErrNilParameter)
	}
	if d.SellID == "" {
		return fmt.Errorf("%w: missing sell ID", ErrInvalidDecision)
	}
	if d.BuyID == "" {
		return fmt.Errorf("%w: missing buy ID", ErrInvalidDecision)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidDecision, d.Status)
	}
	if d.Similarity < 0 || d.Similarity > 1 {
		return fmt.Errorf("%w: similarity %f out of range", ErrInvalidDecision, d.Similarity)
	}
	return nil
}

// validateNonMatch validates a non-match exclusion.
func validateNonMatch(nm *model.NonMatch) error {
	if nm == nil {
		return fmt.Errorf("%w: non-match", ErrNilParameter)
	}
	if nm.SellID == "" {
		return fmt.Errorf("%w: missing sell ID", ErrInvalidNonMatch)
	}
	if nm.BuyID == "" {
		return fmt.Errorf("%w: missing buy ID", ErrInvalidNonMatch)
	}
	return nil
}

// validateSession validates session audit metadata.
func validateSession(s *model.MatchSession) error {
	if s == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if s.SellItems < 0 || s.BuyItems < 0 {
		return fmt.Errorf("%w: negative inventory sizes", ErrInvalidSession)
	}
	return nil
}
