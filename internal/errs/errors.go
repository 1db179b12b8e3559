package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrIdempotencyConflict indicates an idempotency key was reused with a
	// different payload. The original entry is never revealed on this path.
	ErrIdempotencyConflict = errors.New("idempotency_conflict")
	// ErrHasActivity indicates an account cannot be retired because journal
	// lines still reference it.
	ErrHasActivity = errors.New("account_has_activity")
	// ErrIntegrity indicates a ledger self-check failed that must always pass
	// (e.g. trial balance out of balance). It signals a bug or storage
	// corruption, never a caller error.
	ErrIntegrity = errors.New("integrity_fault")
)

// Validation is a business-rule failure carrying a machine-readable code.
// It unwraps to ErrInvalid so callers can match the whole family with
// errors.Is.
type Validation struct {
	Code string
	Msg  string
}

func (v *Validation) Error() string { return v.Msg }

func (v *Validation) Unwrap() error { return ErrInvalid }

// NewValidation builds a Validation error with a formatted message.
func NewValidation(code, format string, args ...any) *Validation {
	return &Validation{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// MissingAccounts reports every unknown account code from a resolve call in
// one combined error rather than failing on the first.
type MissingAccounts struct {
	Codes []string
}

func (m *MissingAccounts) Error() string {
	return "unknown account code(s): " + strings.Join(m.Codes, ", ")
}

func (m *MissingAccounts) Unwrap() error { return ErrNotFound }
