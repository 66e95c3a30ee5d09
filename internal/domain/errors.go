package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure and carry no infrastructure dependency.
// Callers wrap them with %w and test with errors.Is.

var (
	// Lookup errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrTokenInvalid       = errors.New("invalid or expired token")

	// Ledger errors
	ErrInsufficientBalance = errors.New("insufficient points balance")
	ErrInvalidAmount       = errors.New("points amount must be positive")
	ErrInvalidTransition   = errors.New("invalid status transition")

	// Input and storage errors
	ErrInvalidInput = errors.New("invalid input")
	ErrCorruptData  = errors.New("stored data is corrupt")
)
