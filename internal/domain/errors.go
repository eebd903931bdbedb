package domain

import "errors"

// Domain errors (no external dependencies). Handlers map these to stable
// API error codes; only ErrLockTimeout is safe to retry automatically.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInsufficientStock   = errors.New("insufficient available stock")
	ErrOverRelease         = errors.New("release exceeds reserved stock")
	ErrOverConfirm         = errors.New("confirm exceeds reserved stock")
	ErrLedgerNotFound      = errors.New("ledger entry not found")
	ErrAlreadyExists       = errors.New("ledger entry already exists")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrLockTimeout         = errors.New("timed out waiting for ledger row lock")
)
