package ledger

import (
	"github.com/invlabs/stock-ledger-api/internal/domain"
	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
)

// Pure single-row mutators. Each takes the current row and a quantity and
// returns the fully-applied new row or an error, never a partial state.
// Callers must hold the row lock across read, mutate and persist.

// Reserve moves quantity from available to reserved. Total is unchanged.
func Reserve(e entity.LedgerEntry, quantity int64) (entity.LedgerEntry, error) {
	if quantity <= 0 {
		return e, domain.ErrInvalidQuantity
	}
	if e.Available < quantity {
		return e, domain.ErrInsufficientStock
	}
	e.Available -= quantity
	e.Reserved += quantity
	return e, nil
}

// Release moves quantity from reserved back to available. Total is unchanged.
func Release(e entity.LedgerEntry, quantity int64) (entity.LedgerEntry, error) {
	if quantity <= 0 {
		return e, domain.ErrInvalidQuantity
	}
	if e.Reserved < quantity {
		return e, domain.ErrOverRelease
	}
	e.Available += quantity
	e.Reserved -= quantity
	return e, nil
}

// Confirm deducts quantity from reserved and total; confirmed stock has
// physically left the ledger. Available is unchanged.
func Confirm(e entity.LedgerEntry, quantity int64) (entity.LedgerEntry, error) {
	if quantity <= 0 {
		return e, domain.ErrInvalidQuantity
	}
	if e.Reserved < quantity {
		return e, domain.ErrOverConfirm
	}
	e.Reserved -= quantity
	e.Total -= quantity
	return e, nil
}

// AddStock adds quantity to available and total. Used for restocking.
func AddStock(e entity.LedgerEntry, quantity int64) (entity.LedgerEntry, error) {
	if quantity <= 0 {
		return e, domain.ErrInvalidQuantity
	}
	e.Available += quantity
	e.Total += quantity
	return e, nil
}
