package repository

import (
	"context"

	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
)

// LedgerReader read-only port over the stock ledger. Safe to use outside a
// transaction; results may be slightly stale relative to in-flight mutations.
type LedgerReader interface {
	Get(ctx context.Context, productID, storeID string) (*entity.LedgerEntry, error)

	// ListBelowMin returns entries whose total quantity is below their restock
	// threshold, ordered by deficit descending. Empty storeID means all stores.
	ListBelowMin(ctx context.Context, storeID string) ([]*entity.LedgerEntry, error)
}

// LedgerRepository full port over the stock ledger. GetForUpdate must lock
// the row until the surrounding transaction ends; implementations without a
// native row lock acquire an application-level per-row lock instead.
// Get returns (nil, nil) when the entry does not exist.
type LedgerRepository interface {
	LedgerReader
	GetForUpdate(ctx context.Context, productID, storeID string) (*entity.LedgerEntry, error)
	Create(ctx context.Context, e *entity.LedgerEntry) error
	Update(ctx context.Context, e *entity.LedgerEntry) error
}
