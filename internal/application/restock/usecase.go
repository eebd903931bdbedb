package restock

import (
	"context"

	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
)

// UseCase advisory restock monitor: read-only scan for ledger rows whose
// total stock has fallen below their restock threshold. Runs concurrently
// with mutators; a slightly stale snapshot is acceptable.
type UseCase struct {
	reader repository.LedgerReader
}

// NewUseCase builds the monitor over a pool-bound ledger reader.
func NewUseCase(reader repository.LedgerReader) *UseCase {
	return &UseCase{reader: reader}
}

// ListRestockNeeded returns entries below their threshold, worst deficit
// first. Empty storeID means all stores.
func (uc *UseCase) ListRestockNeeded(ctx context.Context, storeID string) ([]*entity.LedgerEntry, error) {
	return uc.reader.ListBelowMin(ctx, storeID)
}
