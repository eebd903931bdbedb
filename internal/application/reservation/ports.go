package reservation

import (
	"context"

	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
)

// TxRunner executes a function inside one storage transaction, passing
// repositories bound to that transaction. Row locks taken via GetForUpdate
// are held until Run returns; Run commits on nil and rolls back on error.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		resRepo repository.ReservationRepository,
	) error) error
}
