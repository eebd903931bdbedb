package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/invlabs/stock-ledger-api/internal/application/reservation"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
)

var _ reservation.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside a PostgreSQL transaction. Row locks
// taken via SELECT ... FOR UPDATE inside the callback are held until Commit
// or Rollback, and lock_timeout bounds how long a statement waits on a
// conflicting lock (surfacing as 55P03, mapped to ErrLockTimeout).
type TxRunner struct {
	pool     *pgxpool.Pool
	lockWait time.Duration
}

// NewTxRunner builds the runner over the pool.
func NewTxRunner(pool *pgxpool.Pool, lockWait time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockWait: lockWait}
}

// Run begins a transaction, executes fn with repos bound to the tx, and
// commits on nil or rolls back on error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	resRepo repository.ReservationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// SET LOCAL scopes the lock wait budget to this transaction only.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockWait.Milliseconds())); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	ledgerRepo := NewLedgerRepository(tx)
	resRepo := NewReservationRepository(tx)

	if err := fn(ledgerRepo, resRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
