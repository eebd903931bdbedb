package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/invlabs/stock-ledger-api/internal/domain"
	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implements LedgerRepository over PostgreSQL (pool or tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository builds the adapter. Pass a pool or a tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `product_id, store_id, available_qty, reserved_qty, total_qty, min_stock_level, created_at, updated_at`

func scanLedger(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	err := row.Scan(
		&e.ProductID, &e.StoreID, &e.Available, &e.Reserved, &e.Total,
		&e.MinStockLevel, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get returns the ledger row, or (nil, nil) when absent.
func (r *LedgerRepo) Get(ctx context.Context, productID, storeID string) (*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM stock_ledger WHERE product_id = $1 AND store_id = $2`
	e, err := scanLedger(r.q.QueryRow(ctx, query, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// GetForUpdate returns the ledger row with an exclusive row lock
// (SELECT ... FOR UPDATE) held until the transaction ends. A lock wait that
// exceeds the transaction's lock_timeout surfaces as ErrLockTimeout.
func (r *LedgerRepo) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM stock_ledger WHERE product_id = $1 AND store_id = $2
		FOR UPDATE`
	e, err := scanLedger(r.q.QueryRow(ctx, query, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("get ledger entry for update: %w", err)
	}
	return e, nil
}

// Create inserts a new ledger row. A duplicate (product, store) pair maps
// to ErrAlreadyExists.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ProductID, e.StoreID, e.Available, e.Reserved, e.Total,
		e.MinStockLevel, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// Update persists the quantities of an existing row.
func (r *LedgerRepo) Update(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		UPDATE stock_ledger
		SET available_qty = $3, reserved_qty = $4, total_qty = $5, updated_at = $6
		WHERE product_id = $1 AND store_id = $2`
	tag, err := r.q.Exec(ctx, query,
		e.ProductID, e.StoreID, e.Available, e.Reserved, e.Total, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ledger entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLedgerNotFound
	}
	return nil
}

// ListBelowMin returns rows with total below their restock threshold,
// ordered by deficit descending. Empty storeID means all stores.
func (r *LedgerRepo) ListBelowMin(ctx context.Context, storeID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM stock_ledger
		WHERE total_qty < min_stock_level`
	args := []any{}
	if storeID != "" {
		query += ` AND store_id = $1`
		args = append(args, storeID)
	}
	query += ` ORDER BY (min_stock_level - total_qty) DESC, product_id, store_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries below threshold: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(
			&e.ProductID, &e.StoreID, &e.Available, &e.Reserved, &e.Total,
			&e.MinStockLevel, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
