package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/invlabs/stock-ledger-api/internal/domain"
	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implements ReservationRepository over PostgreSQL (pool or tx).
// order_ref carries a unique index; a concurrent duplicate insert maps to
// ErrAlreadyExists so the caller can treat it as an idempotent replay.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository builds the adapter. Pass a pool or a tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, order_ref, product_id, store_id, quantity, status, created_at, expires_at`

// GetByOrderRef returns the reservation for an order reference, or (nil, nil)
// when no reservation exists.
func (r *ReservationRepo) GetByOrderRef(ctx context.Context, orderRef string) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations WHERE order_ref = $1`
	var res entity.Reservation
	err := r.q.QueryRow(ctx, query, orderRef).Scan(
		&res.ID, &res.OrderRef, &res.ProductID, &res.StoreID,
		&res.Quantity, &res.Status, &res.CreatedAt, &res.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by order ref: %w", err)
	}
	return &res, nil
}

// Create inserts a new reservation record.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.OrderRef, res.ProductID, res.StoreID,
		res.Quantity, res.Status, res.CreatedAt, res.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// UpdateStatus transitions a reservation to a terminal state.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id string, status entity.ReservationStatus) error {
	query := `UPDATE reservations SET status = $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// ListExpired returns up to limit HELD reservations expired before now,
// oldest expiry first.
func (r *ReservationRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, entity.ReservationHeld, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(
			&res.ID, &res.OrderRef, &res.ProductID, &res.StoreID,
			&res.Quantity, &res.Status, &res.CreatedAt, &res.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}
