package repository

import (
	"context"
	"time"

	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
)

// ReservationRepository port over reservation records. GetByOrderRef returns
// (nil, nil) when no reservation exists for the reference.
type ReservationRepository interface {
	GetByOrderRef(ctx context.Context, orderRef string) (*entity.Reservation, error)
	Create(ctx context.Context, r *entity.Reservation) error
	UpdateStatus(ctx context.Context, id string, status entity.ReservationStatus) error

	// ListExpired returns up to limit HELD reservations whose expiry is before
	// now, oldest first. Used by the expiration sweeper.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Reservation, error)
}
