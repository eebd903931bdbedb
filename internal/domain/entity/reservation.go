package entity

import "time"

// ReservationStatus lifecycle of a stock hold.
type ReservationStatus string

const (
	ReservationHeld      ReservationStatus = "HELD"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationReleased  ReservationStatus = "RELEASED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// Reservation is a claim on reserved stock tied to one order reference,
// pending confirmation or release. Terminal records are retained for
// audit and idempotency lookups.
type Reservation struct {
	ID        string
	OrderRef  string
	ProductID string
	StoreID   string
	Quantity  int64
	Status    ReservationStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Terminal reports whether the reservation has reached an immutable state.
func (r Reservation) Terminal() bool {
	return r.Status != ReservationHeld
}
