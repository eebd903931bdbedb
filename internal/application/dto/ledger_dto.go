package dto

import (
	"time"

	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
)

// CreateLedgerRequest body for POST /api/ledger.
type CreateLedgerRequest struct {
	ProductID       string `json:"product_id"`
	StoreID         string `json:"store_id"`
	InitialQuantity int64  `json:"initial_quantity"`
	MinStockLevel   *int64 `json:"min_stock_level,omitempty"` // default 10
}

// AddStockRequest body for POST /api/ledger/:productId/:storeId/stock.
type AddStockRequest struct {
	Quantity int64 `json:"quantity"`
}

// ReserveRequest body for POST /api/reservations.
type ReserveRequest struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Quantity  int64  `json:"quantity"`
	OrderRef  string `json:"order_ref"`
}

// LedgerSnapshot state of one ledger row as returned to callers.
type LedgerSnapshot struct {
	ProductID         string    `json:"product_id"`
	StoreID           string    `json:"store_id"`
	AvailableQuantity int64     `json:"available_quantity"`
	ReservedQuantity  int64     `json:"reserved_quantity"`
	TotalQuantity     int64     `json:"total_quantity"`
	MinStockLevel     int64     `json:"min_stock_level"`
	NeedsRestock      bool      `json:"needs_restock"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ReservationDTO audit view of a reservation.
type ReservationDTO struct {
	ID        string    `json:"id"`
	OrderRef  string    `json:"order_ref"`
	ProductID string    `json:"product_id"`
	StoreID   string    `json:"store_id"`
	Quantity  int64     `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SnapshotFromEntry maps a ledger entry to its API snapshot.
func SnapshotFromEntry(e *entity.LedgerEntry) LedgerSnapshot {
	return LedgerSnapshot{
		ProductID:         e.ProductID,
		StoreID:           e.StoreID,
		AvailableQuantity: e.Available,
		ReservedQuantity:  e.Reserved,
		TotalQuantity:     e.Total,
		MinStockLevel:     e.MinStockLevel,
		NeedsRestock:      e.NeedsRestock(),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// ReservationFromEntity maps a reservation to its API view.
func ReservationFromEntity(r *entity.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:        r.ID,
		OrderRef:  r.OrderRef,
		ProductID: r.ProductID,
		StoreID:   r.StoreID,
		Quantity:  r.Quantity,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}
