package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invlabs/stock-ledger-api/internal/domain"
	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
	"github.com/invlabs/stock-ledger-api/internal/domain/ledger"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
	"github.com/invlabs/stock-ledger-api/pkg/logger"
)

// UseCase implements the reservation engine: ledger creation, reserve,
// release, confirm and restock mutations, all executed transactionally with
// the ledger row locked across the read-check-write sequence.
//
// Reserve is idempotent by orderRef: a replay returns the current snapshot
// without mutating the ledger again. Release and Confirm replay idempotently
// once the reservation is terminal.
type UseCase struct {
	tx  TxRunner
	ttl time.Duration
	log *logger.Logger
}

// NewUseCase builds the use case. ttl is how long a hold stays reservable
// before the sweeper may expire it.
func NewUseCase(tx TxRunner, ttl time.Duration, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, ttl: ttl, log: log}
}

// ReserveInput input for Reserve.
type ReserveInput struct {
	ProductID string
	StoreID   string
	Quantity  int64
	OrderRef  string
}

// CreateLedger registers stock for a (product, store) pair the first time.
// Initial available equals total; reserved starts at zero.
func (uc *UseCase) CreateLedger(ctx context.Context, productID, storeID string, initialQuantity, minStockLevel int64) (*entity.LedgerEntry, error) {
	if productID == "" || storeID == "" {
		return nil, domain.ErrInvalidInput
	}
	if initialQuantity < 0 || minStockLevel < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var out *entity.LedgerEntry
	err := uc.tx.Run(ctx, func(ledgerRepo repository.LedgerRepository, _ repository.ReservationRepository) error {
		existing, err := ledgerRepo.Get(ctx, productID, storeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyExists
		}
		now := time.Now().UTC()
		e := &entity.LedgerEntry{
			ProductID:     productID,
			StoreID:       storeID,
			Available:     initialQuantity,
			Reserved:      0,
			Total:         initialQuantity,
			MinStockLevel: minStockLevel,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := ledgerRepo.Create(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetLedger returns the current state of one ledger row.
func (uc *UseCase) GetLedger(ctx context.Context, productID, storeID string) (*entity.LedgerEntry, error) {
	var out *entity.LedgerEntry
	err := uc.tx.Run(ctx, func(ledgerRepo repository.LedgerRepository, _ repository.ReservationRepository) error {
		e, err := ledgerRepo.Get(ctx, productID, storeID)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.ErrLedgerNotFound
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetReservation returns the reservation for an order reference (audit lookup).
func (uc *UseCase) GetReservation(ctx context.Context, orderRef string) (*entity.Reservation, error) {
	var out *entity.Reservation
	err := uc.tx.Run(ctx, func(_ repository.LedgerRepository, resRepo repository.ReservationRepository) error {
		r, err := resRepo.GetByOrderRef(ctx, orderRef)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrReservationNotFound
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reserve places a hold of in.Quantity against the (product, store) row for
// in.OrderRef. The row lock is acquired before the idempotency check so a
// concurrent replay of the same orderRef serializes behind the first call
// and observes its reservation.
func (uc *UseCase) Reserve(ctx context.Context, in ReserveInput) (*entity.LedgerEntry, error) {
	if in.ProductID == "" || in.StoreID == "" || in.OrderRef == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var out *entity.LedgerEntry
	err := uc.tx.Run(ctx, func(ledgerRepo repository.LedgerRepository, resRepo repository.ReservationRepository) error {
		row, err := ledgerRepo.GetForUpdate(ctx, in.ProductID, in.StoreID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrLedgerNotFound
		}

		// Idempotent replay: under the row lock, an existing reservation for
		// this orderRef means the mutation already happened.
		existing, err := resRepo.GetByOrderRef(ctx, in.OrderRef)
		if err != nil {
			return err
		}
		if existing != nil {
			uc.log.Debug().
				Str("order_ref", in.OrderRef).
				Str("status", string(existing.Status)).
				Msg("reserve replayed for existing reservation")
			out = row
			return nil
		}

		mutated, err := ledger.Reserve(*row, in.Quantity)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		mutated.UpdatedAt = now
		if err := ledgerRepo.Update(ctx, &mutated); err != nil {
			return err
		}
		res := &entity.Reservation{
			ID:        uuid.New().String(),
			OrderRef:  in.OrderRef,
			ProductID: in.ProductID,
			StoreID:   in.StoreID,
			Quantity:  in.Quantity,
			Status:    entity.ReservationHeld,
			CreatedAt: now,
			ExpiresAt: now.Add(uc.ttl),
		}
		if err := resRepo.Create(ctx, res); err != nil {
			return err
		}
		out = &mutated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Release returns held stock to available for the reservation identified by
// orderRef (order cancelled by its owner).
func (uc *UseCase) Release(ctx context.Context, orderRef string) (*entity.LedgerEntry, error) {
	return uc.finalize(ctx, orderRef, entity.ReservationReleased)
}

// Confirm permanently deducts held stock from the ledger total for the
// reservation identified by orderRef (goods have left custody).
func (uc *UseCase) Confirm(ctx context.Context, orderRef string) (*entity.LedgerEntry, error) {
	return uc.finalize(ctx, orderRef, entity.ReservationConfirmed)
}

// AddStock adds quantity to available and total (restocking).
func (uc *UseCase) AddStock(ctx context.Context, productID, storeID string, quantity int64) (*entity.LedgerEntry, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var out *entity.LedgerEntry
	err := uc.tx.Run(ctx, func(ledgerRepo repository.LedgerRepository, _ repository.ReservationRepository) error {
		row, err := ledgerRepo.GetForUpdate(ctx, productID, storeID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrLedgerNotFound
		}
		mutated, err := ledger.AddStock(*row, quantity)
		if err != nil {
			return err
		}
		mutated.UpdatedAt = time.Now().UTC()
		if err := ledgerRepo.Update(ctx, &mutated); err != nil {
			return err
		}
		out = &mutated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// finalize drives a HELD reservation to a terminal state and applies the
// matching ledger mutator with the recorded quantity. Already-terminal
// reservations replay idempotently; an unknown orderRef is an error.
func (uc *UseCase) finalize(ctx context.Context, orderRef string, target entity.ReservationStatus) (*entity.LedgerEntry, error) {
	if orderRef == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.LedgerEntry
	err := uc.tx.Run(ctx, func(ledgerRepo repository.LedgerRepository, resRepo repository.ReservationRepository) error {
		res, err := resRepo.GetByOrderRef(ctx, orderRef)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrReservationNotFound
		}
		row, err := ledgerRepo.GetForUpdate(ctx, res.ProductID, res.StoreID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrLedgerNotFound
		}

		// Re-read under the row lock: terminal transitions only happen while
		// this lock is held, so the status seen now is authoritative.
		res, err = resRepo.GetByOrderRef(ctx, orderRef)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrReservationNotFound
		}
		if res.Terminal() {
			out = row
			return nil
		}

		var mutated entity.LedgerEntry
		switch target {
		case entity.ReservationConfirmed:
			mutated, err = ledger.Confirm(*row, res.Quantity)
		case entity.ReservationReleased, entity.ReservationExpired:
			mutated, err = ledger.Release(*row, res.Quantity)
		default:
			return domain.ErrInvalidInput
		}
		if err != nil {
			return err
		}
		mutated.UpdatedAt = time.Now().UTC()
		if err := ledgerRepo.Update(ctx, &mutated); err != nil {
			return err
		}
		if err := resRepo.UpdateStatus(ctx, res.ID, target); err != nil {
			return err
		}
		out = &mutated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
