package reservation

import (
	"context"
	"time"

	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
	"github.com/invlabs/stock-ledger-api/pkg/logger"
)

// sweepBatchSize caps how many holds a single sweep pass releases.
const sweepBatchSize = 500

// Sweeper periodically expires HELD reservations whose expiry has passed,
// returning their stock to available. Each expiry goes through the same
// transactional release path and row lock as a caller-initiated Release;
// the reservation ends EXPIRED instead of RELEASED so the audit trail
// distinguishes timeout from cancellation.
type Sweeper struct {
	uc       *UseCase
	interval time.Duration
	log      *logger.Logger
}

// NewSweeper builds the sweeper around the reservation use case.
func NewSweeper(uc *UseCase, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{uc: uc, interval: interval, log: log}
}

// Run blocks, sweeping every interval until ctx is cancelled. Intended to be
// started as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info().Dur("interval", s.interval).Msg("expiration sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("expiration sweeper stopped")
			return
		case <-ticker.C:
			expired, err := s.uc.SweepExpired(ctx, time.Now().UTC())
			if err != nil {
				s.log.Error().Err(err).Msg("expiration sweep failed")
				continue
			}
			if expired > 0 {
				s.log.Info().Int("expired", expired).Msg("expired stale reservations")
			}
		}
	}
}

// SweepExpired expires every HELD reservation whose expiry is before now and
// returns how many were expired. Candidates are listed without row locks;
// each expiry then runs in its own transaction, so a reservation confirmed
// or released between listing and locking is left alone (finalize re-reads
// the status under the row lock). A failure on one reservation is logged and
// does not abort the rest of the sweep.
func (uc *UseCase) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	var candidates []*entity.Reservation
	err := uc.tx.Run(ctx, func(_ repository.LedgerRepository, resRepo repository.ReservationRepository) error {
		var e error
		candidates, e = resRepo.ListExpired(ctx, now, sweepBatchSize)
		return e
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, res := range candidates {
		if _, err := uc.finalize(ctx, res.OrderRef, entity.ReservationExpired); err != nil {
			uc.log.Error().Err(err).
				Str("order_ref", res.OrderRef).
				Str("product_id", res.ProductID).
				Str("store_id", res.StoreID).
				Msg("failed to expire reservation")
			continue
		}
		expired++
	}
	return expired, nil
}
