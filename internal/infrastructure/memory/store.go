// Package memory implements the ledger and reservation stores in process
// memory. Row-level exclusivity comes from a per-(product, store) keyring
// lock held for the duration of the transaction, mirroring what SELECT ...
// FOR UPDATE provides on the Postgres driver. Used by tests and by
// deployments that run with STORE_DRIVER=memory.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/invlabs/stock-ledger-api/internal/application/reservation"
	"github.com/invlabs/stock-ledger-api/internal/domain"
	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
	"github.com/invlabs/stock-ledger-api/internal/domain/repository"
	"github.com/invlabs/stock-ledger-api/pkg/keyring"
)

// Store holds committed state. It implements repository.LedgerReader for
// lock-free advisory reads (restock monitor) and reservation lookups; all
// mutations must go through Run.
type Store struct {
	locks    *keyring.Ring
	lockWait time.Duration

	mu           sync.RWMutex
	ledgers      map[string]entity.LedgerEntry  // keyed by rowKey
	reservations map[string]entity.Reservation  // keyed by orderRef
	resIndex     map[string]string              // reservation ID -> orderRef
}

var _ repository.LedgerReader = (*Store)(nil)
var _ reservation.TxRunner = (*Store)(nil)

// NewStore builds an empty store. lockWait bounds how long a transaction
// waits for a contended row before failing with ErrLockTimeout.
func NewStore(lockWait time.Duration) *Store {
	return &Store{
		locks:        keyring.New(),
		lockWait:     lockWait,
		ledgers:      make(map[string]entity.LedgerEntry),
		reservations: make(map[string]entity.Reservation),
		resIndex:     make(map[string]string),
	}
}

func rowKey(productID, storeID string) string {
	return productID + "\x00" + storeID
}

// Run implements reservation.TxRunner. Writes are buffered in the
// transaction and applied to committed state only when fn returns nil, so a
// failed mutation leaves no partial effect. Row locks taken by GetForUpdate
// are released when Run returns.
func (s *Store) Run(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	resRepo repository.ReservationRepository,
) error) error {
	tx := &memTx{
		store:          s,
		pendingLedgers: make(map[string]entity.LedgerEntry),
		pendingRes:     make(map[string]entity.Reservation),
	}
	defer tx.unlockAll()

	if err := fn(&ledgerTx{tx}, &reservationTx{tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Get returns the committed ledger row, or (nil, nil) when absent.
func (s *Store) Get(_ context.Context, productID, storeID string) (*entity.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.ledgers[rowKey(productID, storeID)]; ok {
		return &e, nil
	}
	return nil, nil
}

// ListBelowMin returns committed rows below their restock threshold,
// ordered by deficit descending.
func (s *Store) ListBelowMin(_ context.Context, storeID string) ([]*entity.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.LedgerEntry
	for _, e := range s.ledgers {
		if storeID != "" && e.StoreID != storeID {
			continue
		}
		if e.NeedsRestock() {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di := out[i].MinStockLevel - out[i].Total
		dj := out[j].MinStockLevel - out[j].Total
		if di != dj {
			return di > dj
		}
		return rowKey(out[i].ProductID, out[i].StoreID) < rowKey(out[j].ProductID, out[j].StoreID)
	})
	return out, nil
}

// memTx is one in-flight transaction: buffered writes plus the row locks
// acquired so far.
type memTx struct {
	store          *Store
	releases       []func()
	pendingLedgers map[string]entity.LedgerEntry
	pendingRes     map[string]entity.Reservation // keyed by orderRef
}

func (tx *memTx) unlockAll() {
	for _, release := range tx.releases {
		release()
	}
	tx.releases = nil
}

func (tx *memTx) commit() {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range tx.pendingLedgers {
		s.ledgers[k] = e
	}
	for ref, r := range tx.pendingRes {
		s.reservations[ref] = r
		s.resIndex[r.ID] = ref
	}
}

// lockRow acquires the row lock within the store's lock wait budget.
func (tx *memTx) lockRow(ctx context.Context, key string) error {
	lockCtx, cancel := context.WithTimeout(ctx, tx.store.lockWait)
	defer cancel()
	release, err := tx.store.locks.Acquire(lockCtx, key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return domain.ErrLockTimeout
		}
		return err
	}
	tx.releases = append(tx.releases, release)
	return nil
}

// ledgerTx implements repository.LedgerRepository over one transaction.
type ledgerTx struct{ tx *memTx }

var _ repository.LedgerRepository = (*ledgerTx)(nil)

func (r *ledgerTx) Get(ctx context.Context, productID, storeID string) (*entity.LedgerEntry, error) {
	key := rowKey(productID, storeID)
	if e, ok := r.tx.pendingLedgers[key]; ok {
		return &e, nil
	}
	return r.tx.store.Get(ctx, productID, storeID)
}

func (r *ledgerTx) GetForUpdate(ctx context.Context, productID, storeID string) (*entity.LedgerEntry, error) {
	if err := r.tx.lockRow(ctx, rowKey(productID, storeID)); err != nil {
		return nil, err
	}
	return r.Get(ctx, productID, storeID)
}

func (r *ledgerTx) Create(ctx context.Context, e *entity.LedgerEntry) error {
	// Lock the row key so two concurrent creates serialize; the loser sees
	// the winner's committed entry.
	if err := r.tx.lockRow(ctx, rowKey(e.ProductID, e.StoreID)); err != nil {
		return err
	}
	existing, err := r.Get(ctx, e.ProductID, e.StoreID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrAlreadyExists
	}
	r.tx.pendingLedgers[rowKey(e.ProductID, e.StoreID)] = *e
	return nil
}

func (r *ledgerTx) Update(_ context.Context, e *entity.LedgerEntry) error {
	r.tx.pendingLedgers[rowKey(e.ProductID, e.StoreID)] = *e
	return nil
}

func (r *ledgerTx) ListBelowMin(ctx context.Context, storeID string) ([]*entity.LedgerEntry, error) {
	return r.tx.store.ListBelowMin(ctx, storeID)
}

// reservationTx implements repository.ReservationRepository over one
// transaction.
type reservationTx struct{ tx *memTx }

var _ repository.ReservationRepository = (*reservationTx)(nil)

func (r *reservationTx) GetByOrderRef(_ context.Context, orderRef string) (*entity.Reservation, error) {
	if res, ok := r.tx.pendingRes[orderRef]; ok {
		return &res, nil
	}
	s := r.tx.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if res, ok := s.reservations[orderRef]; ok {
		return &res, nil
	}
	return nil, nil
}

func (r *reservationTx) Create(ctx context.Context, res *entity.Reservation) error {
	existing, err := r.GetByOrderRef(ctx, res.OrderRef)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrAlreadyExists
	}
	r.tx.pendingRes[res.OrderRef] = *res
	return nil
}

func (r *reservationTx) UpdateStatus(_ context.Context, id string, status entity.ReservationStatus) error {
	s := r.tx.store
	s.mu.RLock()
	ref, ok := s.resIndex[id]
	var res entity.Reservation
	if ok {
		res = s.reservations[ref]
	}
	s.mu.RUnlock()
	if !ok {
		// May only exist as a pending write within this transaction.
		for orderRef, pending := range r.tx.pendingRes {
			if pending.ID == id {
				pending.Status = status
				r.tx.pendingRes[orderRef] = pending
				return nil
			}
		}
		return domain.ErrReservationNotFound
	}
	res.Status = status
	r.tx.pendingRes[ref] = res
	return nil
}

func (r *reservationTx) ListExpired(_ context.Context, now time.Time, limit int) ([]*entity.Reservation, error) {
	s := r.tx.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Reservation
	for _, res := range s.reservations {
		if res.Status == entity.ReservationHeld && res.ExpiresAt.Before(now) {
			res := res
			out = append(out, &res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
