package entity

import "time"

// LedgerEntry is the stock record for one (product, store) pair.
// Invariant maintained by every mutator: Total == Available + Reserved.
type LedgerEntry struct {
	ProductID     string
	StoreID       string
	Available     int64
	Reserved      int64
	Total         int64
	MinStockLevel int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NeedsRestock reports whether total stock has fallen below the restock
// threshold. Derived, never stored.
func (e LedgerEntry) NeedsRestock() bool {
	return e.Total < e.MinStockLevel
}
