package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/invlabs/stock-ledger-api/internal/domain"
	"github.com/invlabs/stock-ledger-api/internal/domain/entity"
	"github.com/invlabs/stock-ledger-api/internal/domain/ledger"
)

func row(available, reserved, total int64) entity.LedgerEntry {
	return entity.LedgerEntry{
		ProductID: "p1",
		StoreID:   "s1",
		Available: available,
		Reserved:  reserved,
		Total:     total,
	}
}

// assertInvariant checks the core ledger property after any mutation:
// total == available + reserved and nothing negative.
func assertInvariant(t *testing.T, e entity.LedgerEntry) {
	t.Helper()
	assert.Equal(t, e.Total, e.Available+e.Reserved, "total must equal available + reserved")
	assert.GreaterOrEqual(t, e.Available, int64(0))
	assert.GreaterOrEqual(t, e.Reserved, int64(0))
	assert.GreaterOrEqual(t, e.Total, int64(0))
}

func TestReserve_MovesAvailableToReserved(t *testing.T) {
	out, err := ledger.Reserve(row(10, 0, 10), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.Available)
	assert.Equal(t, int64(4), out.Reserved)
	assert.Equal(t, int64(10), out.Total, "reserve must not change total")
	assertInvariant(t, out)
}

func TestReserve_ExactlyAvailable(t *testing.T) {
	out, err := ledger.Reserve(row(5, 0, 5), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Available, "reserving everything leaves zero available")
	assert.Equal(t, int64(5), out.Reserved)
	assertInvariant(t, out)
}

func TestReserve_InsufficientStock(t *testing.T) {
	in := row(5, 0, 5)
	out, err := ledger.Reserve(in, 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, in, out, "failed reserve must leave the row unchanged")
}

func TestReserve_InvalidQuantity(t *testing.T) {
	for _, q := range []int64{0, -1} {
		_, err := ledger.Reserve(row(5, 0, 5), q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
}

func TestRelease_ReturnsReservedToAvailable(t *testing.T) {
	out, err := ledger.Release(row(2, 8, 10), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Available)
	assert.Equal(t, int64(5), out.Reserved)
	assert.Equal(t, int64(10), out.Total, "release must not change total")
	assertInvariant(t, out)
}

func TestRelease_OverRelease(t *testing.T) {
	in := row(2, 3, 5)
	out, err := ledger.Release(in, 4)
	assert.ErrorIs(t, err, domain.ErrOverRelease)
	assert.Equal(t, in, out)
}

func TestRelease_InvalidQuantity(t *testing.T) {
	_, err := ledger.Release(row(2, 3, 5), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestConfirm_DeductsReservedAndTotal(t *testing.T) {
	out, err := ledger.Confirm(row(2, 8, 10), 8)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Available, "confirm must not change available")
	assert.Equal(t, int64(0), out.Reserved)
	assert.Equal(t, int64(2), out.Total)
	assertInvariant(t, out)
}

func TestConfirm_OverConfirm(t *testing.T) {
	in := row(2, 3, 5)
	out, err := ledger.Confirm(in, 4)
	assert.ErrorIs(t, err, domain.ErrOverConfirm)
	assert.Equal(t, in, out)
}

func TestAddStock_IncreasesAvailableAndTotal(t *testing.T) {
	out, err := ledger.AddStock(row(1, 4, 5), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Available)
	assert.Equal(t, int64(4), out.Reserved, "restock must not touch reserved")
	assert.Equal(t, int64(15), out.Total)
	assertInvariant(t, out)
}

func TestAddStock_InvalidQuantity(t *testing.T) {
	_, err := ledger.AddStock(row(1, 4, 5), -5)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// TestReserveConfirm_RestockThresholdScenario walks the documented scenario:
// 20 initial units, threshold 10; reserving 15 does not trigger restock
// (total unchanged) but confirming those 15 drops total to 5, below the
// threshold.
func TestReserveConfirm_RestockThresholdScenario(t *testing.T) {
	e := row(20, 0, 20)
	e.MinStockLevel = 10
	assert.False(t, e.NeedsRestock())

	e, err := ledger.Reserve(e, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(5), e.Available)
	assert.Equal(t, int64(15), e.Reserved)
	assert.Equal(t, int64(20), e.Total)
	assert.False(t, e.NeedsRestock(), "reserved stock still counts toward total")

	e, err = ledger.Confirm(e, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.Reserved)
	assert.Equal(t, int64(5), e.Total)
	assert.True(t, e.NeedsRestock(), "total 5 is below threshold 10")
	assertInvariant(t, e)
}
