package keyring_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/invlabs/stock-ledger-api/pkg/keyring"
)

func TestAcquire_MutualExclusionPerKey(t *testing.T) {
	ring := keyring.New()

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := ring.Acquire(context.Background(), "row")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "at most one holder per key at any time")
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	ring := keyring.New()

	release, err := ring.Acquire(context.Background(), "row")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = ring.Acquire(ctx, "row")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestAcquire_IndependentKeys: holding one key must not block another —
// unrelated rows proceed in parallel.
func TestAcquire_IndependentKeys(t *testing.T) {
	ring := keyring.New()

	release, err := ring.Acquire(context.Background(), "row-a")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	releaseB, err := ring.Acquire(ctx, "row-b")
	require.NoError(t, err, "different key must be acquirable immediately")
	releaseB()
}

func TestAcquire_ReleaseAllowsNextHolder(t *testing.T) {
	ring := keyring.New()

	release, err := ring.Acquire(context.Background(), "row")
	require.NoError(t, err)
	release()
	release() // double release is a no-op

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	release2, err := ring.Acquire(ctx, "row")
	require.NoError(t, err)
	release2()
}
