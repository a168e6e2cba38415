package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// Concurrent adjustments on one product must serialize: the final
// quantity equals the initial quantity plus the sum of the committed
// deltas, and no committed delta may have driven the total negative.
func TestConcurrentAdjustmentsNeverLoseUpdates(t *testing.T) {
	repo := NewMemoryRepository([]Product{testProduct("p1", 100)}, nil)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	committed := make(chan int, workers)

	for i := 0; i < workers; i++ {
		delta := -3
		if i%2 == 0 {
			delta = 2
		}
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			if _, _, err := repo.AdjustQuantity(ctx, "p1", d, ReasonAdjustment); err == nil {
				committed <- d
			}
		}(delta)
	}
	wg.Wait()
	close(committed)

	sum := 0
	for d := range committed {
		sum += d
	}

	product, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 100+sum, product.Quantity)
	require.GreaterOrEqual(t, product.Quantity, 0)

	movements, err := repo.ListMovements(ctx, "p1")
	require.NoError(t, err)
	ledgerSum := 0
	for _, m := range movements {
		ledgerSum += m.Delta
	}
	require.Equal(t, sum, ledgerSum)
}

func TestConcurrentDrainNeverGoesNegative(t *testing.T) {
	repo := NewMemoryRepository([]Product{testProduct("p1", 10)}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = repo.AdjustQuantity(ctx, "p1", -1, ReasonOrderCommit)
		}()
	}
	wg.Wait()

	product, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, product.Quantity)

	movements, err := repo.ListMovements(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, movements, 10)
}

func TestMemoryStoresAreIsolated(t *testing.T) {
	a := NewMemoryRepository([]Product{testProduct("p1", 1)}, nil)
	b := NewMemoryRepository(nil, nil)
	ctx := context.Background()

	_, err := a.Get(ctx, "p1")
	require.NoError(t, err)

	_, err = b.Get(ctx, "p1")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
