package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/catalog"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

var (
	resellerA = auth.Identity{ID: "reseller-a", Role: auth.RoleReseller}
	resellerB = auth.Identity{ID: "reseller-b", Role: auth.RoleReseller}
	manager   = auth.Identity{ID: "manager-1", Role: auth.RoleManager}
)

type allowAllClients struct{}

func (allowAllClients) Exists(context.Context, auth.Identity, string) error { return nil }

func newTestCatalog(quantities map[string]int) *catalog.Service {
	now := time.Now().UTC()
	var products []catalog.Product
	for id, qty := range quantities {
		products = append(products, catalog.Product{
			ID: id, Name: "Produit " + id, Category: catalog.CategoryAutre,
			Unit: "pièce", Price: 10.0, Quantity: qty, CreatedAt: now, UpdatedAt: now,
		})
	}
	return catalog.NewService(catalog.NewMemoryRepository(products, nil), nil, nil)
}

func newTestService(quantities map[string]int) (*Service, *catalog.Service) {
	cat := newTestCatalog(quantities)
	svc := NewService(NewMemoryRepository(nil), cat, allowAllClients{}, nil)
	return svc, cat
}

func TestCreateSnapshotsPrices(t *testing.T) {
	svc, _ := newTestService(map[string]int{"p1": 100})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, order.Status)
	require.Equal(t, resellerA.ID, order.ResellerID)
	require.Len(t, order.Lines, 1)
	require.Equal(t, 10.0, order.Lines[0].UnitPrice)
	require.Equal(t, 30.0, order.Total)
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.Create(context.Background(), resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "missing", Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSkipAheadTransitionRejected(t *testing.T) {
	svc, _ := newTestService(map[string]int{"p1": 100})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, manager, order.ID, OrderStatusOrdered)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	got, err := svc.Get(ctx, manager, order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, got.Status)
}

func TestFullWorkflowSequence(t *testing.T) {
	svc, cat := newTestService(map[string]int{"p1": 10})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)

	for _, next := range []OrderStatus{OrderStatusValidated, OrderStatusOrdered, OrderStatusDelivered, OrderStatusPaid} {
		order, err = svc.SetStatus(ctx, manager, order.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, order.Status)
	}

	// Terminal: nothing leaves payée.
	_, err = svc.SetStatus(ctx, manager, order.ID, OrderStatusPending)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	// Validation committed the stock.
	product, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 6, product.Quantity)

	movements, err := cat.Movements(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, -4, movements[0].Delta)
	require.Equal(t, catalog.ReasonOrderCommit, movements[0].Reason)
}

func TestValidationShortfallLeavesStatusAndStockUntouched(t *testing.T) {
	svc, cat := newTestService(map[string]int{"p1": 10, "p2": 2})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines: []OrderLineInput{
			{ProductID: "p1", Quantity: 5},
			{ProductID: "p2", Quantity: 3},
		},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, manager, order.ID, OrderStatusValidated)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	got, err := svc.Get(ctx, manager, order.ID)
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, got.Status)

	// The first line's draw was restored.
	p1, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 10, p1.Quantity)
	p2, err := cat.Get(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, 2, p2.Quantity)
}

func TestConcurrentValidationCommitsStockOnce(t *testing.T) {
	svc, cat := newTestService(map[string]int{"p1": 10})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SetStatus(ctx, manager, order.ID, OrderStatusValidated)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, lost int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, shared.ErrInvalidTransition):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, lost)

	// The losing call drew no stock and left no movement.
	product, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 6, product.Quantity)

	movements, err := cat.Movements(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, catalog.ReasonOrderCommit, movements[0].Reason)
}

func TestConcurrentValidateAndRefuseKeepOneOutcome(t *testing.T) {
	svc, cat := newTestService(map[string]int{"p1": 10})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 4}},
	})
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, next := range []OrderStatus{OrderStatusValidated, OrderStatusRefused} {
		wg.Add(1)
		go func(next OrderStatus) {
			defer wg.Done()
			_, err := svc.SetStatus(ctx, manager, order.ID, next)
			errs <- err
		}(next)
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, shared.ErrInvalidTransition)
		}
	}
	require.Equal(t, 1, succeeded)

	// Stock drawn matches the status that landed: committed for validée,
	// untouched for refusée.
	got, err := svc.Get(ctx, manager, order.ID)
	require.NoError(t, err)
	product, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	switch got.Status {
	case OrderStatusValidated:
		require.Equal(t, 6, product.Quantity)
	case OrderStatusRefused:
		require.Equal(t, 10, product.Quantity)
	default:
		t.Fatalf("unexpected status %q", got.Status)
	}
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	svc, _ := newTestService(map[string]int{"p1": 100})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, manager, order.ID, OrderStatusValidated)
	require.NoError(t, err)

	lines := []OrderLineInput{{ProductID: "p1", Quantity: 2}}
	_, err = svc.Update(ctx, resellerA, UpdateOrderInput{ID: order.ID, Lines: &lines})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestResellerScopingOnOrders(t *testing.T) {
	svc, _ := newTestService(map[string]int{"p1": 100})
	ctx := context.Background()

	orderA, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "ca",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, resellerB, CreateOrderInput{
		ClientID: "cb",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	listA, err := svc.List(ctx, resellerA, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, listA, 1)
	require.Equal(t, orderA.ID, listA[0].ID)

	_, err = svc.Get(ctx, resellerB, orderA.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	all, err := svc.List(ctx, manager, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestListFilterByStatus(t *testing.T) {
	svc, _ := newTestService(map[string]int{"p1": 100})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, manager, order.ID, OrderStatusRefused)
	require.NoError(t, err)

	status := OrderStatusRefused
	refused, err := svc.List(ctx, manager, OrderFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, refused, 1)

	pending := OrderStatusPending
	none, err := svc.List(ctx, manager, OrderFilters{Status: &pending})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSetStatusUnknownValueRejected(t *testing.T) {
	svc, _ := newTestService(map[string]int{"p1": 100})
	ctx := context.Background()

	order, err := svc.Create(ctx, resellerA, CreateOrderInput{
		ClientID: "c1",
		Lines:    []OrderLineInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, manager, order.ID, OrderStatus("expédiée"))
	require.ErrorIs(t, err, shared.ErrValidation)
}
