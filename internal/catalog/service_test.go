package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

func newTestService(products ...Product) *Service {
	return NewService(NewMemoryRepository(products, nil), nil, nil)
}

func testProduct(id string, quantity int) Product {
	now := time.Now().UTC()
	return Product{
		ID:        id,
		Name:      "Clavier mécanique",
		Category:  CategoryInformatique,
		Unit:      "pièce",
		Price:     89.90,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reference := "REF-001"
	color := "noir"
	created, err := svc.Create(ctx, CreateProductInput{
		Reference: &reference,
		Name:      "Écran 27 pouces",
		Category:  CategoryInformatique,
		Unit:      "pièce",
		Color:     &color,
		Price:     249.0,
		Quantity:  12,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Écran 27 pouces", got.Name)
	require.Equal(t, &reference, got.Reference)
	require.Equal(t, &color, got.Color)
	require.Equal(t, 249.0, got.Price)
	require.Equal(t, 12, got.Quantity)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductInput{Name: "", Category: "jouets", Unit: "", Price: -1, Quantity: -2})
	require.ErrorIs(t, err, shared.ErrValidation)

	var validationErr *shared.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "name")
	require.Contains(t, validationErr.Fields, "category")
	require.Contains(t, validationErr.Fields, "price")
	require.Contains(t, validationErr.Fields, "quantity")
}

func TestAdjustQuantityInsufficientStock(t *testing.T) {
	svc := newTestService(testProduct("p1", 5))
	ctx := context.Background()

	_, _, err := svc.AdjustQuantity(ctx, AdjustmentInput{ProductID: "p1", Delta: -10})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	got, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, got.Quantity)

	movements, err := svc.Movements(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, movements)
}

func TestAdjustQuantitySequence(t *testing.T) {
	svc := newTestService(testProduct("p1", 10))
	ctx := context.Background()

	deltas := []int{-4, 8, -20, -14, 3}
	expected := 10
	for _, delta := range deltas {
		product, movement, err := svc.AdjustQuantity(ctx, AdjustmentInput{ProductID: "p1", Delta: delta, Reason: ReasonAdjustment})
		if expected+delta < 0 {
			require.ErrorIs(t, err, shared.ErrInsufficientStock)
			continue
		}
		require.NoError(t, err)
		expected += delta
		require.Equal(t, expected, product.Quantity)
		require.Equal(t, delta, movement.Delta)
	}

	got, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, expected, got.Quantity)

	// Only the committed deltas left a movement behind.
	movements, err := svc.Movements(ctx, "p1")
	require.NoError(t, err)
	sum := 0
	for _, m := range movements {
		sum += m.Delta
	}
	require.Equal(t, expected-10, sum)
}

func TestAdjustQuantityRejectsZeroDelta(t *testing.T) {
	svc := newTestService(testProduct("p1", 5))
	_, _, err := svc.AdjustQuantity(context.Background(), AdjustmentInput{ProductID: "p1", Delta: 0})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAdjustQuantityUnknownProduct(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.AdjustQuantity(context.Background(), AdjustmentInput{ProductID: "missing", Delta: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateIgnoresQuantity(t *testing.T) {
	svc := newTestService(testProduct("p1", 7))
	ctx := context.Background()

	name := "Clavier AZERTY"
	updated, err := svc.Update(ctx, UpdateProductInput{ID: "p1", Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Clavier AZERTY", updated.Name)
	require.Equal(t, 7, updated.Quantity)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := newTestService()
	name := "x"
	_, err := svc.Update(context.Background(), UpdateProductInput{ID: "missing", Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteNotRetryIdempotent(t *testing.T) {
	svc := newTestService(testProduct("p1", 0))
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "p1"))
	require.ErrorIs(t, svc.Delete(ctx, "p1"), shared.ErrNotFound)
}

func TestDeleteRefusedWhileMovementsExist(t *testing.T) {
	svc := newTestService(testProduct("p1", 5))
	ctx := context.Background()

	_, _, err := svc.AdjustQuantity(ctx, AdjustmentInput{ProductID: "p1", Delta: 3, Reason: ReasonRestock})
	require.NoError(t, err)

	err = svc.Delete(ctx, "p1")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Get(ctx, "p1")
	require.NoError(t, err)
}

type fakeIdempotencyGuard struct {
	seen map[string]bool
}

func (g *fakeIdempotencyGuard) CheckAndInsert(_ context.Context, key, _ string) error {
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	g.seen[key] = true
	return nil
}

func (g *fakeIdempotencyGuard) Delete(_ context.Context, key string) error {
	delete(g.seen, key)
	return nil
}

func TestAdjustQuantityDuplicateKeyIsConflict(t *testing.T) {
	svc := NewService(NewMemoryRepository([]Product{testProduct("p1", 10)}, nil), &fakeIdempotencyGuard{}, nil)
	ctx := context.Background()

	input := AdjustmentInput{ProductID: "p1", Delta: -3, Reason: ReasonAdjustment, IdempotencyKey: "retry-1"}
	product, _, err := svc.AdjustQuantity(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 7, product.Quantity)

	_, _, err = svc.AdjustQuantity(ctx, input)
	require.ErrorIs(t, err, shared.ErrDuplicate)

	// The retry was discarded without touching the ledger.
	got, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 7, got.Quantity)

	movements, err := svc.Movements(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, movements, 1)
}

func TestAdjustQuantityKeyReleasedOnFailure(t *testing.T) {
	svc := NewService(NewMemoryRepository([]Product{testProduct("p1", 2)}, nil), &fakeIdempotencyGuard{}, nil)
	ctx := context.Background()

	input := AdjustmentInput{ProductID: "p1", Delta: -5, IdempotencyKey: "retry-2"}
	_, _, err := svc.AdjustQuantity(ctx, input)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	// A failed adjustment did not consume the key; the corrected retry applies.
	input.Delta = -2
	product, _, err := svc.AdjustQuantity(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 0, product.Quantity)
}

func TestDeleteRefusedWhileOrderLinesReference(t *testing.T) {
	refs := func(_ context.Context, productID string) (bool, error) {
		return productID == "p1", nil
	}
	svc := NewService(NewMemoryRepository([]Product{testProduct("p1", 0), testProduct("p2", 0)}, nil), nil, refs)
	ctx := context.Background()

	err := svc.Delete(ctx, "p1")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Get(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "p2"))
}

func TestListFilters(t *testing.T) {
	base := time.Now().UTC()
	ref := "REF-42"
	blue := "bleu"
	p1 := testProduct("a", 1)
	p1.CreatedAt = base.Add(-2 * time.Hour)
	p2 := testProduct("b", 1)
	p2.Name = "Bureau réglable"
	p2.Category = CategoryMobilier
	p2.Color = &blue
	p2.CreatedAt = base.Add(-1 * time.Hour)
	p3 := testProduct("c", 1)
	p3.Reference = &ref
	p3.CreatedAt = base

	svc := newTestService(p1, p2, p3)
	ctx := context.Background()

	all, err := svc.List(ctx, ProductFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	require.Equal(t, "c", all[0].ID)
	require.Equal(t, "b", all[1].ID)
	require.Equal(t, "a", all[2].ID)

	category := CategoryMobilier
	filtered, err := svc.List(ctx, ProductFilters{Category: &category})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "b", filtered[0].ID)

	bySearch, err := svc.List(ctx, ProductFilters{Search: "ref-42"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	require.Equal(t, "c", bySearch[0].ID)

	color := "BLEU"
	byColor, err := svc.List(ctx, ProductFilters{Color: &color})
	require.NoError(t, err)
	require.Len(t, byColor, 1)
	require.Equal(t, "b", byColor[0].ID)
}

func TestListOrderingTieBrokenByID(t *testing.T) {
	at := time.Now().UTC()
	p1 := testProduct("aaa", 1)
	p1.CreatedAt = at
	p2 := testProduct("zzz", 1)
	p2.CreatedAt = at

	svc := newTestService(p1, p2)
	all, err := svc.List(context.Background(), ProductFilters{})
	require.NoError(t, err)
	require.Equal(t, "zzz", all[0].ID)
	require.Equal(t, "aaa", all[1].ID)
}
