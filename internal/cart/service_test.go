package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stitchkit/backend-workwear/internal/catalog"
	"github.com/stitchkit/backend-workwear/internal/discount"
	"github.com/stitchkit/backend-workwear/internal/placement"
	"github.com/stitchkit/backend-workwear/internal/pricing"
)

type memStore struct {
	carts map[string]Cart
}

func newMemStore() *memStore {
	return &memStore{carts: map[string]Cart{}}
}

func (m *memStore) Get(_ context.Context, id string) (Cart, error) {
	c, ok := m.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c, nil
}

func (m *memStore) Save(_ context.Context, c Cart) error {
	m.carts[c.ID] = c
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.carts, id)
	return nil
}

type stubCatalog struct {
	products map[string]catalog.Product
}

func (s stubCatalog) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type stubResolver struct {
	applied discount.Applied
	err     error
	calls   int
}

func (s *stubResolver) Resolve(_ context.Context, code string, _ discount.CartView, _ discount.ResolveContext) (discount.Applied, error) {
	s.calls++
	if s.err != nil {
		return discount.Applied{}, s.err
	}
	a := s.applied
	if a.Code == "" {
		a.Code = discount.Canonical(code)
	}
	return a, nil
}

func newTestService(resolver *stubResolver) (*Service, *memStore) {
	store := newMemStore()
	svc := &Service{
		Store: store,
		Catalog: stubCatalog{products: map[string]catalog.Product{
			"polo-navy": {ID: "polo-navy", Name: "Navy Polo", Category: "Polo Shirts", UnitPrice: 1_200, Stock: 40},
			"hivis-gone": {ID: "hivis-gone", Name: "Hi-Vis Vest", Category: "Safety Wear", UnitPrice: 900, Stock: 0},
		}},
		Discounts: resolver,
		Book:      placement.DefaultBook,
		Ship:      pricing.ShippingPolicy{FreeOver: 15_000, FlatFee: 495},
		Now:       func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
	return svc, store
}

func TestServiceAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService(&stubResolver{})
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, "ghost", 1, nil)
	require.True(t, errors.Is(err, ErrUnknownProduct))

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, got.Lines)
}

func TestServiceAddItemOutOfStock(t *testing.T) {
	svc, _ := newTestService(&stubResolver{})
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, "hivis-gone", 1, nil)
	require.True(t, errors.Is(err, ErrOutOfStock))
}

func TestServiceAddItemInvalidCustomizationLeavesCartUntouched(t *testing.T) {
	svc, _ := newTestService(&stubResolver{})
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	cust := &Customization{
		Selections:  []placement.Selection{{Position: "collar"}},
		Application: placement.Embroidery,
	}
	_, err = svc.AddItem(ctx, c.ID, "polo-navy", 1, cust)
	require.True(t, errors.Is(err, placement.ErrUnknownPosition))

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, got.Lines)
}

func TestServiceTotalsWithoutDiscount(t *testing.T) {
	svc, _ := newTestService(&stubResolver{})
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, c.ID, "polo-navy", 2, nil)
	require.NoError(t, err)

	totals, err := svc.ComputeTotals(ctx, c, discount.ResolveContext{})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(2_400), totals.Subtotal)
	require.Equal(t, pricing.Money(0), totals.Discount)
	require.Equal(t, pricing.Money(495), totals.Shipping)
	require.Equal(t, pricing.Money(2_895), totals.Total)
	require.Equal(t, DiscountStateNone, totals.DiscountState)
}

func TestServiceApplyDiscountAndTotals(t *testing.T) {
	resolver := &stubResolver{applied: discount.Applied{Code: "SAVE10", Amount: 240}}
	svc, _ := newTestService(resolver)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, c.ID, "polo-navy", 2, nil)
	require.NoError(t, err)

	applied, err := svc.ApplyDiscount(ctx, c.ID, "save10", discount.ResolveContext{})
	require.NoError(t, err)
	require.Equal(t, "SAVE10", applied.Code)

	c, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)
	totals, err := svc.ComputeTotals(ctx, c, discount.ResolveContext{})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(240), totals.Discount)
	require.Equal(t, DiscountStateApplied, totals.DiscountState)
	require.Equal(t, "SAVE10", totals.DiscountCode)
}

func TestServiceTotalsFlagLapsedDiscount(t *testing.T) {
	resolver := &stubResolver{applied: discount.Applied{Code: "SAVE10", Amount: 240}}
	svc, _ := newTestService(resolver)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, c.ID, "polo-navy", 2, nil)
	require.NoError(t, err)
	_, err = svc.ApplyDiscount(ctx, c.ID, "SAVE10", discount.ResolveContext{})
	require.NoError(t, err)

	// The cart changed under the code: every totals pass re-validates.
	resolver.err = discount.ErrMinimumSpendNotMet
	c, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)
	totals, err := svc.ComputeTotals(ctx, c, discount.ResolveContext{})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(0), totals.Discount)
	require.Equal(t, DiscountStateNoLongerEligible, totals.DiscountState)
	require.Equal(t, "SAVE10", totals.DiscountCode)
	require.Equal(t, pricing.Money(2_895), totals.Total)
}

func TestServiceRemoveDiscountNoop(t *testing.T) {
	svc, _ := newTestService(&stubResolver{})
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	got, err := svc.RemoveDiscount(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, got.DiscountCode)
}

func TestServiceFreeShippingOnDiscountedAmount(t *testing.T) {
	// Subtotal crosses the threshold only before the discount; shipping must
	// be charged on the discounted amount.
	resolver := &stubResolver{applied: discount.Applied{Code: "BULK", Amount: 1_000}}
	svc, _ := newTestService(resolver)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, c.ID, "polo-navy", 13, nil) // 15_600
	require.NoError(t, err)
	_, err = svc.ApplyDiscount(ctx, c.ID, "BULK", discount.ResolveContext{})
	require.NoError(t, err)

	c, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)
	totals, err := svc.ComputeTotals(ctx, c, discount.ResolveContext{})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(14_600), totals.Subtotal-totals.Discount)
	require.Equal(t, pricing.Money(495), totals.Shipping)
}
