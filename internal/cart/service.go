package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stitchkit/backend-workwear/internal/catalog"
	"github.com/stitchkit/backend-workwear/internal/discount"
	"github.com/stitchkit/backend-workwear/internal/placement"
	"github.com/stitchkit/backend-workwear/internal/pricing"
)

var (
	// ErrUnknownProduct rejects an add for a product id the catalog cannot
	// resolve. The cart is left untouched.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrOutOfStock rejects an add for a product with no stock.
	ErrOutOfStock = errors.New("product out of stock")
)

// DiscountState describes the standing of an applied code at totals time.
type DiscountState string

// Discount states surfaced on totals.
const (
	DiscountStateNone             DiscountState = "none"
	DiscountStateApplied          DiscountState = "applied"
	DiscountStateNoLongerEligible DiscountState = "no_longer_eligible"
)

// Totals is the priced view of a cart.
type Totals struct {
	Subtotal      pricing.Money `json:"subtotal"`
	Discount      pricing.Money `json:"discount"`
	Shipping      pricing.Money `json:"shipping"`
	Total         pricing.Money `json:"total"`
	DiscountCode  string        `json:"discountCode,omitempty"`
	DiscountState DiscountState `json:"discountState"`
}

// Catalog resolves product facts for line creation.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

// Resolver validates and prices discount codes.
type Resolver interface {
	Resolve(ctx context.Context, code string, view discount.CartView, rctx discount.ResolveContext) (discount.Applied, error)
}

// Service orchestrates cart state, catalog lookups and discount resolution.
type Service struct {
	Store     Store
	Catalog   Catalog
	Discounts Resolver
	Book      placement.PriceBook
	Ship      pricing.ShippingPolicy
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create starts an empty cart for a new session.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c := New(s.now())
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	return s.Store.Get(ctx, id)
}

// AddItem resolves the product from the catalog and adds it to the cart,
// merging with an existing line when product and customization match. The
// customization is priced up front so an invalid selection rejects the call
// before any state changes.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, qty int, cust *Customization) (Cart, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	product, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Cart{}, fmt.Errorf("%s: %w", productID, ErrUnknownProduct)
		}
		return Cart{}, err
	}
	if product.Stock <= 0 {
		return Cart{}, fmt.Errorf("%s: %w", productID, ErrOutOfStock)
	}
	if _, err := lineSurcharge(s.Book, cust); err != nil {
		return Cart{}, err
	}
	line := Line{
		ProductID:     product.ID,
		Name:          product.Name,
		Category:      product.Category,
		UnitPrice:     product.UnitPrice,
		Customization: cust,
	}
	if err := c.AddLine(line, qty); err != nil {
		return Cart{}, err
	}
	return s.save(ctx, c)
}

// UpdateQuantity sets a line's quantity; below one the line is removed.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, lineID string, qty int) (Cart, error) {
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if err := c.UpdateQuantity(lineID, qty); err != nil {
		return Cart{}, err
	}
	return s.save(ctx, c)
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, lineID string) (Cart, error) {
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if err := c.RemoveLine(lineID); err != nil {
		return Cart{}, err
	}
	return s.save(ctx, c)
}

// ClearCart empties the cart and drops any applied discount.
func (s *Service) ClearCart(ctx context.Context, cartID string) (Cart, error) {
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	c.Clear()
	return s.save(ctx, c)
}

// ApplyDiscount validates the code against the current cart and attaches it.
func (s *Service) ApplyDiscount(ctx context.Context, cartID, code string, rctx discount.ResolveContext) (discount.Applied, error) {
	if s == nil || s.Discounts == nil {
		return discount.Applied{}, errors.New("discount resolver not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return discount.Applied{}, err
	}
	view, err := c.View(s.Book)
	if err != nil {
		return discount.Applied{}, err
	}
	applied, err := s.Discounts.Resolve(ctx, code, view, rctx)
	if err != nil {
		return discount.Applied{}, err
	}
	c.DiscountCode = applied.Code
	if _, err := s.save(ctx, c); err != nil {
		return discount.Applied{}, err
	}
	return applied, nil
}

// RemoveDiscount detaches any applied code. Removing when none is applied is
// a no-op, not an error.
func (s *Service) RemoveDiscount(ctx context.Context, cartID string) (Cart, error) {
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if c.DiscountCode == "" {
		return c, nil
	}
	c.DiscountCode = ""
	return s.save(ctx, c)
}

// ComputeTotals derives the priced view of the cart. The applied discount is
// re-validated on every call: a code whose eligibility lapsed contributes
// nothing and is flagged no_longer_eligible rather than kept stale.
func (s *Service) ComputeTotals(ctx context.Context, c Cart, rctx discount.ResolveContext) (Totals, error) {
	subtotal, err := c.Subtotal(s.Book)
	if err != nil {
		return Totals{}, err
	}
	totals := Totals{DiscountState: DiscountStateNone}
	var amount pricing.Money
	if c.DiscountCode != "" {
		totals.DiscountCode = c.DiscountCode
		applied, err := s.Discounts.Resolve(ctx, c.DiscountCode,
			discount.CartView{Subtotal: subtotal, Categories: c.Categories()}, rctx)
		switch {
		case err == nil:
			amount = applied.Amount
			totals.DiscountState = DiscountStateApplied
		case isEligibilityError(err):
			totals.DiscountState = DiscountStateNoLongerEligible
		default:
			return Totals{}, err
		}
	}
	summary := pricing.Compute(subtotal, amount, s.Ship)
	totals.Subtotal = summary.Subtotal
	totals.Discount = summary.Discount
	totals.Shipping = summary.Shipping
	totals.Total = summary.Total
	return totals, nil
}

func (s *Service) save(ctx context.Context, c Cart) (Cart, error) {
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func isEligibilityError(err error) bool {
	return errors.Is(err, discount.ErrCodeNotFound) ||
		errors.Is(err, discount.ErrCodeInactive) ||
		errors.Is(err, discount.ErrCodeExpired) ||
		errors.Is(err, discount.ErrMinimumSpendNotMet) ||
		errors.Is(err, discount.ErrCategoryNotEligible) ||
		errors.Is(err, discount.ErrNotFirstOrder)
}
