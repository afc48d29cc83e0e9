package discount

import (
	"context"
	"errors"
	"time"

	"github.com/stitchkit/backend-workwear/internal/obs"
)

// ResolveContext carries order facts sourced outside the pricing core. The
// resolver never infers first-order status itself.
type ResolveContext struct {
	IsFirstOrder bool
}

// Service evaluates discount codes against cart snapshots.
type Service struct {
	Store Store
	Now   func() time.Time
}

// Resolve validates the raw code against the cart snapshot and computes the
// discount amount. Resolving the same code against an unchanged cart is
// idempotent; validation always runs in full so a code that stopped being
// eligible fails rather than surviving silently.
func (s *Service) Resolve(ctx context.Context, rawCode string, view CartView, rctx ResolveContext) (Applied, error) {
	if s == nil || s.Store == nil {
		return Applied{}, errors.New("discount service not configured")
	}
	canonical := Canonical(rawCode)
	if canonical == "" {
		countResolution("not_found")
		return Applied{}, ErrCodeNotFound
	}
	code, err := s.Store.GetByCode(ctx, canonical)
	if err != nil {
		countResolution("not_found")
		return Applied{}, err
	}
	if err := code.Validate(view, Context{Now: s.now(), IsFirstOrder: rctx.IsFirstOrder}); err != nil {
		countResolution("rejected")
		return Applied{}, err
	}
	countResolution("applied")
	return Applied{Code: code.Code, Amount: code.Amount(view.Subtotal)}, nil
}

func countResolution(result string) {
	if obs.DiscountResolutionTotal != nil {
		obs.DiscountResolutionTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
