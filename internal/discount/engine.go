package discount

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stitchkit/backend-workwear/internal/pricing"
)

var (
	// ErrCodeNotFound is returned when no code matches the supplied value.
	ErrCodeNotFound = errors.New("discount code not found")
	// ErrCodeInactive is returned when the code is used before its start date.
	ErrCodeInactive = errors.New("discount code not active yet")
	// ErrCodeExpired is returned when the code's expiry has passed.
	ErrCodeExpired = errors.New("discount code expired")
	// ErrMinimumSpendNotMet indicates the cart subtotal is below the code's
	// minimum spend. The wrapped message carries the shortfall.
	ErrMinimumSpendNotMet = errors.New("minimum spend not met")
	// ErrCategoryNotEligible indicates no cart line matches the code's
	// category restriction.
	ErrCategoryNotEligible = errors.New("no eligible items for this code")
	// ErrNotFirstOrder indicates a first-order-only code used by a returning
	// customer.
	ErrNotFirstOrder = errors.New("code is limited to first orders")
)

// Kind discriminates the two discount shapes.
type Kind string

// Discount kinds.
const (
	KindPercent     Kind = "percent"
	KindFixedAmount Kind = "fixed_amount"
)

// Code captures an issued promotion code. Codes are immutable once issued;
// only their active window moves them between states.
type Code struct {
	Code           string
	Kind           Kind
	Value          pricing.Money // fixed_amount kind, pence
	PercentBps     int32         // percent kind, basis points
	MinSpend       pricing.Money
	Categories     []string // empty means every category qualifies
	FirstOrderOnly bool
	StartsAt       *time.Time
	ExpiresAt      *time.Time
}

// CartView is the snapshot of cart state a code is validated against.
type CartView struct {
	Subtotal   pricing.Money
	Categories []string
}

// Context carries facts sourced outside the pricing core.
type Context struct {
	Now          time.Time
	IsFirstOrder bool
}

// Validate checks the code against the cart snapshot. Checks run in a fixed
// order and the first failure wins: active window, minimum spend, category
// eligibility, first-order restriction.
func (c Code) Validate(view CartView, ctx Context) error {
	if c.StartsAt != nil && ctx.Now.Before(*c.StartsAt) {
		return ErrCodeInactive
	}
	if c.ExpiresAt != nil && ctx.Now.After(*c.ExpiresAt) {
		return ErrCodeExpired
	}
	if view.Subtotal < c.MinSpend {
		shortfall := c.MinSpend - view.Subtotal
		return fmt.Errorf("spend %s more to use this code: %w", pricing.FormatGBP(shortfall), ErrMinimumSpendNotMet)
	}
	if len(c.Categories) > 0 && !intersects(c.Categories, view.Categories) {
		return ErrCategoryNotEligible
	}
	if c.FirstOrderOnly && !ctx.IsFirstOrder {
		return ErrNotFirstOrder
	}
	return nil
}

// Amount computes the discount for the given subtotal. The result never
// exceeds the subtotal and never goes negative.
func (c Code) Amount(subtotal pricing.Money) pricing.Money {
	if subtotal <= 0 {
		return 0
	}
	var amount pricing.Money
	switch c.Kind {
	case KindPercent:
		if c.PercentBps <= 0 {
			return 0
		}
		amount = subtotal * pricing.Money(c.PercentBps) / 10000
	case KindFixedAmount:
		amount = c.Value
	default:
		return 0
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// Applied is the resolved outcome attached to a cart.
type Applied struct {
	Code   string        `json:"code"`
	Amount pricing.Money `json:"amount"`
}

// Canonical normalises a raw code for case-insensitive matching.
func Canonical(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func intersects(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}
