package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stitchkit/backend-workwear/internal/cart"
	"github.com/stitchkit/backend-workwear/internal/discount"
)

var (
	// ErrEmptyCart rejects checkout for a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrDiscountLapsed rejects checkout while an attached code no longer
	// qualifies. The shopper must remove the code or restore eligibility.
	ErrDiscountLapsed = errors.New("applied discount is no longer eligible")
)

// StatusConfirmed is the only status orders are created with.
const StatusConfirmed = "CONFIRMED"

// Addr is the delivery address captured on the order.
type Addr struct {
	ReceiverName string `json:"receiverName"`
	Phone        string `json:"phone"`
	PostalCode   string `json:"postalCode"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
}

// Input carries a checkout request.
type Input struct {
	CartID     string `json:"cartId"`
	CustomerID string `json:"customerId"`
	Address    Addr   `json:"address"`
}

// Output echoes the confirmed order back to the shopper.
type Output struct {
	OrderID string      `json:"orderId"`
	Status  string      `json:"status"`
	Pricing cart.Totals `json:"pricing"`
}

// Service confirms carts into orders. Totals are computed once at
// confirmation and stored with the order.
type Service struct {
	Store Store
	Carts *cart.Service
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IsFirstOrder reports whether the customer has no prior orders.
func (s *Service) IsFirstOrder(ctx context.Context, customerID string) (bool, error) {
	if s == nil || s.Store == nil {
		return false, errors.New("checkout service not configured")
	}
	n, err := s.Store.CountOrders(ctx, customerID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Create prices the cart one final time, persists the order with those exact
// figures, and discards the cart session.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Store == nil || s.Carts == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	c, err := s.Carts.Get(ctx, in.CartID)
	if err != nil {
		return Output{}, err
	}
	if len(c.Lines) == 0 {
		return Output{}, ErrEmptyCart
	}
	rctx := discount.ResolveContext{}
	if in.CustomerID != "" {
		first, err := s.IsFirstOrder(ctx, in.CustomerID)
		if err != nil {
			return Output{}, err
		}
		rctx.IsFirstOrder = first
	}
	totals, err := s.Carts.ComputeTotals(ctx, c, rctx)
	if err != nil {
		return Output{}, err
	}
	if totals.DiscountState == cart.DiscountStateNoLongerEligible {
		return Output{}, ErrDiscountLapsed
	}
	addr, err := json.Marshal(in.Address)
	if err != nil {
		return Output{}, err
	}
	order := Order{
		ID:            uuid.NewString(),
		CustomerID:    in.CustomerID,
		CartID:        c.ID,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Shipping:      totals.Shipping,
		Total:         totals.Total,
		DiscountCode:  totals.DiscountCode,
		Status:        StatusConfirmed,
		Lines:         c.Lines,
		AddressJSON:   addr,
		CreatedAtUnix: s.now().Unix(),
	}
	if err := s.Store.InsertOrder(ctx, order); err != nil {
		return Output{}, err
	}
	// The session is spent once the order exists. A failed delete leaves an
	// orphan cart that expires on its own.
	_ = s.Carts.Store.Delete(ctx, c.ID)
	return Output{OrderID: order.ID, Status: order.Status, Pricing: totals}, nil
}
