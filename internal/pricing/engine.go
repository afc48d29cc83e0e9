package pricing

// Money represents a monetary value stored in minor units (pence).
type Money = int64

// ShippingPolicy converts an order value into a delivery fee.
type ShippingPolicy struct {
	FreeOver Money
	FlatFee  Money
}

// Fee returns the shipping cost for the given order value. The free-delivery
// threshold is evaluated against the post-discount subtotal; callers must pass
// the discounted amount.
func (p ShippingPolicy) Fee(amount Money) Money {
	if p.FlatFee <= 0 {
		return 0
	}
	if p.FreeOver > 0 && amount >= p.FreeOver {
		return 0
	}
	return p.FlatFee
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money
	Discount Money
	Shipping Money
	Total    Money
}

// Compute calculates cart totals given the provided inputs. The discount is
// clamped to the subtotal so the total can reach zero but never go below it.
func Compute(subtotal, discount Money, ship ShippingPolicy) Summary {
	if subtotal < 0 {
		subtotal = 0
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	payable := subtotal - discount
	shipping := ship.Fee(payable)
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    payable + shipping,
	}
}
