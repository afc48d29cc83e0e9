package bulk

import (
	"github.com/stitchkit/backend-workwear/internal/pricing"
)

// Tier is a quantity threshold that unlocks a bulk discount percentage.
type Tier struct {
	Label           string
	MinQuantity     int
	DiscountPercent int
}

// Ladder is an ordered list of tiers, strictly increasing in both threshold
// and percentage. Static configuration, never mutated at runtime.
type Ladder []Tier

// DefaultLadder mirrors the storefront's published bulk pricing bands.
var DefaultLadder = Ladder{
	{Label: "Starter", MinQuantity: 25, DiscountPercent: 5},
	{Label: "Bronze", MinQuantity: 50, DiscountPercent: 10},
	{Label: "Silver", MinQuantity: 100, DiscountPercent: 15},
	{Label: "Gold", MinQuantity: 250, DiscountPercent: 20},
	{Label: "Platinum", MinQuantity: 500, DiscountPercent: 25},
}

// StandardLabel names the no-discount band below the lowest threshold.
const StandardLabel = "Standard"

// Quote describes the outcome of pricing a quantity against the ladder.
type Quote struct {
	Tier            string        `json:"tier"`
	DiscountPercent int           `json:"discountPercent"`
	UnitPrice       pricing.Money `json:"unitPrice"`
	TotalPrice      pricing.Money `json:"totalPrice"`
	Savings         pricing.Money `json:"savings"`
}

// Match selects the highest tier whose threshold the quantity meets. Tiers are
// thresholds, not ranges: quantity 500 matches the 500+ band even though every
// lower band also matches.
func (l Ladder) Match(quantity int) (Tier, bool) {
	best := Tier{}
	found := false
	for _, t := range l {
		if quantity >= t.MinQuantity && (!found || t.MinQuantity > best.MinQuantity) {
			best = t
			found = true
		}
	}
	return best, found
}

// Quote computes per-unit and total pricing for the quantity. Below the lowest
// threshold the quote carries the Standard label with no discount.
func (l Ladder) Quote(basePrice pricing.Money, quantity int) Quote {
	if basePrice < 0 {
		basePrice = 0
	}
	if quantity < 0 {
		quantity = 0
	}
	tier, ok := l.Match(quantity)
	if !ok {
		return Quote{
			Tier:       StandardLabel,
			UnitPrice:  basePrice,
			TotalPrice: basePrice * pricing.Money(quantity),
		}
	}
	unit := basePrice * pricing.Money(100-tier.DiscountPercent) / 100
	return Quote{
		Tier:            tier.Label,
		DiscountPercent: tier.DiscountPercent,
		UnitPrice:       unit,
		TotalPrice:      unit * pricing.Money(quantity),
		Savings:         (basePrice - unit) * pricing.Money(quantity),
	}
}
