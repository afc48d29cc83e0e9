package placement

import (
	"errors"
	"fmt"

	"github.com/stitchkit/backend-workwear/internal/pricing"
)

// Position is a location on a garment where a logo or text can be applied.
type Position string

// Garment positions supported by the customiser.
const (
	LeftChest   Position = "left_chest"
	RightChest  Position = "right_chest"
	LeftSleeve  Position = "left_sleeve"
	RightSleeve Position = "right_sleeve"
	LargeFront  Position = "large_front"
	LargeBack   Position = "large_back"
)

// Application is the technique used to apply a customisation.
type Application string

// Supported application techniques.
const (
	Embroidery Application = "embroidery"
	Print      Application = "print"
)

var (
	// ErrDuplicatePlacement is returned when a position appears more than once
	// in a selection set.
	ErrDuplicatePlacement = errors.New("placement position selected twice")
	// ErrUnknownPosition is returned for a position outside the fixed set.
	ErrUnknownPosition = errors.New("unknown placement position")
	// ErrUnknownApplication is returned for an unsupported application type.
	ErrUnknownApplication = errors.New("unknown application type")
)

// Selection pairs a garment position with an application technique.
type Selection struct {
	Position    Position    `json:"position"`
	Application Application `json:"application,omitempty"`
}

// PriceBook holds the base price for each (position, application) pair.
type PriceBook map[Position]map[Application]pricing.Money

// DefaultBook carries the storefront's published customisation prices.
var DefaultBook = PriceBook{
	LeftChest:   {Embroidery: 350, Print: 250},
	RightChest:  {Embroidery: 350, Print: 250},
	LeftSleeve:  {Embroidery: 300, Print: 225},
	RightSleeve: {Embroidery: 300, Print: 225},
	LargeFront:  {Embroidery: 899, Print: 650},
	LargeBack:   {Embroidery: 899, Print: 650},
}

// Item is the priced outcome for a single placement. PerItem spreads the price
// across a bundle for display purposes only; Price is what the line is charged.
type Item struct {
	Position    Position      `json:"position"`
	Application Application   `json:"application"`
	Price       pricing.Money `json:"price"`
	PerItem     pricing.Money `json:"perItem"`
}

// Breakdown is the full customisation surcharge for one cart line.
type Breakdown struct {
	Items []Item        `json:"items"`
	Total pricing.Money `json:"total"`
}

// Toggle implements the customiser's select semantics: picking a position that
// is already selected removes it, otherwise the selection is appended.
func Toggle(selections []Selection, sel Selection) []Selection {
	for i, existing := range selections {
		if existing.Position == sel.Position {
			return append(selections[:i:i], selections[i+1:]...)
		}
	}
	return append(selections, sel)
}

// Price computes the surcharge for a selection set. defaultApp fills in
// selections that do not carry their own application. When isBundle is set the
// left chest placement is free; other placements charge their full base price
// with an informational per-item split when the bundle spans multiple garments.
func (b PriceBook) Price(selections []Selection, defaultApp Application, isBundle bool, bundleItemCount int) (Breakdown, error) {
	seen := make(map[Position]struct{}, len(selections))
	out := Breakdown{Items: make([]Item, 0, len(selections))}
	for _, sel := range selections {
		if _, dup := seen[sel.Position]; dup {
			return Breakdown{}, fmt.Errorf("%s: %w", sel.Position, ErrDuplicatePlacement)
		}
		seen[sel.Position] = struct{}{}

		app := sel.Application
		if app == "" {
			app = defaultApp
		}
		price, err := b.base(sel.Position, app)
		if err != nil {
			return Breakdown{}, err
		}
		if isBundle && sel.Position == LeftChest {
			price = 0
		}
		perItem := price
		if isBundle && bundleItemCount > 1 && price > 0 {
			perItem = price / pricing.Money(bundleItemCount)
		}
		out.Items = append(out.Items, Item{
			Position:    sel.Position,
			Application: app,
			Price:       price,
			PerItem:     perItem,
		})
		out.Total += price
	}
	return out, nil
}

func (b PriceBook) base(pos Position, app Application) (pricing.Money, error) {
	byApp, ok := b[pos]
	if !ok {
		return 0, fmt.Errorf("%s: %w", pos, ErrUnknownPosition)
	}
	price, ok := byApp[app]
	if !ok {
		return 0, fmt.Errorf("%s: %w", app, ErrUnknownApplication)
	}
	return price, nil
}
