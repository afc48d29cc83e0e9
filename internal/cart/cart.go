package cart

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stitchkit/backend-workwear/internal/discount"
	"github.com/stitchkit/backend-workwear/internal/placement"
	"github.com/stitchkit/backend-workwear/internal/pricing"
)

var (
	// ErrInvalidQuantity rejects an add with a quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrLineNotFound indicates the referenced line id is not in the cart.
	ErrLineNotFound = errors.New("cart line not found")
)

// Customization is the set of placements applied to one cart line, plus the
// bundle context it was configured under.
type Customization struct {
	Selections      []placement.Selection `json:"selections"`
	Application     placement.Application `json:"application,omitempty"`
	IsBundle        bool                  `json:"isBundle,omitempty"`
	BundleItemCount int                   `json:"bundleItemCount,omitempty"`
}

// Line is one product entry in a cart.
type Line struct {
	ID            string         `json:"id"`
	ProductID     string         `json:"productId"`
	Name          string         `json:"name"`
	Category      string         `json:"category"`
	UnitPrice     pricing.Money  `json:"unitPrice"`
	Qty           int            `json:"qty"`
	Customization *Customization `json:"customization,omitempty"`
}

// Cart is an explicit per-session value owned by the caller. Insertion order
// is preserved for display; pricing does not depend on it.
type Cart struct {
	ID           string    `json:"id"`
	Lines        []Line    `json:"lines"`
	DiscountCode string    `json:"discountCode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// New creates an empty cart with a fresh identifier.
func New(now time.Time) Cart {
	return Cart{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// AddLine appends the line or merges quantities when an existing line carries
// the same product and customization signature. State is untouched on error.
func (c *Cart) AddLine(line Line, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	sig := signature(line.ProductID, line.Customization)
	for i := range c.Lines {
		if signature(c.Lines[i].ProductID, c.Lines[i].Customization) == sig {
			c.Lines[i].Qty += qty
			return nil
		}
	}
	line.ID = uuid.NewString()
	line.Qty = qty
	c.Lines = append(c.Lines, line)
	return nil
}

// UpdateQuantity sets the quantity for a line. A quantity below one removes
// the line; the cart never holds a non-positive quantity.
func (c *Cart) UpdateQuantity(lineID string, qty int) error {
	if qty < 1 {
		return c.RemoveLine(lineID)
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Qty = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveLine deletes a line by id.
func (c *Cart) RemoveLine(lineID string) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Clear empties the cart and drops any applied discount.
func (c *Cart) Clear() {
	c.Lines = nil
	c.DiscountCode = ""
}

// Subtotal derives the pre-discount cart value: unit prices times quantities
// plus each line's customization surcharge. Recomputed from scratch on every
// call; nothing is cached across mutations.
func (c *Cart) Subtotal(book placement.PriceBook) (pricing.Money, error) {
	var subtotal pricing.Money
	for _, line := range c.Lines {
		if line.Qty <= 0 {
			continue
		}
		subtotal += line.UnitPrice * pricing.Money(line.Qty)
		surcharge, err := lineSurcharge(book, line.Customization)
		if err != nil {
			return 0, err
		}
		subtotal += surcharge
	}
	return subtotal, nil
}

// Categories collects the distinct category tags across cart lines.
func (c *Cart) Categories() []string {
	seen := make(map[string]struct{}, len(c.Lines))
	var out []string
	for _, line := range c.Lines {
		key := strings.ToLower(line.Category)
		if _, ok := seen[key]; ok || line.Category == "" {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line.Category)
	}
	return out
}

// View produces the snapshot discount validation runs against.
func (c *Cart) View(book placement.PriceBook) (discount.CartView, error) {
	subtotal, err := c.Subtotal(book)
	if err != nil {
		return discount.CartView{}, err
	}
	return discount.CartView{Subtotal: subtotal, Categories: c.Categories()}, nil
}

func lineSurcharge(book placement.PriceBook, cust *Customization) (pricing.Money, error) {
	if cust == nil || len(cust.Selections) == 0 {
		return 0, nil
	}
	bd, err := book.Price(cust.Selections, cust.Application, cust.IsBundle, cust.BundleItemCount)
	if err != nil {
		return 0, err
	}
	return bd.Total, nil
}

// signature identifies a mergeable line: same product, same customization.
func signature(productID string, cust *Customization) string {
	var sb strings.Builder
	sb.WriteString(productID)
	if cust == nil {
		return sb.String()
	}
	parts := make([]string, 0, len(cust.Selections))
	for _, sel := range cust.Selections {
		app := sel.Application
		if app == "" {
			app = cust.Application
		}
		parts = append(parts, string(sel.Position)+"/"+string(app))
	}
	sort.Strings(parts)
	sb.WriteString("|")
	sb.WriteString(strings.Join(parts, ","))
	if cust.IsBundle {
		fmt.Fprintf(&sb, "|bundle:%d", cust.BundleItemCount)
	}
	return sb.String()
}
