package bulk

import (
	"net/http"
	"strconv"

	"github.com/stitchkit/backend-workwear/internal/common"
	"github.com/stitchkit/backend-workwear/internal/obs"
	"github.com/stitchkit/backend-workwear/internal/pricing"
)

// Handler serves volume-pricing quotes.
type Handler struct {
	Ladder Ladder
}

func (h *Handler) ladder() Ladder {
	if len(h.Ladder) == 0 {
		return DefaultLadder
	}
	return h.Ladder
}

// Quote prices a quantity at a unit price against the tier ladder. Both
// inputs arrive as query parameters; the response includes the matched tier
// and the full ladder so storefronts can render the next break.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	basePrice, err := strconv.ParseInt(r.URL.Query().Get("basePrice"), 10, 64)
	if err != nil || basePrice < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "basePrice must be a non-negative integer of pence", nil)
		return
	}
	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil || qty < 1 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be a positive integer", nil)
		return
	}
	quote := h.ladder().Quote(pricing.Money(basePrice), qty)
	if obs.BulkQuoteTotal != nil {
		obs.BulkQuoteTotal.WithLabelValues(quote.Tier).Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"quote":  quote,
			"ladder": h.ladder(),
		},
	})
}
