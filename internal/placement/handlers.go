package placement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stitchkit/backend-workwear/internal/common"
)

// Handler serves decoration price quotes.
type Handler struct {
	Book PriceBook
}

type quotePayload struct {
	Selections      []Selection `json:"selections"`
	Application     string      `json:"application"`
	IsBundle        bool        `json:"isBundle"`
	BundleItemCount int         `json:"bundleItemCount"`
}

// Quote prices a set of decoration selections without touching any cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var payload quotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	book := h.Book
	if len(book) == 0 {
		book = DefaultBook
	}
	app := Application(payload.Application)
	if app == "" {
		app = Embroidery
	}
	breakdown, err := book.Price(payload.Selections, app, payload.IsBundle, payload.BundleItemCount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": breakdown})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicatePlacement):
		common.JSONError(w, http.StatusBadRequest, "DUPLICATE_PLACEMENT", err.Error(), nil)
	case errors.Is(err, ErrUnknownPosition), errors.Is(err, ErrUnknownApplication):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to price selections", nil)
	}
}
