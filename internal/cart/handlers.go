package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/stitchkit/backend-workwear/internal/common"
	"github.com/stitchkit/backend-workwear/internal/discount"
	"github.com/stitchkit/backend-workwear/internal/obs"
	"github.com/stitchkit/backend-workwear/internal/placement"
)

// FirstOrderChecker reports whether a customer has ordered before. First-order
// status is owned by the order system; the cart never infers it.
type FirstOrderChecker interface {
	IsFirstOrder(ctx context.Context, customerID string) (bool, error)
}

// Handler wires cart operations to HTTP.
type Handler struct {
	Svc         *Service
	FirstOrders FirstOrderChecker
	Validate    *validator.Validate
}

type customizationPayload struct {
	Selections      []placement.Selection `json:"selections"`
	Application     string                `json:"application" validate:"omitempty,oneof=embroidery print"`
	IsBundle        bool                  `json:"isBundle"`
	BundleItemCount int                   `json:"bundleItemCount" validate:"gte=0"`
}

type addItemPayload struct {
	ProductID     string                `json:"productId" validate:"required"`
	Qty           int                   `json:"qty" validate:"required,gte=1"`
	Customization *customizationPayload `json:"customization"`
}

// Create starts a new cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"cartId": c.ID}})
}

// Get returns cart contents with a freshly computed pricing view.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCart(w, r, c, http.StatusOK)
}

// AddItem adds or merges a cart line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ProductID, payload.Qty, payload.Customization.model())
	countOp("add_item", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCart(w, r, c, http.StatusOK)
}

// UpdateItem sets a line's quantity; zero or below removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), payload.Qty)
	countOp("update_item", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCart(w, r, c, http.StatusOK)
}

// RemoveItem deletes a cart line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	countOp("remove_item", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCart(w, r, c, http.StatusOK)
}

// Clear empties the cart, dropping any applied discount.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.ClearCart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCart(w, r, c, http.StatusOK)
}

// ApplyDiscount validates and attaches a promotion code.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		Code       string `json:"code"`
		CustomerID string `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if strings.TrimSpace(payload.Code) == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	rctx, err := h.resolveContext(r.Context(), payload.CustomerID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to resolve order history", nil)
		return
	}
	applied, err := h.Svc.ApplyDiscount(r.Context(), chi.URLParam(r, "id"), payload.Code, rctx)
	countOp("apply_discount", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": applied})
}

// RemoveDiscount detaches any applied code. Idempotent.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.RemoveDiscount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCart(w, r, c, http.StatusOK)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, c Cart, status int) {
	rctx, err := h.resolveContext(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to resolve order history", nil)
		return
	}
	totals, err := h.Svc.ComputeTotals(r.Context(), c, rctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	common.JSON(w, status, map[string]any{
		"data": map[string]any{
			"id":      c.ID,
			"lines":   lines,
			"pricing": totals,
		},
	})
}

func (h *Handler) resolveContext(ctx context.Context, customerID string) (discount.ResolveContext, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" || h.FirstOrders == nil {
		return discount.ResolveContext{}, nil
	}
	first, err := h.FirstOrders.IsFirstOrder(ctx, customerID)
	if err != nil {
		return discount.ResolveContext{}, err
	}
	return discount.ResolveContext{IsFirstOrder: first}, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, ErrUnknownProduct):
		common.JSONError(w, http.StatusNotFound, "UNKNOWN_PRODUCT", err.Error(), nil)
	case errors.Is(err, ErrOutOfStock):
		common.JSONError(w, http.StatusConflict, "OUT_OF_STOCK", err.Error(), nil)
	case errors.Is(err, placement.ErrDuplicatePlacement):
		common.JSONError(w, http.StatusBadRequest, "DUPLICATE_PLACEMENT", err.Error(), nil)
	case errors.Is(err, placement.ErrUnknownPosition), errors.Is(err, placement.ErrUnknownApplication):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			status := appErr.HTTPStatus
			if status == 0 {
				status = http.StatusBadRequest
			}
			common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		discount.WriteError(w, err)
	}
}

func countOp(operation string, err error) {
	if obs.CartOperationTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.CartOperationTotal.WithLabelValues(operation, result).Inc()
}

func (p *customizationPayload) model() *Customization {
	if p == nil || len(p.Selections) == 0 {
		return nil
	}
	return &Customization{
		Selections:      p.Selections,
		Application:     placement.Application(p.Application),
		IsBundle:        p.IsBundle,
		BundleItemCount: p.BundleItemCount,
	}
}
