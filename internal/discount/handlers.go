package discount

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/stitchkit/backend-workwear/internal/common"
	"github.com/stitchkit/backend-workwear/internal/pricing"
)

// Handler exposes administrative discount code management endpoints.
type Handler struct {
	Store    Store
	Svc      *Service
	Validate *validator.Validate
}

type codePayload struct {
	Code           string     `json:"code" validate:"required"`
	Kind           string     `json:"kind" validate:"required,oneof=percent fixed_amount"`
	Value          int64      `json:"value" validate:"gte=0"`
	PercentBps     int32      `json:"percentBps" validate:"gte=0,lte=10000"`
	MinSpend       int64      `json:"minSpend" validate:"gte=0"`
	Categories     []string   `json:"categories"`
	FirstOrderOnly bool       `json:"firstOrderOnly"`
	StartsAt       *time.Time `json:"startsAt"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

type previewPayload struct {
	Code         string   `json:"code" validate:"required"`
	Subtotal     int64    `json:"subtotal" validate:"gte=0"`
	Categories   []string `json:"categories"`
	IsFirstOrder bool     `json:"isFirstOrder"`
}

// Create issues a new discount code.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount store not configured", nil)
		return
	}
	payload, ok := h.decodeCode(w, r)
	if !ok {
		return
	}
	created, err := h.Store.Create(r.Context(), payload)
	if err != nil {
		if IsUniqueViolation(err) {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "discount code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create discount code", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update mutates an existing code identified by its value.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount store not configured", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	payload, ok := h.decodeCode(w, r)
	if !ok {
		return
	}
	payload.Code = Canonical(code)
	updated, err := h.Store.Update(r.Context(), payload)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount code not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update discount code", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Preview performs a dry-run resolve against a supplied cart snapshot.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	var payload previewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	applied, err := h.Svc.Resolve(r.Context(), payload.Code,
		CartView{Subtotal: pricing.Money(payload.Subtotal), Categories: payload.Categories},
		ResolveContext{IsFirstOrder: payload.IsFirstOrder},
	)
	if err != nil {
		WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": applied})
}

func (h *Handler) decodeCode(w http.ResponseWriter, r *http.Request) (Code, bool) {
	var payload codePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return Code{}, false
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return Code{}, false
	}
	kind := Kind(payload.Kind)
	switch kind {
	case KindPercent:
		if payload.PercentBps <= 0 {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "percentBps must be positive for percent codes", nil)
			return Code{}, false
		}
	case KindFixedAmount:
		if payload.Value <= 0 {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "value must be positive for fixed amount codes", nil)
			return Code{}, false
		}
	}
	return Code{
		Code:           Canonical(payload.Code),
		Kind:           kind,
		Value:          pricing.Money(payload.Value),
		PercentBps:     payload.PercentBps,
		MinSpend:       pricing.Money(payload.MinSpend),
		Categories:     payload.Categories,
		FirstOrderOnly: payload.FirstOrderOnly,
		StartsAt:       payload.StartsAt,
		ExpiresAt:      payload.ExpiresAt,
	}, true
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

// WriteError maps discount resolution errors onto the canonical error shape.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCodeNotFound):
		common.JSONError(w, http.StatusNotFound, "DISCOUNT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrCodeExpired):
		common.JSONError(w, http.StatusUnprocessableEntity, "DISCOUNT_EXPIRED", err.Error(), nil)
	case errors.Is(err, ErrCodeInactive):
		common.JSONError(w, http.StatusUnprocessableEntity, "DISCOUNT_INACTIVE", err.Error(), nil)
	case errors.Is(err, ErrMinimumSpendNotMet):
		common.JSONError(w, http.StatusUnprocessableEntity, "MINIMUM_SPEND_NOT_MET", err.Error(), nil)
	case errors.Is(err, ErrCategoryNotEligible):
		common.JSONError(w, http.StatusUnprocessableEntity, "CATEGORY_NOT_ELIGIBLE", err.Error(), nil)
	case errors.Is(err, ErrNotFirstOrder):
		common.JSONError(w, http.StatusUnprocessableEntity, "NOT_FIRST_ORDER", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to resolve discount", nil)
	}
}
