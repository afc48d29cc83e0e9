package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/stitchkit/backend-workwear/internal/discount"
)

func newTestRouter(t *testing.T, resolver *stubResolver) (*chi.Mux, *Service) {
	t.Helper()
	svc, _ := newTestService(resolver)
	h := &Handler{Svc: svc, Validate: validator.New()}

	r := chi.NewRouter()
	r.Post("/carts", h.Create)
	r.Route("/carts/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{itemId}", h.UpdateItem)
		r.Delete("/items/{itemId}", h.RemoveItem)
		r.Post("/apply-discount", h.ApplyDiscount)
		r.Delete("/discount", h.RemoveDiscount)
	})
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createCart(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/carts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data struct {
			CartID string `json:"cartId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.CartID)
	return resp.Data.CartID
}

func TestHandlerAddItemAndGet(t *testing.T) {
	r, _ := newTestRouter(t, &stubResolver{})
	id := createCart(t, r)

	rec := doJSON(t, r, http.MethodPost, "/carts/"+id+"/items", map[string]any{
		"productId": "polo-navy",
		"qty":       2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/carts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Lines   []Line `json:"lines"`
			Pricing Totals `json:"pricing"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Lines, 1)
	require.EqualValues(t, 2_400, resp.Data.Pricing.Subtotal)
	require.EqualValues(t, 2_895, resp.Data.Pricing.Total)
}

func TestHandlerAddItemValidation(t *testing.T) {
	r, _ := newTestRouter(t, &stubResolver{})
	id := createCart(t, r)

	rec := doJSON(t, r, http.MethodPost, "/carts/"+id+"/items", map[string]any{
		"productId": "polo-navy",
		"qty":       0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUnknownProduct(t *testing.T) {
	r, _ := newTestRouter(t, &stubResolver{})
	id := createCart(t, r)

	rec := doJSON(t, r, http.MethodPost, "/carts/"+id+"/items", map[string]any{
		"productId": "ghost",
		"qty":       1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "UNKNOWN_PRODUCT")
}

func TestHandlerMissingCart(t *testing.T) {
	r, _ := newTestRouter(t, &stubResolver{})
	rec := doJSON(t, r, http.MethodGet, "/carts/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerApplyDiscount(t *testing.T) {
	resolver := &stubResolver{applied: discount.Applied{Code: "SAVE10", Amount: 240}}
	r, _ := newTestRouter(t, resolver)
	id := createCart(t, r)
	doJSON(t, r, http.MethodPost, "/carts/"+id+"/items", map[string]any{"productId": "polo-navy", "qty": 2})

	rec := doJSON(t, r, http.MethodPost, "/carts/"+id+"/apply-discount", map[string]any{"code": "save10"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "SAVE10")

	rec = doJSON(t, r, http.MethodGet, "/carts/"+id, nil)
	var resp struct {
		Data struct {
			Pricing Totals `json:"pricing"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 240, resp.Data.Pricing.Discount)
	require.Equal(t, DiscountStateApplied, resp.Data.Pricing.DiscountState)
}

func TestHandlerApplyDiscountRejection(t *testing.T) {
	resolver := &stubResolver{err: discount.ErrMinimumSpendNotMet}
	r, _ := newTestRouter(t, resolver)
	id := createCart(t, r)

	rec := doJSON(t, r, http.MethodPost, "/carts/"+id+"/apply-discount", map[string]any{"code": "BIGSPEND"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "MINIMUM_SPEND_NOT_MET")
}

func TestHandlerApplyDiscountMissingCode(t *testing.T) {
	r, _ := newTestRouter(t, &stubResolver{})
	id := createCart(t, r)
	rec := doJSON(t, r, http.MethodPost, "/carts/"+id+"/apply-discount", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRemoveDiscount(t *testing.T) {
	resolver := &stubResolver{applied: discount.Applied{Code: "SAVE10", Amount: 240}}
	r, _ := newTestRouter(t, resolver)
	id := createCart(t, r)
	doJSON(t, r, http.MethodPost, "/carts/"+id+"/items", map[string]any{"productId": "polo-navy", "qty": 2})
	doJSON(t, r, http.MethodPost, "/carts/"+id+"/apply-discount", map[string]any{"code": "SAVE10"})

	rec := doJSON(t, r, http.MethodDelete, "/carts/"+id+"/discount", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Pricing Totals `json:"pricing"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, DiscountStateNone, resp.Data.Pricing.DiscountState)
	require.EqualValues(t, 0, resp.Data.Pricing.Discount)
}
