package discount

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubStore struct {
	codes map[string]Code
}

func (s *stubStore) GetByCode(ctx context.Context, code string) (Code, error) {
	c, ok := s.codes[code]
	if !ok {
		return Code{}, ErrCodeNotFound
	}
	return c, nil
}

func (s *stubStore) Create(ctx context.Context, code Code) (Code, error) { return code, nil }
func (s *stubStore) Update(ctx context.Context, code Code) (Code, error) { return code, nil }

func newService(codes ...Code) *Service {
	store := &stubStore{codes: map[string]Code{}}
	for _, c := range codes {
		store.codes[c.Code] = c
	}
	return &Service{Store: store, Now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }}
}

func TestResolveUnknownCode(t *testing.T) {
	svc := newService()
	_, err := svc.Resolve(context.Background(), "NOPE", CartView{Subtotal: 10_000}, ResolveContext{})
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	svc := newService(Code{Code: "SAVE10", Kind: KindPercent, PercentBps: 1000, MinSpend: 10_000})
	applied, err := svc.Resolve(context.Background(), " save10 ", CartView{Subtotal: 20_000}, ResolveContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied.Code != "SAVE10" || applied.Amount != 2_000 {
		t.Fatalf("expected SAVE10/£20, got %+v", applied)
	}
}

func TestResolveIdempotent(t *testing.T) {
	svc := newService(Code{Code: "SAVE10", Kind: KindPercent, PercentBps: 1000})
	view := CartView{Subtotal: 20_000}
	first, err := svc.Resolve(context.Background(), "SAVE10", view, ResolveContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Resolve(context.Background(), "SAVE10", view, ResolveContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical outcome, got %+v then %+v", first, second)
	}
}

func TestResolveFixedAmountClamps(t *testing.T) {
	svc := newService(Code{Code: "TENNER", Kind: KindFixedAmount, Value: 8_000})
	applied, err := svc.Resolve(context.Background(), "TENNER", CartView{Subtotal: 5_000}, ResolveContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied.Amount != 5_000 {
		t.Fatalf("expected clamp to subtotal, got %d", applied.Amount)
	}
}

func TestResolveRevalidatesEligibility(t *testing.T) {
	svc := newService(Code{Code: "POLO5", Kind: KindFixedAmount, Value: 500, Categories: []string{"Polo Shirts"}})
	eligible := CartView{Subtotal: 5_000, Categories: []string{"Polo Shirts"}}
	if _, err := svc.Resolve(context.Background(), "POLO5", eligible, ResolveContext{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Cart contents changed: the polo lines are gone.
	shrunk := CartView{Subtotal: 3_000, Categories: []string{"Safety Wear"}}
	_, err := svc.Resolve(context.Background(), "POLO5", shrunk, ResolveContext{})
	if !errors.Is(err, ErrCategoryNotEligible) {
		t.Fatalf("expected ErrCategoryNotEligible after mutation, got %v", err)
	}
}
