package pricing

import "testing"

func TestComputeClampsDiscount(t *testing.T) {
	summary := Compute(5_000, 8_000, ShippingPolicy{})
	if summary.Discount != 5_000 {
		t.Fatalf("expected discount clamped to 5000, got %d", summary.Discount)
	}
	if summary.Total != 0 {
		t.Fatalf("expected zero total, got %d", summary.Total)
	}
}

func TestComputeNeverNegative(t *testing.T) {
	summary := Compute(-100, -50, ShippingPolicy{FlatFee: 495})
	if summary.Subtotal != 0 || summary.Discount != 0 {
		t.Fatalf("expected zeroed inputs, got %+v", summary)
	}
	if summary.Total != 495 {
		t.Fatalf("expected flat fee total, got %d", summary.Total)
	}
}

func TestShippingThresholdUsesDiscountedAmount(t *testing.T) {
	ship := ShippingPolicy{FreeOver: 10_000, FlatFee: 495}

	// Discount pulls the payable amount below the free-delivery threshold.
	summary := Compute(11_000, 2_000, ship)
	if summary.Shipping != 495 {
		t.Fatalf("expected flat fee when payable below threshold, got %d", summary.Shipping)
	}

	summary = Compute(13_000, 2_000, ship)
	if summary.Shipping != 0 {
		t.Fatalf("expected free shipping, got %d", summary.Shipping)
	}
	if summary.Total != 11_000 {
		t.Fatalf("expected total 11000, got %d", summary.Total)
	}
}

func TestFeeZeroFlat(t *testing.T) {
	if fee := (ShippingPolicy{FreeOver: 5_000}).Fee(100); fee != 0 {
		t.Fatalf("expected zero fee without a configured flat rate, got %d", fee)
	}
}
