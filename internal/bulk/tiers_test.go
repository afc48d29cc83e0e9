package bulk

import "testing"

func TestQuoteBelowLowestThreshold(t *testing.T) {
	q := DefaultLadder.Quote(1_000, 10)
	if q.Tier != StandardLabel {
		t.Fatalf("expected Standard tier, got %s", q.Tier)
	}
	if q.DiscountPercent != 0 || q.Savings != 0 {
		t.Fatalf("expected no discount, got %+v", q)
	}
	if q.TotalPrice != 10_000 {
		t.Fatalf("expected total 10000, got %d", q.TotalPrice)
	}
}

func TestQuoteThresholdsNotRanges(t *testing.T) {
	// 499 sits inside the Gold band: it meets 250 but not 500.
	q := DefaultLadder.Quote(1_000, 499)
	if q.Tier != "Gold" || q.DiscountPercent != 20 {
		t.Fatalf("expected Gold 20%%, got %s %d%%", q.Tier, q.DiscountPercent)
	}

	q = DefaultLadder.Quote(1_000, 500)
	if q.Tier != "Platinum" || q.DiscountPercent != 25 {
		t.Fatalf("expected Platinum 25%%, got %s %d%%", q.Tier, q.DiscountPercent)
	}
}

func TestQuoteArithmetic(t *testing.T) {
	q := DefaultLadder.Quote(2_000, 100)
	if q.Tier != "Silver" {
		t.Fatalf("expected Silver, got %s", q.Tier)
	}
	if q.UnitPrice != 1_700 {
		t.Fatalf("expected unit price 1700, got %d", q.UnitPrice)
	}
	if q.TotalPrice != 170_000 {
		t.Fatalf("expected total 170000, got %d", q.TotalPrice)
	}
	if q.Savings != 30_000 {
		t.Fatalf("expected savings 30000, got %d", q.Savings)
	}
}

func TestDiscountMonotonicInQuantity(t *testing.T) {
	prev := 0
	for qty := 1; qty <= 600; qty++ {
		q := DefaultLadder.Quote(1_000, qty)
		if q.DiscountPercent < prev {
			t.Fatalf("discount decreased at qty %d: %d%% -> %d%%", qty, prev, q.DiscountPercent)
		}
		prev = q.DiscountPercent
	}
}
