package validator

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/eshaffer321/prorate/internal/domain/allocator"
)

// drawBill favours many equal lines and small discounts, where both drift
// corrections fire.
func drawBill(t *rapid.T) allocator.Bill {
	n := rapid.IntRange(1, 12).Draw(t, "items")
	equal := rapid.Bool().Draw(t, "equal_lines")
	first := rapid.Int64Range(100, 1_000_000).Draw(t, "first_cents")

	items := make([]allocator.LineItem, n)
	for i := range items {
		cents := first
		if !equal && i > 0 {
			cents = rapid.Int64Range(-5_000, 1_000_000).Draw(t, "cents")
		}
		id := strconv.Itoa(i + 1)
		items[i] = allocator.LineItem{ID: &id, GrandTotal: decimal.New(cents, -2).StringFixed(2)}
	}

	maxDiscount := int64(1_000_000)
	if rapid.Bool().Draw(t, "small_discount") {
		maxDiscount = 10
	}
	discount := rapid.Int64Range(0, maxDiscount).Draw(t, "discount_cents")
	return allocator.Bill{DiscountTotal: decimal.New(discount, -2).StringFixed(2), Items: items}
}

func TestProperty_AllocatorOutputValidates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bill := drawBill(t)
		precision := rapid.IntRange(0, 2).Draw(t, "precision")

		out, err := allocator.Allocate(bill, allocator.Options{Precision: allocator.Places(precision)})
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}

		if result := ValidateAllocation(*out); !result.Valid {
			t.Fatalf("allocated bill failed validation: %s", result.Reason)
		}
	})
}
