// Package validator checks bills that have already been allocated.
//
// A bill arriving from another system (or stored and replayed) can be
// verified before it is trusted: ratios must add up to exactly one and
// discount amounts to exactly the bill discount. Comparisons are exact;
// there is no rounding tolerance.
//
// Individual shares are not required to be non-negative. When rounding
// pushes the amounts over the discount, the tie-break line gives back the
// whole excess and can end up below zero.
package validator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/prorate/internal/domain/allocator"
)

// AllocationValidation contains the result of validating an allocated bill.
// Sums are fixed to the most decimal places found among their inputs.
type AllocationValidation struct {
	// Valid is true if the allocation is internally consistent
	Valid bool `json:"valid"`

	// RatioSum is the sum of all line ratios
	RatioSum string `json:"ratio_sum"`

	// AmountSum is the sum of all line discount amounts
	AmountSum string `json:"amount_sum"`

	// Discount is the bill discount the amounts should add up to
	Discount string `json:"discount"`

	// Difference is AmountSum minus Discount
	Difference string `json:"difference"`

	// Reason explains why validation failed (empty if valid)
	Reason string `json:"reason,omitempty"`
}

// ValidateAllocation checks an allocated bill.
//
// The validation passes if:
//
//	sum(ratio) == 1 and sum(amount) == discount
//
// or, for bills with nothing to allocate over, when every ratio and amount
// is zero.
func ValidateAllocation(bill allocator.Bill) *AllocationValidation {
	result := &AllocationValidation{Discount: strings.TrimSpace(bill.DiscountTotal)}

	discount, err := parse(bill.DiscountTotal)
	if err != nil {
		result.Reason = fmt.Sprintf("discount %q is not a number", bill.DiscountTotal)
		return result
	}

	var problems []string
	ratioSum, amountSum := decimal.Zero, decimal.Zero
	ratioPlaces, amountPlaces := int32(0), places(discount)
	for i, item := range bill.Items {
		ratio, err := parse(item.Ratio)
		if err != nil {
			problems = append(problems, fmt.Sprintf("item %d ratio %q is not a number", i, item.Ratio))
			continue
		}
		amt, err := parse(item.DiscountAmount)
		if err != nil {
			problems = append(problems, fmt.Sprintf("item %d discount %q is not a number", i, item.DiscountAmount))
			continue
		}
		ratioSum = ratioSum.Add(ratio)
		amountSum = amountSum.Add(amt)
		ratioPlaces = max(ratioPlaces, places(ratio))
		amountPlaces = max(amountPlaces, places(amt))
	}

	diff := amountSum.Sub(discount)
	result.RatioSum = ratioSum.StringFixed(ratioPlaces)
	result.AmountSum = amountSum.StringFixed(amountPlaces)
	result.Difference = diff.StringFixed(amountPlaces)

	unallocated := ratioSum.IsZero() && amountSum.IsZero()
	if !unallocated && !ratioSum.Equal(decimal.NewFromInt(1)) {
		problems = append(problems, fmt.Sprintf("ratios sum to %s, not 1", result.RatioSum))
	}
	if !unallocated && !diff.IsZero() {
		if diff.IsNegative() {
			problems = append(problems, fmt.Sprintf("discount amounts (%s) are %s short of the bill discount (%s)",
				result.AmountSum, diff.Neg().StringFixed(amountPlaces), discount.StringFixed(amountPlaces)))
		} else {
			problems = append(problems, fmt.Sprintf("discount amounts (%s) exceed the bill discount (%s) by %s",
				result.AmountSum, discount.StringFixed(amountPlaces), result.Difference))
		}
	}

	if len(problems) > 0 {
		result.Reason = strings.Join(problems, "; ")
		return result
	}
	result.Valid = true
	return result
}

// parse reads a decimal string; blank means zero.
func parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// places returns the number of digits after the decimal point in d's
// written form.
func places(d decimal.Decimal) int32 {
	if exp := d.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}
