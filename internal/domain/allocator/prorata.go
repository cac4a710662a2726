// Package allocator spreads a bill-level discount over the bill's lines.
//
// Each line with a positive grand total receives a share of the discount
// proportional to its grand total:
//
//	ratio  = round(grand_total / sum(positive grand totals))
//	amount = round(ratio * discount_total)
//
// Rounding leaves drift in both sums. One tie-break line absorbs it, first so
// that the ratios sum to exactly 1 and then so that the amounts sum to
// exactly the discount total. All arithmetic is fixed-point decimal.
package allocator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Stage names a drift-correction pass.
type Stage string

const (
	StageRatio  Stage = "ratio"
	StageAmount Stage = "amount"
)

// Adjustment records one drift correction.
type Adjustment struct {
	Stage Stage
	Index int
	// Delta is the signed amount added to the item.
	Delta string
	// Value is the item's ratio or amount after the correction.
	Value string
}

// Report is the allocated bill together with the corrections applied.
type Report struct {
	Bill          *Bill
	Precision     int32
	PositiveTotal string
	Adjustments   []Adjustment
}

var one = decimal.NewFromInt(1)

// amount is a parsed numeric field. ok is false when the text is not a
// finite number.
type amount struct {
	value decimal.Decimal
	ok    bool
}

func parseAmount(s string) amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return amount{value: decimal.Zero, ok: true}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return amount{}
	}
	return amount{value: d, ok: true}
}

func (a amount) orZero() decimal.Decimal {
	if !a.ok {
		return decimal.Zero
	}
	return a.value
}

// participates reports whether the line takes part in the allocation.
func (a amount) participates() bool {
	return a.ok && a.value.IsPositive()
}

// Allocate distributes bill.DiscountTotal across bill.Items. The input is
// not modified; the returned bill is a deep copy with Ratio and
// DiscountAmount set on every item and all numeric fields it writes fixed
// to the configured precision.
func Allocate(bill Bill, opts Options) (*Bill, error) {
	report, err := AllocateWithReport(bill, opts)
	if err != nil {
		return nil, err
	}
	return report.Bill, nil
}

// AllocateWithReport is Allocate that also returns the drift corrections.
func AllocateWithReport(bill Bill, opts Options) (*Report, error) {
	places, err := ResolvePrecision(opts)
	if err != nil {
		return nil, err
	}

	out := bill.Clone()
	report := &Report{Bill: &out, Precision: places}

	total := parseAmount(out.DiscountTotal)
	if !total.ok {
		return nil, &ValidationError{Field: keyDiscountTotal, Value: bill.DiscountTotal, Err: ErrInvalidDiscountTotal}
	}
	discount := total.value.Round(places)
	if discount.IsNegative() {
		return nil, &ValidationError{Field: keyDiscountTotal, Value: bill.DiscountTotal, Err: ErrNegativeDiscountTotal}
	}
	out.DiscountTotal = discount.StringFixed(places)

	zero := decimal.Zero.StringFixed(places)
	totals := make([]amount, len(out.Items))
	for i := range out.Items {
		item := &out.Items[i]
		if item.ID != nil && *item.ID == "" {
			item.ID = nil
		}
		item.Ratio = zero
		item.DiscountAmount = zero
		totals[i] = parseAmount(item.GrandTotal)
	}
	report.PositiveTotal = zero

	if len(out.Items) == 0 {
		return report, nil
	}
	if !hasAllocationBase(totals) {
		return nil, &ValidationError{Field: keyItems, Err: ErrNoAllocatableItems}
	}

	positiveTotal := decimal.Zero
	for _, t := range totals {
		if t.participates() {
			positiveTotal = positiveTotal.Add(t.value)
		}
	}
	positiveTotal = positiveTotal.Round(places)
	if positiveTotal.IsNegative() {
		return nil, &ValidationError{Field: keyGrandTotal, Value: positiveTotal.StringFixed(places), Err: ErrNegativeTotal}
	}
	report.PositiveTotal = positiveTotal.StringFixed(places)
	if positiveTotal.IsZero() {
		return report, nil
	}

	ratios := make([]decimal.Decimal, len(totals))
	for i, t := range totals {
		if t.participates() {
			ratios[i] = t.value.DivRound(positiveTotal, places)
		}
	}

	ratioSum := sum(ratios)
	if !ratioSum.Equal(one) {
		if ratioSum.IsNegative() {
			return nil, &ValidationError{Field: keyRatio, Value: ratioSum.StringFixed(places), Err: ErrNegativeRatioSum}
		}
		missing := one.Sub(ratioSum).Round(places + 1)
		idx := tieBreakIndex(ratios, totals)
		ratios[idx] = ratios[idx].Add(missing).Round(places)
		report.Adjustments = append(report.Adjustments, Adjustment{
			Stage: StageRatio,
			Index: idx,
			Delta: missing.String(),
			Value: ratios[idx].StringFixed(places),
		})

		if !sum(ratios).Equal(one) {
			return nil, &ReconciliationError{Stage: StageRatio, Index: idx, Value: ratios[idx].StringFixed(places), Err: ErrRatioDrift}
		}
	}

	amounts := make([]decimal.Decimal, len(ratios))
	for i, r := range ratios {
		amounts[i] = r.Mul(discount).Round(places)
	}

	amountSum := sum(amounts).Round(places)
	if !amountSum.Equal(discount) {
		idx := tieBreakIndex(ratios, totals)
		var delta decimal.Decimal
		if amountSum.LessThan(discount) {
			delta = discount.Sub(amountSum).Round(places + 1)
		} else {
			delta = amountSum.Sub(discount).Round(places).Neg()
		}
		amounts[idx] = amounts[idx].Add(delta).Round(places)
		report.Adjustments = append(report.Adjustments, Adjustment{
			Stage: StageAmount,
			Index: idx,
			Delta: delta.String(),
			Value: amounts[idx].StringFixed(places),
		})

		if !sum(amounts).Round(places).Equal(discount) {
			return nil, &ReconciliationError{Stage: StageAmount, Index: idx, Value: amounts[idx].StringFixed(places), Err: ErrAmountDrift}
		}
	}

	for i := range out.Items {
		out.Items[i].Ratio = ratios[i].StringFixed(places)
		out.Items[i].DiscountAmount = amounts[i].StringFixed(places)
	}
	return report, nil
}

// hasAllocationBase reports whether at least one grand total is a number >= 0.
func hasAllocationBase(totals []amount) bool {
	for _, t := range totals {
		if t.ok && !t.value.IsNegative() {
			return true
		}
	}
	return false
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
