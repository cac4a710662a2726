package allocator

import "github.com/shopspring/decimal"

// SelectTieBreakIndex returns the index of the item that absorbs rounding
// drift. The scan starts with index 0 as the candidate; a later item takes
// over when its ratio is strictly higher than the candidate's, or failing
// that when its grand total is strictly higher.
//
// Grand totals that do not parse compare as zero, so a non-participating
// item is never chosen over one with a positive grand total.
func SelectTieBreakIndex(items []LineItem) int {
	ratios := make([]decimal.Decimal, len(items))
	totals := make([]amount, len(items))
	for i, item := range items {
		ratios[i] = parseAmount(item.Ratio).orZero()
		totals[i] = parseAmount(item.GrandTotal)
	}
	return tieBreakIndex(ratios, totals)
}

func tieBreakIndex(ratios []decimal.Decimal, totals []amount) int {
	best := 0
	for i := 1; i < len(ratios); i++ {
		if ratios[i].GreaterThan(ratios[best]) {
			best = i
			continue
		}
		if totals[i].orZero().GreaterThan(totals[best].orZero()) {
			best = i
		}
	}
	return best
}
