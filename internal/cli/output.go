package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/prorate/internal/domain/allocator"
)

// WriteBill writes the allocated bill as indented JSON
func WriteBill(w io.Writer, bill *allocator.Bill) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bill)
}

// PrintSummary prints a one-line allocation summary
func PrintSummary(w io.Writer, bill *allocator.Bill, precision int) {
	fmt.Fprintf(w, "Summary: Discount=%s Items=%d Precision=%d\n",
		bill.DiscountTotal,
		len(bill.Items),
		precision)
}

// PrintBreakdown prints each line's ratio and share
func PrintBreakdown(w io.Writer, bill *allocator.Bill) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for i, item := range bill.Items {
		id := "-"
		if item.ID != nil {
			id = *item.ID
		}
		fmt.Fprintf(w, "  #%d id=%s total=%s ratio=%s discount=%s\n",
			i, id, item.GrandTotal, item.Ratio, item.DiscountAmount)
	}
}
