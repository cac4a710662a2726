package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/eshaffer321/prorate/internal/domain/allocator"
)

// sampleBill is a 0.21 discount spread over a three line receipt.
const sampleBill = `{
	"bill_no": "SAMPLE-1",
	"price_bill_discount": "0.21",
	"lists": [
		{"seq_number": "1", "name": "Rice cooker", "price_grand_total": "4800.00"},
		{"seq_number": "2", "name": "Blender", "price_grand_total": "5000.00"},
		{"seq_number": "3", "name": "Kettle", "price_grand_total": "700.00"}
	]
}`

// ReadBill loads a bill from path. "-" reads stdin and an empty path
// returns the built-in sample.
func ReadBill(path string, stdin io.Reader) (allocator.Bill, error) {
	var data []byte
	switch path {
	case "":
		data = []byte(sampleBill)
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return allocator.Bill{}, fmt.Errorf("read stdin: %w", err)
		}
		data = b
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return allocator.Bill{}, fmt.Errorf("read bill: %w", err)
		}
		data = b
	}

	var bill allocator.Bill
	if err := json.Unmarshal(data, &bill); err != nil {
		return allocator.Bill{}, fmt.Errorf("parse bill: %w", err)
	}
	return bill, nil
}
