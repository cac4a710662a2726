package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/prorate/internal/domain/allocator"
)

func allocated(discount string, shares ...[2]string) allocator.Bill {
	bill := allocator.Bill{DiscountTotal: discount}
	for _, s := range shares {
		bill.Items = append(bill.Items, allocator.LineItem{Ratio: s[0], DiscountAmount: s[1]})
	}
	return bill
}

func TestValidateAllocation_Valid(t *testing.T) {
	// 0.21 over 4800/5000/700 after drift correction
	bill := allocated("0.21", [2]string{"0.46", "0.10"}, [2]string{"0.47", "0.10"}, [2]string{"0.07", "0.01"})

	result := ValidateAllocation(bill)

	assert.True(t, result.Valid)
	assert.Equal(t, "1.00", result.RatioSum)
	assert.Equal(t, "0.21", result.AmountSum)
	assert.Equal(t, "0.00", result.Difference)
	assert.Empty(t, result.Reason)
}

func TestValidateAllocation_AllocatorOutput(t *testing.T) {
	one, two := "1", "2"
	bill := allocator.Bill{
		DiscountTotal: "0.05",
		Items: []allocator.LineItem{
			{ID: &one, GrandTotal: "1.00"},
			{ID: &two, GrandTotal: "1.00"},
		},
	}

	out, err := allocator.Allocate(bill, allocator.Options{})
	require.NoError(t, err)

	assert.True(t, ValidateAllocation(*out).Valid)
}

func TestValidateAllocation_NegativeTieBreakShare(t *testing.T) {
	// ten lines of 0.005 each round up to 0.10 against a 0.05 discount, so
	// the tie-break line gives back 0.05 and ends at -0.04
	bill := allocator.Bill{DiscountTotal: "0.05"}
	for i := 0; i < 10; i++ {
		bill.Items = append(bill.Items, allocator.LineItem{GrandTotal: "1.00"})
	}

	out, err := allocator.Allocate(bill, allocator.Options{})
	require.NoError(t, err)
	require.Equal(t, "-0.04", out.Items[0].DiscountAmount)

	result := ValidateAllocation(*out)

	assert.True(t, result.Valid, result.Reason)
	assert.Equal(t, "1.00", result.RatioSum)
	assert.Equal(t, "0.05", result.AmountSum)
}

func TestValidateAllocation_FixedPlaces(t *testing.T) {
	result := ValidateAllocation(allocated("1", [2]string{"0.5", "0.5"}, [2]string{"0.50", "0.5"}))

	assert.True(t, result.Valid)
	assert.Equal(t, "1.0", result.RatioSum)
	assert.Equal(t, "1.00", result.AmountSum)
	assert.Equal(t, "0.00", result.Difference)
}

func TestValidateAllocation_Unallocated(t *testing.T) {
	bill := allocated("5.00", [2]string{"0.00", "0.00"}, [2]string{"0.00", "0.00"})

	result := ValidateAllocation(bill)

	assert.True(t, result.Valid)
	assert.Equal(t, "-5.00", result.Difference)
}

func TestValidateAllocation_EmptyBill(t *testing.T) {
	assert.True(t, ValidateAllocation(allocator.Bill{DiscountTotal: "1.00"}).Valid)
}

func TestValidateAllocation_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		bill   allocator.Bill
		reason string
	}{
		{
			name:   "amounts short",
			bill:   allocated("0.21", [2]string{"0.46", "0.10"}, [2]string{"0.47", "0.10"}, [2]string{"0.07", "0.00"}),
			reason: "0.01 short",
		},
		{
			name:   "amounts over",
			bill:   allocated("0.05", [2]string{"0.50", "0.03"}, [2]string{"0.50", "0.03"}),
			reason: "exceed the bill discount (0.05) by 0.01",
		},
		{
			name:   "ratios off",
			bill:   allocated("0.10", [2]string{"0.33", "0.05"}, [2]string{"0.33", "0.05"}),
			reason: "ratios sum to 0.66, not 1",
		},
		{
			name:   "unparseable ratio",
			bill:   allocated("0.10", [2]string{"half", "0.10"}),
			reason: `item 0 ratio "half" is not a number`,
		},
		{
			name:   "unparseable discount",
			bill:   allocated("ten", [2]string{"1", "10"}),
			reason: `discount "ten" is not a number`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAllocation(tt.bill)

			assert.False(t, result.Valid)
			assert.Contains(t, result.Reason, tt.reason)
		})
	}
}
