package allocator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPrecision is wrapped by ConfigurationError for precision values outside {0,1,2}.
	ErrInvalidPrecision = errors.New("precision must be 0, 1 or 2")

	// ErrInvalidDiscountTotal means the discount total is not a finite number.
	ErrInvalidDiscountTotal = errors.New("discount total must be a finite number")

	// ErrNegativeDiscountTotal means the discount total is below zero.
	ErrNegativeDiscountTotal = errors.New("discount total must be greater than or equal to 0")

	// ErrNoAllocatableItems means no line item has a grand total >= 0.
	ErrNoAllocatableItems = errors.New("at least one line item must have a grand total greater than or equal to 0")

	// ErrNegativeTotal means the combined positive grand total came out below zero.
	ErrNegativeTotal = errors.New("combined grand total must be greater than or equal to 0")

	// ErrNegativeRatioSum means the rounded ratios summed below zero.
	ErrNegativeRatioSum = errors.New("ratio sum must not be below 0")

	// ErrRatioDrift means the ratios still do not sum to 1 after correction.
	ErrRatioDrift = errors.New("ratios do not sum to 1 after drift correction")

	// ErrAmountDrift means the amounts still do not sum to the discount total after correction.
	ErrAmountDrift = errors.New("discount amounts do not match the discount total after drift correction")
)

// ConfigurationError reports a bad allocation option.
type ConfigurationError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid option %s=%s: %v", e.Option, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError reports input that cannot be allocated.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ReconciliationError is returned when a drift correction did not restore
// the expected sum. Correct decimal arithmetic never produces it, so it
// always points at a defect in the allocator.
type ReconciliationError struct {
	Stage Stage
	Index int
	Value string
	Err   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s reconciliation failed at item %d (adjusted to %s): %v", e.Stage, e.Index, e.Value, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }
