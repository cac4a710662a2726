package allocator

import (
	"math"
	"strconv"
)

// DefaultPrecision is used when Options.Precision is nil.
const DefaultPrecision = 2

// Options controls an allocation.
type Options struct {
	// Precision is the number of decimal places, one of 0, 1 or 2.
	// Nil selects DefaultPrecision.
	Precision *int
}

// Places returns a pointer to p for use in Options.
func Places(p int) *int {
	return &p
}

// ResolvePrecision returns the decimal places to round to.
func ResolvePrecision(opts Options) (int32, error) {
	if opts.Precision == nil {
		return DefaultPrecision, nil
	}
	p := *opts.Precision
	if p < 0 || p > 2 {
		return 0, &ConfigurationError{Option: "precision", Value: strconv.Itoa(p), Err: ErrInvalidPrecision}
	}
	return int32(p), nil
}

// PrecisionFromFloat converts a loosely typed precision value (query
// strings, JSON numbers) into an integer, rejecting non-finite and
// fractional input.
func PrecisionFromFloat(f float64) (int, error) {
	value := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, &ConfigurationError{Option: "precision", Value: value, Err: ErrInvalidPrecision}
	}
	if f < 0 || f > 2 {
		return 0, &ConfigurationError{Option: "precision", Value: value, Err: ErrInvalidPrecision}
	}
	return int(f), nil
}
