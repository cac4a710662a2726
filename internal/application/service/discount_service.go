package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eshaffer321/prorate/internal/domain/allocator"
	"github.com/eshaffer321/prorate/internal/domain/validator"
)

// DiscountService applies configured defaults and logging around the
// allocator. It holds no mutable state and is safe for concurrent use.
type DiscountService struct {
	precision int
	logger    *slog.Logger
}

// NewDiscountService creates a service whose calls fall back to
// defaultPrecision when the caller does not pass one.
func NewDiscountService(defaultPrecision int, logger *slog.Logger) (*DiscountService, error) {
	if _, err := allocator.ResolvePrecision(allocator.Options{Precision: &defaultPrecision}); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscountService{
		precision: defaultPrecision,
		logger:    logger,
	}, nil
}

// DefaultPrecision returns the precision used when none is requested.
func (s *DiscountService) DefaultPrecision() int {
	return s.precision
}

// Allocate distributes the bill's discount over its items. A nil precision
// selects the service default.
func (s *DiscountService) Allocate(ctx context.Context, bill allocator.Bill, precision *int) (*allocator.Bill, error) {
	if precision == nil {
		p := s.precision
		precision = &p
	}

	start := time.Now()
	report, err := allocator.AllocateWithReport(bill, allocator.Options{Precision: precision})
	if err != nil {
		s.logFailure(ctx, bill, *precision, err)
		return nil, err
	}

	for _, adj := range report.Adjustments {
		s.logger.DebugContext(ctx, "Corrected rounding drift",
			"stage", string(adj.Stage),
			"index", adj.Index,
			"delta", adj.Delta,
			"value", adj.Value)
	}

	s.logger.InfoContext(ctx, "Allocated bill discount",
		"discount", report.Bill.DiscountTotal,
		"items", len(report.Bill.Items),
		"positive_total", report.PositiveTotal,
		"precision", report.Precision,
		"adjustments", len(report.Adjustments),
		"duration", time.Since(start))

	return report.Bill, nil
}

// Verify checks a bill that was allocated elsewhere. It never modifies bill.
func (s *DiscountService) Verify(ctx context.Context, bill allocator.Bill) *validator.AllocationValidation {
	result := validator.ValidateAllocation(bill)
	if !result.Valid {
		s.logger.WarnContext(ctx, "Allocated bill failed verification",
			"discount", bill.DiscountTotal,
			"items", len(bill.Items),
			"reason", result.Reason)
		return result
	}
	s.logger.DebugContext(ctx, "Allocated bill verified",
		"discount", result.Discount,
		"items", len(bill.Items))
	return result
}

func (s *DiscountService) logFailure(ctx context.Context, bill allocator.Bill, precision int, err error) {
	attrs := []any{
		"discount", bill.DiscountTotal,
		"items", len(bill.Items),
		"precision", precision,
		"error", err,
	}

	var recErr *allocator.ReconciliationError
	if errors.As(err, &recErr) {
		s.logger.ErrorContext(ctx, "Allocation failed to reconcile", attrs...)
		return
	}
	s.logger.WarnContext(ctx, "Rejected allocation request", attrs...)
}
