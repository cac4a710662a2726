package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/eshaffer321/prorate/internal/application/service"
	"github.com/eshaffer321/prorate/internal/domain/allocator"
	"github.com/eshaffer321/prorate/internal/infrastructure/config"
	"github.com/eshaffer321/prorate/internal/infrastructure/logging"
)

// Exit codes for the prorate command.
const (
	ExitOK         = 0
	ExitAllocation = 1
	ExitUsage      = 2
)

// RunAllocate runs the prorate command and returns its exit code.
// The allocated bill goes to stdout; logs and the summary go to stderr.
func RunAllocate(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags, err := ParseAllocateFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		fmt.Fprintf(stderr, "prorate: %v\n", err)
		return ExitUsage
	}

	cfg, err := config.Resolve(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "prorate: config: %v\n", err)
		return ExitUsage
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerTo(stderr, loggingCfg).With("system", "cli")

	svc, err := service.NewDiscountService(cfg.Allocator.Precision, logger)
	if err != nil {
		fmt.Fprintf(stderr, "prorate: config: %v\n", err)
		return ExitUsage
	}

	bill, err := ReadBill(flags.Input, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "prorate: %v\n", err)
		return ExitUsage
	}

	precision := svc.DefaultPrecision()
	if p := flags.PrecisionOverride(); p != nil {
		precision = *p
	}

	result, err := svc.Allocate(ctx, bill, &precision)
	if err != nil {
		fmt.Fprintf(stderr, "prorate: %v\n", err)
		var cfgErr *allocator.ConfigurationError
		if errors.As(err, &cfgErr) {
			return ExitUsage
		}
		return ExitAllocation
	}

	if err := WriteBill(stdout, result); err != nil {
		fmt.Fprintf(stderr, "prorate: write: %v\n", err)
		return ExitAllocation
	}
	if flags.Verbose {
		PrintBreakdown(stderr, result)
	}
	PrintSummary(stderr, result, precision)
	return ExitOK
}
