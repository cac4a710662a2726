// Command api serves discount allocation over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/prorate/internal/cli"
	"github.com/eshaffer321/prorate/internal/infrastructure/config"
)

func main() {
	flags, err := cli.ParseServeFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(cli.ExitUsage)
	}

	cfg, err := config.Resolve(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "api: config: %v\n", err)
		os.Exit(cli.ExitUsage)
	}

	server, logger, err := cli.NewServer(cfg, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(cli.ExitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunServe(ctx, cfg, server, logger); err != nil {
		logger.Error("API server failed", "error", err)
		os.Exit(1)
	}
}
