package cli

import (
	"context"
	"log/slog"

	"github.com/eshaffer321/prorate/internal/api"
	"github.com/eshaffer321/prorate/internal/application/service"
	"github.com/eshaffer321/prorate/internal/infrastructure/config"
	"github.com/eshaffer321/prorate/internal/infrastructure/logging"
)

// Listener is the part of the API server RunServe drives.
type Listener interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// NewServer builds the API server from config.
func NewServer(cfg *config.Config, flags ServeFlags) (*api.Server, *slog.Logger, error) {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	svc, err := service.NewDiscountService(cfg.Allocator.Precision, logger.With("system", "allocator"))
	if err != nil {
		return nil, nil, err
	}

	apiCfg := api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
	}
	if flags.Port > 0 {
		apiCfg.Port = flags.Port
	}

	server, err := api.NewServer(apiCfg, svc, logger)
	if err != nil {
		return nil, nil, err
	}
	return server, logger, nil
}

// RunServe runs server until ctx is cancelled, then shuts it down within
// cfg.Server.ShutdownTimeout.
func RunServe(ctx context.Context, cfg *config.Config, server Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		// Start blocks until Shutdown is called
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return err
	}

	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
