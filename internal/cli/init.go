// Package cli holds the start-up helpers shared by the binaries under cmd/
// and the moneymap command runner.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moneymap/internal/backend"
	"moneymap/internal/config"
	"moneymap/internal/events"
	"moneymap/internal/log"
	"moneymap/internal/storage"
)

// SetupLogger builds the process logger at the given level and installs it
// as the slog default. Logs go to stderr so command output stays clean.
func SetupLogger(level string, component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Backends is what the moneymap command needs to run: a store, a
// publisher for appended records and the resolved backend config.
type Backends struct {
	Store     storage.Store
	Publisher events.Publisher
	Config    backend.Config
}

// OpenBackends opens the configured store and publisher. Closing the
// LedgerService built on them releases both.
func OpenBackends(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Backends, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger)
	res, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return &Backends{
		Store:     res.Store,
		Publisher: factory.CreatePublisher(bcfg),
		Config:    bcfg,
	}, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs after cancellation, bounded by timeout. done closes when it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		if cleanup == nil {
			return
		}
		finished := make(chan struct{})
		go func() {
			cleanup()
			close(finished)
		}()
		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
