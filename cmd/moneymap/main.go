package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moneymap/internal/assistant"
	"moneymap/internal/cli"
	"moneymap/internal/log"
	"moneymap/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentCLI)

	if len(os.Args) < 2 {
		cli.Usage(os.Stderr)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := cli.OpenBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backends", log.FieldError, err)
		return 1
	}

	ledger := services.NewLedgerService(b.Store, b.Publisher, services.WithLogger(logger))
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Failed to close backends", log.FieldError, err)
		}
	}()
	community := services.NewCommunityService(b.Store, services.WithLogger(logger))
	asst := assistant.New(assistant.Config{
		APIKey: cfg.AssistantAPIKey,
		APIURL: cfg.AssistantAPIURL,
		Model:  cfg.AssistantModel,
	}, logger)

	app := cli.NewApp(ledger, community, asst, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "moneymap:", err)
		if errors.Is(err, cli.ErrUsage) {
			cli.Usage(os.Stderr)
			return 2
		}
		return 1
	}
	return 0
}
