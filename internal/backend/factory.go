package backend

import (
	"context"
	"fmt"

	"moneymap/internal/amqp"
	"moneymap/internal/events"
	"moneymap/internal/events/kafka"
	"moneymap/internal/log"
	"moneymap/internal/sheets"
	gsheet "moneymap/internal/sheets/google"
	"moneymap/internal/sheets/memory"
	"moneymap/internal/storage"
	memstore "moneymap/internal/storage/memory"
	"moneymap/internal/storage/postgres"
	"moneymap/internal/storage/redis"
)

// Factory opens backends and logs what it opened.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateStore opens the configured key-value store.
func (f *Factory) CreateStore(ctx context.Context, cfg Config) (*BackendResult, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	var (
		store storage.Store
		err   error
	)
	switch cfg.Type {
	case MemoryBackend:
		store = memstore.New()
	case SQLiteBackend:
		store, err = storage.NewSQLiteStore(cfg.SQLiteDBPath)
	case RedisBackend:
		store, err = redis.New(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case PostgresBackend:
		store, err = postgres.New(ctx, postgres.Config{
			DSN:             cfg.PostgresDSN,
			MaxConns:        cfg.PostgresMaxConns,
			MaxConnLifetime: cfg.PostgresMaxConnLifetime,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Type, err)
	}

	f.logger.Info("Initialized store", log.FieldBackend, cfg.Type.String())
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}

// CreatePublisher opens the configured broker publisher. A broker that
// cannot be reached degrades to events.Noop, as appends must not depend on
// the export pipeline.
func (f *Factory) CreatePublisher(cfg Config) events.Publisher {
	switch cfg.Events {
	case AMQPEvents:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without export", log.FieldError, err)
			return events.Noop{}
		}
		f.logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		return client
	case KafkaEvents:
		f.logger.Info("Initialized Kafka publisher", log.FieldTopic, cfg.KafkaTopic)
		return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, f.logger)
	default:
		return events.Noop{}
	}
}

// CreateConsumer opens the consumer side of the configured broker.
func (f *Factory) CreateConsumer(cfg Config) (events.Consumer, error) {
	switch cfg.Events {
	case AMQPEvents:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		return client, nil
	case KafkaEvents:
		return kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, f.logger), nil
	default:
		return nil, fmt.Errorf("events backend %q has no consumer", cfg.Events)
	}
}

// Exporter is what the export worker writes to and warms up from.
type Exporter interface {
	sheets.RecordExporter
	sheets.ExportedLister
}

// CreateExporter opens Google Sheets when a spreadsheet is configured and
// an in-memory exporter otherwise.
func (f *Factory) CreateExporter(ctx context.Context, cfg Config) (Exporter, error) {
	if !cfg.SheetsEnabled() {
		f.logger.Warn("No spreadsheet configured, exporting to memory")
		return memory.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		OAuthClientJSON:    cfg.GoogleOAuthClientJSON,
		OAuthClientFile:    cfg.GoogleOAuthClientFile,
		OAuthTokenJSON:     cfg.GoogleOAuthTokenJSON,
		OAuthTokenFile:     cfg.GoogleOAuthTokenFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, err
	}

	f.logger.Info("Initialized Google Sheets exporter", "sheet", cfg.GoogleSheetName)
	return client, nil
}
