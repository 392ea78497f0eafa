// Package backend builds the store, broker and exporter implementations
// selected by configuration.
package backend

import (
	"fmt"
	"time"

	"moneymap/internal/config"
	"moneymap/internal/storage"
)

// CleanupFunc releases whatever a factory call opened.
type CleanupFunc func() error

// BackendType names a storage.Store implementation.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	RedisBackend    BackendType = "redis"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, RedisBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// EventsType names an events.Publisher implementation.
type EventsType string

const (
	NoEvents    EventsType = "none"
	AMQPEvents  EventsType = "amqp"
	KafkaEvents EventsType = "kafka"
)

func (et EventsType) IsValid() bool {
	switch et {
	case NoEvents, AMQPEvents, KafkaEvents:
		return true
	default:
		return false
	}
}

// BackendResult is an opened store and the function that closes it.
type BackendResult struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN string

	Events       EventsType
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenJSON     string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	PostgresMaxConns        int32
	PostgresMaxConnLifetime time.Duration
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,

		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,

		PostgresDSN:             appConfig.PostgresDSN,
		PostgresMaxConns:        10,
		PostgresMaxConnLifetime: 30 * time.Minute,

		Events:       EventsType(appConfig.EventsBackend),
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		KafkaBrokers: appConfig.KafkaBrokers,
		KafkaTopic:   appConfig.KafkaTopic,
		KafkaGroupID: appConfig.KafkaGroupID,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleOAuthClientFile:    appConfig.GoogleOAuthClientFile,
		GoogleOAuthTokenFile:     appConfig.GoogleOAuthTokenFile,
		GoogleOAuthClientJSON:    appConfig.GoogleOAuthClientJSON,
		GoogleOAuthTokenJSON:     appConfig.GoogleOAuthTokenJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks only what the factories need to pick an implementation;
// config.Config.Validate covers the rest.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Events != "" && !c.Events.IsValid() {
		return fmt.Errorf("invalid events backend: %s", c.Events)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case RedisBackend:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis backend")
		}
	case PostgresBackend:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres DSN is required for postgres backend")
		}
	}

	switch c.Events {
	case AMQPEvents:
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP URL is required for amqp events")
		}
	case KafkaEvents:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("kafka brokers and topic are required for kafka events")
		}
	}
	return nil
}

// SheetsEnabled reports whether a spreadsheet is configured for export.
func (c Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}
