// Package backend selects and constructs the data backend: in-memory,
// SQLite or Google Sheets. The factory hands back the wired store plus
// the optional extras only some backends provide.
package backend

import (
	"context"
	"fmt"

	"finpulse/internal/config"
	"finpulse/internal/source"
)

// Backend is the unified store every backend must provide.
type Backend interface {
	source.TransactionReader
	source.TransactionWriter
	source.BudgetReader
}

// SnapshotStore persists serialized reports. Only the SQLite backend
// provides one.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, key string, payload []byte) error
	LatestSnapshot(ctx context.Context, key string) ([]byte, error)
}

// Publisher emits transaction change events.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, ref, category string) error
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result carries the backend instance and whatever optional
// collaborators the chosen type supports. Nil fields mean "not
// available on this backend".
type Result struct {
	Backend   Backend
	Snapshots SnapshotStore
	Publisher Publisher
	Cleanup   CleanupFunc
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Memory backend specific
	DataDirectory string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSheetName:     appConfig.GoogleSheetName,

		DataDirectory: "data",
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		// AMQP stays optional.
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data" when empty.
	}

	return nil
}
