// Package backend builds the record store and the optional event publisher
// selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/usere2211-alt/finance-dashboard/internal/config"
	"github.com/usere2211-alt/finance-dashboard/internal/events"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
	"github.com/usere2211-alt/finance-dashboard/internal/services"
	"github.com/usere2211-alt/finance-dashboard/internal/store"
	"github.com/usere2211-alt/finance-dashboard/internal/store/csvstore"
	"github.com/usere2211-alt/finance-dashboard/internal/store/memory"
	"github.com/usere2211-alt/finance-dashboard/internal/store/sqlite"
)

// BackendType names a record store implementation.
type BackendType string

const (
	CSVBackend    BackendType = config.BackendCSV
	SQLiteBackend BackendType = config.BackendSQLite
	MemoryBackend BackendType = config.BackendMemory
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Factory creates stores and ledgers from configuration.
type Factory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// OpenStore opens the record store named by cfg.DataBackend.
func (f *Factory) OpenStore(cfg *config.Config) (store.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}
	bt := BackendType(cfg.DataBackend)
	if !bt.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch bt {
	case SQLiteBackend:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	default:
		st, err := csvstore.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize CSV store: %w", err)
		}
		f.logger.Info("Initialized CSV backend", "data_dir", cfg.DataDir)
		return st, nil
	}
}

// OpenPublisher connects the AMQP client when events are enabled. A broker
// that cannot be reached is logged and the app continues without events.
func (f *Factory) OpenPublisher(cfg *config.Config) services.Publisher {
	if !cfg.EventsEnabled() {
		return nil
	}
	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// NewLedger opens the store and publisher and wires them into a ledger.
func (f *Factory) NewLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*services.LedgerService, error) {
	st, err := f.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(ctx); err != nil {
		f.logger.WarnContext(ctx, "Store not ready at startup", applog.FieldError, err)
	}
	return services.NewLedgerService(st, f.OpenPublisher(cfg), logger), nil
}
