// Package wire provides dependency injection for the redress application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"log/slog"
	"sync"

	"github.com/example/redress/internal/adapters/notify"
	"github.com/example/redress/internal/adapters/outbox"
	"github.com/example/redress/internal/adapters/sqlite"
	"github.com/example/redress/internal/app"
	"github.com/example/redress/internal/catalog"
	"github.com/example/redress/internal/config"
	"github.com/example/redress/internal/db"
	"github.com/example/redress/internal/ports/primary"
	"github.com/example/redress/internal/ports/secondary"
)

var (
	cfg              *config.Config
	strategyCatalog  catalog.Catalog
	selectionService primary.SelectionService
	executionService primary.ExecutionService
	schedulerService primary.SchedulerService
	once             sync.Once
)

// ConfigPath is set by the CLI before the first service access to point at
// an alternate config file. Empty means defaults plus environment.
var ConfigPath string

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// StrategyCatalog returns the singleton Catalog instance.
func StrategyCatalog() catalog.Catalog {
	once.Do(initServices)
	return strategyCatalog
}

// SelectionService returns the singleton SelectionService instance.
func SelectionService() primary.SelectionService {
	once.Do(initServices)
	return selectionService
}

// ExecutionService returns the singleton ExecutionService instance.
func ExecutionService() primary.ExecutionService {
	once.Do(initServices)
	return executionService
}

// SchedulerService returns the singleton SchedulerService instance.
func SchedulerService() primary.SchedulerService {
	once.Do(initServices)
	return schedulerService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load(ConfigPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	logger := slog.Default()
	clock := secondary.SystemClock{}

	// Repository adapters (secondary ports)
	store := sqlite.NewRecordStore(database)
	execRepo := sqlite.NewExecutionRepository(database)
	triggerRepo := sqlite.NewTriggerRepository(database)
	submitter := outbox.NewSubmitter(cfg.OutboxDir, clock)
	sink := notify.NewSlogSink(logger)

	// Domain components
	strategyCatalog = catalog.Builtin()
	predicates := app.NewPredicateRegistry(logger)
	predicates.ValidateCatalog(strategyCatalog)
	filter := app.NewEligibilityFilter(strategyCatalog, predicates)
	engine := app.NewScoringEngine()
	locks := app.NewExecutionLocks()

	// Services (primary ports implementation)
	selectionService = app.NewSelectionService(store, filter, engine, clock)
	executionService = app.NewExecutionService(execRepo, triggerRepo, store, strategyCatalog,
		predicates, selectionService, submitter, sink, clock, cfg, locks, logger)
	schedulerService = app.NewSchedulerService(triggerRepo, execRepo, selectionService,
		submitter, sink, clock, cfg, locks, logger)
}
