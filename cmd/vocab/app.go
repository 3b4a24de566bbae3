package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vocabsheet/internal/backoff"
	"vocabsheet/internal/cache"
	"vocabsheet/internal/config"
	"vocabsheet/internal/lookup"
	"vocabsheet/internal/repository"
	"vocabsheet/internal/repository/gsheets"
	"vocabsheet/internal/repository/memory"
	"vocabsheet/internal/repository/postgres"
	"vocabsheet/internal/service"

	"go.uber.org/zap"
)

// Database connection retries, as for a container that starts before its database
const (
	dbMaxRetries = 30
	dbRetryDelay = 2 * time.Second
)

// app holds the wired services shared by all commands
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB

	users    repository.UserRepository
	table    *service.TableService
	dedup    *service.DedupCache
	enricher *service.Enricher
	vocab    *service.VocabService
	review   *service.ReviewService
	importer *service.Importer
	stats    *service.StatsService
}

func newLogger(level string) (*zap.Logger, error) {
	if debug || level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newApp loads configuration and wires the backend and services
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	backend, err := a.openBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	exec := backoff.New(cfg.Retry, backoff.IsRemoteTableTransient, logger)

	a.table = service.NewTableService(backend, cfg.WorksheetName, exec, logger)
	a.dedup = service.NewDedupCache(a.table, logger)
	a.review = service.NewReviewService(a.table, nil, logger)
	a.importer = service.NewImporter(a.table, a.dedup, logger)
	a.stats = service.NewStatsService(a.table, a.dedup, a.review, nil, logger)

	a.enricher, err = a.newEnricher(exec)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.vocab = service.NewVocabService(a.table, a.dedup, a.enricher, nil, logger)

	return a, nil
}

func (a *app) openBackend(ctx context.Context) (repository.SheetBackend, error) {
	switch a.cfg.Backend {
	case config.BackendPostgres:
		db, err := postgres.Connect(a.cfg.DSN(), dbMaxRetries, dbRetryDelay, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		a.logger.Info("Database connection established")

		if err := postgres.Migrate(db, "file://migrations", a.logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		a.users = postgres.NewUserRepo(db)
		return postgres.NewSheetRepo(db), nil

	default:
		backend, err := gsheets.New(ctx, a.cfg.ServiceAccountFile, a.cfg.SheetURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
		}
		a.users = memory.NewUserRepo()
		return backend, nil
	}
}

func (a *app) newEnricher(exec *backoff.Executor) (*service.Enricher, error) {
	lc := a.cfg.Lookup

	dir := ""
	if a.cfg.Cache.Enabled {
		dir = a.cfg.Cache.Dir
	}
	store, err := cache.New(dir, a.logger)
	if err != nil {
		return nil, err
	}

	dict := lookup.NewDictionaryClient(lc.DictionaryURL, lc.Timeout, lc.RatePerSecond, exec)
	datamuse := lookup.NewDatamuseClient(lc.DatamuseURL, lc.Timeout, lc.RatePerSecond, exec)

	var translator service.Translator
	if lc.TranslateTarget != "" {
		translator = lookup.NewGoogleTranslator(lc.TranslateURL, lc.TranslateTarget, lc.Timeout, lc.RatePerSecond, exec)
	}

	return service.NewEnricher(dict, datamuse, translator, store, a.logger), nil
}

// Close releases the database and flushes the logger
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}
