package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/config"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/database"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/extract"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/introspect"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/llm"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/logging"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/repositories"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/retry"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/services"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/spreadsheet"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/workers"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	changeLog := flag.String("change-log", "", "XLSX change log to process (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("catalog", logging.SanitizeConnectionString(cfg.Catalog.ConnectionString())),
		zap.String("datasource_type", cfg.Datasource.Type),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("ai_enabled", cfg.AI.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *changeLog, logger); err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, changeLogOverride string, logger *zap.Logger) error {
	sqlDB, err := database.OpenSQL(cfg.Catalog.ConnectionString())
	if err != nil {
		return err
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		_ = sqlDB.Close()
		return err
	}
	_ = sqlDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Catalog.ConnectionString(),
		MaxConnections: cfg.Catalog.MaxConnections,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	introspector, err := newIntrospector(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = introspector.Close() }()

	pipeline, err := buildPipeline(cfg, introspector, logger)
	if err != nil {
		return err
	}

	changeLogPath := cfg.ChangeLogPath
	if changeLogOverride != "" {
		changeLogPath = changeLogOverride
	}
	if changeLogPath == "" {
		return errMissingChangeLog
	}

	requests, err := spreadsheet.ReadChangeLog(changeLogPath)
	if err != nil {
		return err
	}

	pool := workers.NewPool(workers.PoolConfig{MaxConcurrent: cfg.Pipeline.MaxConcurrent}, logger)
	batch := services.NewBatchProcessor(pipeline, pool, logger)
	results, failed := batch.ProcessChangeLog(ctx, requests, func(completed, total int) {
		logger.Info("Batch progress", zap.Int("completed", completed), zap.Int("total", total))
	})

	catalog := repositories.NewCatalogRepository(db)
	saved := 0
	for _, result := range results {
		if err := catalog.Save(ctx, result.Dataset); err != nil {
			logger.Error("Failed to save catalog entry",
				zap.String("object", result.Record.QualifiedName()),
				zap.String("error", logging.SanitizeError(err)))
			continue
		}
		saved++
	}

	logger.Info("Change log documented",
		zap.Int("rows", len(requests)),
		zap.Int("saved", saved),
		zap.Int("failed", failed))
	return nil
}

func buildPipeline(cfg *config.Config, introspector introspect.SchemaIntrospector, logger *zap.Logger) (services.DocumentationPipeline, error) {
	extractor := extract.NewExtractor()
	if cfg.RulesPath != "" {
		rules, err := extract.LoadRules(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		extractor = extract.NewExtractorWithRules(rules)
	}

	enricher, err := newEnricher(cfg, logger)
	if err != nil {
		return nil, err
	}

	return services.NewDocumentationPipeline(
		services.NewPatternExtractionService(extractor, logger),
		services.NewSchemaValidator(introspector, logger),
		enricher,
		services.NewMergeAssembler(logger),
		introspector,
		logger,
	), nil
}

func newEnricher(cfg *config.Config, logger *zap.Logger) (services.AIEnricher, error) {
	if !cfg.AI.Enabled {
		return services.NewDisabledEnricher(logger), nil
	}

	client, err := llm.NewClientForProvider(&llm.ProviderConfig{
		Provider: cfg.AI.Provider,
		Endpoint: cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		return nil, err
	}

	retryCfg := retryConfigFrom(cfg)
	return services.NewAIEnricher(client, retryCfg, logger), nil
}

func newIntrospector(ctx context.Context, cfg *config.Config, logger *zap.Logger) (introspect.SchemaIntrospector, error) {
	switch cfg.Datasource.Type {
	case "mssql":
		return introspect.NewMSSQLIntrospector(ctx, cfg.Datasource.URL, logger)
	default:
		return introspect.NewPostgresIntrospector(ctx, cfg.Datasource.URL, logger)
	}
}

func retryConfigFrom(cfg *config.Config) *retry.Config {
	retryCfg := retry.DefaultConfig()
	if cfg.Pipeline.RetryMaxAttempts > 0 {
		retryCfg.MaxRetries = cfg.Pipeline.RetryMaxAttempts
	}
	if cfg.Pipeline.RetryInitialDelayMs > 0 {
		retryCfg.InitialDelay = time.Duration(cfg.Pipeline.RetryInitialDelayMs) * time.Millisecond
	}
	return retryCfg
}

var errMissingChangeLog = errors.New("no change log configured; set change_log_path or pass -change-log")
