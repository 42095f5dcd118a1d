package cmd

import (
	"context"
	"fmt"

	"forum-importer/core/config"
	"forum-importer/core/database"
	"forum-importer/core/logger"
	"forum-importer/core/reconcile"
	"forum-importer/core/storage"
	"forum-importer/feature/platform"
	"forum-importer/feature/zendesk/archive"
	"forum-importer/feature/zendesk/importer"
	"forum-importer/feature/zendesk/staging"

	"go.uber.org/zap"
)

// session holds everything one import command works with.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *importer.Service
}

// openSession loads the configuration, connects both databases, prepares
// their tables and, when withDump is set, opens the dump.
func openSession(ctx context.Context, withDump bool) (*session, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	l, _ = logger.WithRunID(l)

	stagingDB, err := database.Connect(cfg.Staging)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to staging database: %w", err)
	}
	targetDB, err := database.Connect(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	var reader archive.Reader
	if withDump {
		reader, err = openDump(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	feedback := reconcile.NewZapFeedback(l, cfg.Import.ProgressEvery)
	svc := importer.NewService(reader, staging.NewStore(stagingDB), platform.NewStore(targetDB), cfg.Import, feedback, l)
	if err := svc.Migrate(ctx); err != nil {
		return nil, err
	}

	return &session{cfg: cfg, logger: l, service: svc}, nil
}

func openDump(ctx context.Context, cfg *config.Config) (archive.Reader, error) {
	var client storage.Client
	if cfg.Import.Source == importer.SourceBucket {
		c, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		client = c
	}

	reader, err := importer.OpenArchive(ctx, cfg.Import, client, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	return reader, nil
}
