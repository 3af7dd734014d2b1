package cli

import (
	"context"
	"fmt"

	"github.com/ppiankov/tumblrsearch/internal/catalog"
	"github.com/ppiankov/tumblrsearch/internal/config"
	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/metrics"
	"github.com/ppiankov/tumblrsearch/internal/store"
	"github.com/ppiankov/tumblrsearch/internal/tumblr"
)

// app is the wiring shared by commands that search or serve feeds.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Metrics
	store   *store.Store
	catalog *catalog.Catalog
}

// loadApp loads config, opens the registry, syncs the feeds declared in
// config.yaml into it and builds the catalog.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	n, err := catalog.Sync(ctx, db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("feeds synced from config", logger.Int("count", n))

	m := metrics.New()
	opts, err := catalog.Options(cfg, log, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	client := tumblr.NewClient(cfg.Tumblr.Timeout.Duration, tumblr.WithLogger(log), tumblr.WithMetrics(m))

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		store:   db,
		catalog: catalog.New(db, cfg, client, opts...),
	}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.store.Close()
}

// openStore loads config and opens the registry without building a catalog.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, db, nil
}
