package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/neertrack/internal/clients/s3"
	"github.com/aristath/neertrack/internal/config"
	"github.com/aristath/neertrack/internal/modules/analysis"
	"github.com/aristath/neertrack/internal/modules/commentary"
	"github.com/aristath/neertrack/internal/modules/dataset"
	"github.com/aristath/neertrack/internal/modules/tracking"
	trackinghandlers "github.com/aristath/neertrack/internal/modules/tracking/handlers"
	"github.com/aristath/neertrack/internal/server"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Initialize the data sources
// 2. Build the first snapshot
// 3. Initialize services
//
// Any error here is fatal: the service never starts without a snapshot.
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// Step 1: Data sources
	loader, err := InitializeLoader(ctx, container, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data sources: %w", err)
	}
	container.Loader = loader

	catalog, err := LoadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load commentary: %w", err)
	}
	container.Catalog = catalog

	// Step 2: First snapshot
	opts := analysis.Options{RollingWindow: cfg.RollingWindow}
	ds, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	snapshot, err := analysis.Build(ds, catalog, opts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis: %w", err)
	}
	container.Holder = analysis.NewHolder(snapshot)

	// Step 3: Services
	container.Metrics = server.NewMetrics(container.Holder)
	container.Reloader = analysis.NewReloader(loader, catalog, opts, container.Holder, container.Metrics, log)
	container.TrackingService = tracking.NewService(container.Holder, log)
	container.TrackingHandler = trackinghandlers.NewHandler(container.TrackingService, cfg.AllowedOrigins, log)

	log.Info().
		Str("snapshot_id", snapshot.ID).
		Msg("Dependency injection wiring completed successfully")

	return container, nil
}

// InitializeLoader resolves both sources, creating the S3 client only when
// a source needs it.
func InitializeLoader(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) (*dataset.Loader, error) {
	var downloader dataset.Downloader
	if cfg.UsesObjectStore() {
		client, err := s3.NewClient(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		container.S3Client = client
		downloader = client
	}

	weekly, err := dataset.ResolveSource(cfg.WeeklySource, downloader)
	if err != nil {
		return nil, fmt.Errorf("weekly source: %w", err)
	}
	levels, err := dataset.ResolveSource(cfg.LevelsSource, downloader)
	if err != nil {
		return nil, fmt.Errorf("levels source: %w", err)
	}

	return dataset.NewLoader(dataset.LoaderConfig{
		Weekly:      weekly,
		Levels:      levels,
		Sheet:       cfg.Sheet,
		WeeklyTable: cfg.WeeklyTable,
		LevelsTable: cfg.LevelsTable,
	}, log), nil
}

// LoadCatalog returns the commentary file named in cfg, or the embedded one.
func LoadCatalog(cfg *config.Config) (*commentary.Catalog, error) {
	if cfg.CommentaryFile != "" {
		return commentary.LoadFile(cfg.CommentaryFile)
	}
	return commentary.Default()
}
