// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/neertrack/internal/clients/s3"
	"github.com/aristath/neertrack/internal/modules/analysis"
	"github.com/aristath/neertrack/internal/modules/commentary"
	"github.com/aristath/neertrack/internal/modules/dataset"
	"github.com/aristath/neertrack/internal/modules/tracking"
	trackinghandlers "github.com/aristath/neertrack/internal/modules/tracking/handlers"
	"github.com/aristath/neertrack/internal/scheduler"
	"github.com/aristath/neertrack/internal/server"
)

// Container holds all dependencies for the application.
// It is created by Wire and is the single source of truth for service instances.
type Container struct {
	// Clients
	S3Client *s3.Client // nil when no source lives in S3

	// Data
	Loader   *dataset.Loader
	Catalog  *commentary.Catalog
	Holder   *analysis.Holder
	Reloader *analysis.Reloader

	// Services
	TrackingService *tracking.Service
	TrackingHandler *trackinghandlers.Handler
	Metrics         *server.Metrics
}

// JobInstances holds the scheduled jobs. A nil field means the job is disabled.
type JobInstances struct {
	ReloadSnapshot       *scheduler.ReloadSnapshotJob
	CheckSourceDatabases *scheduler.CheckSourceDatabasesJob
}
