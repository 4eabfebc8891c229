package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/neertrack/internal/config"
	"github.com/aristath/neertrack/internal/scheduler"
)

// RegisterJobs creates the background jobs enabled in cfg and adds them to sched.
func RegisterJobs(sched *scheduler.Scheduler, container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	instances := &JobInstances{}

	if cfg.ReloadSchedule != "" {
		job := scheduler.NewReloadSnapshotJob(container.Reloader, 0)
		job.SetLogger(log.With().Str("job", "reload_snapshot").Logger())
		if err := sched.AddJob(cfg.ReloadSchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register reload_snapshot job: %w", err)
		}
		instances.ReloadSnapshot = job
	}

	if paths := cfg.LocalSQLiteSources(); cfg.IntegritySchedule != "" && len(paths) > 0 {
		job := scheduler.NewCheckSourceDatabasesJob(paths)
		job.SetLogger(log.With().Str("job", "check_source_databases").Logger())
		if err := sched.AddJob(cfg.IntegritySchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register check_source_databases job: %w", err)
		}
		instances.CheckSourceDatabases = job
	}

	log.Info().
		Bool("reload", instances.ReloadSnapshot != nil).
		Bool("integrity_check", instances.CheckSourceDatabases != nil).
		Msg("Jobs registered")

	return instances, nil
}
