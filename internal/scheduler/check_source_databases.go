package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/neertrack/internal/database"
)

// CheckSourceDatabasesJob verifies integrity of SQLite data sources
type CheckSourceDatabasesJob struct {
	log   zerolog.Logger
	paths []string
}

// NewCheckSourceDatabasesJob creates a job checking the SQLite files at paths
func NewCheckSourceDatabasesJob(paths []string) *CheckSourceDatabasesJob {
	return &CheckSourceDatabasesJob{
		log:   zerolog.Nop(),
		paths: paths,
	}
}

// SetLogger sets the logger for the job
func (j *CheckSourceDatabasesJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CheckSourceDatabasesJob) Name() string {
	return "check_source_databases"
}

// Run opens every source read-only and runs a quick check on it
func (j *CheckSourceDatabasesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, path := range j.paths {
		if err := j.check(ctx, path); err != nil {
			j.log.Error().
				Err(err).
				Str("path", path).
				Msg("Source database integrity check failed")
			return fmt.Errorf("source database %s failed its check: %w", path, err)
		}

		j.log.Debug().Str("path", path).Msg("Source database integrity OK")
	}

	j.log.Info().Int("databases", len(j.paths)).Msg("Source database integrity check passed")
	return nil
}

func (j *CheckSourceDatabasesJob) check(ctx context.Context, path string) error {
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileReadOnly,
		Name:    "source",
	})
	if err != nil {
		return err
	}
	defer db.Close()

	return db.QuickCheck(ctx)
}
