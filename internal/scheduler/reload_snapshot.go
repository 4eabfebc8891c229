package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/neertrack/internal/modules/analysis"
)

// DefaultReloadTimeout bounds one scheduled reload.
const DefaultReloadTimeout = 5 * time.Minute

// SnapshotReloader rebuilds the published snapshot.
type SnapshotReloader interface {
	Reload(ctx context.Context) (*analysis.Context, error)
}

// ReloadSnapshotJob re-reads the data sources and swaps in a new snapshot
type ReloadSnapshotJob struct {
	log      zerolog.Logger
	reloader SnapshotReloader
	timeout  time.Duration
}

// NewReloadSnapshotJob creates a new ReloadSnapshotJob. A zero timeout uses
// DefaultReloadTimeout.
func NewReloadSnapshotJob(reloader SnapshotReloader, timeout time.Duration) *ReloadSnapshotJob {
	if timeout <= 0 {
		timeout = DefaultReloadTimeout
	}
	return &ReloadSnapshotJob{
		log:      zerolog.Nop(),
		reloader: reloader,
		timeout:  timeout,
	}
}

// SetLogger sets the logger for the job
func (j *ReloadSnapshotJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *ReloadSnapshotJob) Name() string {
	return "reload_snapshot"
}

// Run executes the reload. A failure leaves the current snapshot published.
func (j *ReloadSnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	next, err := j.reloader.Reload(ctx)
	if err != nil {
		return fmt.Errorf("snapshot reload failed: %w", err)
	}

	j.log.Info().
		Str("snapshot_id", next.ID).
		Int("weekly_rows", len(next.Dataset.Weekly)).
		Msg("Scheduled reload completed")
	return nil
}
