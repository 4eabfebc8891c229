package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/neertrack/internal/config"
	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/dataset"
	"github.com/aristath/neertrack/internal/scheduler"
	testingpkg "github.com/aristath/neertrack/internal/testing"
)

func testConfig(t *testing.T, weeks int) *config.Config {
	t.Helper()
	weekly, levels := testingpkg.WriteFixtureCSVs(t, t.TempDir(), weeks)
	return &config.Config{
		Port:          8051,
		LogLevel:      "info",
		WeeklySource:  weekly,
		LevelsSource:  levels,
		RollingWindow: 4,
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t, 30)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)

	assert.Nil(t, container.S3Client, "no s3:// source, no client")
	assert.NotNil(t, container.Loader)
	assert.NotNil(t, container.Catalog)
	assert.NotNil(t, container.Reloader)
	assert.NotNil(t, container.TrackingService)
	assert.NotNil(t, container.TrackingHandler)
	assert.NotNil(t, container.Metrics)

	snap := container.Holder.Current()
	require.NotNil(t, snap)
	assert.Len(t, snap.Dataset.Weekly, 30)
	assert.Len(t, snap.Dataset.Levels, 30)

	view := container.TrackingService.Select(domain.IndexCTSGSGD)
	assert.Equal(t, snap.ID, view.SnapshotID)
}

func TestWire_Reload(t *testing.T) {
	cfg := testConfig(t, 30)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	first := container.Holder.Current()

	next, err := container.Reloader.Reload(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Same(t, next, container.Holder.Current())

	// repeated loads of the same data fit the same coefficients
	assert.Equal(t,
		first.For(domain.IndexGSSGSGD).Model.Params(),
		next.For(domain.IndexGSSGSGD).Model.Params())
}

func TestWire_Errors(t *testing.T) {
	t.Run("unreadable source", func(t *testing.T) {
		cfg := testConfig(t, 10)
		cfg.WeeklySource = filepath.Join(t.TempDir(), "missing.csv")

		_, err := Wire(context.Background(), cfg, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("missing column", func(t *testing.T) {
		cfg := testConfig(t, 10)
		require.NoError(t, os.WriteFile(cfg.WeeklySource, []byte("Average for Week Ending,USD\n2022-05-06,0.1\n"), 0644))

		_, err := Wire(context.Background(), cfg, zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, dataset.ErrMissingColumn)
	})

	t.Run("missing commentary file", func(t *testing.T) {
		cfg := testConfig(t, 10)
		cfg.CommentaryFile = filepath.Join(t.TempDir(), "commentary.yaml")

		_, err := Wire(context.Background(), cfg, zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestRegisterJobs(t *testing.T) {
	cfg := testConfig(t, 20)
	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	t.Run("nothing scheduled", func(t *testing.T) {
		sched := scheduler.New(zerolog.Nop())
		jobs, err := RegisterJobs(sched, container, cfg, zerolog.Nop())
		require.NoError(t, err)
		assert.Nil(t, jobs.ReloadSnapshot)
		assert.Nil(t, jobs.CheckSourceDatabases)
		assert.Equal(t, 0, sched.Entries())
	})

	t.Run("reload scheduled, integrity check skipped for CSV sources", func(t *testing.T) {
		withSchedules := *cfg
		withSchedules.ReloadSchedule = "@every 6h"
		withSchedules.IntegritySchedule = "@daily"

		sched := scheduler.New(zerolog.Nop())
		jobs, err := RegisterJobs(sched, container, &withSchedules, zerolog.Nop())
		require.NoError(t, err)
		assert.NotNil(t, jobs.ReloadSnapshot)
		assert.Nil(t, jobs.CheckSourceDatabases)
		assert.Equal(t, 1, sched.Entries())

		require.NoError(t, sched.RunNow(jobs.ReloadSnapshot))
	})

	t.Run("integrity check for SQLite sources", func(t *testing.T) {
		withDB := *cfg
		withDB.LevelsSource = filepath.Join(t.TempDir(), "levels.db")
		withDB.IntegritySchedule = "@daily"

		sched := scheduler.New(zerolog.Nop())
		jobs, err := RegisterJobs(sched, container, &withDB, zerolog.Nop())
		require.NoError(t, err)
		assert.NotNil(t, jobs.CheckSourceDatabases)
		assert.Equal(t, 1, sched.Entries())
	})
}
