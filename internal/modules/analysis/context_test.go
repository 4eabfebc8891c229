package analysis

import (
	"errors"
	"testing"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/commentary"
	"github.com/aristath/neertrack/internal/modules/dataset"
	"github.com/aristath/neertrack/internal/modules/statistics"
	testingpkg "github.com/aristath/neertrack/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func fixtureDataset(weeks int) *dataset.Dataset {
	return &dataset.Dataset{
		Weekly:       testingpkg.NewWeeklyFixtures(weeks),
		Levels:       testingpkg.NewLevelFixtures(weeks),
		WeeklySource: "fixture-weekly",
		LevelsSource: "fixture-levels",
	}
}

func defaultCatalog(t *testing.T) *commentary.Catalog {
	t.Helper()
	c, err := commentary.Default()
	require.NoError(t, err)
	return c
}

func TestBuild(t *testing.T) {
	ds := fixtureDataset(60)

	c, err := Build(ds, defaultCatalog(t), Options{}, testLogger())
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, DefaultRollingWindow, c.RollingWindow)

	for _, idx := range domain.TrackedIndices() {
		a := c.For(idx)
		assert.Equal(t, idx, a.Index)
		assert.Equal(t, statistics.OverallTrackingError(statistics.DeviationSeries(ds.Weekly, idx)), a.TrackingError)
		assert.GreaterOrEqual(t, a.TrackingError, 0.0)
		require.NotNil(t, a.Model)
		assert.Equal(t, idx.DeviationColumn(), a.Model.Dependent)
		assert.Len(t, a.Model.Coefficients, domain.BasketSize+1)
		assert.Equal(t, 60, a.Model.Observations)
	}

	cts := c.For(domain.IndexCTSGSGD)
	gss := c.For(domain.IndexGSSGSGD)
	assert.NotEqual(t, cts.TrackingError, gss.TrackingError)
	assert.NotEqual(t, cts.Model.Params(), gss.Model.Params())
}

func TestBuild_RepeatedBuildsAgree(t *testing.T) {
	catalog := defaultCatalog(t)

	first, err := Build(fixtureDataset(40), catalog, Options{RollingWindow: 8}, testLogger())
	require.NoError(t, err)
	second, err := Build(fixtureDataset(40), catalog, Options{RollingWindow: 8}, testLogger())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 8, first.RollingWindow)
	for _, idx := range domain.TrackedIndices() {
		assert.Equal(t, first.For(idx).Model.Params(), second.For(idx).Model.Params())
		assert.Equal(t, first.For(idx).TrackingError, second.For(idx).TrackingError)
	}
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(&dataset.Dataset{}, defaultCatalog(t), Options{}, testLogger())
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))

	_, err = Build(fixtureDataset(10), nil, Options{}, testLogger())
	assert.Error(t, err)
}

func TestBasketMatrix(t *testing.T) {
	records := testingpkg.NewWeeklyFixtures(3)
	m := BasketMatrix(records)

	require.Len(t, m, 3)
	require.Len(t, m[1], domain.BasketSize)
	assert.Equal(t, records[1].Return(domain.CurrencyJPY), m[1][2])

	m[0][0] = 99
	assert.NotEqual(t, 99.0, records[0].Returns[0], "rows are copies")

	assert.Equal(t, []string{"USD", "EUR", "JPY", "CNY", "MYR", "IDR"}, BasketNames())
}
