package charts

import (
	"math"
	"testing"
	"time"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/statistics"
	testingpkg "github.com/aristath/neertrack/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviationChart(t *testing.T) {
	records := testingpkg.NewWeeklyFixtures(5)

	chart := DeviationChart(records, domain.IndexGSSGSGD)
	assert.Equal(t, "Deviation for GSSGSGD", chart.Title)
	require.Len(t, chart.Series, 1)

	s := chart.Series[0]
	assert.Equal(t, "GSSGSGD Deviation", s.Name)
	assert.Equal(t, KindLine, s.Kind)
	require.Len(t, s.Points, 5)
	assert.Equal(t, "2022-05-06", s.Points[0].Time)
	assert.Equal(t, "2022-05-13", s.Points[1].Time)
	require.NotNil(t, s.Points[2].Value)
	assert.Equal(t, records[2].Deviation(domain.IndexGSSGSGD), *s.Points[2].Value)
}

func TestMonthlyTrackingErrorChart(t *testing.T) {
	months := []statistics.MonthlyAggregate{
		{Month: "2022-05", TrackingError: 0.0012, Observations: 4},
		{Month: "2022-07", TrackingError: 0.0008, Observations: 5},
	}

	chart := MonthlyTrackingErrorChart(months, domain.IndexCTSGSGD)
	assert.Equal(t, "Monthly Tracking Error for CTSGSGD", chart.Title)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, KindBar, chart.Series[0].Kind)
	require.Len(t, chart.Series[0].Points, 2, "one bar per month present")
	assert.Equal(t, "2022-07", chart.Series[0].Points[1].Time)
	assert.Equal(t, 0.0008, *chart.Series[0].Points[1].Value)
}

func TestRollingTrackingErrorChart(t *testing.T) {
	rolling := []statistics.RollingPoint{
		{WeekEnding: time.Date(2022, 5, 27, 0, 0, 0, 0, time.UTC), Value: 0.0004},
		{WeekEnding: time.Date(2022, 6, 3, 0, 0, 0, 0, time.UTC), Value: math.NaN()},
	}

	chart := RollingTrackingErrorChart(rolling, domain.IndexCTSGSGD, 4)
	assert.Equal(t, "4-Week Rolling Tracking Error for CTSGSGD", chart.Title)
	require.Len(t, chart.Series[0].Points, 2)
	assert.Nil(t, chart.Series[0].Points[1].Value)
}

func TestComparisonChart(t *testing.T) {
	levels := testingpkg.NewLevelFixtures(6)

	chart := ComparisonChart(levels, "Comparison")
	assert.Equal(t, "Index Value", chart.YAxisTitle)
	require.Len(t, chart.Series, 3)
	assert.Equal(t, "Official Index", chart.Series[0].Name)
	assert.Equal(t, "GSSGSGD Index", chart.Series[1].Name)
	assert.Equal(t, "CTSGSGD Index", chart.Series[2].Name)

	for _, s := range chart.Series {
		assert.Len(t, s.Points, 6)
	}
	assert.Nil(t, chart.Series[1].Points[4].Value, "missing level is a gap")
	assert.NotNil(t, chart.Series[2].Points[4].Value)
}
