package dataset

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aristath/neertrack/internal/domain"
	testingpkg "github.com/aristath/neertrack/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const weeklyCSV = `Average for Week Ending,USD,EUR,JPY,CNY,MYR,IDR,HKD,Deviation CTSGSGD,Deviation GSSGSGD
2022-05-13,0.002,-0.001,0.003,0.0005,0.001,-0.002,0.0019,0.0004,-0.0003
2022-05-06,0.001,0.002,-0.001,0.0002,,0.001,0.0011,0.0002,0.0001
2022-05-20,0.003,0.001,0.002,-0.0004,0.002,0.001,0.0028,,0.0002
,0.001,0.001,0.001,0.001,0.001,0.001,0.001,0.001,0.001
2022-05-27,-0.001,0.0,0.001,0.0001,0.0,0.002,-0.0009,-0.0001,0.0005
`

const levelsCSV = `Average for Week Ending,Official,CTSGSGD,GSSGSGD
2022-05-06,100.0,100.0,100.0
2022-05-13,100.2,100.18,
garbage,1,1,1
2022-04-29,99.9,99.95,99.92
`

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestLoader_LoadCSV(t *testing.T) {
	loader := NewLoader(LoaderConfig{
		Weekly: memSource{name: "weekly.csv", data: []byte(weeklyCSV)},
		Levels: memSource{name: "levels.csv", data: []byte(levelsCSV)},
	}, testLogger())

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Weekly, 3)
	assert.Equal(t, 2, ds.DroppedRows, "missing date and missing deviation rows are dropped")
	assert.Equal(t, time.Date(2022, 5, 6, 0, 0, 0, 0, time.UTC), ds.Weekly[0].WeekEnding)
	assert.Equal(t, time.Date(2022, 5, 27, 0, 0, 0, 0, time.UTC), ds.Weekly[2].WeekEnding)

	first := ds.Weekly[0]
	assert.Equal(t, 0.0002, first.Deviation(domain.IndexCTSGSGD))
	assert.Equal(t, 0.0001, first.Deviation(domain.IndexGSSGSGD))
	assert.True(t, math.IsNaN(first.Return(domain.CurrencyMYR)), "missing return stays NaN")
	assert.False(t, first.HasCompleteReturns())
	assert.True(t, ds.Weekly[1].HasCompleteReturns())

	for _, r := range ds.Weekly {
		for _, idx := range domain.TrackedIndices() {
			assert.False(t, math.IsNaN(r.Deviation(idx)))
		}
	}

	require.Len(t, ds.Levels, 3)
	assert.Equal(t, 1, ds.SkippedLevel)
	assert.Equal(t, time.Date(2022, 4, 29, 0, 0, 0, 0, time.UTC), ds.Levels[0].WeekEnding)
	assert.Nil(t, ds.Levels[2].Level(domain.IndexGSSGSGD))
	require.NotNil(t, ds.Levels[2].Official)
	assert.Equal(t, 100.2, *ds.Levels[2].Official)

	assert.Equal(t, "weekly.csv", ds.WeeklySource)
	assert.Equal(t, "levels.csv", ds.LevelsSource)
}

func TestLoader_MissingColumn(t *testing.T) {
	broken := strings.Replace(weeklyCSV, "Deviation GSSGSGD", "Deviation Other", 1)
	loader := NewLoader(LoaderConfig{
		Weekly: memSource{name: "weekly.csv", data: []byte(broken)},
		Levels: memSource{name: "levels.csv", data: []byte(levelsCSV)},
	}, testLogger())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "Deviation GSSGSGD")
}

func TestLoader_EmptyAfterCleaning(t *testing.T) {
	header := strings.SplitN(weeklyCSV, "\n", 2)[0]
	loader := NewLoader(LoaderConfig{
		Weekly: memSource{name: "weekly.csv", data: []byte(header + "\n2022-05-06,1,1,1,1,1,1,1,,\n")},
		Levels: memSource{name: "levels.csv", data: []byte(levelsCSV)},
	}, testLogger())

	_, err := loader.Load(context.Background())
	assert.True(t, errors.Is(err, ErrEmptyDataset))
}

func TestLoader_UnreadableSource(t *testing.T) {
	loader := NewLoader(LoaderConfig{
		Weekly: memSource{name: "weekly.csv", err: errors.New("disk gone")},
		Levels: memSource{name: "levels.csv", data: []byte(levelsCSV)},
	}, testLogger())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	loader := NewLoader(LoaderConfig{
		Weekly: memSource{name: "weekly.json", data: []byte("{}")},
		Levels: memSource{name: "levels.csv", data: []byte(levelsCSV)},
	}, testLogger())

	_, err := loader.Load(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoader_LoadXLSX(t *testing.T) {
	header := []interface{}{}
	for _, c := range WeeklyColumns() {
		header = append(header, c)
	}
	weekly := workbook(t, [][]interface{}{
		header,
		{time.Date(2022, 5, 6, 0, 0, 0, 0, time.UTC), 0.001, 0.002, -0.001, 0.0002, 0.0007, 0.001, 0.0002, 0.0001},
		{"2022-05-13", 0.002, -0.001, 0.003, 0.0005, 0.001, -0.002, 0.0004, -0.0003},
	})
	levels := workbook(t, [][]interface{}{
		{"Average for Week Ending", "Official", "CTSGSGD", "GSSGSGD"},
		{time.Date(2022, 5, 6, 0, 0, 0, 0, time.UTC), 100.0, 100.1, 99.9},
	})

	loader := NewLoader(LoaderConfig{
		Weekly: memSource{name: "currency_merged.xlsx", data: weekly},
		Levels: memSource{name: "df.xlsx", data: levels},
	}, testLogger())

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Weekly, 2)
	assert.Equal(t, time.Date(2022, 5, 6, 0, 0, 0, 0, time.UTC), ds.Weekly[0].WeekEnding)
	assert.Equal(t, time.Date(2022, 5, 13, 0, 0, 0, 0, time.UTC), ds.Weekly[1].WeekEnding)
	assert.InDelta(t, 0.0007, ds.Weekly[0].Return(domain.CurrencyMYR), 1e-12)

	require.Len(t, ds.Levels, 1)
	require.NotNil(t, ds.Levels[0].Level(domain.IndexCTSGSGD))
	assert.InDelta(t, 100.1, *ds.Levels[0].Level(domain.IndexCTSGSGD), 1e-12)
}

func TestLoader_SQLiteRoundTrip(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "neer")
	defer cleanup()

	want := &Dataset{
		Weekly: testingpkg.NewWeeklyFixtures(12),
		Levels: testingpkg.NewLevelFixtures(12),
	}
	want.Weekly[3].Returns[2] = math.NaN()

	ctx := context.Background()
	require.NoError(t, WriteSQLite(ctx, db, want, "", ""))

	loader := NewLoader(LoaderConfig{
		Weekly: FileSource{Path: db.Path()},
		Levels: FileSource{Path: db.Path()},
	}, testLogger())

	got, err := loader.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got.Weekly, len(want.Weekly))
	for i := range want.Weekly {
		assert.Equal(t, want.Weekly[i].WeekEnding, got.Weekly[i].WeekEnding)
		assert.Equal(t, want.Weekly[i].Deviations, got.Weekly[i].Deviations)
	}
	assert.True(t, math.IsNaN(got.Weekly[3].Returns[2]))

	require.Len(t, got.Levels, len(want.Levels))
	assert.Nil(t, got.Levels[4].Level(domain.IndexGSSGSGD))
	assert.Equal(t, *want.Levels[7].Official, *got.Levels[7].Official)
}

func TestLoader_SQLiteMissingTable(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "neer")
	defer cleanup()

	loader := NewLoader(LoaderConfig{
		Weekly:      FileSource{Path: db.Path()},
		Levels:      FileSource{Path: db.Path()},
		WeeklyTable: "does_not_exist",
	}, testLogger())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}
