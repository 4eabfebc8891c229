package dataset

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultWeeklyTable and DefaultLevelsTable name the SQLite tables read when a
// source is a database file.
const (
	DefaultWeeklyTable = "weekly_records"
	DefaultLevelsTable = "index_levels"
)

// Dataset is the cleaned weekly table plus the full index-level table, both
// sorted by week-ending date.
type Dataset struct {
	Weekly       []domain.WeeklyRecord
	Levels       []domain.IndexLevelRecord
	WeeklySource string
	LevelsSource string
	DroppedRows  int // weekly rows removed by cleaning
	SkippedLevel int // level rows with an unreadable date
}

// LoaderConfig wires the two sources and their read options.
type LoaderConfig struct {
	Weekly      Source
	Levels      Source
	Sheet       string
	WeeklyTable string
	LevelsTable string
}

// Loader reads and cleans both tables.
type Loader struct {
	cfg LoaderConfig
	log zerolog.Logger
}

// NewLoader creates a loader. Empty table names fall back to the defaults.
func NewLoader(cfg LoaderConfig, log zerolog.Logger) *Loader {
	if cfg.WeeklyTable == "" {
		cfg.WeeklyTable = DefaultWeeklyTable
	}
	if cfg.LevelsTable == "" {
		cfg.LevelsTable = DefaultLevelsTable
	}
	return &Loader{
		cfg: cfg,
		log: log.With().Str("component", "dataset_loader").Logger(),
	}
}

// Load reads both sources. Any error means the dataset cannot be used.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if l.cfg.Weekly == nil || l.cfg.Levels == nil {
		return nil, fmt.Errorf("both weekly and level sources are required")
	}

	weeklyTable, err := ReadTable(ctx, l.cfg.Weekly, ReadOptions{Sheet: l.cfg.Sheet, Table: l.cfg.WeeklyTable})
	if err != nil {
		return nil, fmt.Errorf("failed to read weekly dataset: %w", err)
	}
	weekly, dropped, err := CleanWeekly(weeklyTable)
	if err != nil {
		return nil, fmt.Errorf("failed to clean weekly dataset: %w", err)
	}

	levelsTable, err := ReadTable(ctx, l.cfg.Levels, ReadOptions{Sheet: l.cfg.Sheet, Table: l.cfg.LevelsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to read index level dataset: %w", err)
	}
	levels, skipped, err := ParseLevels(levelsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index level dataset: %w", err)
	}

	l.log.Info().
		Str("weekly_source", l.cfg.Weekly.Name()).
		Str("levels_source", l.cfg.Levels.Name()).
		Int("weekly_rows", len(weekly)).
		Int("dropped_rows", dropped).
		Int("level_rows", len(levels)).
		Int("skipped_level_rows", skipped).
		Msg("Dataset loaded")

	return &Dataset{
		Weekly:       weekly,
		Levels:       levels,
		WeeklySource: l.cfg.Weekly.Name(),
		LevelsSource: l.cfg.Levels.Name(),
		DroppedRows:  dropped,
		SkippedLevel: skipped,
	}, nil
}

// WeeklyColumns lists the headers the weekly table must carry.
func WeeklyColumns() []string {
	cols := []string{domain.ColumnWeekEnding}
	for _, c := range domain.RegressionBasket {
		cols = append(cols, string(c))
	}
	for _, idx := range domain.TrackedIndices() {
		cols = append(cols, idx.DeviationColumn())
	}
	return cols
}

// LevelColumns lists the headers the index level table must carry.
func LevelColumns() []string {
	cols := []string{domain.ColumnWeekEnding, domain.ColumnOfficial}
	for _, idx := range domain.TrackedIndices() {
		cols = append(cols, idx.LevelColumn())
	}
	return cols
}

// CleanWeekly converts the weekly table into records, dropping rows with a
// missing date or a missing deviation for either tracked index. Missing
// currency returns stay as NaN. Returns the records sorted by date and the
// number of dropped rows.
func CleanWeekly(t *Table) ([]domain.WeeklyRecord, int, error) {
	pos, err := t.Require(WeeklyColumns()...)
	if err != nil {
		return nil, 0, err
	}
	datePos := pos[0]
	returnPos := pos[1 : 1+domain.BasketSize]
	devPos := pos[1+domain.BasketSize:]

	records := make([]domain.WeeklyRecord, 0, len(t.Rows))
	dropped := 0
rows:
	for _, row := range t.Rows {
		week, ok := parseDate(t.Cell(row, datePos))
		if !ok {
			dropped++
			continue
		}

		rec := domain.WeeklyRecord{WeekEnding: week}
		for i, p := range devPos {
			v := parseNumber(t.Cell(row, p))
			if math.IsNaN(v) {
				dropped++
				continue rows
			}
			rec.Deviations[i] = v
		}
		for i, p := range returnPos {
			rec.Returns[i] = parseNumber(t.Cell(row, p))
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, dropped, fmt.Errorf("%s: %w", t.Source, ErrEmptyDataset)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].WeekEnding.Before(records[j].WeekEnding)
	})
	return records, dropped, nil
}

// ParseLevels converts the index level table into records. Missing levels
// stay nil; rows with an unreadable date are skipped and counted.
func ParseLevels(t *Table) ([]domain.IndexLevelRecord, int, error) {
	pos, err := t.Require(LevelColumns()...)
	if err != nil {
		return nil, 0, err
	}

	records := make([]domain.IndexLevelRecord, 0, len(t.Rows))
	skipped := 0
	for _, row := range t.Rows {
		week, ok := parseDate(t.Cell(row, pos[0]))
		if !ok {
			skipped++
			continue
		}
		rec := domain.IndexLevelRecord{
			WeekEnding: week,
			Official:   parseOptional(t.Cell(row, pos[1])),
		}
		for i, p := range pos[2:] {
			rec.Levels[i] = parseOptional(t.Cell(row, p))
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].WeekEnding.Before(records[j].WeekEnding)
	})
	return records, skipped, nil
}
