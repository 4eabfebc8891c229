// Package tracking derives the per-selection view model from the current snapshot.
package tracking

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/analysis"
	"github.com/aristath/neertrack/internal/modules/charts"
	"github.com/aristath/neertrack/internal/modules/statistics"
	"github.com/rs/zerolog"
)

const periodLayout = "Jan 2006"

// Service builds views. It keeps no state beyond the snapshot holder.
type Service struct {
	holder *analysis.Holder
	log    zerolog.Logger
}

// NewService creates a tracking service reading from holder.
func NewService(holder *analysis.Holder, log zerolog.Logger) *Service {
	return &Service{
		holder: holder,
		log:    log.With().Str("service", "tracking").Logger(),
	}
}

// Snapshot returns the snapshot views are currently built from.
func (s *Service) Snapshot() *analysis.Context {
	return s.holder.Current()
}

// SelectByName resolves a raw selection value and builds its view.
// Unrecognized values select GSSGSGD.
func (s *Service) SelectByName(name string) *View {
	idx, ok := domain.LookupTrackedIndex(name)
	if !ok {
		idx = domain.ParseTrackedIndex(name)
		s.log.Debug().
			Str("requested", name).
			Str("index", idx.String()).
			Msg("Unrecognized selection, using fallback index")
	}
	return s.Select(idx)
}

// Select builds the view of idx from the current snapshot.
func (s *Service) Select(idx domain.TrackedIndex) *View {
	return BuildView(s.holder.Current(), idx)
}

// Summary returns the regression report of idx.
func (s *Service) Summary(idx domain.TrackedIndex) string {
	return s.holder.Current().For(idx).Model.Summary()
}

// Overview builds the selection-independent part of the page.
func (s *Service) Overview() *Overview {
	return BuildOverview(s.holder.Current())
}

// BuildView derives the view of idx from c. Cached statistics come from c;
// the charts and monthly aggregation are computed on every call.
func BuildView(c *analysis.Context, idx domain.TrackedIndex) *View {
	idx = domain.ParseTrackedIndex(idx.String())
	a := c.For(idx)
	weekly := c.Dataset.Weekly

	months := statistics.MonthlyTrackingError(weekly, idx)
	rolling := statistics.RollingTrackingError(weekly, idx, c.RollingWindow)

	return &View{
		Index:         idx,
		SnapshotID:    c.ID,
		Deviation:     charts.DeviationChart(weekly, idx),
		TrackingError: trackingErrorView(weekly, a.TrackingError),
		Regression:    regressionView(a.Model),
		Monthly:       charts.MonthlyTrackingErrorChart(months, idx),
		MonthlyTable:  months,
		Rolling:       charts.RollingTrackingErrorChart(rolling, idx, c.RollingWindow),
		Commentary:    c.Catalog.For(idx),
	}
}

// BuildOverview derives the overview from c.
func BuildOverview(c *analysis.Context) *Overview {
	comparison := c.Catalog.Comparison()

	table := LevelTable{Columns: []string{
		domain.ColumnWeekEnding,
		domain.ColumnOfficial,
		domain.IndexCTSGSGD.LevelColumn(),
		domain.IndexGSSGSGD.LevelColumn(),
	}}
	table.Rows = make([]LevelRow, len(c.Dataset.Levels))
	for i, r := range c.Dataset.Levels {
		table.Rows[i] = LevelRow{
			WeekEnding: r.WeekEnding.Format(domain.DateLayout),
			Official:   r.Official,
			CTSGSGD:    r.Level(domain.IndexCTSGSGD),
			GSSGSGD:    r.Level(domain.IndexGSSGSGD),
		}
	}

	return &Overview{
		SnapshotID:      c.ID,
		Title:           c.Catalog.Title(),
		Introduction:    c.Catalog.Introduction(),
		LevelTable:      table,
		Comparison:      charts.ComparisonChart(c.Dataset.Levels, comparison.ChartTitle),
		ComparisonTitle: comparison.Title,
		ComparisonText:  comparison.Commentary,
		RegressionIntro: c.Catalog.RegressionIntro(),
		Selection:       Selections(),
	}
}

// Selections lists the selectable indices and the default choice.
func Selections() Selection {
	sel := Selection{Default: domain.DefaultSelection}
	for _, idx := range domain.TrackedIndices() {
		sel.Options = append(sel.Options, Option{Label: idx.String(), Value: idx})
	}
	return sel
}

// TrackingErrorLabel formats the overall tracking error for display, e.g.
// "Tracking Error from May 2022 - Dec 2024: 0.000632".
func TrackingErrorLabel(from, to string, value float64) string {
	return fmt.Sprintf("Tracking Error from %s - %s: %s", from, to, strconv.FormatFloat(value, 'f', -1, 64))
}

func trackingErrorView(weekly []domain.WeeklyRecord, te float64) TrackingErrorView {
	first := weekly[0].WeekEnding
	last := weekly[len(weekly)-1].WeekEnding
	return TrackingErrorView{
		Value: te,
		Label: TrackingErrorLabel(first.Format(periodLayout), last.Format(periodLayout), te),
		From:  first.Format(domain.DateLayout),
		To:    last.Format(domain.DateLayout),
	}
}

func regressionView(m *statistics.Model) RegressionView {
	rows := make([]CoefficientRow, len(m.Coefficients))
	for i, c := range m.Coefficients {
		rows[i] = CoefficientRow{
			Name:     c.Name,
			Estimate: finite(c.Estimate),
			StdErr:   finite(c.StdErr),
			TStat:    finite(c.TStat),
			PValue:   finite(c.PValue),
			CILower:  finite(c.CILower),
			CIUpper:  finite(c.CIUpper),
		}
	}
	return RegressionView{
		Dependent:    m.Dependent,
		Summary:      m.Summary(),
		Coefficients: rows,
		Observations: m.Observations,
		Excluded:     m.Excluded,
		RSquared:     finite(m.RSquared),
		AdjRSquared:  finite(m.AdjRSquared),
		FStatistic:   finite(m.FStatistic),
		FPValue:      finite(m.FPValue),
		DurbinWatson: finite(m.DurbinWatson),
		Condition:    finite(m.ConditionNumber),
	}
}

// finite maps NaN and infinities to nil so the value encodes as null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
