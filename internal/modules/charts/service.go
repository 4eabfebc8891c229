// Package charts builds chart series for the presentation layer.
package charts

import (
	"fmt"
	"math"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/statistics"
)

// ChartDataPoint represents a single point on a chart. A nil Value is a gap.
type ChartDataPoint struct {
	Time  string   `json:"time"` // YYYY-MM-DD, or YYYY-MM for monthly bars
	Value *float64 `json:"value"`
}

// SeriesKind tells the renderer how to draw a series.
type SeriesKind string

const (
	KindLine SeriesKind = "line"
	KindBar  SeriesKind = "bar"
)

// Series is one named trace.
type Series struct {
	Name   string           `json:"name"`
	Kind   SeriesKind       `json:"kind"`
	Points []ChartDataPoint `json:"points"`
}

// Chart is a titled set of series with axis labels.
type Chart struct {
	Title      string   `json:"title"`
	XAxisTitle string   `json:"x_axis_title"`
	YAxisTitle string   `json:"y_axis_title"`
	Series     []Series `json:"series"`
}

// DeviationChart plots the weekly deviation of idx.
func DeviationChart(records []domain.WeeklyRecord, idx domain.TrackedIndex) Chart {
	points := make([]ChartDataPoint, len(records))
	for i, r := range records {
		points[i] = point(r.WeekEnding.Format(domain.DateLayout), r.Deviation(idx))
	}
	return Chart{
		Title:      fmt.Sprintf("Deviation for %s", idx),
		XAxisTitle: "Date",
		YAxisTitle: "Deviation",
		Series: []Series{{
			Name:   fmt.Sprintf("%s Deviation", idx),
			Kind:   KindLine,
			Points: points,
		}},
	}
}

// MonthlyTrackingErrorChart draws one bar per month present in months.
func MonthlyTrackingErrorChart(months []statistics.MonthlyAggregate, idx domain.TrackedIndex) Chart {
	points := make([]ChartDataPoint, len(months))
	for i, m := range months {
		points[i] = point(m.Month, m.TrackingError)
	}
	return Chart{
		Title:      fmt.Sprintf("Monthly Tracking Error for %s", idx),
		XAxisTitle: "Month",
		YAxisTitle: "Tracking Error",
		Series: []Series{{
			Name:   fmt.Sprintf("Monthly Tracking Error - %s", idx),
			Kind:   KindBar,
			Points: points,
		}},
	}
}

// RollingTrackingErrorChart plots the trailing tracking error of idx.
func RollingTrackingErrorChart(rolling []statistics.RollingPoint, idx domain.TrackedIndex, window int) Chart {
	points := make([]ChartDataPoint, len(rolling))
	for i, p := range rolling {
		points[i] = point(p.WeekEnding.Format(domain.DateLayout), p.Value)
	}
	return Chart{
		Title:      fmt.Sprintf("%d-Week Rolling Tracking Error for %s", window, idx),
		XAxisTitle: "Date",
		YAxisTitle: "Tracking Error",
		Series: []Series{{
			Name:   fmt.Sprintf("Rolling Tracking Error - %s", idx),
			Kind:   KindLine,
			Points: points,
		}},
	}
}

// ComparisonChart plots the official index against both custom indices.
// Missing levels become gaps.
func ComparisonChart(levels []domain.IndexLevelRecord, title string) Chart {
	official := make([]ChartDataPoint, len(levels))
	custom := make([][]ChartDataPoint, domain.TrackedIndexCount)
	for i := range custom {
		custom[i] = make([]ChartDataPoint, len(levels))
	}

	for i, r := range levels {
		day := r.WeekEnding.Format(domain.DateLayout)
		official[i] = ChartDataPoint{Time: day, Value: r.Official}
		for j := range custom {
			custom[j][i] = ChartDataPoint{Time: day, Value: r.Levels[j]}
		}
	}

	series := []Series{{Name: "Official Index", Kind: KindLine, Points: official}}
	// GSSGSGD is drawn before CTSGSGD
	for _, idx := range []domain.TrackedIndex{domain.IndexGSSGSGD, domain.IndexCTSGSGD} {
		series = append(series, Series{
			Name:   fmt.Sprintf("%s Index", idx),
			Kind:   KindLine,
			Points: custom[idx.Ordinal()],
		})
	}

	return Chart{
		Title:      title,
		XAxisTitle: "Date",
		YAxisTitle: "Index Value",
		Series:     series,
	}
}

func point(t string, v float64) ChartDataPoint {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ChartDataPoint{Time: t}
	}
	return ChartDataPoint{Time: t, Value: &v}
}
