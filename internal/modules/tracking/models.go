package tracking

import (
	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/charts"
	"github.com/aristath/neertrack/internal/modules/commentary"
	"github.com/aristath/neertrack/internal/modules/statistics"
)

// View is everything shown for one selected index.
type View struct {
	Index         domain.TrackedIndex           `json:"index"`
	SnapshotID    string                        `json:"snapshot_id"`
	Deviation     charts.Chart                  `json:"deviation_chart"`
	TrackingError TrackingErrorView             `json:"tracking_error"`
	Regression    RegressionView                `json:"regression"`
	Monthly       charts.Chart                  `json:"monthly_tracking_error_chart"`
	MonthlyTable  []statistics.MonthlyAggregate `json:"monthly_tracking_error"`
	Rolling       charts.Chart                  `json:"rolling_tracking_error_chart"`
	Commentary    commentary.Bundle             `json:"commentary"`
}

// TrackingErrorView is the overall tracking error with its display label.
type TrackingErrorView struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	From  string  `json:"from"` // YYYY-MM-DD of the first cleaned week
	To    string  `json:"to"`
}

// RegressionView is the fitted model in text and tabular form.
// Statistics that are undefined for the fit are null.
type RegressionView struct {
	Dependent    string           `json:"dependent"`
	Summary      string           `json:"summary"`
	Coefficients []CoefficientRow `json:"coefficients"`
	Observations int              `json:"observations"`
	Excluded     int              `json:"excluded"`
	RSquared     *float64         `json:"r_squared"`
	AdjRSquared  *float64         `json:"adj_r_squared"`
	FStatistic   *float64         `json:"f_statistic"`
	FPValue      *float64         `json:"f_p_value"`
	DurbinWatson *float64         `json:"durbin_watson"`
	Condition    *float64         `json:"condition_number"`
}

// CoefficientRow is one regressor of the fit.
type CoefficientRow struct {
	Name     string   `json:"name"`
	Estimate *float64 `json:"estimate"`
	StdErr   *float64 `json:"std_err"`
	TStat    *float64 `json:"t_stat"`
	PValue   *float64 `json:"p_value"`
	CILower  *float64 `json:"ci_lower"`
	CIUpper  *float64 `json:"ci_upper"`
}

// Overview is the selection-independent part of the page.
type Overview struct {
	SnapshotID      string                     `json:"snapshot_id"`
	Title           string                     `json:"title"`
	Introduction    []string                   `json:"introduction"`
	LevelTable      LevelTable                 `json:"level_table"`
	Comparison      charts.Chart               `json:"comparison_chart"`
	ComparisonTitle string                     `json:"comparison_title"`
	ComparisonText  string                     `json:"comparison_commentary"`
	RegressionIntro commentary.RegressionIntro `json:"regression_intro"`
	Selection       Selection                  `json:"selection"`
}

// LevelTable mirrors the index level dataset.
type LevelTable struct {
	Columns []string   `json:"columns"`
	Rows    []LevelRow `json:"rows"`
}

// LevelRow is one week of index levels. Missing levels are null.
type LevelRow struct {
	WeekEnding string   `json:"week_ending"`
	Official   *float64 `json:"official"`
	CTSGSGD    *float64 `json:"ctsgsgd"`
	GSSGSGD    *float64 `json:"gssgsgd"`
}

// Selection lists the values a client may choose from.
type Selection struct {
	Options []Option            `json:"options"`
	Default domain.TrackedIndex `json:"default"`
}

// Option is one selectable index.
type Option struct {
	Label string              `json:"label"`
	Value domain.TrackedIndex `json:"value"`
}
