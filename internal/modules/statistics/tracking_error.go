// Package statistics computes tracking errors and the deviation regressions.
package statistics

import (
	"sort"
	"time"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/pkg/formulas"
)

// TrackingErrorPrecision is the number of decimals the overall tracking error is reported with.
const TrackingErrorPrecision = 6

// MonthlyAggregate is the tracking error of one calendar month.
type MonthlyAggregate struct {
	Month         string    `json:"month"` // YYYY-MM
	Start         time.Time `json:"start"`
	TrackingError float64   `json:"tracking_error"`
	Observations  int       `json:"observations"`
}

// RollingPoint is a trailing-window tracking error ending at WeekEnding.
type RollingPoint struct {
	WeekEnding time.Time `json:"week_ending"`
	Value      float64   `json:"value"`
}

// OverallTrackingError returns the population standard deviation of a
// deviation series rounded to six decimals.
func OverallTrackingError(series []float64) float64 {
	return formulas.RoundHalfEven(formulas.PopStdDev(series), TrackingErrorPrecision)
}

// DeviationSeries extracts the deviation column of idx in record order.
func DeviationSeries(records []domain.WeeklyRecord, idx domain.TrackedIndex) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Deviation(idx)
	}
	return out
}

// MonthlyTrackingError groups records by calendar month and returns the
// within-month population standard deviation of idx's deviation, one entry per
// month that has rows, sorted by month.
func MonthlyTrackingError(records []domain.WeeklyRecord, idx domain.TrackedIndex) []MonthlyAggregate {
	buckets := make(map[string][]float64)
	for _, r := range records {
		month := r.Month()
		buckets[month] = append(buckets[month], r.Deviation(idx))
	}

	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)

	out := make([]MonthlyAggregate, 0, len(months))
	for _, month := range months {
		values := buckets[month]
		start, _ := time.Parse(domain.MonthLayout, month)
		out = append(out, MonthlyAggregate{
			Month:         month,
			Start:         start,
			TrackingError: formulas.PopStdDev(values),
			Observations:  len(values),
		})
	}
	return out
}

// RollingTrackingError returns the trailing population standard deviation of
// idx's deviation over window weeks. Records must be sorted by date.
func RollingTrackingError(records []domain.WeeklyRecord, idx domain.TrackedIndex, window int) []RollingPoint {
	values := formulas.RollingPopStdDev(DeviationSeries(records, idx), window)
	if len(values) == 0 {
		return nil
	}

	out := make([]RollingPoint, len(values))
	for i, v := range values {
		out[i] = RollingPoint{
			WeekEnding: records[i+window-1].WeekEnding,
			Value:      v,
		}
	}
	return out
}
