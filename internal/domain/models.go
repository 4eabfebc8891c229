// Package domain provides core domain models and types.
package domain

import (
	"math"
	"time"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
	CurrencyCNY Currency = "CNY"
	CurrencyMYR Currency = "MYR"
	CurrencyIDR Currency = "IDR"
)

// BasketSize is the number of currencies in the regression basket.
const BasketSize = 6

// RegressionBasket is the fixed set of currency returns used as regressors.
// HKD, TWD, KRW, THB and PHP are left out because their returns move too
// closely with the basket members (policy pegs and regional trade linkages).
var RegressionBasket = [BasketSize]Currency{
	CurrencyUSD,
	CurrencyEUR,
	CurrencyJPY,
	CurrencyCNY,
	CurrencyMYR,
	CurrencyIDR,
}

// Source column names shared by both datasets.
const (
	ColumnWeekEnding = "Average for Week Ending"
	ColumnOfficial   = "Official"
)

// MonthLayout formats a date as its calendar month bucket.
const MonthLayout = "2006-01"

// DateLayout is the canonical calendar date layout used in API payloads.
const DateLayout = "2006-01-02"

// WeeklyRecord is one cleaned week of currency returns and index deviations.
// Returns is aligned with RegressionBasket; a missing return is NaN.
// Deviations is indexed by TrackedIndex.Ordinal.
type WeeklyRecord struct {
	WeekEnding time.Time
	Returns    [BasketSize]float64
	Deviations [TrackedIndexCount]float64
}

// Deviation returns the deviation for the given index.
func (r WeeklyRecord) Deviation(idx TrackedIndex) float64 {
	return r.Deviations[idx.Ordinal()]
}

// Return returns the weekly return of a basket currency, or NaN if the currency
// is not in the basket.
func (r WeeklyRecord) Return(c Currency) float64 {
	for i, member := range RegressionBasket {
		if member == c {
			return r.Returns[i]
		}
	}
	return math.NaN()
}

// HasCompleteReturns reports whether every basket return is present.
func (r WeeklyRecord) HasCompleteReturns() bool {
	for _, v := range r.Returns {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Month returns the calendar month bucket of the record (YYYY-MM).
func (r WeeklyRecord) Month() string {
	return r.WeekEnding.Format(MonthLayout)
}

// IndexLevelRecord holds the official and custom index levels for one week.
// A nil level means the source cell was empty.
type IndexLevelRecord struct {
	WeekEnding time.Time
	Official   *float64
	Levels     [TrackedIndexCount]*float64
}

// Level returns the custom index level for the given index.
func (r IndexLevelRecord) Level(idx TrackedIndex) *float64 {
	return r.Levels[idx.Ordinal()]
}

// CalendarDate truncates t to midnight UTC of its calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
