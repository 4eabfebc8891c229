package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// Excel serials outside this range are treated as plain numbers, not dates.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465 // 9999-12-31
)

// parseDate reads a week-ending cell as a calendar date.
// Text dates are tried against dateLayouts in order; numeric cells are Excel
// serial dates in the 1900 system.
func parseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return domain.CalendarDate(t), true
		}
	}

	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return domain.CalendarDate(t), true
}

// parseNumber reads a numeric cell. Blank and non-numeric cells are NaN.
func parseNumber(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	cell = strings.ReplaceAll(cell, ",", "")

	percent := strings.HasSuffix(cell, "%")
	if percent {
		cell = strings.TrimSuffix(cell, "%")
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	if percent {
		v /= 100
	}
	return v
}

// parseOptional is parseNumber with NaN mapped to nil.
func parseOptional(cell string) *float64 {
	v := parseNumber(cell)
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
