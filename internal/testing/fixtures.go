package testing

import (
	"math"
	"time"

	"github.com/aristath/neertrack/internal/domain"
)

// FixtureStart is the week-ending date of the first fixture row.
var FixtureStart = time.Date(2022, time.May, 6, 0, 0, 0, 0, time.UTC)

// NewWeeklyFixtures returns n consecutive weeks of deterministic returns and
// deviations. Both deviation series are linear in the basket returns plus a
// small wobble, with different loadings per index.
func NewWeeklyFixtures(n int) []domain.WeeklyRecord {
	records := make([]domain.WeeklyRecord, n)
	for i := 0; i < n; i++ {
		fi := float64(i)
		returns := [domain.BasketSize]float64{
			0.010 * math.Sin(fi*0.7),
			0.008 * math.Cos(fi*1.3),
			0.012 * math.Sin(fi*2.1+0.5),
			0.004 * math.Cos(fi*0.4+1),
			0.006 * math.Sin(fi*3.3+2),
			0.009 * math.Cos(fi*1.9+0.3),
		}
		wobble := 0.0002 * math.Sin(fi*11.7)

		cts := 0.00002 + wobble
		gss := -0.00001 - wobble/2
		ctsLoadings := [domain.BasketSize]float64{0.14, -0.02, 0.01, 0.03, -0.01, -0.065}
		gssLoadings := [domain.BasketSize]float64{-0.05, 0.04, -0.03, 0.02, 0.06, -0.02}
		for j, r := range returns {
			cts += ctsLoadings[j] * r
			gss += gssLoadings[j] * r
		}

		records[i] = domain.WeeklyRecord{
			WeekEnding: FixtureStart.AddDate(0, 0, 7*i),
			Returns:    returns,
			Deviations: [domain.TrackedIndexCount]float64{cts, gss},
		}
	}
	return records
}

// NewLevelFixtures returns n weeks of index levels starting at FixtureStart.
// Every fifth week has no GSSGSGD level.
func NewLevelFixtures(n int) []domain.IndexLevelRecord {
	records := make([]domain.IndexLevelRecord, n)
	official, cts, gss := 100.0, 100.0, 100.0
	for i := 0; i < n; i++ {
		fi := float64(i)
		official *= 1 + 0.002*math.Sin(fi*0.5)
		cts *= 1 + 0.002*math.Sin(fi*0.5) + 0.0003*math.Cos(fi)
		gss *= 1 + 0.002*math.Sin(fi*0.5) - 0.0002*math.Sin(fi*1.7)

		o, c, g := official, cts, gss
		rec := domain.IndexLevelRecord{
			WeekEnding: FixtureStart.AddDate(0, 0, 7*i),
			Official:   &o,
		}
		rec.Levels[domain.IndexCTSGSGD.Ordinal()] = &c
		if i%5 != 4 {
			rec.Levels[domain.IndexGSSGSGD.Ordinal()] = &g
		}
		records[i] = rec
	}
	return records
}
