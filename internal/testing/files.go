package testing

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aristath/neertrack/internal/domain"
)

// WriteFixtureCSVs writes weeks of weekly and level fixtures as CSV files in
// dir, using the source column headers. Returns both paths.
func WriteFixtureCSVs(t *testing.T, dir string, weeks int) (string, string) {
	t.Helper()

	weeklyHeader := []string{domain.ColumnWeekEnding}
	for _, c := range domain.RegressionBasket {
		weeklyHeader = append(weeklyHeader, string(c))
	}
	levelHeader := []string{domain.ColumnWeekEnding, domain.ColumnOfficial}
	for _, idx := range domain.TrackedIndices() {
		weeklyHeader = append(weeklyHeader, idx.DeviationColumn())
		levelHeader = append(levelHeader, idx.LevelColumn())
	}

	var weekly strings.Builder
	weekly.WriteString(strings.Join(weeklyHeader, ",") + "\n")
	for _, r := range NewWeeklyFixtures(weeks) {
		cells := []string{r.WeekEnding.Format(domain.DateLayout)}
		for _, v := range r.Returns {
			cells = append(cells, strconv.FormatFloat(v, 'g', -1, 64))
		}
		for _, v := range r.Deviations {
			cells = append(cells, strconv.FormatFloat(v, 'g', -1, 64))
		}
		weekly.WriteString(strings.Join(cells, ",") + "\n")
	}

	var levels strings.Builder
	levels.WriteString(strings.Join(levelHeader, ",") + "\n")
	for _, r := range NewLevelFixtures(weeks) {
		cells := []string{r.WeekEnding.Format(domain.DateLayout), optional(r.Official)}
		for _, v := range r.Levels {
			cells = append(cells, optional(v))
		}
		levels.WriteString(strings.Join(cells, ",") + "\n")
	}

	weeklyPath := filepath.Join(dir, "weekly.csv")
	levelsPath := filepath.Join(dir, "levels.csv")
	if err := os.WriteFile(weeklyPath, []byte(weekly.String()), 0644); err != nil {
		t.Fatalf("Failed to write weekly fixture: %v", err)
	}
	if err := os.WriteFile(levelsPath, []byte(levels.String()), 0644); err != nil {
		t.Fatalf("Failed to write level fixture: %v", err)
	}
	return weeklyPath, levelsPath
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
