// Package analysis builds the immutable snapshot every view is derived from.
package analysis

import (
	"fmt"
	"time"

	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/commentary"
	"github.com/aristath/neertrack/internal/modules/dataset"
	"github.com/aristath/neertrack/internal/modules/statistics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultRollingWindow is the rolling tracking-error window in weeks.
const DefaultRollingWindow = 4

// Options tune the derived views.
type Options struct {
	RollingWindow int
}

// IndexAnalysis holds the cached statistics of one tracked index.
type IndexAnalysis struct {
	Index         domain.TrackedIndex
	TrackingError float64
	Model         *statistics.Model
}

// Context is one loaded dataset with its fitted models and commentary.
// Nothing in it changes after Build returns.
type Context struct {
	ID            string
	BuiltAt       time.Time
	Dataset       *dataset.Dataset
	Catalog       *commentary.Catalog
	RollingWindow int

	indices [domain.TrackedIndexCount]IndexAnalysis
}

// Build computes the per-index tracking errors and regressions over ds.
func Build(ds *dataset.Dataset, catalog *commentary.Catalog, opts Options, log zerolog.Logger) (*Context, error) {
	if ds == nil || len(ds.Weekly) == 0 {
		return nil, fmt.Errorf("cannot analyse: %w", dataset.ErrEmptyDataset)
	}
	if catalog == nil {
		return nil, fmt.Errorf("cannot analyse: no commentary catalog")
	}
	if opts.RollingWindow < 2 {
		opts.RollingWindow = DefaultRollingWindow
	}

	log = log.With().Str("component", "analysis").Logger()

	c := &Context{
		ID:            uuid.New().String(),
		BuiltAt:       time.Now().UTC(),
		Dataset:       ds,
		Catalog:       catalog,
		RollingWindow: opts.RollingWindow,
	}

	regressors := BasketMatrix(ds.Weekly)
	names := BasketNames()

	for _, idx := range domain.TrackedIndices() {
		series := statistics.DeviationSeries(ds.Weekly, idx)

		model, err := statistics.FitOLS(idx.DeviationColumn(), series, regressors, names)
		if err != nil {
			return nil, fmt.Errorf("failed to fit regression for %s: %w", idx, err)
		}

		a := IndexAnalysis{
			Index:         idx,
			TrackingError: statistics.OverallTrackingError(series),
			Model:         model,
		}
		c.indices[idx.Ordinal()] = a

		log.Info().
			Str("index", idx.String()).
			Float64("tracking_error", a.TrackingError).
			Float64("r_squared", model.RSquared).
			Int("observations", model.Observations).
			Int("excluded", model.Excluded).
			Msg("Index analysed")
	}

	return c, nil
}

// For returns the cached statistics of idx.
func (c *Context) For(idx domain.TrackedIndex) IndexAnalysis {
	return c.indices[idx.Ordinal()]
}

// BasketMatrix returns the currency returns of every record as regression rows.
func BasketMatrix(records []domain.WeeklyRecord) [][]float64 {
	out := make([][]float64, len(records))
	for i, r := range records {
		row := make([]float64, domain.BasketSize)
		copy(row, r.Returns[:])
		out[i] = row
	}
	return out
}

// BasketNames returns the regressor names in basket order.
func BasketNames() []string {
	names := make([]string, domain.BasketSize)
	for i, c := range domain.RegressionBasket {
		names[i] = string(c)
	}
	return names
}
