package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aristath/neertrack/internal/di"
	"github.com/aristath/neertrack/internal/domain"
	"github.com/aristath/neertrack/internal/modules/analysis"
	"github.com/aristath/neertrack/internal/modules/tracking"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print tracking errors and regression summaries",
		Long: `Loads the datasets, fits both regressions and prints, per index, the
overall and monthly tracking errors followed by the regression summary.`,
		RunE: runReport,
	}
	addSourceFlags(cmd)
	cmd.Flags().String("index", "", "only report this index (CTSGSGD or GSSGSGD)")
	cmd.Flags().Bool("no-color", false, "disable colored headings")
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	indices := domain.TrackedIndices()
	if name, _ := cmd.Flags().GetString("index"); name != "" {
		idx, ok := domain.LookupTrackedIndex(name)
		if !ok {
			return fmt.Errorf("unknown index %q, expected one of %v", name, indices)
		}
		indices = []domain.TrackedIndex{idx}
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	ctx := cmd.Context()
	loader, err := di.InitializeLoader(ctx, &di.Container{}, cfg, log)
	if err != nil {
		return err
	}
	catalog, err := di.LoadCatalog(cfg)
	if err != nil {
		return err
	}
	ds, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	snapshot, err := analysis.Build(ds, catalog, analysis.Options{RollingWindow: cfg.RollingWindow}, log)
	if err != nil {
		return err
	}

	writeReport(cmd.OutOrStdout(), snapshot, indices)
	return nil
}

// writeReport prints one section per index.
func writeReport(w io.Writer, snapshot *analysis.Context, indices []domain.TrackedIndex) {
	heading := color.New(color.FgCyan, color.Bold)
	value := color.New(color.FgGreen)

	fmt.Fprintf(w, "%s\n", snapshot.Catalog.Title())
	fmt.Fprintf(w, "%d weeks from %s, %d dropped\n\n",
		len(snapshot.Dataset.Weekly), snapshot.Dataset.WeeklySource, snapshot.Dataset.DroppedRows)

	for _, idx := range indices {
		view := tracking.BuildView(snapshot, idx)

		heading.Fprintf(w, "%s\n", idx)
		fmt.Fprintln(w, strings.Repeat("-", len(idx.String())))
		value.Fprintf(w, "%s\n\n", view.TrackingError.Label)

		fmt.Fprintf(w, "%-8s %12s %6s\n", "Month", "Tracking err", "Weeks")
		for _, m := range view.MonthlyTable {
			fmt.Fprintf(w, "%-8s %12.6f %6d\n", m.Month, m.TrackingError, m.Observations)
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, view.Regression.Summary)
	}
}
