package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aristath/neertrack/internal/database"
	"github.com/aristath/neertrack/internal/di"
	"github.com/aristath/neertrack/internal/modules/dataset"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the datasets into a SQLite file",
		Long: `Loads and cleans both datasets and writes them to the weekly and level
tables of a SQLite database, replacing any rows already there. The file can
then be used as NEER_WEEKLY_SOURCE and NEER_LEVELS_SOURCE.`,
		RunE: runImport,
	}
	addSourceFlags(cmd)
	cmd.Flags().String("out", "neer.db", "SQLite file to write")
	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	out, _ := cmd.Flags().GetString("out")

	ctx := cmd.Context()
	loader, err := di.InitializeLoader(ctx, &di.Container{}, cfg, log)
	if err != nil {
		return err
	}
	ds, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	db, err := database.New(database.Config{
		Path:    out,
		Profile: database.ProfileStandard,
		Name:    "import",
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	if err := dataset.WriteSQLite(ctx, db, ds, cfg.WeeklyTable, cfg.LevelsTable); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Imported %d weekly rows and %d level rows into %s\n",
		len(ds.Weekly), len(ds.Levels), db.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "NEER_WEEKLY_SOURCE=%s NEER_LEVELS_SOURCE=%s\n", db.Path(), db.Path())

	return nil
}
