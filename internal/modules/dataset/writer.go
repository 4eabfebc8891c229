package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/aristath/neertrack/internal/database"
	"github.com/aristath/neertrack/internal/domain"
)

// WriteSQLite replaces the contents of the weekly and level tables in db with
// ds, creating the tables when needed. The result can be loaded back through
// a .db source.
func WriteSQLite(ctx context.Context, db *database.DB, ds *Dataset, weeklyTable, levelsTable string) error {
	if weeklyTable == "" {
		weeklyTable = DefaultWeeklyTable
	}
	if levelsTable == "" {
		levelsTable = DefaultLevelsTable
	}

	return database.WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		weeklyCols := WeeklyColumns()
		if err := resetTable(ctx, tx, weeklyTable, weeklyCols); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, insertSQL(weeklyTable, weeklyCols))
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", weeklyTable, err)
		}
		for _, r := range ds.Weekly {
			args := []interface{}{r.WeekEnding.Format(domain.DateLayout)}
			for _, v := range r.Returns {
				args = append(args, nullable(v))
			}
			for _, v := range r.Deviations {
				args = append(args, nullable(v))
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				_ = stmt.Close()
				return fmt.Errorf("failed to insert week %s: %w", r.WeekEnding.Format(domain.DateLayout), err)
			}
		}
		_ = stmt.Close()

		levelCols := LevelColumns()
		if err := resetTable(ctx, tx, levelsTable, levelCols); err != nil {
			return err
		}
		stmt, err = tx.PrepareContext(ctx, insertSQL(levelsTable, levelCols))
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", levelsTable, err)
		}
		defer func() { _ = stmt.Close() }()
		for _, r := range ds.Levels {
			args := []interface{}{r.WeekEnding.Format(domain.DateLayout), r.Official}
			for _, v := range r.Levels {
				args = append(args, v)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert level row %s: %w", r.WeekEnding.Format(domain.DateLayout), err)
			}
		}
		return nil
	})
}

func resetTable(ctx context.Context, tx *sql.Tx, table string, columns []string) error {
	defs := make([]string, len(columns))
	for i, c := range columns {
		kind := "REAL"
		if i == 0 {
			kind = "TEXT NOT NULL"
		}
		defs[i] = database.QuoteIdentifier(c) + " " + kind
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", database.QuoteIdentifier(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+database.QuoteIdentifier(table)); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}
	return nil
}

func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = database.QuoteIdentifier(c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		database.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)
}

func nullable(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
