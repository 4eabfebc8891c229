package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aristath/neertrack/internal/database"
	"github.com/aristath/neertrack/internal/domain"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedFormat is returned for sources with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported table format")
	// ErrEmptyDataset is returned when cleaning leaves no weekly rows.
	ErrEmptyDataset = errors.New("cleaned dataset is empty")
)

// Table is a header plus string cells, the common shape of every reader.
// Missing cells are empty strings.
type Table struct {
	Source  string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// Column returns the position of a header, ignoring surrounding whitespace.
func (t *Table) Column(name string) (int, bool) {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Columns))
		for i, c := range t.Columns {
			key := strings.TrimSpace(c)
			if _, dup := t.index[key]; !dup {
				t.index[key] = i
			}
		}
	}
	i, ok := t.index[name]
	return i, ok
}

// Require resolves every name to a column position.
func (t *Table) Require(names ...string) ([]int, error) {
	positions := make([]int, len(names))
	var missing []string
	for i, name := range names {
		pos, ok := t.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", t.Source, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return positions, nil
}

// Cell returns row[col] or "" when the row is short.
func (t *Table) Cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

// ReadOptions selects the sheet or table inside multi-table sources.
type ReadOptions struct {
	Sheet string // xlsx sheet; first sheet when empty
	Table string // sqlite table
}

// ReadTable opens src and decodes it according to its extension.
func ReadTable(ctx context.Context, src Source, opts ReadOptions) (*Table, error) {
	format, err := DetectFormat(src.Name())
	if err != nil {
		return nil, err
	}

	if format == FormatSQLite {
		return readSQLite(ctx, src, opts.Table)
	}

	data, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return readXLSX(src.Name(), data, opts.Sheet)
	default:
		return readCSV(src.Name(), data)
	}
}

func readXLSX(name string, data []byte, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", name)
		}
		sheet = sheets[0]
	}

	// raw values keep dates as serial numbers instead of display strings
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, name, err)
	}
	return newTable(name, rows)
}

func readCSV(name string, data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv %s: %w", name, err)
		}
		rows = append(rows, record)
	}
	return newTable(name, rows)
}

func newTable(name string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no header row", name)
	}
	return &Table{
		Source:  name,
		Columns: rows[0],
		Rows:    rows[1:],
	}, nil
}

type localFile interface {
	LocalPath() string
}

func readSQLite(ctx context.Context, src Source, table string) (*Table, error) {
	if table == "" {
		return nil, fmt.Errorf("%s: no table name configured", src.Name())
	}

	dbPath := ""
	if lf, ok := src.(localFile); ok {
		dbPath = lf.LocalPath()
	} else {
		// remote databases are spooled to a temp file for the driver
		data, err := src.Open(ctx)
		if err != nil {
			return nil, err
		}
		tmp, err := os.CreateTemp("", "neertrack_*.db")
		if err != nil {
			return nil, fmt.Errorf("failed to spool %s: %w", src.Name(), err)
		}
		defer func() { _ = os.Remove(tmp.Name()) }()
		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			return nil, fmt.Errorf("failed to spool %s: %w", src.Name(), err)
		}
		if err := tmp.Close(); err != nil {
			return nil, fmt.Errorf("failed to spool %s: %w", src.Name(), err)
		}
		dbPath = tmp.Name()
	}

	db, err := database.New(database.Config{
		Path:    dbPath,
		Profile: database.ProfileReadOnly,
		Name:    table,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	defer func() { _ = db.Close() }()

	exists, err := db.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%s: table %s not found", src.Name(), table)
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+database.QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s in %s: %w", table, src.Name(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	out := &Table{Source: src.Name() + "#" + table, Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		cells := make([]string, len(columns))
		for i, v := range values {
			cells[i] = sqlCell(v)
		}
		out.Rows = append(out.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return out, nil
}

func sqlCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return formatFloat(x)
	case int64:
		return fmt.Sprintf("%d", x)
	case time.Time:
		return x.Format(domain.DateLayout)
	default:
		return fmt.Sprint(x)
	}
}
