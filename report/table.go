// Package report loads a persisted catalog and derives the summaries the
// charts and insight digest are built from.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aluiziolira/go-libraff-books/models"
	"github.com/aluiziolira/go-libraff-books/parser"
)

// ErrEmptyTable is returned when the catalog has a header but no rows.
var ErrEmptyTable = errors.New("report: catalog has no rows")

// Float is a number that may be missing.
type Float struct {
	Value float64
	Valid bool
}

// Int is an integer that may be missing.
type Int struct {
	Value int64
	Valid bool
}

// Row is one catalog entry with its numeric columns coerced.
type Row struct {
	Book     models.Book
	Price    Float
	Quantity Int
}

// Value returns price×quantity, missing when either operand is.
func (r Row) Value() Float {
	if !r.Price.Valid || !r.Quantity.Valid {
		return Float{}
	}
	return Float{Value: r.Price.Value * float64(r.Quantity.Value), Valid: true}
}

// Label returns a text column, or "" for unknown columns.
func (r Row) Label(column string) string {
	v, _ := r.Book.Field(column)
	return v
}

// Table is an immutable in-memory catalog.
type Table struct {
	Rows []Row

	// columns present in the source; nil means all of models.Columns.
	columns map[string]bool
}

// ErrMissingColumn is wrapped by aggregations whose input column is absent.
var ErrMissingColumn = errors.New("report: missing column")

// HasColumn reports whether the source carried column.
func (t *Table) HasColumn(column string) bool {
	if t.columns == nil {
		_, ok := (&models.Book{}).Field(column)
		return ok
	}
	return t.columns[column]
}

func (t *Table) require(columns ...string) error {
	for _, column := range columns {
		if !t.HasColumn(column) {
			return fmt.Errorf("%w %q", ErrMissingColumn, column)
		}
	}
	return nil
}

// Len returns the number of rows, including rows with missing numbers.
func (t *Table) Len() int {
	return len(t.Rows)
}

// NewTable coerces books into rows.
func NewTable(books []*models.Book) *Table {
	rows := make([]Row, 0, len(books))
	for _, b := range books {
		if b == nil {
			continue
		}
		rows = append(rows, newRow(*b))
	}
	return &Table{Rows: rows}
}

func newRow(b models.Book) Row {
	row := Row{Book: b}
	if v, ok := parser.ParsePrice(b.Price); ok {
		row.Price = Float{Value: v, Valid: true}
	}
	if v, ok := parser.ParseQuantity(b.Quantity); ok {
		row.Quantity = Int{Value: v, Valid: true}
	}
	return row
}

// Load reads a catalog CSV. Columns are matched by header name and only
// product_id is mandatory; aggregations over an absent column fail on their
// own. Unparseable prices and quantities become missing values.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return t, nil
}

// Read parses catalog CSV from r.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header: %w", ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	columns := make(map[string]bool, len(models.Columns))
	for _, column := range models.Columns {
		_, columns[column] = index[column]
	}
	if !columns["product_id"] {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, "product_id")
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		var b models.Book
		for _, column := range models.Columns {
			if i, ok := index[column]; ok && i < len(record) {
				b.SetField(column, record[i])
			}
		}
		rows = append(rows, newRow(b))
	}

	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	return &Table{Rows: rows, columns: columns}, nil
}
