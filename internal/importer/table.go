package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"github.com/cleared-dev/aggregate/internal/model"
)

// Row maps column name to raw cell value.
type Row map[string]string

// Table is an ordered set of rows sharing a column list. Origins, when
// set, parallels Rows.
type Table struct {
	Columns []string
	Rows    []Row
	Origins []Origin
}

// Origin locates a row in its source file. The header is row 1.
type Origin struct {
	File string
	Row  int
}

func (o Origin) String() string {
	if o.File == "" {
		return fmt.Sprintf("row %d", o.Row)
	}
	return fmt.Sprintf("%s row %d", o.File, o.Row)
}

// Origin returns where row i came from. Rows without a recorded origin
// are numbered by position.
func (t *Table) Origin(i int) Origin {
	if len(t.Origins) == len(t.Rows) {
		return t.Origins[i]
	}
	return Origin{Row: i + 1}
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Append adds other's rows after t's, taking the union of both column lists.
// Columns new to t are appended in other's order.
func (t *Table) Append(other Table) {
	for _, c := range other.Columns {
		if !t.Has(c) {
			t.Columns = append(t.Columns, c)
		}
	}
	t.Rows = append(t.Rows, other.Rows...)
	t.Origins = append(t.Origins, other.Origins...)
}

// ReadTable parses a CSV whose first record is the header. Header names are
// cleaned and mapped to canonical column names; when two headers map to the
// same column the first one wins.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	fold := cases.Fold()
	names := make([]string, len(records[0]))
	var t Table
	for i, h := range records[0] {
		name := model.CanonicalColumn(fold.String(CleanHeader(h)))
		if name == "" || t.Has(name) {
			continue
		}
		names[i] = name
		t.Columns = append(t.Columns, name)
	}

	t.Rows = make([]Row, 0, len(records)-1)
	t.Origins = make([]Origin, 0, len(records)-1)
	for n, rec := range records[1:] {
		row := make(Row, len(t.Columns))
		for i, name := range names {
			if name == "" || i >= len(rec) {
				continue
			}
			row[name] = rec[i]
		}
		t.Rows = append(t.Rows, row)
		t.Origins = append(t.Origins, Origin{Row: n + 2})
	}
	return t, nil
}

// CleanHeader strips a UTF-8 BOM, whitespace and surrounding quotes.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	return strings.Trim(s, `"'`)
}

// ReadFile opens path and reads it with ReadTable.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	name := filepath.Base(path)
	for i := range t.Origins {
		t.Origins[i].File = name
	}
	return t, nil
}

// Load reads files in order and concatenates them. Columns missing from a
// file are empty for that file's rows. It fails with ErrEmptyData when the
// combined table has no rows.
func Load(files []FileInfo) (Table, error) {
	var all Table
	for _, fi := range files {
		t, err := ReadFile(fi.Path)
		if err != nil {
			return Table{}, err
		}
		all.Append(t)
	}
	if len(all.Rows) == 0 {
		return Table{}, emptyDataError{}
	}
	return all, nil
}
