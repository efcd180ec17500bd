// Package runlog keeps an append-only CSV history of aggregation runs.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/aggregate/internal/id"
)

// Entry is one row in the run log.
type Entry struct {
	RunID     string
	Timestamp time.Time
	Folder    string
	Prefix    string
	Files     int
	Rows      int
	Output    string
}

// Header is the CSV header of the run log.
const Header = "run_id,timestamp,folder,prefix,files,rows,output"

const (
	numFields    = 7
	colRunID     = 0
	colTimestamp = 1
	colFolder    = 2
	colPrefix    = 3
	colFiles     = 4
	colRows      = 5
	colOutput    = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colFolder] = e.Folder
	row[colPrefix] = e.Prefix
	row[colFiles] = strconv.Itoa(e.Files)
	row[colRows] = strconv.Itoa(e.Rows)
	row[colOutput] = e.Output
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	files, err := strconv.Atoi(record[colFiles])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing files %q: %w", record[colFiles], err)
	}
	rows, err := strconv.Atoi(record[colRows])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows %q: %w", record[colRows], err)
	}

	return Entry{
		RunID:     record[colRunID],
		Timestamp: ts,
		Folder:    record[colFolder],
		Prefix:    record[colPrefix],
		Files:     files,
		Rows:      rows,
		Output:    record[colOutput],
	}, nil
}

// Append writes entries to the log at path. The parent directory and the
// header are created on first use.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}

	if err := writeEntries(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeEntries appends rows to f, preceded by the header when f is empty.
func writeEntries(f *os.File, entries []Entry) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat run log: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		cw.Write(strings.Split(Header, ","))
	}
	for _, e := range entries {
		cw.Write(MarshalEntry(e))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}

// Record appends a single entry, assigning it the next run ID for its day.
// The assigned ID is returned.
func Record(path string, e Entry) (string, error) {
	existing, err := Read(path)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(existing))
	for i, prev := range existing {
		ids[i] = prev.RunID
	}

	e.RunID = id.NextRunID(e.Timestamp, ids)
	if err := Append(path, []Entry{e}); err != nil {
		return "", err
	}
	return e.RunID, nil
}

// Read returns all entries from the log at path. A missing log has no entries.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses a run log. The first record must be the header; an empty
// input has no entries.
func Decode(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading run log header: %w", err)
	}
	if got := strings.Join(header, ","); got != Header {
		return nil, fmt.Errorf("unexpected run log header %q", got)
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading run log: %w", err)
		}
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		entries = append(entries, e)
	}
}
