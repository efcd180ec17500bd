package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/aggregate/internal/model"
)

// Header is the CSV header of an aggregated file.
const Header = "timestamp,date_readable,transaction,amount,from,to"

// Timestamp layouts used by every export format. UTC values are written
// without an offset; any other zone keeps its offset.
const (
	TimestampFormat     = "2006-01-02 15:04:05"
	TimestampZoneFormat = "2006-01-02 15:04:05-07:00"
)

// FormatTimestamp renders t in the export layout.
func FormatTimestamp(t time.Time) string {
	if _, offset := t.Zone(); offset != 0 {
		return t.Format(TimestampZoneFormat)
	}
	return t.Format(TimestampFormat)
}

// ParseTimestamp reads a value written by FormatTimestamp. Values without
// an offset are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampZoneFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(TimestampFormat, s)
}

const (
	numFields       = 6
	colTimestamp    = 0
	colDateReadable = 1
	colTransaction  = 2
	colAmount       = 3
	colFrom         = 4
	colTo           = 5
)

// CSVExporter writes the canonical CSV layout.
type CSVExporter struct{}

// Format returns the exporter name.
func (e *CSVExporter) Format() string { return "csv" }

// Ext returns the file extension.
func (e *CSVExporter) Ext() string { return ".csv" }

// Export writes txns to path with a header row.
func (e *CSVExporter) Export(path string, txns []model.Transaction) error {
	return writeFile(path, func(f *os.File) error {
		return WriteTransactions(f, txns)
	})
}

// WriteTransactions writes txns as CSV, header first.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadTransactions reads a CSV produced by WriteTransactions.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colTimestamp] = FormatTimestamp(txn.Timestamp)
	row[colDateReadable] = txn.DateReadable
	row[colTransaction] = txn.Transaction
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colFrom] = txn.From
	row[colTo] = txn.To
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := ParseTimestamp(record[colTimestamp])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Transaction{
		Timestamp:    ts,
		DateReadable: record[colDateReadable],
		Transaction:  record[colTransaction],
		Amount:       amount,
		From:         record[colFrom],
		To:           record[colTo],
	}, nil
}
