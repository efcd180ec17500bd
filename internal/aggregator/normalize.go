package aggregator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/aggregate/internal/importer"
	"github.com/cleared-dev/aggregate/internal/model"
)

// subunitFactor converts a subunit count (cents) to units.
var subunitFactor = decimal.New(1, -2)

var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Layouts tried when dateparse gives up, e.g. our own readable format.
var fallbackLayouts = []string{
	model.ReadableDateFormat,
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// normalize turns the concatenated table into canonical transactions:
// amounts first, then timestamps, then projection.
func normalize(tbl importer.Table, cur model.Currency) ([]model.Transaction, error) {
	amounts := make([]decimal.Decimal, len(tbl.Rows))
	for i, row := range tbl.Rows {
		amount, err := rowAmount(row, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tbl.Origin(i), err)
		}
		amounts[i] = amount
	}

	stamps := make([]time.Time, len(tbl.Rows))
	for i, row := range tbl.Rows {
		raw := row[model.ColTimestamp]
		ts, err := ParseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: parsing timestamp %q: %w: %v", tbl.Origin(i), raw, ErrUnparsableTimestamp, err)
		}
		stamps[i] = ts
	}

	txns := make([]model.Transaction, len(tbl.Rows))
	for i, row := range tbl.Rows {
		txns[i] = model.Transaction{
			Timestamp:    stamps[i],
			DateReadable: stamps[i].Format(model.ReadableDateFormat),
			Transaction:  row[model.ColTransaction],
			Amount:       amounts[i],
			From:         row[model.ColFrom],
			To:           row[model.ColTo],
		}
	}
	return txns, nil
}

// rowAmount merges the currency's unit and subunit cells into one amount.
// Rows without a unit value keep their source amount.
func rowAmount(row importer.Row, cur model.Currency) (decimal.Decimal, error) {
	if unit := strings.TrimSpace(row[cur.Unit]); unit != "" {
		u, err := ParseAmount(unit)
		if err != nil {
			return decimal.Zero, err
		}
		sub := strings.TrimSpace(row[cur.Subunit])
		if sub == "" {
			return u, nil
		}
		s, err := ParseAmount(sub)
		if err != nil {
			return decimal.Zero, err
		}
		return u.Add(s.Mul(subunitFactor)), nil
	}
	return ParseAmount(row[model.ColAmount])
}

// ParseAmount parses a numeric cell. Currency symbols, thousands separators
// and accounting-style parentheses are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("parsing amount: %w: empty value", ErrInvalidAmount)
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.NewReplacer("$", "", "\u20ac", "", "\u00a3", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)

	if !numericRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", raw, ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w: %v", raw, ErrInvalidAmount, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParseTimestamp parses a date or datetime in any common layout. Ambiguous
// numeric dates are read month first. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty value")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, lerr := time.Parse(layout, s); lerr == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
