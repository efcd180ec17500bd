package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names.
const (
	ColTimestamp    = "timestamp"
	ColDateReadable = "date_readable"
	ColTransaction  = "transaction"
	ColAmount       = "amount"
	ColFrom         = "from"
	ColTo           = "to"
)

// Columns is the fixed, ordered output column set.
var Columns = []string{ColTimestamp, ColDateReadable, ColTransaction, ColAmount, ColFrom, ColTo}

// ReadableDateFormat renders dates like "05 March 2023".
const ReadableDateFormat = "02 January 2006"

// Transaction is one normalized row of the aggregated table.
type Transaction struct {
	Timestamp    time.Time
	DateReadable string
	Transaction  string          // source "type" column
	Amount       decimal.Decimal // unit + subunit*0.01 when split
	From         string
	To           string
}

// renames maps legacy column names to canonical ones.
var renames = map[string]string{
	"amounts":       ColAmount,
	"date":          ColTimestamp,
	"date_readable": ColTimestamp,
	"type":          ColTransaction,
}

// CanonicalColumn returns the canonical name for a source column.
// Unknown names are returned unchanged.
func CanonicalColumn(name string) string {
	if c, ok := renames[name]; ok {
		return c
	}
	return name
}
