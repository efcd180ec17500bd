package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Currency names the pair of columns a split amount is stored in.
type Currency struct {
	Name    string
	Unit    string // whole units column, e.g. "euro"
	Subunit string // hundredths column, e.g. "cents"
}

// DefaultCurrency is used when no currency is given.
const DefaultCurrency = "euro"

// ErrUnknownCurrency is returned by LookupCurrency for unregistered names.
var ErrUnknownCurrency = errors.New("unknown currency")

var currencies = map[string]Currency{
	"euro": {Name: "euro", Unit: "euro", Subunit: "cents"},
	"usd":  {Name: "usd", Unit: "usd", Subunit: "cents"},
}

// LookupCurrency returns the Currency registered under name (case-insensitive).
func LookupCurrency(name string) (Currency, error) {
	if name == "" {
		name = DefaultCurrency
	}
	c, ok := currencies[strings.ToLower(name)]
	if !ok {
		return Currency{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownCurrency, name, strings.Join(CurrencyNames(), ", "))
	}
	return c, nil
}

// CurrencyNames lists the known currency names, sorted.
func CurrencyNames() []string {
	names := make([]string, 0, len(currencies))
	for n := range currencies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
