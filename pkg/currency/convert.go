// Package currency converts amounts between currencies using a rate table
// expressed relative to a single base currency.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	// ErrCurrencyNotSpecified is returned when either side of a conversion is empty.
	ErrCurrencyNotSpecified = errors.New("currency not specified")
	// ErrUnsupportedCurrency is wrapped by UnsupportedCurrencyError.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// UnsupportedCurrencyError names the currency code missing from the rate table.
type UnsupportedCurrencyError struct {
	Code string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("%s: no exchange rate for %s", ErrUnsupportedCurrency, e.Code)
}

func (e *UnsupportedCurrencyError) Unwrap() error {
	return ErrUnsupportedCurrency
}

// Outcome tells how Convert produced its result.
type Outcome int

const (
	// Identity means source and target currency were the same.
	Identity Outcome = iota
	// Converted means the rate table was used.
	Converted
	// Fallback means the conversion was impossible and the amount was
	// returned unconverted.
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Identity:
		return "identity"
	case Converted:
		return "converted"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Table maps currency codes to the number of base-currency units one unit of
// that currency is worth. The base currency's own rate is always 1.
type Table struct {
	Base  string
	Rates map[string]decimal.Decimal
}

// NewTable builds a table with upper-cased codes and the base rate forced to 1.
// Non-positive rates are dropped.
func NewTable(base string, rates map[string]decimal.Decimal) Table {
	base = Normalize(base)
	table := Table{Base: base, Rates: make(map[string]decimal.Decimal, len(rates)+1)}
	for code, rate := range rates {
		if !rate.IsPositive() {
			continue
		}
		table.Rates[Normalize(code)] = rate
	}
	if base != "" {
		table.Rates[base] = decimal.NewFromInt(1)
	}
	return table
}

// NewTableFromFloats is NewTable for rates decoded as float64.
func NewTableFromFloats(base string, rates map[string]float64) Table {
	converted := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		converted[code] = decimal.NewFromFloat(rate)
	}
	return NewTable(base, converted)
}

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Empty reports whether the table holds no usable rates, e.g. before the
// first successful fetch.
func (t Table) Empty() bool {
	return len(t.Rates) == 0
}

// Rate returns the rate for a code and whether it is present and usable.
func (t Table) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := t.Rates[Normalize(code)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	clone := Table{Base: t.Base, Rates: make(map[string]decimal.Decimal, len(t.Rates))}
	for code, rate := range t.Rates {
		clone.Rates[code] = rate
	}
	return clone
}

// Validate checks that a conversion between two currencies is possible.
func Validate(from, to string, table Table) error {
	from, to = Normalize(from), Normalize(to)
	if from == "" || to == "" {
		return ErrCurrencyNotSpecified
	}
	if from == to {
		return nil
	}
	if _, ok := table.Rate(from); !ok {
		return &UnsupportedCurrencyError{Code: from}
	}
	if _, ok := table.Rate(to); !ok {
		return &UnsupportedCurrencyError{Code: to}
	}
	return nil
}

// Convert converts amount from one currency to another. When the conversion
// is impossible (empty table, missing or zero rate, unspecified code) the
// amount is returned unchanged with the Fallback outcome.
func Convert(amount decimal.Decimal, from, to string, table Table) (decimal.Decimal, Outcome) {
	from, to = Normalize(from), Normalize(to)
	if from != "" && from == to {
		return amount, Identity
	}
	if Validate(from, to, table) != nil {
		return amount, Fallback
	}

	fromRate, _ := table.Rate(from)
	toRate, _ := table.Rate(to)

	switch {
	case from == table.Base:
		return amount.DivRound(toRate, constants.DivisionPrecision), Converted
	case to == table.Base:
		return amount.Mul(fromRate), Converted
	default:
		return amount.Mul(fromRate).DivRound(toRate, constants.DivisionPrecision), Converted
	}
}

// ExchangeRate returns the multiplicative rate from one currency to another:
// 1 for the same currency, 0 when either rate is unknown.
func ExchangeRate(from, to string, table Table) decimal.Decimal {
	from, to = Normalize(from), Normalize(to)
	if from != "" && from == to {
		return decimal.NewFromInt(1)
	}
	fromRate, okFrom := table.Rate(from)
	toRate, okTo := table.Rate(to)
	if !okFrom || !okTo {
		return decimal.Zero
	}
	return fromRate.DivRound(toRate, constants.DivisionPrecision)
}

// fallbackReason classifies why a lenient conversion fell back.
func fallbackReason(from, to string, table Table) string {
	err := Validate(from, to, table)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCurrencyNotSpecified):
		return "unspecified"
	case table.Empty():
		return "empty_table"
	default:
		return "unsupported"
	}
}
