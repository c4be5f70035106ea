package currency

import (
	"github.com/iwvelando/finance-schedule/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TableSource supplies the current rate table. Implementations must be safe
// for concurrent use.
type TableSource interface {
	Table() Table
}

// StaticSource serves a fixed table.
type StaticSource struct {
	table Table
}

// NewStaticSource wraps a table as a TableSource.
func NewStaticSource(table Table) StaticSource {
	return StaticSource{table: table.Clone()}
}

// Table returns the wrapped table.
func (s StaticSource) Table() Table {
	return s.table
}

// Converter performs conversions against a live table source. Its lenient
// Convert logs and counts every fallback so silent degradation stays visible.
type Converter struct {
	source TableSource
	logger *zap.Logger
}

// NewConverter creates a converter reading rates from source.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewConverter(source TableSource, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{source: source, logger: logger}
}

// Table returns the table the converter currently uses.
func (c *Converter) Table() Table {
	if c.source == nil {
		return Table{}
	}
	return c.source.Table()
}

// Convert converts leniently: an impossible conversion returns the amount
// unchanged with the Fallback outcome.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, Outcome) {
	table := c.Table()
	result, outcome := Convert(amount, from, to, table)
	if outcome == Fallback {
		reason := fallbackReason(from, to, table)
		metrics.ConversionFallbacks.WithLabelValues(reason).Inc()
		c.logger.Warn("currency conversion fell back to unconverted amount",
			zap.String("op", "currency.Converter.Convert"),
			zap.String("from", Normalize(from)),
			zap.String("to", Normalize(to)),
			zap.String("reason", reason),
			zap.String("amount", amount.String()),
		)
	}
	return result, outcome
}

// ConvertStrict validates the pair before converting and reports why a
// conversion is impossible.
func (c *Converter) ConvertStrict(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	table := c.Table()
	if err := Validate(from, to, table); err != nil {
		return amount, err
	}
	result, _ := Convert(amount, from, to, table)
	return result, nil
}

// ExchangeRate returns the rate between two currencies, 0 when unknown.
func (c *Converter) ExchangeRate(from, to string) decimal.Decimal {
	return ExchangeRate(from, to, c.Table())
}
