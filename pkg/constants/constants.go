// Package constants provides shared constants for the finance-schedule application.
package constants

// DateLayout is the format expected for calendar dates in config files and
// request bodies.
const DateLayout = "2006-01-02"

// MonthLayout identifies a target month, e.g. "2025-02".
const MonthLayout = "2006-01"

// Currency constants
const (
	// DefaultBaseCurrency is the currency every rate is expressed against
	DefaultBaseCurrency = "RON"
	// DecimalPlaces is the number of decimals used when displaying amounts
	DecimalPlaces = 2
	// DivisionPrecision is the number of decimal places kept by rate divisions
	DivisionPrecision = 16
)

// Schedule constants
const (
	// DefaultPreviewCount is how many occurrences a preview shows
	DefaultPreviewCount = 3
	// MaxPreviewCount bounds previews requested over the API
	MaxPreviewCount = 366
	// DefaultForecastMonths is the default length of a month-total forecast
	DefaultForecastMonths = 12
	// RolloverDay is the nominal day that rolls over to the last day of shorter months
	RolloverDay = 31
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"
	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. FINANCE_SCHEDULE_CURRENCY_DISPLAY
	EnvPrefix = "FINANCE_SCHEDULE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"
	// DefaultMaxRequestSizeBytes is the default maximum JSON request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024
	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server
	DefaultShutdownTimeout = "10s"
)

// Rate provider defaults
const (
	// DefaultRateRefreshInterval is how often the HTTP rate provider is polled
	DefaultRateRefreshInterval = "1h"
	// DefaultRateFetchTimeout bounds a single rate fetch
	DefaultRateFetchTimeout = "10s"
)
