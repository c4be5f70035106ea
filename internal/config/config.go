// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/iwvelando/finance-schedule/pkg/currency"
	"github.com/iwvelando/finance-schedule/pkg/datetime"
	"github.com/iwvelando/finance-schedule/pkg/schedule"
	"github.com/iwvelando/finance-schedule/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// Configuration holds all configuration for finance-schedule.
type Configuration struct {
	Logging      LoggingConfig      `yaml:"logging,omitempty"`
	Output       OutputConfig       `yaml:"output,omitempty"`
	Currency     CurrencyConfig     `yaml:"currency,omitempty"`
	RateProvider RateProviderConfig `yaml:"rateProvider,omitempty"`
	Payments     []Payment          `yaml:"payments,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// CurrencyConfig holds the base currency, the currency totals are displayed
// in, and static rates expressed as units of base per one unit of each code.
type CurrencyConfig struct {
	Base    string             `yaml:"base,omitempty"`
	Display string             `yaml:"display,omitempty"`
	Rates   map[string]float64 `yaml:"rates,omitempty"`
}

// RateProviderConfig points at an HTTP rate document. An empty URL means
// the static rates are used.
type RateProviderConfig struct {
	URL             string `yaml:"url,omitempty"`
	RefreshInterval string `yaml:"refreshInterval,omitempty"`
	Timeout         string `yaml:"timeout,omitempty"`
}

// Payment is a recurring payment record as written in the config file.
type Payment struct {
	ID            string `yaml:"id,omitempty"`
	Name          string `yaml:"name"`
	Amount        string `yaml:"amount"`
	Currency      string `yaml:"currency"`
	Frequency     string `yaml:"frequency"`
	StartDate     string `yaml:"startDate"`
	NextExecution string `yaml:"nextExecution,omitempty"`
	Active        *bool  `yaml:"active,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("currency.base", constants.DefaultBaseCurrency)
	v.SetDefault("currency.display", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("rateprovider.url", "")
	v.SetDefault("rateprovider.refreshinterval", constants.DefaultRateRefreshInterval)
	v.SetDefault("rateprovider.timeout", constants.DefaultRateFetchTimeout)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A .env file next to it is loaded into the environment
// first, without overriding variables that are already set.
func LoadConfiguration(configPath string) (*Configuration, error) {
	envFile := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return unmarshal(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	configuration.Currency.Base = currency.Normalize(configuration.Currency.Base)
	configuration.Currency.Display = currency.Normalize(configuration.Currency.Display)
	return &configuration, nil
}

// DisplayCurrency is the currency totals are reported in, defaulting to the base.
func (c *Configuration) DisplayCurrency() string {
	if c.Currency.Display != "" {
		return c.Currency.Display
	}
	if c.Currency.Base != "" {
		return c.Currency.Base
	}
	return constants.DefaultBaseCurrency
}

// RateTable builds the static rate table from the currency section.
func (c *Configuration) RateTable() currency.Table {
	base := c.Currency.Base
	if base == "" {
		base = constants.DefaultBaseCurrency
	}
	return currency.NewTableFromFloats(base, c.Currency.Rates)
}

// RefreshInterval parses the rate provider refresh interval.
func (c *Configuration) RefreshInterval() (time.Duration, error) {
	return parseDuration("rateProvider.refreshInterval", c.RateProvider.RefreshInterval, constants.DefaultRateRefreshInterval)
}

// FetchTimeout parses the rate provider fetch timeout.
func (c *Configuration) FetchTimeout() (time.Duration, error) {
	return parseDuration("rateProvider.timeout", c.RateProvider.Timeout, constants.DefaultRateFetchTimeout)
}

func parseDuration(key, value, fallback string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// IsActive reports the payment's active flag, which defaults to true.
func (p Payment) IsActive() bool {
	return p.Active == nil || *p.Active
}

// ToSchedule parses and validates the record.
func (p Payment) ToSchedule() (schedule.Schedule, error) {
	id := uuid.New()
	if strings.TrimSpace(p.ID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(p.ID))
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("invalid id %q: %w", p.ID, err)
		}
		id = parsed
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(p.Amount))
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("invalid amount %q: %w", p.Amount, err)
	}

	frequency, err := schedule.ParseFrequency(p.Frequency)
	if err != nil {
		return schedule.Schedule{}, err
	}

	start, err := datetime.ParseDate(p.StartDate)
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("invalid startDate: %w", err)
	}

	s := schedule.Schedule{
		ID:        id,
		Name:      strings.TrimSpace(p.Name),
		Amount:    amount,
		Currency:  currency.Normalize(p.Currency),
		Frequency: frequency,
		StartDate: start,
		Active:    p.IsActive(),
	}

	if strings.TrimSpace(p.NextExecution) != "" {
		next, err := datetime.ParseDate(p.NextExecution)
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("invalid nextExecution: %w", err)
		}
		s.NextExecution = &next
	}

	if err := s.Validate(); err != nil {
		return schedule.Schedule{}, err
	}
	return s, nil
}

// Schedules converts every payment record into a schedule.
func (c *Configuration) Schedules() ([]schedule.Schedule, error) {
	schedules := make([]schedule.Schedule, 0, len(c.Payments))
	for i, payment := range c.Payments {
		s, err := payment.ToSchedule()
		if err != nil {
			return nil, fmt.Errorf("payment %d (%s): %w", i+1, payment.Name, err)
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration(now time.Time) []string {
	codes := make([]string, 0, len(c.Currency.Rates))
	for code := range c.Currency.Rates {
		codes = append(codes, code)
	}

	validator := validation.ConfigValidator{
		BaseCurrency:    c.RateTable().Base,
		DisplayCurrency: c.DisplayCurrency(),
		RateCodes:       codes,
		Today:           datetime.TruncateDay(now).Format(DateLayout),
	}
	for _, payment := range c.Payments {
		validator.Payments = append(validator.Payments, validation.PaymentConfig{
			Name:      payment.Name,
			Currency:  payment.Currency,
			Frequency: payment.Frequency,
			StartDate: payment.StartDate,
			Active:    payment.IsActive(),
		})
	}

	return validator.ValidateAll()
}
