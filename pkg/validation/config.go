// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"
)

// ValidatePaymentDates checks a payment's dates against today. Both dates use
// the YYYY-MM-DD layout so they compare as strings. Ordering between start
// date and next execution is a hard error raised when the schedule is built.
func ValidatePaymentDates(paymentName, frequency, startDate, today string) []string {
	var warnings []string

	if strings.EqualFold(strings.TrimSpace(frequency), "ONCE") && startDate != "" && startDate < today {
		warnings = append(warnings, fmt.Sprintf("Payment '%s' is a one-time payment dated before today (%s < %s) and will not be projected",
			paymentName, startDate, today))
	}

	return warnings
}

// ValidateCurrency returns a warning when code cannot be converted against
// base with the known rate codes.
func ValidateCurrency(subject, code, base string, known map[string]bool) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	base = strings.ToUpper(strings.TrimSpace(base))
	if code == "" || code == base || known[code] {
		return ""
	}
	return fmt.Sprintf("%s uses currency %s with no rate against %s - amounts will be shown unconverted",
		subject, code, base)
}

// ConfigValidator checks a whole configuration for suspicious but legal values.
type ConfigValidator struct {
	BaseCurrency    string
	DisplayCurrency string
	RateCodes       []string
	Payments        []PaymentConfig
	// Today is the reference date, YYYY-MM-DD.
	Today string
}

// PaymentConfig is the subset of a payment record the validator inspects.
type PaymentConfig struct {
	Name      string
	Currency  string
	Frequency string
	StartDate string
	Active    bool
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	known := make(map[string]bool, len(cv.RateCodes))
	for _, code := range cv.RateCodes {
		known[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	if len(known) > 0 {
		if warning := ValidateCurrency("Display currency", cv.DisplayCurrency, cv.BaseCurrency, known); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	for _, payment := range cv.Payments {
		if !payment.Active {
			continue
		}
		subject := fmt.Sprintf("Payment '%s'", payment.Name)
		if warning := ValidateCurrency(subject, payment.Currency, cv.BaseCurrency, known); warning != "" {
			warnings = append(warnings, warning)
		}
		warnings = append(warnings, ValidatePaymentDates(payment.Name, payment.Frequency, payment.StartDate, cv.Today)...)
	}

	return warnings
}
