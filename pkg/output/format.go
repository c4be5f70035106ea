// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/finance-schedule/internal/projection"
	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/iwvelando/finance-schedule/pkg/format"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// PrettyMonth outputs a human-readable rather than machine-readable month calendar.
func PrettyMonth(w io.Writer, result projection.Projection) {
	p := printer()
	_, _ = p.Fprintf(w, "--- Payments for %s (%s) ---\n", result.Month, result.Currency)
	_, _ = p.Fprintf(w, "Day | Amount          | Payments\n")
	_, _ = p.Fprintf(w, "___ | _______________ | ________\n")
	for _, day := range result.Days {
		_, _ = p.Fprintf(w, "%3d | %15s | %s\n", day.Day, format.NumericAmount(day.Amount), strings.Join(day.Payments, ","))
	}
	_, _ = p.Fprintf(w, "\nTotal:          %s\n", format.Amount(result.Total, result.Currency))
	_, _ = p.Fprintf(w, "Monthly impact: %s\n", format.Amount(result.MonthlyImpact, result.Currency))
	_, _ = p.Fprintf(w, "Occurrences:    %d\n", result.Occurrences)
	if result.Fallbacks > 0 {
		_, _ = p.Fprintf(w, "Warning: %d payment(s) shown unconverted, no exchange rate available\n", result.Fallbacks)
	}
}

// CsvMonth outputs a month calendar in comma-separated value format.
func CsvMonth(w io.Writer, result projection.Projection) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"day", fmt.Sprintf("amount (%s)", result.Currency), "payments"})
	for _, day := range result.Days {
		_ = cw.Write([]string{fmt.Sprintf("%d", day.Day), fixed(day.Amount), strings.Join(day.Payments, ",")})
	}
	_ = cw.Write([]string{"total", fixed(result.Total), ""})
	cw.Flush()
	return cw.Error()
}

// PrettyForecast outputs consecutive month totals.
func PrettyForecast(w io.Writer, totals []projection.MonthTotal, code string) {
	p := printer()
	_, _ = p.Fprintf(w, "--- Monthly totals (%s) ---\n", code)
	_, _ = p.Fprintf(w, "Month   | Total           | Occurrences\n")
	_, _ = p.Fprintf(w, "_____   | _______________ | ___________\n")
	for _, total := range totals {
		_, _ = p.Fprintf(w, "%s | %15s | %d\n", total.Month, format.NumericAmount(total.Total), total.Occurrences)
	}
}

// CsvForecast outputs consecutive month totals in comma-separated value format.
func CsvForecast(w io.Writer, totals []projection.MonthTotal, code string) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", fmt.Sprintf("total (%s)", code), "occurrences"})
	for _, total := range totals {
		_ = cw.Write([]string{total.Month, fixed(total.Total), fmt.Sprintf("%d", total.Occurrences)})
	}
	cw.Flush()
	return cw.Error()
}

// PrettyPreview outputs the next occurrences of every payment.
func PrettyPreview(w io.Writer, previews []projection.Preview) {
	p := printer()
	_, _ = p.Fprintf(w, "--- Upcoming payments ---\n")
	for _, preview := range previews {
		_, _ = p.Fprintf(w, "%s (%s): %s\n", preview.Name, preview.Frequency, strings.Join(preview.Dates, ", "))
	}
}

// CsvPreview outputs one row per upcoming occurrence.
func CsvPreview(w io.Writer, previews []projection.Preview) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"name", "frequency", "date"})
	for _, preview := range previews {
		for _, date := range preview.Dates {
			_ = cw.Write([]string{preview.Name, string(preview.Frequency), date})
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrettyImpacts outputs monthly-equivalent amounts and their sum.
func PrettyImpacts(w io.Writer, impacts []projection.Impact, code string) {
	p := printer()
	total := decimal.Zero
	_, _ = p.Fprintf(w, "--- Monthly impact (%s) ---\n", code)
	for _, impact := range impacts {
		note := ""
		if impact.Unconverted {
			note = " (unconverted)"
		}
		_, _ = p.Fprintf(w, "%s: %s %s -> %s%s\n", impact.Name, format.Amount(impact.Amount, impact.Currency),
			impact.Frequency, format.Amount(impact.Monthly, impact.Display), note)
		total = total.Add(impact.Monthly)
	}
	_, _ = p.Fprintf(w, "Total: %s\n", format.Amount(total, code))
}

// CsvImpacts outputs monthly-equivalent amounts in comma-separated value format.
func CsvImpacts(w io.Writer, impacts []projection.Impact, code string) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"name", "frequency", "amount", "currency", fmt.Sprintf("monthly (%s)", code), "unconverted"})
	for _, impact := range impacts {
		_ = cw.Write([]string{
			impact.Name,
			string(impact.Frequency),
			fixed(impact.Amount),
			impact.Currency,
			fixed(impact.Monthly),
			fmt.Sprintf("%t", impact.Unconverted),
		})
	}
	cw.Flush()
	return cw.Error()
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(constants.DecimalPlaces)
}
