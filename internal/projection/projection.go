// Package projection defines the data structures related to a month projection
// and includes functions for computing projections of recurring payments.
package projection

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/finance-schedule/pkg/currency"
	"github.com/iwvelando/finance-schedule/pkg/datetime"
	"github.com/iwvelando/finance-schedule/pkg/mathutil"
	"github.com/iwvelando/finance-schedule/pkg/schedule"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DayBucket holds every occurrence attributed to one day of the month.
type DayBucket struct {
	Day      int             `json:"day"`
	Amount   decimal.Decimal `json:"amount"`
	Payments []string        `json:"payments"`
}

// Projection is the calendar view of one month, with amounts in Currency.
type Projection struct {
	Month         string          `json:"month"`
	Currency      string          `json:"currency"`
	Days          []DayBucket     `json:"days"`
	Total         decimal.Decimal `json:"total"`
	MonthlyImpact decimal.Decimal `json:"monthlyImpact"`
	Occurrences   int             `json:"occurrences"`
	// Fallbacks counts payments shown unconverted because no rate was available.
	Fallbacks int `json:"fallbacks"`
}

// MonthTotal is one point of a multi-month forecast.
type MonthTotal struct {
	Month       string          `json:"month"`
	Total       decimal.Decimal `json:"total"`
	Occurrences int             `json:"occurrences"`
	Fallbacks   int             `json:"fallbacks"`
}

// Impact is a payment's monthly-equivalent amount.
type Impact struct {
	Name        string             `json:"name"`
	Frequency   schedule.Frequency `json:"frequency"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency"`
	Monthly     decimal.Decimal    `json:"monthly"`
	Display     string             `json:"display"`
	Unconverted bool               `json:"unconverted,omitempty"`
}

func converterOrDefault(converter *currency.Converter, logger *zap.Logger) *currency.Converter {
	if converter == nil {
		return currency.NewConverter(nil, logger)
	}
	return converter
}

// Month projects payments onto the days of window, converting every amount
// into display. Retired schedules and schedules starting after the month are
// skipped and contribute neither to the totals nor to the fallback count.
func Month(logger *zap.Logger, payments []schedule.Schedule, window datetime.MonthWindow, converter *currency.Converter, display string) Projection {
	if logger == nil {
		logger = zap.NewNop()
	}
	converter = converterOrDefault(converter, logger)
	display = currency.Normalize(display)

	result := Projection{
		Month:         window.String(),
		Currency:      display,
		Total:         decimal.Zero,
		MonthlyImpact: decimal.Zero,
	}
	buckets := make(map[int]*DayBucket)

	for _, s := range payments {
		if s.Retired(window.Start) {
			logger.Debug(fmt.Sprintf("skipping payment %s because it is retired", s.Name),
				zap.String("op", "projection.Month"),
				zap.String("month", result.Month),
			)
			continue
		}
		if datetime.TruncateDay(s.StartDate).After(window.End) {
			logger.Debug(fmt.Sprintf("skipping payment %s because it starts after the month", s.Name),
				zap.String("op", "projection.Month"),
				zap.String("month", result.Month),
			)
			continue
		}

		amount, outcome := converter.Convert(s.Amount, s.Currency, display)
		if outcome == currency.Fallback {
			result.Fallbacks++
		}
		result.MonthlyImpact = result.MonthlyImpact.Add(schedule.MonthlyImpact(amount, s.Frequency))

		for _, occ := range s.OccurrencesIn(window) {
			day, ok := datetime.EffectiveDay(occ, window)
			if !ok {
				continue
			}
			bucket, exists := buckets[day]
			if !exists {
				bucket = &DayBucket{Day: day, Amount: decimal.Zero}
				buckets[day] = bucket
			}
			bucket.Amount = bucket.Amount.Add(amount)
			bucket.Payments = append(bucket.Payments, s.Name)
			result.Occurrences++
		}
	}

	result.Days = make([]DayBucket, 0, len(buckets))
	dayTotals := make([]decimal.Decimal, 0, len(buckets))
	for _, bucket := range buckets {
		result.Days = append(result.Days, *bucket)
		dayTotals = append(dayTotals, bucket.Amount)
	}
	result.Total = mathutil.Sum(dayTotals...)
	sort.Slice(result.Days, func(i, j int) bool { return result.Days[i].Day < result.Days[j].Day })

	logger.Debug("computed month projection",
		zap.String("op", "projection.Month"),
		zap.String("month", result.Month),
		zap.String("total", result.Total.String()),
		zap.Int("occurrences", result.Occurrences),
		zap.Int("fallbacks", result.Fallbacks),
	)

	return result
}

// Forecast returns the totals of months consecutive months starting at from.
func Forecast(logger *zap.Logger, payments []schedule.Schedule, from datetime.MonthWindow, months int, converter *currency.Converter, display string) []MonthTotal {
	if months <= 0 {
		return nil
	}

	totals := make([]MonthTotal, 0, months)
	for i := 0; i < months; i++ {
		p := Month(logger, payments, from.Offset(i), converter, display)
		totals = append(totals, MonthTotal{
			Month:       p.Month,
			Total:       p.Total,
			Occurrences: p.Occurrences,
			Fallbacks:   p.Fallbacks,
		})
	}
	return totals
}

// Impacts returns the monthly-equivalent amount of every active payment,
// converted into display.
func Impacts(logger *zap.Logger, payments []schedule.Schedule, now time.Time, converter *currency.Converter, display string) []Impact {
	if logger == nil {
		logger = zap.NewNop()
	}
	converter = converterOrDefault(converter, logger)
	display = currency.Normalize(display)

	impacts := make([]Impact, 0, len(payments))
	for _, s := range payments {
		if s.Retired(now) {
			continue
		}
		monthly, outcome := converter.Convert(s.MonthlyImpact(), s.Currency, display)
		impacts = append(impacts, Impact{
			Name:        s.Name,
			Frequency:   s.Frequency,
			Amount:      s.Amount,
			Currency:    s.Currency,
			Monthly:     monthly,
			Display:     display,
			Unconverted: outcome == currency.Fallback,
		})
	}
	return impacts
}

// Preview lists the next occurrences of one payment.
type Preview struct {
	Name      string             `json:"name"`
	Frequency schedule.Frequency `json:"frequency"`
	Dates     []string           `json:"dates"`
}

// Previews returns the next count occurrences of every payment that is not
// retired, as YYYY-MM-DD dates.
func Previews(payments []schedule.Schedule, now time.Time, count int) []Preview {
	previews := make([]Preview, 0, len(payments))
	for _, s := range payments {
		if s.Retired(now) {
			continue
		}
		upcoming := s.Upcoming(now, count)
		dates := make([]string, 0, len(upcoming))
		for _, d := range upcoming {
			dates = append(dates, d.Format(datetime.DateLayout))
		}
		previews = append(previews, Preview{Name: s.Name, Frequency: s.Frequency, Dates: dates})
	}
	return previews
}
