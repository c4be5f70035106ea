package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/finance-schedule/pkg/datetime"
	"github.com/shopspring/decimal"
	textcurrency "golang.org/x/text/currency"
)

// ErrInvalidSchedule is wrapped by every Schedule validation failure.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Schedule is a recurring payment definition.
type Schedule struct {
	ID            uuid.UUID
	Name          string
	Amount        decimal.Decimal
	Currency      string
	Frequency     Frequency
	StartDate     time.Time
	NextExecution *time.Time
	Active        bool
}

// Validate checks the fields every computation relies on.
func (s Schedule) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidSchedule)
	}
	if s.Amount.IsNegative() {
		return fmt.Errorf("%w: %s: amount %s is negative", ErrInvalidSchedule, s.Name, s.Amount)
	}
	if _, err := textcurrency.ParseISO(strings.TrimSpace(s.Currency)); err != nil {
		return fmt.Errorf("%w: %s: currency %q is not an ISO 4217 code", ErrInvalidSchedule, s.Name, s.Currency)
	}
	if !s.Frequency.Valid() {
		return fmt.Errorf("%w: %s: %w: %q", ErrInvalidSchedule, s.Name, ErrUnknownFrequency, s.Frequency)
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("%w: %s: start date is required", ErrInvalidSchedule, s.Name)
	}
	if s.NextExecution != nil && datetime.TruncateDay(*s.NextExecution).Before(datetime.TruncateDay(s.StartDate)) {
		return fmt.Errorf("%w: %s: next execution %s precedes start date %s", ErrInvalidSchedule, s.Name,
			s.NextExecution.Format(datetime.DateLayout), s.StartDate.Format(datetime.DateLayout))
	}
	return nil
}

// AnchorDay is the day of month month-based schedules are pinned to, zero
// for the others.
func (s Schedule) AnchorDay() int {
	if s.Frequency.MonthBased() {
		return s.StartDate.Day()
	}
	return 0
}

// MonthlyImpact is the schedule's monthly-equivalent amount in its own currency.
func (s Schedule) MonthlyImpact() decimal.Decimal {
	return MonthlyImpact(s.Amount, s.Frequency)
}

// Retired reports whether the schedule can no longer produce occurrences:
// it was deactivated, or it is a one-time payment whose date has passed.
func (s Schedule) Retired(now time.Time) bool {
	if !s.Active {
		return true
	}
	if s.Frequency == Once {
		return datetime.TruncateDay(s.StartDate).Before(datetime.TruncateDay(now))
	}
	return false
}

// pending returns the occurrence awaiting execution.
func (s Schedule) pending() time.Time {
	if s.NextExecution != nil {
		return *s.NextExecution
	}
	return s.StartDate
}

// Upcoming returns up to count occurrences on or after now. A pending next
// execution that is not in the past comes first, even when it was moved off
// the start-date grid, and the grid resumes after it.
func (s Schedule) Upcoming(now time.Time, count int) []time.Time {
	if count <= 0 || !s.Frequency.Valid() || s.Retired(now) {
		return nil
	}

	from := datetime.TruncateDay(now)
	if s.Frequency == Once {
		if datetime.TruncateDay(s.pending()).Before(from) {
			return nil
		}
		return []time.Time{s.pending()}
	}

	dates := make([]time.Time, 0, count)
	k := firstIndexOnOrAfter(s.StartDate, s.Frequency, from)
	if s.NextExecution != nil {
		if next := datetime.TruncateDay(*s.NextExecution); !next.Before(from) {
			dates = append(dates, *s.NextExecution)
			k = indexAfter(s.StartDate, s.Frequency, next)
		}
	}
	for len(dates) < count {
		dates = append(dates, occurrenceAt(s.StartDate, s.Frequency, k))
		k++
	}
	return dates
}

// Advance executes the pending occurrence if it is due by now and returns
// the schedule with its next execution recomputed. One-time schedules are
// deactivated after their single execution. The boolean is false when
// nothing was due.
func (s Schedule) Advance(now time.Time) (Schedule, bool) {
	if !s.Active || !s.Frequency.Valid() {
		return s, false
	}
	pending := datetime.TruncateDay(s.pending())
	if pending.After(datetime.TruncateDay(now)) {
		return s, false
	}

	next := s
	if s.Frequency == Once {
		next.NextExecution = nil
		next.Active = false
		return next, true
	}

	candidate := occurrenceAt(s.StartDate, s.Frequency, indexAfter(s.StartDate, s.Frequency, pending))
	next.NextExecution = &candidate
	return next, true
}

// OccurrencesIn returns every occurrence attributed to the month window.
func (s Schedule) OccurrencesIn(window datetime.MonthWindow) []datetime.Occurrence {
	if !s.Frequency.Valid() {
		return nil
	}
	anchor := s.AnchorDay()

	if s.Frequency == Once {
		occ := datetime.Occurrence{Date: s.StartDate, AnchorDay: anchor}
		if datetime.ShouldInclude(occ, window) {
			return []datetime.Occurrence{occ}
		}
		return nil
	}

	var occurrences []datetime.Occurrence
	for k := firstIndexOnOrAfter(s.StartDate, s.Frequency, window.Start); ; k++ {
		date := occurrenceAt(s.StartDate, s.Frequency, k)
		if datetime.TruncateDay(date).After(window.End) {
			break
		}
		occ := datetime.Occurrence{Date: date, AnchorDay: anchor}
		if datetime.ShouldInclude(occ, window) {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences
}
