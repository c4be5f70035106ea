package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/finance-schedule/pkg/constants"
)

// MonthWindow is the first and last calendar day of a target month.
type MonthWindow struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// NewMonthWindow builds the window for a month. Out-of-range months are
// normalised, so month 13 of 2024 is January 2025.
func NewMonthWindow(year int, month time.Month) MonthWindow {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return MonthWindow{
		Year:  start.Year(),
		Month: start.Month(),
		Start: start,
		End:   time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, time.UTC),
	}
}

// WindowFor returns the window of the month containing t.
func WindowFor(t time.Time) MonthWindow {
	return NewMonthWindow(t.Year(), t.Month())
}

// ParseMonth parses a YYYY-MM month into its window.
func ParseMonth(value string) (MonthWindow, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(value))
	if err != nil {
		return MonthWindow{}, fmt.Errorf("invalid month %q, expected %s: %w", value, MonthLayout, err)
	}
	return WindowFor(t), nil
}

// LastDay is the day-of-month of the window's last day.
func (w MonthWindow) LastDay() int {
	return w.End.Day()
}

// Contains reports whether the calendar date of t lies inside the window.
func (w MonthWindow) Contains(t time.Time) bool {
	d := TruncateDay(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Offset returns the window n months later (earlier for negative n).
func (w MonthWindow) Offset(n int) MonthWindow {
	return NewMonthWindow(w.Year, w.Month+time.Month(n))
}

func (w MonthWindow) String() string {
	return w.Start.Format(MonthLayout)
}

// Occurrence is one concrete calendar instance of a recurring payment.
//
// Date is the occurrence as stored, which may be the result of naive day
// overflow ("Feb 31" stored as Mar 3). AnchorDay is the day of month the
// schedule is pinned to; zero means Date.Day().
type Occurrence struct {
	Date      time.Time
	AnchorDay int
}

func (o Occurrence) anchor() int {
	if o.AnchorDay > 0 {
		return o.AnchorDay
	}
	return o.Date.Day()
}

// spill reports whether the occurrence is day 31 of a shorter month that
// overflowed into the first days of the following month.
func (o Occurrence) spill() bool {
	if o.anchor() != constants.RolloverDay {
		return false
	}
	d := TruncateDay(o.Date)
	prev := NewMonthWindow(d.Year(), d.Month()-1)
	if prev.LastDay() >= constants.RolloverDay {
		return false
	}
	return d.Day() <= constants.RolloverDay-prev.LastDay()
}

// ShouldInclude decides whether an occurrence is attributed to the target
// month. A day-31 occurrence that overflowed out of a short month belongs to
// that short month only.
func ShouldInclude(occ Occurrence, window MonthWindow) bool {
	d := TruncateDay(occ.Date)
	spill := occ.spill()

	if !spill && window.Contains(d) {
		return true
	}

	if occ.anchor() != constants.RolloverDay || window.LastDay() >= constants.RolloverDay {
		return false
	}

	if d.Year() == window.Year && d.Month() == window.Month {
		return true
	}

	return spill && d.Year() == window.Year && d.Month() == window.Month+1
}

// EffectiveDay returns the day of the target month an occurrence is plotted
// on. The boolean is false when the occurrence does not belong to the month.
func EffectiveDay(occ Occurrence, window MonthWindow) (int, bool) {
	if !ShouldInclude(occ, window) {
		return 0, false
	}

	d := TruncateDay(occ.Date)
	if d.Year() == window.Year && d.Month() == window.Month && d.Day() <= window.LastDay() {
		return d.Day(), true
	}
	return window.LastDay(), true
}
