// Package schedule implements recurring payment schedules: occurrence
// projection, next-execution bookkeeping and monthly-equivalent amounts.
package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// Frequency is how often a recurring payment occurs.
type Frequency string

const (
	Once      Frequency = "ONCE"
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Biweekly  Frequency = "BIWEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
	Custom    Frequency = "CUSTOM"
)

// ErrUnknownFrequency is returned for values outside the fixed enumeration.
var ErrUnknownFrequency = errors.New("unknown frequency")

// Frequencies lists every supported frequency.
func Frequencies() []Frequency {
	return []Frequency{Once, Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly, Custom}
}

// ParseFrequency parses a frequency name, ignoring case and surrounding space.
func ParseFrequency(value string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(value)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, value)
	}
	return f, nil
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Once, Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly, Custom:
		return true
	}
	return false
}

// MonthBased reports whether occurrences advance by calendar months and are
// therefore pinned to the start date's day of month.
func (f Frequency) MonthBased() bool {
	_, months := f.step()
	return months > 0
}

// step returns the calendar step between two occurrences. CUSTOM has no
// interval model of its own and steps monthly. ONCE and unknown frequencies
// have no step.
func (f Frequency) step() (days int, months int) {
	switch f {
	case Daily:
		return 1, 0
	case Weekly:
		return 7, 0
	case Biweekly:
		return 14, 0
	case Monthly, Custom:
		return 0, 1
	case Quarterly:
		return 0, 3
	case Yearly:
		return 0, 12
	default:
		return 0, 0
	}
}

func (f Frequency) String() string {
	return string(f)
}
