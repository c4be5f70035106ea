package schedule

import (
	"time"

	"github.com/iwvelando/finance-schedule/pkg/datetime"
)

// NextOccurrences returns count occurrence dates starting at start (inclusive)
// and stepping by the frequency. ONCE yields a single date whatever the count
// and frequencies outside the enumeration yield none.
//
// Month steps are anchored on the start date: occurrence k is start plus k
// steps with the day clamped to the month length, so a schedule starting on
// Jan 31 runs Jan 31, Feb 28 (29), Mar 31, Apr 30.
func NextOccurrences(start time.Time, f Frequency, count int) []time.Time {
	if count <= 0 || !f.Valid() {
		return nil
	}
	if f == Once {
		return []time.Time{start}
	}

	dates := make([]time.Time, 0, count)
	for k := 0; k < count; k++ {
		dates = append(dates, occurrenceAt(start, f, k))
	}
	return dates
}

// occurrenceAt returns the k-th occurrence (zero based) of a schedule.
func occurrenceAt(start time.Time, f Frequency, k int) time.Time {
	if f == Once {
		return start
	}
	days, months := f.step()
	if months > 0 {
		return datetime.AddMonthsClamped(start, k*months, start.Day())
	}
	return start.AddDate(0, 0, k*days)
}

// firstIndexOnOrAfter returns the smallest k whose occurrence is on or after
// the calendar date of from.
func firstIndexOnOrAfter(start time.Time, f Frequency, from time.Time) int {
	from = datetime.TruncateDay(from)
	if f == Once || !datetime.TruncateDay(start).Before(from) {
		return 0
	}

	days, months := f.step()
	var k int
	if months > 0 {
		elapsed := (from.Year()-start.Year())*12 + int(from.Month()) - int(start.Month())
		k = elapsed/months - 1
	} else {
		elapsed := int(from.Sub(datetime.TruncateDay(start)).Hours() / 24)
		k = elapsed/days - 1
	}
	if k < 0 {
		k = 0
	}
	for datetime.TruncateDay(occurrenceAt(start, f, k)).Before(from) {
		k++
	}
	return k
}

// indexAfter returns the smallest k whose occurrence is strictly after the
// calendar date of t.
func indexAfter(start time.Time, f Frequency, t time.Time) int {
	t = datetime.TruncateDay(t)
	k := firstIndexOnOrAfter(start, f, t)
	if !datetime.TruncateDay(occurrenceAt(start, f, k)).After(t) {
		k++
	}
	return k
}
