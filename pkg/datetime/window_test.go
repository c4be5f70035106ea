package datetime

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantStart string
		wantEnd   string
	}{
		{name: "February non-leap", year: 2025, month: time.February, wantStart: "2025-02-01", wantEnd: "2025-02-28"},
		{name: "February leap", year: 2024, month: time.February, wantStart: "2024-02-01", wantEnd: "2024-02-29"},
		{name: "Month 13 normalised", year: 2024, month: 13, wantStart: "2025-01-01", wantEnd: "2025-01-31"},
		{name: "Month 0 normalised", year: 2025, month: 0, wantStart: "2024-12-01", wantEnd: "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewMonthWindow(tt.year, tt.month)
			if w.Start.Format(DateLayout) != tt.wantStart || w.End.Format(DateLayout) != tt.wantEnd {
				t.Errorf("NewMonthWindow() = [%s, %s], expected [%s, %s]",
					w.Start.Format(DateLayout), w.End.Format(DateLayout), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	w, err := ParseMonth("2025-04")
	if err != nil {
		t.Fatalf("ParseMonth() error = %v", err)
	}
	if w.Year != 2025 || w.Month != time.April || w.LastDay() != 30 {
		t.Errorf("ParseMonth() = %+v", w)
	}
	if w.String() != "2025-04" {
		t.Errorf("String() = %s, expected 2025-04", w.String())
	}

	if _, err := ParseMonth("2025-13"); err == nil {
		t.Errorf("ParseMonth() expected error for month 13")
	}
}

func TestMonthWindowOffset(t *testing.T) {
	w := NewMonthWindow(2025, time.November)
	if got := w.Offset(3).String(); got != "2026-02" {
		t.Errorf("Offset(3) = %s, expected 2026-02", got)
	}
	if got := w.Offset(-11).String(); got != "2024-12" {
		t.Errorf("Offset(-11) = %s, expected 2024-12", got)
	}
}

func TestShouldInclude(t *testing.T) {
	feb2023 := NewMonthWindow(2023, time.February)
	mar2023 := NewMonthWindow(2023, time.March)
	apr2025 := NewMonthWindow(2025, time.April)
	may2025 := NewMonthWindow(2025, time.May)
	feb2024 := NewMonthWindow(2024, time.February)

	tests := []struct {
		name     string
		occ      Occurrence
		window   MonthWindow
		expected bool
	}{
		{
			name:     "Ordinary day inside the month",
			occ:      Occurrence{Date: date(2023, time.February, 14)},
			window:   feb2023,
			expected: true,
		},
		{
			name:     "First and last day are inclusive",
			occ:      Occurrence{Date: time.Date(2023, time.February, 28, 22, 30, 0, 0, time.UTC)},
			window:   feb2023,
			expected: true,
		},
		{
			name:     "Outside the month",
			occ:      Occurrence{Date: date(2023, time.January, 15)},
			window:   feb2023,
			expected: false,
		},
		{
			name:     "Feb 31 rolled into March belongs to February",
			occ:      Occurrence{Date: time.Date(2023, time.February, 31, 0, 0, 0, 0, time.UTC), AnchorDay: 31},
			window:   feb2023,
			expected: true,
		},
		{
			name:     "Feb 31 rolled into March is not counted in March",
			occ:      Occurrence{Date: time.Date(2023, time.February, 31, 0, 0, 0, 0, time.UTC), AnchorDay: 31},
			window:   mar2023,
			expected: false,
		},
		{
			name:     "Leap year Feb 31 rolls to Mar 2",
			occ:      Occurrence{Date: time.Date(2024, time.February, 31, 0, 0, 0, 0, time.UTC), AnchorDay: 31},
			window:   feb2024,
			expected: true,
		},
		{
			name:     "Apr 31 rolled into May belongs to April",
			occ:      Occurrence{Date: date(2025, time.May, 1), AnchorDay: 31},
			window:   apr2025,
			expected: true,
		},
		{
			name:     "May 1 without anchor is an ordinary May day",
			occ:      Occurrence{Date: date(2025, time.May, 1)},
			window:   may2025,
			expected: true,
		},
		{
			name:     "Genuine Mar 31 is not attributed to February",
			occ:      Occurrence{Date: date(2023, time.March, 31), AnchorDay: 31},
			window:   feb2023,
			expected: false,
		},
		{
			name:     "Clamped Feb 28 with anchor 31",
			occ:      Occurrence{Date: date(2023, time.February, 28), AnchorDay: 31},
			window:   feb2023,
			expected: true,
		},
		{
			name:     "Mar 4 is past the spill days",
			occ:      Occurrence{Date: date(2023, time.March, 4), AnchorDay: 31},
			window:   feb2023,
			expected: false,
		},
		{
			name:     "Dec 31 never spills into January",
			occ:      Occurrence{Date: date(2025, time.January, 1), AnchorDay: 31},
			window:   NewMonthWindow(2025, time.January),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldInclude(tt.occ, tt.window); got != tt.expected {
				t.Errorf("ShouldInclude(%s, %s) = %v, expected %v",
					tt.occ.Date.Format(DateLayout), tt.window, got, tt.expected)
			}
		})
	}
}

func TestEffectiveDay(t *testing.T) {
	feb2023 := NewMonthWindow(2023, time.February)

	tests := []struct {
		name    string
		occ     Occurrence
		window  MonthWindow
		wantDay int
		wantOK  bool
	}{
		{
			name:    "Same month returns the day",
			occ:     Occurrence{Date: date(2023, time.February, 10)},
			window:  feb2023,
			wantDay: 10,
			wantOK:  true,
		},
		{
			name:    "Day 31 clamps to the last day of February",
			occ:     Occurrence{Date: time.Date(2023, time.February, 31, 0, 0, 0, 0, time.UTC), AnchorDay: 31},
			window:  feb2023,
			wantDay: 28,
			wantOK:  true,
		},
		{
			name:    "Day 31 clamps to 30 in June",
			occ:     Occurrence{Date: time.Date(2025, time.June, 31, 0, 0, 0, 0, time.UTC), AnchorDay: 31},
			window:  NewMonthWindow(2025, time.June),
			wantDay: 30,
			wantOK:  true,
		},
		{
			name:    "No mapping for another month",
			occ:     Occurrence{Date: date(2023, time.April, 3)},
			window:  feb2023,
			wantDay: 0,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, ok := EffectiveDay(tt.occ, tt.window)
			if day != tt.wantDay || ok != tt.wantOK {
				t.Errorf("EffectiveDay() = (%d, %v), expected (%d, %v)", day, ok, tt.wantDay, tt.wantOK)
			}
		})
	}
}
