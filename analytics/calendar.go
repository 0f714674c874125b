package analytics

import "time"

// =============================================================================
// CALENDAR GRID BUILDER
// =============================================================================

const (
	weeksPerGrid = 6
	daysPerWeek  = 7
)

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date           Date
	IsCurrentMonth bool
	IsToday        bool
	DayOfWeek      time.Weekday
	Events         []TimeOffEvent
}

// CalendarWeek is one Sunday-to-Saturday row.
type CalendarWeek struct {
	Days []CalendarDay
}

// CalendarMonth is the fixed 6x7 grid for one month, including leading
// and trailing days from the adjacent months.
type CalendarMonth struct {
	Year      int
	Month     time.Month
	MonthName string
	Weeks     []CalendarWeek
}

// BuildMonth lays out year/month as exactly six weeks of seven days,
// starting from the most recent Sunday on or before the 1st. Six weeks
// covers every month length and weekday alignment, so the grid shape
// never varies.
//
// The caller supplies today; the engine reads no wall clock, which keeps
// grid construction deterministic and testable.
func BuildMonth(year int, month time.Month, events []TimeOffEvent, today Date) CalendarMonth {
	first := NewDate(year, month, 1)
	cursor := first.AddDays(-int(first.Weekday()))

	weeks := make([]CalendarWeek, 0, weeksPerGrid)
	for w := 0; w < weeksPerGrid; w++ {
		days := make([]CalendarDay, 0, daysPerWeek)
		for d := 0; d < daysPerWeek; d++ {
			key := cursor.String()

			var overlapping []TimeOffEvent
			for _, ev := range events {
				if ev.covers(key) {
					overlapping = append(overlapping, ev)
				}
			}

			days = append(days, CalendarDay{
				Date:           cursor,
				IsCurrentMonth: cursor.Month() == month,
				IsToday:        cursor.Equal(today),
				DayOfWeek:      cursor.Weekday(),
				Events:         overlapping,
			})
			cursor = cursor.AddDays(1)
		}
		weeks = append(weeks, CalendarWeek{Days: days})
	}

	return CalendarMonth{
		Year:      year,
		Month:     month,
		MonthName: month.String(),
		Weeks:     weeks,
	}
}

// NextMonth advances one month, wrapping December into January of the
// following year.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth steps back one month, wrapping January into December of the
// preceding year.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
