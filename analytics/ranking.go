package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RANKING ENGINE
// =============================================================================

// BusiestDays ranks dates by overlap count: an employee with two events
// covering the same day counts twice. Sorted by count descending with an
// ascending-date tie-break so output never depends on map iteration
// order. Truncated to limit; limit <= 0 yields an empty result.
func BusiestDays(events []TimeOffEvent, limit int) []DayStats {
	if limit <= 0 {
		return []DayStats{}
	}

	buckets := BuildDayBuckets(events)
	days := make([]DayStats, 0, len(buckets.EventsByDay))
	for date, evs := range buckets.EventsByDay {
		days = append(days, DayStats{Date: date, Count: len(evs), Events: evs})
	}

	sortDayStats(days)
	if len(days) > limit {
		days = days[:limit]
	}
	return days
}

// CoverageGaps finds dates where the fraction of the workforce on leave
// meets or exceeds threshold. Count is the distinct-employee count; the
// attached events are re-derived by an inclusive range check so they are
// exactly the events whose interval covers the date. An empty employee
// snapshot yields an empty result, never a division by zero.
func CoverageGaps(events []TimeOffEvent, employees []Employee, threshold float64) []DayStats {
	total := len(employees)
	if total == 0 {
		return []DayStats{}
	}

	buckets := BuildDayBuckets(events)
	totalDec := decimal.NewFromInt(int64(total))
	thresholdDec := decimal.NewFromFloat(threshold)

	gaps := make([]DayStats, 0)
	for date, ids := range buckets.EmployeeIDsByDay {
		ratio := decimal.NewFromInt(int64(len(ids))).Div(totalDec)
		if ratio.LessThan(thresholdDec) {
			continue
		}

		var covering []TimeOffEvent
		for _, ev := range events {
			if ev.covers(date) {
				covering = append(covering, ev)
			}
		}
		gaps = append(gaps, DayStats{Date: date, Count: len(ids), Events: covering})
	}

	sortDayStats(gaps)
	return gaps
}

// sortDayStats orders by count descending, then date ascending.
func sortDayStats(days []DayStats) {
	sort.Slice(days, func(i, j int) bool {
		if days[i].Count != days[j].Count {
			return days[i].Count > days[j].Count
		}
		return days[i].Date < days[j].Date
	})
}
