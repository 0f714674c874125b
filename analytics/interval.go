package analytics

// =============================================================================
// INTERVAL EXPANDER
// =============================================================================

const millisPerDay = 86_400_000

// maxExpandSpan bounds interval expansion to roughly ten years of days.
// Expansion is linear in span length, so a single corrupt event with a
// far-future end date must not translate into unbounded per-event work.
// DayCount itself is exact and uncapped.
const maxExpandSpan = 3660

// DayCount returns the inclusive day count between two dates. A single
// day (start == end) counts as 1. The span is taken as an absolute value,
// so argument order does not matter.
func DayCount(start, end Date) int {
	millis := end.Time().UnixMilli() - start.Time().UnixMilli()
	if millis < 0 {
		millis = -millis
	}
	days := millis / millisPerDay
	if millis%millisPerDay != 0 {
		days++
	}
	return int(days) + 1
}

// ExpandDays returns the ordered inclusive sequence of dates from start
// to end. A malformed interval (end before start) yields an empty
// sequence rather than an error or an unbounded loop.
func ExpandDays(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	var days []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
		if len(days) >= maxExpandSpan {
			break
		}
	}
	return days
}
