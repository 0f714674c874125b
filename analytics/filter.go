package analytics

import "strings"

// =============================================================================
// FILTER ENGINE
// =============================================================================

// FilterAll is the wildcard value for division and category criteria.
const FilterAll = "all"

// Filter is a compositional set of predicates applied over day buckets.
// Zero values ("" everywhere) match everything.
//
// DivisionID matches against the event's own division reference, not the
// employee's home division: the list and calendar views show an employee
// under the division an event is coded to, even though division
// statistics account for them at home.
type Filter struct {
	DivisionID string // "" or "all" matches any division
	Category   string // "" or "all" matches any category
	Query      string // case-insensitive substring of the employee name
	From       string // inclusive lower day-key bound, "" = unbounded
	To         string // inclusive upper day-key bound, "" = unbounded
}

// Apply filters the bucket index day by day. A day survives only if at
// least one of its events passes every predicate; surviving events keep
// their original per-day order (stable filter, not a re-sort).
func (f Filter) Apply(buckets DayBuckets, employees []Employee) map[string][]TimeOffEvent {
	names := make(map[EmployeeID]string, len(employees))
	for _, emp := range employees {
		names[emp.ID] = emp.FullName
	}

	query := strings.ToLower(f.Query)
	result := make(map[string][]TimeOffEvent)

	for day, evs := range buckets.EventsByDay {
		if f.From != "" && day < f.From {
			continue
		}
		if f.To != "" && day > f.To {
			continue
		}

		var kept []TimeOffEvent
		for _, ev := range evs {
			if !f.matches(ev, names, query) {
				continue
			}
			kept = append(kept, ev)
		}
		if len(kept) > 0 {
			result[day] = kept
		}
	}
	return result
}

func (f Filter) matches(ev TimeOffEvent, names map[EmployeeID]string, query string) bool {
	if f.DivisionID != "" && f.DivisionID != FilterAll && string(ev.DivisionID) != f.DivisionID {
		return false
	}
	if f.Category != "" && f.Category != FilterAll && string(ev.Category) != f.Category {
		return false
	}
	if query != "" {
		name, ok := names[ev.EmployeeID]
		if !ok {
			// Unknown employee: fall back to the raw id, same as display.
			name = string(ev.EmployeeID)
		}
		if !strings.Contains(strings.ToLower(name), query) {
			return false
		}
	}
	return true
}
