package analytics

// =============================================================================
// DAY-BUCKET INDEXER
// =============================================================================

// DayBuckets indexes a snapshot's events by calendar date. EventsByDay
// preserves input event order within each day; EmployeeIDsByDay has set
// semantics. Keys are YYYY-MM-DD strings.
type DayBuckets struct {
	EventsByDay      map[string][]TimeOffEvent
	EmployeeIDsByDay map[string]map[EmployeeID]struct{}
}

// BuildDayBuckets walks every event's inclusive interval and files the
// event under each date it covers. Degenerate intervals contribute
// nothing. Duplicate events for the same employee and day are both kept:
// overlap counting is per event, not per employee.
func BuildDayBuckets(events []TimeOffEvent) DayBuckets {
	buckets := DayBuckets{
		EventsByDay:      make(map[string][]TimeOffEvent),
		EmployeeIDsByDay: make(map[string]map[EmployeeID]struct{}),
	}

	for _, ev := range events {
		for _, day := range ExpandDays(ev.StartDate, ev.EndDate) {
			key := day.String()
			buckets.EventsByDay[key] = append(buckets.EventsByDay[key], ev)

			ids := buckets.EmployeeIDsByDay[key]
			if ids == nil {
				ids = make(map[EmployeeID]struct{})
				buckets.EmployeeIDsByDay[key] = ids
			}
			ids[ev.EmployeeID] = struct{}{}
		}
	}
	return buckets
}
