package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacation-tracker/analytics"
)

// =============================================================================
// TEST HELPERS (shared across the package's external tests)
// =============================================================================

func event(id, employeeID string, category analytics.Category, start, end string) analytics.TimeOffEvent {
	return analytics.TimeOffEvent{
		ID:         id,
		EmployeeID: analytics.EmployeeID(employeeID),
		Category:   category,
		StartDate:  analytics.MustParseDate(start),
		EndDate:    analytics.MustParseDate(end),
		Source:     analytics.SourceInternal,
	}
}

func employee(id, name, divisionID string) analytics.Employee {
	return analytics.Employee{
		ID:         analytics.EmployeeID(id),
		FullName:   name,
		DivisionID: analytics.DivisionID(divisionID),
	}
}

// =============================================================================
// DAY-BUCKET INDEXER
// =============================================================================

func TestBuildDayBuckets_ExpandsIntervals(t *testing.T) {
	events := []analytics.TimeOffEvent{
		event("ev1", "e1", analytics.CategoryVacation, "2024-06-03", "2024-06-05"),
	}

	buckets := analytics.BuildDayBuckets(events)

	require.Len(t, buckets.EventsByDay, 3)
	for _, day := range []string{"2024-06-03", "2024-06-04", "2024-06-05"} {
		assert.Len(t, buckets.EventsByDay[day], 1, "day %s", day)
		assert.Contains(t, buckets.EmployeeIDsByDay[day], analytics.EmployeeID("e1"))
	}
}

func TestBuildDayBuckets_PreservesInputOrderPerDay(t *testing.T) {
	events := []analytics.TimeOffEvent{
		event("ev1", "e1", analytics.CategoryVacation, "2024-06-03", "2024-06-04"),
		event("ev2", "e2", analytics.CategorySick, "2024-06-04", "2024-06-04"),
		event("ev3", "e3", analytics.CategoryOther, "2024-06-04", "2024-06-05"),
	}

	buckets := analytics.BuildDayBuckets(events)

	overlap := buckets.EventsByDay["2024-06-04"]
	require.Len(t, overlap, 3)
	assert.Equal(t, "ev1", overlap[0].ID)
	assert.Equal(t, "ev2", overlap[1].ID)
	assert.Equal(t, "ev3", overlap[2].ID)
}

func TestBuildDayBuckets_DuplicateEventsBothCounted(t *testing.T) {
	// Same employee, two events covering the same day: overlap counting
	// is per event, while the employee-id index collapses to one entry.
	events := []analytics.TimeOffEvent{
		event("ev1", "e1", analytics.CategoryVacation, "2024-06-03", "2024-06-03"),
		event("ev2", "e1", analytics.CategorySick, "2024-06-03", "2024-06-03"),
	}

	buckets := analytics.BuildDayBuckets(events)

	assert.Len(t, buckets.EventsByDay["2024-06-03"], 2)
	assert.Len(t, buckets.EmployeeIDsByDay["2024-06-03"], 1)
}

func TestBuildDayBuckets_DegenerateIntervalProducesNothing(t *testing.T) {
	events := []analytics.TimeOffEvent{
		event("bad", "e1", analytics.CategoryVacation, "2024-06-10", "2024-06-01"),
	}

	buckets := analytics.BuildDayBuckets(events)

	assert.Empty(t, buckets.EventsByDay)
	assert.Empty(t, buckets.EmployeeIDsByDay)
}

func TestBuildDayBuckets_NoEvents(t *testing.T) {
	buckets := analytics.BuildDayBuckets(nil)

	assert.NotNil(t, buckets.EventsByDay)
	assert.NotNil(t, buckets.EmployeeIDsByDay)
	assert.Empty(t, buckets.EventsByDay)
}
