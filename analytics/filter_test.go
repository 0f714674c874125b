package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacation-tracker/analytics"
)

func filterFixture() (analytics.DayBuckets, []analytics.Employee) {
	employees := []analytics.Employee{
		employee("e1", "Alice Johnson", "d1"),
		employee("e2", "Bob Smith", "d2"),
	}
	ev1 := event("ev1", "e1", analytics.CategoryVacation, "2024-06-03", "2024-06-04")
	ev1.DivisionID = "d1"
	ev2 := event("ev2", "e2", analytics.CategorySick, "2024-06-04", "2024-06-05")
	ev2.DivisionID = "d2"

	return analytics.BuildDayBuckets([]analytics.TimeOffEvent{ev1, ev2}), employees
}

func TestFilter_NoCriteriaKeepsEverything(t *testing.T) {
	buckets, employees := filterFixture()

	result := analytics.Filter{}.Apply(buckets, employees)

	assert.Len(t, result, 3)
	assert.Len(t, result["2024-06-04"], 2)
}

func TestFilter_AllIsWildcard(t *testing.T) {
	buckets, employees := filterFixture()

	result := analytics.Filter{
		DivisionID: analytics.FilterAll,
		Category:   analytics.FilterAll,
	}.Apply(buckets, employees)

	assert.Len(t, result, 3)
}

func TestFilter_ByDivisionUsesEventDivision(t *testing.T) {
	buckets, employees := filterFixture()

	result := analytics.Filter{DivisionID: "d1"}.Apply(buckets, employees)

	// ev1 only: June 3-4 survive, June 5 disappears entirely.
	require.Len(t, result, 2)
	assert.Len(t, result["2024-06-03"], 1)
	assert.Len(t, result["2024-06-04"], 1)
	assert.Equal(t, "ev1", result["2024-06-04"][0].ID)
}

func TestFilter_ByCategory(t *testing.T) {
	buckets, employees := filterFixture()

	result := analytics.Filter{Category: string(analytics.CategorySick)}.Apply(buckets, employees)

	require.Len(t, result, 2)
	assert.Equal(t, "ev2", result["2024-06-04"][0].ID)
}

func TestFilter_ByNameCaseInsensitiveSubstring(t *testing.T) {
	buckets, employees := filterFixture()

	result := analytics.Filter{Query: "aLiCe"}.Apply(buckets, employees)

	require.Len(t, result, 2)
	assert.Equal(t, "ev1", result["2024-06-03"][0].ID)
}

func TestFilter_UnknownEmployeeFallsBackToID(t *testing.T) {
	ev := event("ev9", "ghost-7", analytics.CategoryOther, "2024-06-01", "2024-06-01")
	buckets := analytics.BuildDayBuckets([]analytics.TimeOffEvent{ev})

	result := analytics.Filter{Query: "ghost"}.Apply(buckets, nil)

	assert.Len(t, result, 1)
}

func TestFilter_DateRangeBoundsAreInclusive(t *testing.T) {
	buckets, employees := filterFixture()

	result := analytics.Filter{From: "2024-06-04", To: "2024-06-04"}.Apply(buckets, employees)

	require.Len(t, result, 1)
	assert.Len(t, result["2024-06-04"], 2)

	// Open-ended bounds.
	result = analytics.Filter{From: "2024-06-04"}.Apply(buckets, employees)
	assert.Len(t, result, 2)
	result = analytics.Filter{To: "2024-06-03"}.Apply(buckets, employees)
	assert.Len(t, result, 1)
}

func TestFilter_PreservesPerDayOrder(t *testing.T) {
	ev1 := event("ev1", "e1", analytics.CategoryVacation, "2024-06-04", "2024-06-04")
	ev2 := event("ev2", "e2", analytics.CategoryVacation, "2024-06-04", "2024-06-04")
	ev3 := event("ev3", "e1", analytics.CategorySick, "2024-06-04", "2024-06-04")
	buckets := analytics.BuildDayBuckets([]analytics.TimeOffEvent{ev1, ev2, ev3})
	employees := []analytics.Employee{
		employee("e1", "Alice", "d1"),
		employee("e2", "Bob", "d1"),
	}

	result := analytics.Filter{Query: "alice"}.Apply(buckets, employees)

	require.Len(t, result["2024-06-04"], 2)
	assert.Equal(t, "ev1", result["2024-06-04"][0].ID)
	assert.Equal(t, "ev3", result["2024-06-04"][1].ID)
}

func TestFilter_NoMatchesYieldsEmptyMap(t *testing.T) {
	buckets, employees := filterFixture()

	result := analytics.Filter{DivisionID: "d99"}.Apply(buckets, employees)

	assert.Empty(t, result)
	assert.NotNil(t, result)
}
