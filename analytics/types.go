/*
Package analytics provides the time-off analytics and calendar engine.

PURPOSE:
  This package contains the algorithmic heart of the vacation tracker:
  interval expansion, day-bucket indexing, per-employee and per-division
  aggregation, busiest-day ranking, coverage-gap detection, calendar grid
  construction, and the compositional filter layer.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee/Division: Immutable snapshot records from a data source
  - TimeOffEvent: A date-interval leave record (inclusive both ends)
  - Category: The fixed closed set of leave categories
  - DayStats: A ranked date with its count and contributing events

DESIGN PRINCIPLES:
  1. Purity: Every operation is a function of its snapshot inputs.
     No wall-clock reads, no caching, no shared mutable state.
  2. Determinism: Identical inputs produce byte-identical outputs.
     Sort orders carry explicit tie-breaks; nothing depends on map
     iteration order.
  3. Silent recovery: Malformed intervals, unknown employee references,
     and unrecognized categories degrade locally. Nothing here returns
     an error.

SEE ALSO:
  - interval.go: Day counting and interval expansion
  - bucket.go:   Date-keyed event/employee indexes
  - stats.go:    Employee and division aggregation
  - ranking.go:  Busiest days and coverage gaps
  - calendar.go: Fixed 6x7 month grid
  - filter.go:   Predicate filters over day buckets
*/
package analytics

import "strings"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type DivisionID string

// =============================================================================
// SNAPSHOT RECORDS
// =============================================================================

// Employee is an immutable per-request snapshot of one employee.
// DivisionID is the home division; it may be empty for unassigned staff.
type Employee struct {
	ID          EmployeeID
	FullName    string
	Email       string
	DivisionID  DivisionID
	ExternalRef string
}

// Division is an immutable per-request snapshot of one division.
type Division struct {
	ID          DivisionID
	Name        string
	ExternalRef string
}

// Category is the closed set of leave categories. Values outside the set
// are carried through untouched and simply fall outside the named buckets.
type Category string

const (
	CategoryVacation Category = "VACATION"
	CategorySick     Category = "SICK"
	CategoryUnpaid   Category = "UNPAID"
	CategoryOther    Category = "OTHER"
)

// SourceSystem tags where an event originated.
type SourceSystem string

const (
	SourceInternal  SourceSystem = "INTERNAL"
	SourceViewpoint SourceSystem = "VIEWPOINT"
)

// TimeOffEvent is a single leave interval, inclusive on both ends.
//
// DivisionID is the event's own division override and may differ from the
// employee's home division (temporary cross-division assignment). Division
// statistics read the home division; filtering and display read this one.
// The two are never collapsed.
type TimeOffEvent struct {
	ID         string
	EmployeeID EmployeeID
	DivisionID DivisionID
	Category   Category
	StartDate  Date
	EndDate    Date
	Source     SourceSystem
	Raw        any
}

// degenerate reports whether the interval is malformed (end before start).
// Degenerate events cover no days and produce no bucket entries.
func (e TimeOffEvent) degenerate() bool {
	return e.EndDate.Before(e.StartDate)
}

// covers reports whether the event's inclusive interval contains the day,
// given as a YYYY-MM-DD key. ISO keys compare correctly as strings.
func (e TimeOffEvent) covers(day string) bool {
	if e.degenerate() {
		return false
	}
	return day >= e.StartDate.String() && day <= e.EndDate.String()
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// EmployeeStats is the per-employee aggregate, recomputed per request.
// Only the four fixed categories have named buckets; events with an
// unrecognized category count toward TotalDays and EventCount only.
type EmployeeStats struct {
	EmployeeID   EmployeeID
	EmployeeName string
	DivisionID   DivisionID
	TotalDays    int
	VacationDays int
	SickDays     int
	UnpaidDays   int
	OtherDays    int
	EventCount   int
}

// DayStats is one ranked date. Count semantics depend on the producer:
// overlap count for busiest days, distinct-employee count for coverage gaps.
type DayStats struct {
	Date   string
	Count  int
	Events []TimeOffEvent
}

// CategoryBreakdown is the company-wide day total per named category.
type CategoryBreakdown struct {
	Vacation int
	Sick     int
	Unpaid   int
	Other    int
}

// NormalizeCategory maps a free-form upstream value onto the closed set.
// Anything that is not recognizably vacation, sick, or unpaid is OTHER.
func NormalizeCategory(raw string) Category {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "vac"), strings.Contains(v, "holiday"):
		return CategoryVacation
	case strings.Contains(v, "sick"):
		return CategorySick
	case strings.Contains(v, "unpaid"):
		return CategoryUnpaid
	default:
		return CategoryOther
	}
}
