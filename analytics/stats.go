package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE AGGREGATION
// =============================================================================

// EmployeeLeaveStats aggregates events into one stats row per employee in
// the snapshot. Rows are seeded in snapshot order with zeroed counters, so
// employees without events still appear.
//
// Events referencing an employee id absent from the snapshot are dropped
// from the aggregates and reported through the returned orphan count
// instead of vanishing silently. A malformed interval contributes zero
// days but its event is still counted.
//
// The result is sorted by total days descending; ties keep the snapshot
// order, which makes the output reproducible.
func EmployeeLeaveStats(employees []Employee, events []TimeOffEvent) ([]EmployeeStats, int) {
	stats := make([]EmployeeStats, len(employees))
	byID := make(map[EmployeeID]*EmployeeStats, len(employees))
	for i, emp := range employees {
		stats[i] = EmployeeStats{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			DivisionID:   emp.DivisionID,
		}
		byID[emp.ID] = &stats[i]
	}

	orphans := 0
	for _, ev := range events {
		row, ok := byID[ev.EmployeeID]
		if !ok {
			orphans++
			continue
		}

		days := 0
		if !ev.degenerate() {
			days = DayCount(ev.StartDate, ev.EndDate)
		}
		row.TotalDays += days
		row.EventCount++

		switch ev.Category {
		case CategoryVacation:
			row.VacationDays += days
		case CategorySick:
			row.SickDays += days
		case CategoryUnpaid:
			row.UnpaidDays += days
		case CategoryOther:
			row.OtherDays += days
		default:
			// Unrecognized category: total and event count only.
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalDays > stats[j].TotalDays
	})
	return stats, orphans
}

// =============================================================================
// DIVISION AGGREGATION
// =============================================================================

// DivisionStats is the per-division aggregate. Headcount and totals are
// computed from the employees' home divisions, not from any per-event
// division override.
type DivisionStats struct {
	DivisionID             DivisionID
	DivisionName           string
	EmployeeCount          int
	TotalDays              int
	AverageDaysPerEmployee decimal.Decimal
}

// DivisionLeaveStats rolls employee stats up to divisions. A division
// with no employees reports an average of exactly zero. The result is
// sorted by average descending, stable on ties.
func DivisionLeaveStats(divisions []Division, employees []Employee, employeeStats []EmployeeStats) []DivisionStats {
	headcount := make(map[DivisionID]int, len(divisions))
	for _, emp := range employees {
		headcount[emp.DivisionID]++
	}

	totals := make(map[DivisionID]int, len(divisions))
	for _, row := range employeeStats {
		totals[row.DivisionID] += row.TotalDays
	}

	stats := make([]DivisionStats, len(divisions))
	for i, div := range divisions {
		count := headcount[div.ID]
		total := totals[div.ID]

		avg := decimal.Zero
		if count > 0 {
			avg = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(count)))
		}

		stats[i] = DivisionStats{
			DivisionID:             div.ID,
			DivisionName:           div.Name,
			EmployeeCount:          count,
			TotalDays:              total,
			AverageDaysPerEmployee: avg,
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].AverageDaysPerEmployee.GreaterThan(stats[j].AverageDaysPerEmployee)
	})
	return stats
}

// =============================================================================
// CATEGORY BREAKDOWN
// =============================================================================

// BreakdownByCategory sums day counts per named category across the whole
// snapshot. Unrecognized categories do not appear.
func BreakdownByCategory(events []TimeOffEvent) CategoryBreakdown {
	var b CategoryBreakdown
	for _, ev := range events {
		if ev.degenerate() {
			continue
		}
		days := DayCount(ev.StartDate, ev.EndDate)
		switch ev.Category {
		case CategoryVacation:
			b.Vacation += days
		case CategorySick:
			b.Sick += days
		case CategoryUnpaid:
			b.Unpaid += days
		case CategoryOther:
			b.Other += days
		}
	}
	return b
}
