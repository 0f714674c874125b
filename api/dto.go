/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract: dates render
  as YYYY-MM-DD strings, decimals as floats, typed ids as plain strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - analytics:   The domain types being converted
*/
package api

import (
	"github.com/warp/vacation-tracker/analytics"
	"github.com/warp/vacation-tracker/auth"
)

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the credential payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token and the authenticated user.
type LoginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

// =============================================================================
// SNAPSHOT PASS-THROUGH
// =============================================================================

type EmployeeDTO struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email,omitempty"`
	DivisionID  string `json:"divisionId,omitempty"`
	ExternalRef string `json:"externalRef,omitempty"`
}

type DivisionDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ExternalRef string `json:"externalRef,omitempty"`
}

type EventDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employeeId"`
	DivisionID   string `json:"divisionId,omitempty"`
	Category     string `json:"type"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	SourceSystem string `json:"sourceSystem"`
}

// =============================================================================
// STATISTICS
// =============================================================================

type EmployeeStatsDTO struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	DivisionID   string `json:"divisionId,omitempty"`
	TotalDays    int    `json:"totalDays"`
	VacationDays int    `json:"vacationDays"`
	SickDays     int    `json:"sickDays"`
	UnpaidDays   int    `json:"unpaidDays"`
	OtherDays    int    `json:"otherDays"`
	EventCount   int    `json:"eventCount"`
}

// EmployeeStatsResponse wraps the rows with the orphan-event diagnostic:
// events referencing employees missing from the snapshot are dropped
// from the totals but never silently.
type EmployeeStatsResponse struct {
	Stats        []EmployeeStatsDTO `json:"stats"`
	OrphanEvents int                `json:"orphanEvents"`
}

type DivisionStatsDTO struct {
	DivisionID             string  `json:"divisionId"`
	DivisionName           string  `json:"divisionName"`
	EmployeeCount          int     `json:"employeeCount"`
	TotalDays              int     `json:"totalDays"`
	AverageDaysPerEmployee float64 `json:"averageDaysPerEmployee"`
}

type BreakdownDTO struct {
	Vacation int `json:"vacation"`
	Sick     int `json:"sick"`
	Unpaid   int `json:"unpaid"`
	Other    int `json:"other"`
}

type DayStatsDTO struct {
	Date   string     `json:"date"`
	Count  int        `json:"count"`
	Events []EventDTO `json:"events"`
}

// =============================================================================
// CALENDAR
// =============================================================================

type CalendarDayDTO struct {
	Date           string     `json:"date"`
	IsCurrentMonth bool       `json:"isCurrentMonth"`
	IsToday        bool       `json:"isToday"`
	DayOfWeek      int        `json:"dayOfWeek"`
	Events         []EventDTO `json:"events"`
}

type CalendarWeekDTO struct {
	Days []CalendarDayDTO `json:"days"`
}

type CalendarMonthDTO struct {
	Year      int               `json:"year"`
	Month     int               `json:"month"`
	MonthName string            `json:"monthName"`
	Weeks     []CalendarWeekDTO `json:"weeks"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e analytics.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:          string(e.ID),
		FullName:    e.FullName,
		Email:       e.Email,
		DivisionID:  string(e.DivisionID),
		ExternalRef: e.ExternalRef,
	}
}

func toDivisionDTO(d analytics.Division) DivisionDTO {
	return DivisionDTO{
		ID:          string(d.ID),
		Name:        d.Name,
		ExternalRef: d.ExternalRef,
	}
}

func toEventDTO(ev analytics.TimeOffEvent) EventDTO {
	return EventDTO{
		ID:           ev.ID,
		EmployeeID:   string(ev.EmployeeID),
		DivisionID:   string(ev.DivisionID),
		Category:     string(ev.Category),
		StartDate:    ev.StartDate.String(),
		EndDate:      ev.EndDate.String(),
		SourceSystem: string(ev.Source),
	}
}

func toEventDTOs(events []analytics.TimeOffEvent) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toEventDTO(ev)
	}
	return dtos
}

func toEmployeeStatsDTOs(stats []analytics.EmployeeStats) []EmployeeStatsDTO {
	dtos := make([]EmployeeStatsDTO, len(stats))
	for i, row := range stats {
		dtos[i] = EmployeeStatsDTO{
			EmployeeID:   string(row.EmployeeID),
			EmployeeName: row.EmployeeName,
			DivisionID:   string(row.DivisionID),
			TotalDays:    row.TotalDays,
			VacationDays: row.VacationDays,
			SickDays:     row.SickDays,
			UnpaidDays:   row.UnpaidDays,
			OtherDays:    row.OtherDays,
			EventCount:   row.EventCount,
		}
	}
	return dtos
}

func toDivisionStatsDTOs(stats []analytics.DivisionStats) []DivisionStatsDTO {
	dtos := make([]DivisionStatsDTO, len(stats))
	for i, row := range stats {
		avg, _ := row.AverageDaysPerEmployee.Float64()
		dtos[i] = DivisionStatsDTO{
			DivisionID:             string(row.DivisionID),
			DivisionName:           row.DivisionName,
			EmployeeCount:          row.EmployeeCount,
			TotalDays:              row.TotalDays,
			AverageDaysPerEmployee: avg,
		}
	}
	return dtos
}

func toDayStatsDTOs(days []analytics.DayStats) []DayStatsDTO {
	dtos := make([]DayStatsDTO, len(days))
	for i, d := range days {
		dtos[i] = DayStatsDTO{
			Date:   d.Date,
			Count:  d.Count,
			Events: toEventDTOs(d.Events),
		}
	}
	return dtos
}

func toCalendarMonthDTO(m analytics.CalendarMonth) CalendarMonthDTO {
	dto := CalendarMonthDTO{
		Year:      m.Year,
		Month:     int(m.Month),
		MonthName: m.MonthName,
		Weeks:     make([]CalendarWeekDTO, len(m.Weeks)),
	}
	for i, week := range m.Weeks {
		days := make([]CalendarDayDTO, len(week.Days))
		for j, day := range week.Days {
			days[j] = CalendarDayDTO{
				Date:           day.Date.String(),
				IsCurrentMonth: day.IsCurrentMonth,
				IsToday:        day.IsToday,
				DayOfWeek:      int(day.DayOfWeek),
				Events:         toEventDTOs(day.Events),
			}
		}
		dto.Weeks[i] = CalendarWeekDTO{Days: days}
	}
	return dto
}
