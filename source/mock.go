package source

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/warp/vacation-tracker/analytics"
)

// =============================================================================
// MOCK CONNECTOR - Seeded generated test data
// =============================================================================

// MockConfig controls the generated data set. The zero value produces a
// small but realistic tenant: 5 divisions, 25 employees, 50 events.
type MockConfig struct {
	EmployeeCount int   `json:"employeeCount,omitempty"`
	DivisionCount int   `json:"divisionCount,omitempty"`
	EventCount    int   `json:"eventCount,omitempty"`
	Seed          int64 `json:"seed,omitempty"`
	WorkWeekDays  int   `json:"workWeekDays,omitempty"` // 5 or 7
	Year          int   `json:"year,omitempty"`         // events fall in this year
}

var mockDivisionNames = []string{
	"Engineering", "Operations", "Sales & Marketing", "Human Resources",
	"Finance", "IT Services", "Legal", "Customer Success",
	"Product Management", "Quality Assurance",
}

var mockFirstNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason",
	"Isabella", "William", "Mia", "James", "Charlotte", "Benjamin",
	"Amelia", "Lucas", "Harper", "Henry", "Evelyn", "Alexander",
	"Abigail", "Michael", "Emily", "Daniel", "Elizabeth", "Matthew",
	"Sofia", "Jackson", "Avery", "Sebastian",
}

var mockLastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson",
	"Martin", "Lee", "Thompson", "White", "Harris", "Clark",
}

// Mock is an in-process DataSource serving generated data. Generation is
// seeded: the same config always yields byte-identical collections, which
// upstream caching and the test suite both rely on.
type Mock struct {
	employees []analytics.Employee
	divisions []analytics.Division
	events    []analytics.TimeOffEvent
}

func NewMock(cfg MockConfig) *Mock {
	if cfg.DivisionCount <= 0 {
		cfg.DivisionCount = 5
	}
	if cfg.EmployeeCount <= 0 {
		cfg.EmployeeCount = 25
	}
	if cfg.EventCount <= 0 {
		cfg.EventCount = 50
	}
	if cfg.WorkWeekDays != 7 {
		cfg.WorkWeekDays = 5
	}
	if cfg.Year == 0 {
		cfg.Year = 2024
	}

	m := &Mock{}
	m.generate(cfg, rand.New(rand.NewSource(cfg.Seed)))
	return m
}

func (m *Mock) generate(cfg MockConfig, rng *rand.Rand) {
	for i := 0; i < cfg.DivisionCount; i++ {
		m.divisions = append(m.divisions, analytics.Division{
			ID:          analytics.DivisionID(fmt.Sprintf("div-%d", i+1)),
			Name:        mockDivisionNames[i%len(mockDivisionNames)],
			ExternalRef: fmt.Sprintf("MOCK-DIV-%d", i+1),
		})
	}

	for i := 0; i < cfg.EmployeeCount; i++ {
		first := mockFirstNames[i%len(mockFirstNames)]
		last := mockLastNames[(i/len(mockFirstNames))%len(mockLastNames)]
		division := m.divisions[i%len(m.divisions)]

		m.employees = append(m.employees, analytics.Employee{
			ID:          analytics.EmployeeID(fmt.Sprintf("emp-%d", i+1)),
			FullName:    first + " " + last,
			Email:       fmt.Sprintf("%s.%s@mockcompany.com", strings.ToLower(first), strings.ToLower(last)),
			DivisionID:  division.ID,
			ExternalRef: fmt.Sprintf("MOCK-EMP-%d", i+1),
		})
	}

	for i := 0; i < cfg.EventCount; i++ {
		emp := m.employees[i%len(m.employees)]
		category := weightedCategory(rng)

		var start, end analytics.Date
		if category == analytics.CategoryVacation {
			// Vacations start on a Monday under a 5-day work week and
			// run 1, 2 or 3 weeks (60/30/10 split).
			rough := analytics.NewDate(cfg.Year, time.Month(rng.Intn(12)+1), rng.Intn(28)+1)
			start = rough
			if cfg.WorkWeekDays == 5 {
				start = nextMonday(rough)
			}
			weeks := 1
			switch roll := rng.Float64(); {
			case roll >= 0.9:
				weeks = 3
			case roll >= 0.6:
				weeks = 2
			}
			end = addWorkDays(start, weeks*cfg.WorkWeekDays-1, cfg.WorkWeekDays)
		} else {
			// Sick/unpaid/other: 1-3 days starting anywhere.
			start = analytics.NewDate(cfg.Year, time.Month(rng.Intn(12)+1), rng.Intn(28)+1)
			end = start.AddDays(rng.Intn(3) + 1)
		}

		m.events = append(m.events, analytics.TimeOffEvent{
			ID:         fmt.Sprintf("event-%d", i+1),
			EmployeeID: emp.ID,
			DivisionID: emp.DivisionID,
			Category:   category,
			StartDate:  start,
			EndDate:    end,
			Source:     analytics.SourceInternal,
			Raw:        map[string]any{"generated": true, "mockId": i + 1},
		})
	}

	// Generation order breaks start-date ties, keeping output stable.
	sort.SliceStable(m.events, func(i, j int) bool {
		return m.events[i].StartDate.Before(m.events[j].StartDate)
	})
}

// weightedCategory picks 65% vacation, 25% sick, 5% unpaid, 5% other.
func weightedCategory(rng *rand.Rand) analytics.Category {
	switch roll := rng.Float64(); {
	case roll < 0.65:
		return analytics.CategoryVacation
	case roll < 0.90:
		return analytics.CategorySick
	case roll < 0.95:
		return analytics.CategoryUnpaid
	default:
		return analytics.CategoryOther
	}
}

func nextMonday(d analytics.Date) analytics.Date {
	for d.Weekday() != time.Monday {
		d = d.AddDays(1)
	}
	return d
}

// addWorkDays advances by n working days. A 7-day work week is plain day
// arithmetic; a 5-day week skips Saturdays and Sundays.
func addWorkDays(d analytics.Date, n, workWeekDays int) analytics.Date {
	if workWeekDays == 7 {
		return d.AddDays(n)
	}
	added := 0
	for added < n {
		d = d.AddDays(1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}

// =============================================================================
// DATA SOURCE IMPLEMENTATION
// =============================================================================

func (m *Mock) Employees(_ context.Context) ([]analytics.Employee, error) {
	out := make([]analytics.Employee, len(m.employees))
	copy(out, m.employees)
	return out, nil
}

func (m *Mock) Divisions(_ context.Context) ([]analytics.Division, error) {
	out := make([]analytics.Division, len(m.divisions))
	copy(out, m.divisions)
	return out, nil
}

// TimeOffEvents returns events intersecting the window: an event is kept
// when its end is on/after From and its start is on/before To.
func (m *Mock) TimeOffEvents(_ context.Context, window Window) ([]analytics.TimeOffEvent, error) {
	var out []analytics.TimeOffEvent
	for _, ev := range m.events {
		if window.From != nil && ev.EndDate.Before(*window.From) {
			continue
		}
		if window.To != nil && ev.StartDate.After(*window.To) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
