/*
Package source defines the data-source boundary of the vacation tracker.

PURPOSE:
  The analytics engine consumes normalized employee/division/event
  snapshots and is agnostic to where they come from. This package owns
  that boundary: the DataSource capability interface, the combined
  Snapshot fetch, and the two connector implementations (seeded mock
  data and the Viewpoint For Projects task-tracking API).

SEE ALSO:
  - mock.go:      Deterministic generated test data
  - viewpoint.go: External task-tracking connector
  - tenancy:      Per-tenant connector selection
*/
package source

import (
	"context"
	"sync"

	"github.com/warp/vacation-tracker/analytics"
)

// Window is an optional inclusive date range for event fetches. A nil
// bound is unbounded on that side.
type Window struct {
	From *analytics.Date
	To   *analytics.Date
}

// DataSource is the capability a tenant's upstream system must provide.
type DataSource interface {
	Employees(ctx context.Context) ([]analytics.Employee, error)
	Divisions(ctx context.Context) ([]analytics.Division, error)
	TimeOffEvents(ctx context.Context, window Window) ([]analytics.TimeOffEvent, error)
}

// Snapshot is one tenant's combined, immutable view for a single request.
type Snapshot struct {
	Employees []analytics.Employee
	Divisions []analytics.Division
	Events    []analytics.TimeOffEvent
}

// FetchSnapshot issues the three fetches concurrently and returns the
// combined snapshot once all resolve. On failure the first error wins
// and the snapshot is discarded; cancelling ctx cancels all three.
func FetchSnapshot(ctx context.Context, ds DataSource, window Window) (*Snapshot, error) {
	var (
		wg   sync.WaitGroup
		snap Snapshot
		mu   sync.Mutex
		err  error
	)

	// Each goroutine writes a distinct snapshot field; only the shared
	// error needs the mutex.
	record := func(e error) {
		if e == nil {
			return
		}
		mu.Lock()
		if err == nil {
			err = e
		}
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		employees, e := ds.Employees(ctx)
		snap.Employees = employees
		record(e)
	}()
	go func() {
		defer wg.Done()
		divisions, e := ds.Divisions(ctx)
		snap.Divisions = divisions
		record(e)
	}()
	go func() {
		defer wg.Done()
		events, e := ds.TimeOffEvents(ctx, window)
		snap.Events = events
		record(e)
	}()
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return &snap, nil
}
