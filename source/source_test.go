package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vacation-tracker/analytics"
	"github.com/warp/vacation-tracker/source"
)

// =============================================================================
// SNAPSHOT FETCH
// =============================================================================

// failingSource wraps a Mock and fails selected calls.
type failingSource struct {
	*source.Mock
	employeesErr error
	eventsErr    error
}

func (f *failingSource) Employees(ctx context.Context) ([]analytics.Employee, error) {
	if f.employeesErr != nil {
		return nil, f.employeesErr
	}
	return f.Mock.Employees(ctx)
}

func (f *failingSource) TimeOffEvents(ctx context.Context, w source.Window) ([]analytics.TimeOffEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.Mock.TimeOffEvents(ctx, w)
}

func TestFetchSnapshot_CombinesAllThreeCollections(t *testing.T) {
	m := source.NewMock(source.MockConfig{Seed: 1})

	snap, err := source.FetchSnapshot(context.Background(), m, source.Window{})

	require.NoError(t, err)
	assert.Len(t, snap.Employees, 25)
	assert.Len(t, snap.Divisions, 5)
	assert.Len(t, snap.Events, 50)
}

func TestFetchSnapshot_AnyFailureDiscardsSnapshot(t *testing.T) {
	boom := errors.New("upstream down")
	ds := &failingSource{Mock: source.NewMock(source.MockConfig{Seed: 1}), employeesErr: boom}

	snap, err := source.FetchSnapshot(context.Background(), ds, source.Window{})

	require.ErrorIs(t, err, boom)
	assert.Nil(t, snap)
}

func TestFetchSnapshot_EventFailurePropagates(t *testing.T) {
	boom := errors.New("folder unreachable")
	ds := &failingSource{Mock: source.NewMock(source.MockConfig{Seed: 1}), eventsErr: boom}

	snap, err := source.FetchSnapshot(context.Background(), ds, source.Window{})

	require.ErrorIs(t, err, boom)
	assert.Nil(t, snap)
}

func TestFetchSnapshot_PassesWindowThrough(t *testing.T) {
	m := source.NewMock(source.MockConfig{Seed: 11})
	from := analytics.MustParseDate("2024-06-01")
	to := analytics.MustParseDate("2024-06-30")

	snap, err := source.FetchSnapshot(context.Background(), m, source.Window{From: &from, To: &to})

	require.NoError(t, err)
	for _, ev := range snap.Events {
		assert.False(t, ev.EndDate.Before(from))
		assert.False(t, ev.StartDate.After(to))
	}
}
