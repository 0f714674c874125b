package source_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vacation-tracker/analytics"
	"github.com/warp/vacation-tracker/source"
)

// =============================================================================
// VIEWPOINT CONNECTOR
// =============================================================================

func viewpointServer(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := routes[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
}

func TestViewpoint_EmployeesMapUsers(t *testing.T) {
	srv := viewpointServer(t, map[string]any{
		"/vfp/api/v2/enterprises/ent-1/users": []map[string]any{
			{"id": "u1", "firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"},
			{"userId": float64(42), "displayName": "Grace Hopper"},
		},
	})
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{
		BaseURL:      srv.URL,
		EnterpriseID: "ent-1",
	})

	employees, err := v.Employees(context.Background())

	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, analytics.EmployeeID("u1"), employees[0].ID)
	assert.Equal(t, "Ada Lovelace", employees[0].FullName)
	assert.Equal(t, "ada@example.com", employees[0].Email)
	assert.Equal(t, analytics.EmployeeID("42"), employees[1].ID)
	assert.Equal(t, "Grace Hopper", employees[1].FullName)
}

func TestViewpoint_DivisionsFromOrganisations(t *testing.T) {
	srv := viewpointServer(t, map[string]any{
		"/vfp/api/v2/enterprises/ent-1/organisations": map[string]any{
			"items": []map[string]any{
				{"id": "org-1", "name": "North"},
				{"organisationId": "org-2"},
			},
		},
	})
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{
		BaseURL:      srv.URL,
		EnterpriseID: "ent-1",
		DivisionMode: source.DivisionsFromOrganisations,
	})

	divisions, err := v.Divisions(context.Background())

	require.NoError(t, err)
	require.Len(t, divisions, 2)
	assert.Equal(t, analytics.DivisionID("org-1"), divisions[0].ID)
	assert.Equal(t, "North", divisions[0].Name)
	assert.Equal(t, "Organisation", divisions[1].Name, "missing name falls back to the mode label")
}

func TestViewpoint_DivisionsCustomFieldModeFetchesNothing(t *testing.T) {
	// No routes registered: any HTTP request would fail the test.
	srv := viewpointServer(t, map[string]any{})
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{
		BaseURL:      srv.URL,
		DivisionMode: source.DivisionsFromCustomField,
	})

	divisions, err := v.Divisions(context.Background())

	require.NoError(t, err)
	assert.Nil(t, divisions)
}

func TestViewpoint_TimeOffEventsFromTaskFolders(t *testing.T) {
	srv := viewpointServer(t, map[string]any{
		"/vfp/api/v1/taskfolders/folder-1/tasks": []map[string]any{
			{"id": "task-1"},
			{"id": "task-2"},
			{"id": "task-3"},
		},
		"/vfp/api/v3/tasks/task-1": map[string]any{
			"id":         "task-1",
			"assigneeId": "u1",
			"customFields": map[string]any{
				"Leave Start": "2024-06-03",
				"Leave End":   "2024-06-07",
				"Leave Type":  "Sick Leave",
				"Department":  "div-9",
			},
		},
		// RFC 3339 dates and a missing type default to vacation.
		"/vfp/api/v3/tasks/task-2": map[string]any{
			"id":             "task-2",
			"assigneeUserId": "u2",
			"customFields": map[string]any{
				"Leave Start": "2024-07-01T00:00:00Z",
				"Leave End":   "2024-07-05T00:00:00Z",
			},
		},
		// No usable dates: skipped, not an error.
		"/vfp/api/v3/tasks/task-3": map[string]any{
			"id":           "task-3",
			"customFields": map[string]any{},
		},
	})
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{
		BaseURL:                 srv.URL,
		DivisionMode:            source.DivisionsFromCustomField,
		DivisionCustomFieldName: "Department",
		TimeOffTaskFolderIDs:    []string{"folder-1"},
		StartDateFieldName:      "Leave Start",
		EndDateFieldName:        "Leave End",
		TypeFieldName:           "Leave Type",
	})

	events, err := v.TimeOffEvents(context.Background(), source.Window{})

	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "task-1", events[0].ID)
	assert.Equal(t, analytics.EmployeeID("u1"), events[0].EmployeeID)
	assert.Equal(t, analytics.CategorySick, events[0].Category)
	assert.Equal(t, "2024-06-03", events[0].StartDate.String())
	assert.Equal(t, "2024-06-07", events[0].EndDate.String())
	assert.Equal(t, analytics.DivisionID("div-9"), events[0].DivisionID)
	assert.Equal(t, analytics.SourceViewpoint, events[0].Source)

	assert.Equal(t, analytics.CategoryVacation, events[1].Category)
	assert.Equal(t, "2024-07-01", events[1].StartDate.String())
}

func TestViewpoint_WindowExcludesNonIntersectingTasks(t *testing.T) {
	srv := viewpointServer(t, map[string]any{
		"/vfp/api/v1/taskfolders/folder-1/tasks": []map[string]any{{"id": "task-1"}},
		"/vfp/api/v3/tasks/task-1": map[string]any{
			"id":         "task-1",
			"assigneeId": "u1",
			"customFields": map[string]any{
				"start": "2024-01-01",
				"end":   "2024-01-05",
			},
		},
	})
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{
		BaseURL:              srv.URL,
		TimeOffTaskFolderIDs: []string{"folder-1"},
		StartDateFieldName:   "start",
		EndDateFieldName:     "end",
		TypeFieldName:        "type",
	})

	from := analytics.MustParseDate("2024-06-01")
	events, err := v.TimeOffEvents(context.Background(), source.Window{From: &from})

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestViewpoint_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{BaseURL: srv.URL, EnterpriseID: "ent-1"})

	_, err := v.Employees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestViewpoint_ClientErrorsAreTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{BaseURL: srv.URL, EnterpriseID: "ent-1"})

	_, err := v.Employees(context.Background())

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestViewpoint_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	v := source.NewViewpoint(source.ViewpointConfig{
		BaseURL:      srv.URL,
		EnterpriseID: "ent-1",
		Token:        "secret-token",
	})

	_, err := v.Employees(context.Background())
	require.NoError(t, err)
}
