package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/vacation-tracker/analytics"
)

// =============================================================================
// VIEWPOINT FOR PROJECTS CONNECTOR
// =============================================================================
// Time-off lives in Viewpoint as tasks inside dedicated task folders, with
// the leave dates and category stored in per-enterprise custom fields.
// The connector maps enterprise users to employees, one of three
// organisational structures to divisions, and task custom fields to
// events. Field names vary per enterprise and are configured per tenant.

// DivisionMode selects which Viewpoint structure backs divisions.
type DivisionMode string

const (
	DivisionsFromOrganisations DivisionMode = "organisation"
	DivisionsFromSites         DivisionMode = "site"
	DivisionsFromProjects      DivisionMode = "project"
	DivisionsFromCustomField   DivisionMode = "userCustomField"
)

// ViewpointConfig is the per-tenant connector configuration.
type ViewpointConfig struct {
	BaseURL                 string       `json:"baseUrl"`
	EnterpriseID            string       `json:"enterpriseId"`
	Token                   string       `json:"token"`
	DivisionMode            DivisionMode `json:"divisionMode"`
	DivisionCustomFieldName string       `json:"divisionCustomFieldName,omitempty"`
	TimeOffTaskFolderIDs    []string     `json:"timeOffTaskFolderIds"`
	StartDateFieldName      string       `json:"startDateFieldName"`
	EndDateFieldName        string       `json:"endDateFieldName"`
	TypeFieldName           string       `json:"typeFieldName"`
}

const (
	viewpointRetries    = 3
	viewpointRetryDelay = 250 * time.Millisecond
)

// Viewpoint implements DataSource against the Viewpoint For Projects API.
type Viewpoint struct {
	cfg  ViewpointConfig
	http *http.Client
	log  *logrus.Entry
}

func NewViewpoint(cfg ViewpointConfig) *Viewpoint {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Viewpoint{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  logrus.WithField("connector", "viewpoint"),
	}
}

// =============================================================================
// DATA SOURCE IMPLEMENTATION
// =============================================================================

func (v *Viewpoint) Employees(ctx context.Context) ([]analytics.Employee, error) {
	items, err := v.getList(ctx, fmt.Sprintf("/vfp/api/v2/enterprises/%s/users", v.cfg.EnterpriseID))
	if err != nil {
		return nil, fmt.Errorf("viewpoint users: %w", err)
	}

	employees := make([]analytics.Employee, 0, len(items))
	for _, u := range items {
		id := firstString(u, "id", "userId")
		name := strings.TrimSpace(firstString(u, "firstName") + " " + firstString(u, "lastName"))
		if name == "" {
			name = firstString(u, "displayName")
		}
		employees = append(employees, analytics.Employee{
			ID:          analytics.EmployeeID(id),
			FullName:    name,
			Email:       firstString(u, "email"),
			ExternalRef: id,
		})
	}
	return employees, nil
}

func (v *Viewpoint) Divisions(ctx context.Context) ([]analytics.Division, error) {
	var path, fallbackName string
	var idKeys []string

	switch v.cfg.DivisionMode {
	case DivisionsFromOrganisations:
		path = fmt.Sprintf("/vfp/api/v2/enterprises/%s/organisations", v.cfg.EnterpriseID)
		idKeys = []string{"id", "organisationId"}
		fallbackName = "Organisation"
	case DivisionsFromSites:
		path = fmt.Sprintf("/vfp/api/v1/enterprises/%s/sites", v.cfg.EnterpriseID)
		idKeys = []string{"id", "siteId"}
		fallbackName = "Site"
	case DivisionsFromProjects:
		path = fmt.Sprintf("/vfp/api/v1/enterprises/%s/documentfolders", v.cfg.EnterpriseID)
		idKeys = []string{"id", "projectId"}
		fallbackName = "Project"
	default:
		// userCustomField mode: divisions are implicit in per-user field
		// values and surface through the events instead.
		return nil, nil
	}

	items, err := v.getList(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("viewpoint divisions: %w", err)
	}

	divisions := make([]analytics.Division, 0, len(items))
	for _, item := range items {
		id := firstString(item, idKeys...)
		name := firstString(item, "name", "displayName")
		if name == "" {
			name = fallbackName
		}
		divisions = append(divisions, analytics.Division{
			ID:          analytics.DivisionID(id),
			Name:        name,
			ExternalRef: id,
		})
	}
	return divisions, nil
}

// TimeOffEvents lists each configured task folder, then fetches every
// task individually: the list endpoint does not include custom fields.
func (v *Viewpoint) TimeOffEvents(ctx context.Context, window Window) ([]analytics.TimeOffEvent, error) {
	var events []analytics.TimeOffEvent

	for _, folderID := range v.cfg.TimeOffTaskFolderIDs {
		tasks, err := v.getList(ctx, fmt.Sprintf("/vfp/api/v1/taskfolders/%s/tasks", folderID))
		if err != nil {
			return nil, fmt.Errorf("viewpoint task folder %s: %w", folderID, err)
		}

		for _, t := range tasks {
			taskID := firstString(t, "id", "taskId")
			if taskID == "" {
				continue
			}

			var full map[string]any
			if err := v.getJSON(ctx, fmt.Sprintf("/vfp/api/v3/tasks/%s", taskID), &full); err != nil {
				return nil, fmt.Errorf("viewpoint task %s: %w", taskID, err)
			}

			ev, ok := v.eventFromTask(taskID, full, window)
			if !ok {
				continue
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

func (v *Viewpoint) eventFromTask(taskID string, task map[string]any, window Window) (analytics.TimeOffEvent, bool) {
	fields, _ := task["customFields"].(map[string]any)

	start, err1 := parseViewpointDate(fields[v.cfg.StartDateFieldName])
	end, err2 := parseViewpointDate(fields[v.cfg.EndDateFieldName])
	if err1 != nil || err2 != nil {
		v.log.WithField("task", taskID).Debug("skipping task without usable leave dates")
		return analytics.TimeOffEvent{}, false
	}

	if window.From != nil && end.Before(*window.From) {
		return analytics.TimeOffEvent{}, false
	}
	if window.To != nil && start.After(*window.To) {
		return analytics.TimeOffEvent{}, false
	}

	employeeID := firstString(task, "assigneeId", "assigneeUserId", "createdByUserId")
	rawType, _ := fields[v.cfg.TypeFieldName].(string)
	if rawType == "" {
		rawType = string(analytics.CategoryVacation)
	}

	ev := analytics.TimeOffEvent{
		ID:         firstString(task, "id"),
		EmployeeID: analytics.EmployeeID(employeeID),
		Category:   analytics.NormalizeCategory(rawType),
		StartDate:  start,
		EndDate:    end,
		Source:     analytics.SourceViewpoint,
		Raw:        task,
	}
	if ev.ID == "" {
		ev.ID = taskID
	}
	if v.cfg.DivisionMode == DivisionsFromCustomField {
		if division, ok := fields[v.cfg.DivisionCustomFieldName].(string); ok {
			ev.DivisionID = analytics.DivisionID(division)
		}
	}
	return ev, true
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

// getJSON performs an authenticated GET with bounded retries. Transport
// errors and 5xx responses are retried with a linear backoff; 4xx are
// terminal since retrying cannot fix them.
func (v *Viewpoint) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= viewpointRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * viewpointRetryDelay):
			}
		}

		body, retryable, err := v.fetch(ctx, path)
		if err == nil {
			return json.Unmarshal(body, out)
		}
		lastErr = err
		if !retryable {
			return err
		}
		v.log.WithError(err).WithField("attempt", attempt).Warn("viewpoint request failed, retrying")
	}
	return lastErr
}

func (v *Viewpoint) fetch(ctx context.Context, path string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+v.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("viewpoint returned %d for %s", resp.StatusCode, path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("viewpoint returned %d for %s", resp.StatusCode, path)
	}
	return body, false, nil
}

// getList handles the API's two list shapes: a bare JSON array, or an
// object wrapping the array under "items".
func (v *Viewpoint) getList(ctx context.Context, path string) ([]map[string]any, error) {
	var raw json.RawMessage
	if err := v.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected list payload for %s: %w", path, err)
	}
	return wrapped.Items, nil
}

// firstString returns the first present key rendered as a string. Numeric
// ids are formatted without an exponent or trailing zeros.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// parseViewpointDate accepts the date renderings seen in the wild:
// date-only strings, RFC 3339 timestamps, and a few legacy layouts.
func parseViewpointDate(value any) (analytics.Date, error) {
	s, ok := value.(string)
	if !ok || s == "" {
		return analytics.Date{}, fmt.Errorf("missing date value")
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return analytics.DateOf(t), nil
		}
	}
	return analytics.Date{}, fmt.Errorf("unparseable date %q", s)
}
