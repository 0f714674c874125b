/*
handlers.go - HTTP API handlers for the vacation tracker

PURPOSE:
  Exposes the analytics engine per tenant. Handlers resolve the caller's
  tenant from the JWT claims, fetch the tenant snapshot through the
  data-source factory, run the requested computation, and serialize the
  result. All computation is per request; the engine holds no state.

REQUEST FLOW:
  1. auth.Middleware has already verified the token
  2. Resolve tenant -> data source via the tenancy factory
  3. Fetch the combined snapshot (three concurrent upstream calls)
  4. Run the pure analytics computation
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid query/path parameters
  - 401: Missing or invalid token (middleware)
  - 403: Insufficient role
  - 404: Unknown tenant
  - 501: Tenant has no connector configured
  - 502: Upstream data source failure

SEE ALSO:
  - dto.go:    Request/response data structures
  - export.go: XLSX report handler
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/vacation-tracker/analytics"
	"github.com/warp/vacation-tracker/auth"
	"github.com/warp/vacation-tracker/source"
	"github.com/warp/vacation-tracker/tenancy"
)

// Defaults applied when the client omits the corresponding query param.
const (
	defaultBusiestDayLimit      = 10
	defaultCoverageGapThreshold = 0.3
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Sources *tenancy.Factory
	Auth    *auth.Service
	Log     *logrus.Logger

	// Now supplies the request clock; the engine itself never reads
	// wall-clock time. Injected so handler tests are deterministic.
	Now func() time.Time
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(sources *tenancy.Factory, authSvc *auth.Service, log *logrus.Logger) *Handler {
	return &Handler{
		Sources: sources,
		Auth:    authSvc,
		Log:     log,
		Now:     time.Now,
	}
}

// =============================================================================
// HEALTH + AUTH
// =============================================================================

// Health is the public liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"multiTenant": true,
		"timestamp":   h.Now().UTC().Format(time.RFC3339),
	})
}

// Login verifies credentials and issues a token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required", nil)
		return
	}

	token, user, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: *user})
}

// CurrentUser echoes the authenticated user from the token.
// GET /api/auth/me
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// ListUsers returns all accounts. Admin only.
// GET /api/auth/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if user == nil || user.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "Admin access required", nil)
		return
	}

	users, err := h.Auth.Store().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// =============================================================================
// SNAPSHOT RESOLUTION
// =============================================================================

// snapshot resolves the caller's tenant and fetches its combined
// employees/divisions/events view. On failure it writes the HTTP error
// itself and returns nil.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request, window source.Window) *source.Snapshot {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided", nil)
		return nil
	}

	ds, err := h.Sources.DataSourceFor(user.TenantID)
	if err != nil {
		switch {
		case errors.Is(err, tenancy.ErrUnknownTenant):
			writeError(w, http.StatusNotFound, "Unknown tenant", err)
		case errors.Is(err, tenancy.ErrNotConfigured):
			writeError(w, http.StatusNotImplemented, "Tenant connector not configured", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to resolve tenant", err)
		}
		return nil
	}

	snap, err := source.FetchSnapshot(r.Context(), ds, window)
	if err != nil {
		h.Log.WithError(err).WithField("tenant", user.TenantID).Error("snapshot fetch failed")
		writeError(w, http.StatusBadGateway, "Upstream data source failure", err)
		return nil
	}
	return snap
}

// =============================================================================
// SNAPSHOT PASS-THROUGH
// =============================================================================

// ListEmployees returns the tenant's employee snapshot.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	dtos := make([]EmployeeDTO, len(snap.Employees))
	for i, e := range snap.Employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListDivisions returns the tenant's division snapshot.
// GET /api/divisions
func (h *Handler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	dtos := make([]DivisionDTO, len(snap.Divisions))
	for i, d := range snap.Divisions {
		dtos[i] = toDivisionDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEvents returns the tenant's events, optionally windowed.
// GET /api/events?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date window", err)
		return
	}

	snap := h.snapshot(w, r, window)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(snap.Events))
}

// =============================================================================
// STATISTICS
// =============================================================================

// EmployeeStats returns per-employee aggregates plus the orphan-event
// diagnostic.
// GET /api/stats/employees
func (h *Handler) EmployeeStats(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	stats, orphans := analytics.EmployeeLeaveStats(snap.Employees, snap.Events)
	writeJSON(w, http.StatusOK, EmployeeStatsResponse{
		Stats:        toEmployeeStatsDTOs(stats),
		OrphanEvents: orphans,
	})
}

// DivisionStats returns per-division aggregates.
// GET /api/stats/divisions
func (h *Handler) DivisionStats(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	empStats, _ := analytics.EmployeeLeaveStats(snap.Employees, snap.Events)
	divStats := analytics.DivisionLeaveStats(snap.Divisions, snap.Employees, empStats)
	writeJSON(w, http.StatusOK, toDivisionStatsDTOs(divStats))
}

// CategoryBreakdown returns company-wide day totals per category.
// GET /api/stats/breakdown
func (h *Handler) CategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	b := analytics.BreakdownByCategory(snap.Events)
	writeJSON(w, http.StatusOK, BreakdownDTO{
		Vacation: b.Vacation,
		Sick:     b.Sick,
		Unpaid:   b.Unpaid,
		Other:    b.Other,
	})
}

// BusiestDays returns the top days by overlap count.
// GET /api/stats/busiest-days?limit=10
func (h *Handler) BusiestDays(w http.ResponseWriter, r *http.Request) {
	limit := defaultBusiestDayLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, toDayStatsDTOs(analytics.BusiestDays(snap.Events, limit)))
}

// CoverageGaps returns days where workforce absence crosses the threshold.
// GET /api/stats/coverage-gaps?threshold=0.3
func (h *Handler) CoverageGaps(w http.ResponseWriter, r *http.Request) {
	threshold := defaultCoverageGapThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			writeError(w, http.StatusBadRequest, "Threshold must be a fraction between 0 and 1", err)
			return
		}
		threshold = parsed
	}

	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK,
		toDayStatsDTOs(analytics.CoverageGaps(snap.Events, snap.Employees, threshold)))
}

// =============================================================================
// CALENDAR + FILTERED DAYS
// =============================================================================

// Calendar returns the fixed 6x7 grid for one month.
// GET /api/calendar/{year}/{month}
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "Month must be 1-12", err)
		return
	}

	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	today := analytics.DateOf(h.Now())
	month := analytics.BuildMonth(year, time.Month(monthNum), snap.Events, today)
	writeJSON(w, http.StatusOK, toCalendarMonthDTO(month))
}

// FilteredDays returns the filtered day->events map for display.
// GET /api/days?division=&type=&q=&from=&to=
func (h *Handler) FilteredDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := analytics.Filter{
		DivisionID: q.Get("division"),
		Category:   q.Get("type"),
		Query:      q.Get("q"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	}

	snap := h.snapshot(w, r, source.Window{})
	if snap == nil {
		return
	}

	buckets := analytics.BuildDayBuckets(snap.Events)
	filtered := filter.Apply(buckets, snap.Employees)

	out := make(map[string][]EventDTO, len(filtered))
	for day, events := range filtered {
		out[day] = toEventDTOs(events)
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func windowFromQuery(r *http.Request) (source.Window, error) {
	var window source.Window
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := analytics.ParseDate(raw)
		if err != nil {
			return source.Window{}, err
		}
		window.From = &d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := analytics.ParseDate(raw)
		if err != nil {
			return source.Window{}, err
		}
		window.To = &d
	}
	return window, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
