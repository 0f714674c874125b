package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vacation-tracker/auth"
)

// =============================================================================
// SERVICE
// =============================================================================

func testService(t *testing.T) *auth.Service {
	t.Helper()
	return auth.NewService("test-secret", time.Hour, auth.NewMemoryStoreWithDefaults())
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	svc := testService(t)

	token, user, err := svc.Login(context.Background(), "demo", "demo123")

	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "demo", user.Username)
	assert.Equal(t, "demo", user.TenantID)
	assert.Equal(t, auth.RoleUser, user.Role)

	verified, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, *user, *verified)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := testService(t)

	_, _, err := svc.Login(context.Background(), "demo", "wrong")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := testService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "demo123")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestVerifyToken_RejectsForeignSignature(t *testing.T) {
	token, _, err := testService(t).Login(context.Background(), "demo", "demo123")
	require.NoError(t, err)

	other := auth.NewService("different-secret", time.Hour, auth.NewMemoryStoreWithDefaults())
	_, err = other.VerifyToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_RejectsExpired(t *testing.T) {
	svc := auth.NewService("test-secret", time.Nanosecond, auth.NewMemoryStoreWithDefaults())

	token, _, err := svc.Login(context.Background(), "demo", "demo123")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.VerifyToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_RejectsGarbage(t *testing.T) {
	_, err := testService(t).VerifyToken("not.a.token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestMiddleware_PassesUserThroughContext(t *testing.T) {
	svc := testService(t)
	token, user, err := svc.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	var seen *auth.User
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
	assert.Equal(t, "acme", seen.TenantID)
	assert.Equal(t, auth.RoleAdmin, seen.Role)
}

func TestMiddleware_MissingHeader(t *testing.T) {
	handler := testService(t).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token provided")
}

func TestMiddleware_BadToken(t *testing.T) {
	handler := testService(t).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

func TestMemoryStore_AddAndList(t *testing.T) {
	store := auth.NewMemoryStore()
	ctx := context.Background()

	created, err := store.Add(ctx, "alice", "pw123456", "acme", auth.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = store.Add(ctx, "alice", "other", "acme", auth.RoleUser)
	assert.ErrorIs(t, err, auth.ErrUserExists)

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	_, err := auth.NewMemoryStore().Get(context.Background(), "missing")

	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestMemoryStore_ListPreservesInsertionOrder(t *testing.T) {
	store := auth.NewMemoryStore()
	ctx := context.Background()
	for _, name := range []string{"zed", "amy", "mid"} {
		_, err := store.Add(ctx, name, "pw123456", "acme", auth.RoleUser)
		require.NoError(t, err)
	}

	users, err := store.List(ctx)

	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "zed", users[0].Username)
	assert.Equal(t, "amy", users[1].Username)
	assert.Equal(t, "mid", users[2].Username)
}
