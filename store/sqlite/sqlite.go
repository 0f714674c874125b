/*
Package sqlite provides the SQLite-backed user store.

PURPOSE:
  Persistent implementation of auth.UserStore for deployments that need
  accounts to survive restarts. The in-memory store (auth.MemoryStore)
  covers development and tests; both satisfy the same interface and are
  selected at startup.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging): readers don't
  block each other, a single writer at a time, better crash recovery.

MIGRATION:
  The schema is auto-migrated on New(). The table is small enough that
  versioned migrations would be ceremony.

USAGE:
  store, err := sqlite.New("./data/users.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc := auth.NewService(secret, ttl, store)

SEE ALSO:
  - auth/store.go: Interface definition and in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/vacation-tracker/auth"
)

// Store implements auth.UserStore on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash BLOB NOT NULL,
		tenant_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_tenant ON users(tenant_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USER STORE IMPLEMENTATION
// =============================================================================

func (s *Store) Authenticate(ctx context.Context, username, password string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, tenant_id, role FROM users WHERE username = ?`,
		username)

	var user auth.User
	var hash []byte
	if err := row.Scan(&user.ID, &user.Username, &hash, &user.TenantID, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Store) Get(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, tenant_id, role FROM users WHERE id = ?`, id)

	var user auth.User
	if err := row.Scan(&user.ID, &user.Username, &user.TenantID, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *Store) Add(ctx context.Context, username, password, tenantID string, role auth.Role) (*auth.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := auth.User{
		ID:       uuid.NewString(),
		Username: username,
		TenantID: tenantID,
		Role:     role,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, tenant_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, hash, user.TenantID, string(user.Role),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		// The unique constraint on username is the expected failure mode.
		return nil, auth.ErrUserExists
	}
	return &user, nil
}

func (s *Store) List(ctx context.Context) ([]auth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, tenant_id, role FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var user auth.User
		if err := rows.Scan(&user.ID, &user.Username, &user.TenantID, &user.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SeedDefaults creates the demo accounts when the store is empty. Used
// at startup so a fresh database is immediately usable.
func (s *Store) SeedDefaults(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		username, password, tenant string
		role                       auth.Role
	}{
		{"admin", "admin123", "acme", auth.RoleAdmin},
		{"demo", "demo123", "demo", auth.RoleUser},
		{"test", "test123", "testco", auth.RoleUser},
	}
	for _, d := range defaults {
		if _, err := s.Add(ctx, d.username, d.password, d.tenant, d.role); err != nil {
			return err
		}
	}
	return nil
}
