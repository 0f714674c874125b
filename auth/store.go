package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// USER STORE
// =============================================================================

// UserStore holds credentials and user records. Implementations are
// constructed at startup and injected; see MemoryStore here and the
// SQLite-backed store in store/sqlite.
type UserStore interface {
	// Authenticate checks username/password and returns the user, or
	// ErrInvalidCredentials. It never reveals whether the username exists.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// Get returns a user by id, or ErrUserNotFound.
	Get(ctx context.Context, id string) (*User, error)

	// Add creates a user with a bcrypt-hashed password and a generated id.
	Add(ctx context.Context, username, password, tenantID string, role Role) (*User, error)

	// List returns all users without credential material.
	List(ctx context.Context) ([]User, error)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

type memoryRecord struct {
	user User
	hash []byte
}

// MemoryStore is the in-memory UserStore used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*memoryRecord
	byName  map[string]*memoryRecord
	ordered []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*memoryRecord),
		byName: make(map[string]*memoryRecord),
	}
}

// NewMemoryStoreWithDefaults seeds the demo accounts the development
// setup expects: one admin and two tenant-scoped users.
func NewMemoryStoreWithDefaults() *MemoryStore {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Add(ctx, "admin", "admin123", "acme", RoleAdmin)
	s.Add(ctx, "demo", "demo123", "demo", RoleUser)
	s.Add(ctx, "test", "test123", "testco", RoleUser)
	return s
}

func (s *MemoryStore) Authenticate(_ context.Context, username, password string) (*User, error) {
	s.mu.RLock()
	rec, ok := s.byName[username]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user := rec.user
	return &user, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := rec.user
	return &user, nil
}

func (s *MemoryStore) Add(_ context.Context, username, password, tenantID string, role Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[username]; exists {
		return nil, ErrUserExists
	}

	rec := &memoryRecord{
		user: User{
			ID:       uuid.NewString(),
			Username: username,
			TenantID: tenantID,
			Role:     role,
		},
		hash: hash,
	}
	s.byID[rec.user.ID] = rec
	s.byName[username] = rec
	s.ordered = append(s.ordered, rec.user.ID)

	user := rec.user
	return &user, nil
}

func (s *MemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.ordered))
	for _, id := range s.ordered {
		users = append(users, s.byID[id].user)
	}
	return users, nil
}
