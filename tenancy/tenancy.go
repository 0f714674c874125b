/*
Package tenancy resolves which data source backs each tenant.

PURPOSE:
  Tenants are isolated organizations; each one's connector configuration
  lives in a JSON registry file. This package reads that file (with a
  short TTL cache so per-request resolution never hits disk), and builds
  and caches the connector for each tenant.

REGISTRY FILE:
  {
    "tenants": [
      {"id": "demo", "name": "Demo Co",
       "connector": {"kind": "mock", "config": {"seed": 42}}},
      {"id": "acme", "name": "Acme",
       "connector": {"kind": "viewpointForProjects", "config": {...}}}
    ]
  }

CONNECTOR KINDS:
  mock                  Seeded generated data (source.Mock)
  viewpointForProjects  External task-tracking API (source.Viewpoint)
  none                  Tenant exists but has no data source yet

SEE ALSO:
  - source: Connector implementations
  - api:    Resolves the tenant id from the authenticated user
*/
package tenancy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/vacation-tracker/source"
)

var (
	// ErrUnknownTenant is returned for tenant ids absent from the registry.
	ErrUnknownTenant = errors.New("unknown tenant")

	// ErrNotConfigured is returned when a tenant exists but its connector
	// kind is "none" or unrecognized.
	ErrNotConfigured = errors.New("tenant connector not configured")
)

// Connector kinds as they appear in the registry file.
const (
	KindMock      = "mock"
	KindViewpoint = "viewpointForProjects"
	KindNone      = "none"
)

// ConnectorSpec is the tagged union from the registry file; Config is
// decoded per kind when the connector is built.
type ConnectorSpec struct {
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config,omitempty"`
}

// TenantConfig is one registry entry.
type TenantConfig struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Connector ConnectorSpec `json:"connector"`
}

type registryFile struct {
	Tenants []TenantConfig `json:"tenants"`
}

// =============================================================================
// REGISTRY - TTL-cached tenants file
// =============================================================================

const registryTTL = 5 * time.Second

// Registry reads the tenants file, caching parsed contents briefly so
// edits are picked up without a restart but requests don't hit disk.
type Registry struct {
	path string

	mu       sync.Mutex
	cached   *registryFile
	cachedAt time.Time
}

func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Tenants returns all registry entries.
func (r *Registry) Tenants() ([]TenantConfig, error) {
	file, err := r.load()
	if err != nil {
		return nil, err
	}
	return file.Tenants, nil
}

// Tenant looks up one entry by id.
func (r *Registry) Tenant(id string) (*TenantConfig, error) {
	file, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range file.Tenants {
		if file.Tenants[i].ID == id {
			return &file.Tenants[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTenant, id)
}

func (r *Registry) load() (*registryFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil && time.Since(r.cachedAt) < registryTTL {
		return r.cached, nil
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse tenants file %s: %w", r.path, err)
	}
	if file.Tenants == nil {
		return nil, fmt.Errorf("invalid tenants file %s: missing tenants list", r.path)
	}

	r.cached = &file
	r.cachedAt = time.Now()
	return r.cached, nil
}

// =============================================================================
// FACTORY - Per-tenant connector construction and caching
// =============================================================================

// Factory builds the DataSource for a tenant and caches it. Caching
// matters for the mock connector in particular: rebuilding it would
// regenerate data on every request.
type Factory struct {
	registry *Registry
	log      *logrus.Logger

	mu      sync.Mutex
	sources map[string]source.DataSource
}

func NewFactory(registry *Registry, log *logrus.Logger) *Factory {
	return &Factory{
		registry: registry,
		log:      log,
		sources:  make(map[string]source.DataSource),
	}
}

// DataSourceFor returns the connector backing the tenant, building it on
// first use.
func (f *Factory) DataSourceFor(tenantID string) (source.DataSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ds, ok := f.sources[tenantID]; ok {
		return ds, nil
	}

	tenant, err := f.registry.Tenant(tenantID)
	if err != nil {
		return nil, err
	}

	ds, err := f.build(tenant)
	if err != nil {
		return nil, err
	}

	f.log.WithFields(logrus.Fields{
		"tenant": tenant.ID,
		"kind":   tenant.Connector.Kind,
	}).Info("built tenant data source")

	f.sources[tenantID] = ds
	return ds, nil
}

func (f *Factory) build(tenant *TenantConfig) (source.DataSource, error) {
	switch tenant.Connector.Kind {
	case KindMock:
		var cfg source.MockConfig
		if len(tenant.Connector.Config) > 0 {
			if err := json.Unmarshal(tenant.Connector.Config, &cfg); err != nil {
				return nil, fmt.Errorf("tenant %s: mock config: %w", tenant.ID, err)
			}
		}
		return source.NewMock(cfg), nil

	case KindViewpoint:
		var cfg source.ViewpointConfig
		if err := json.Unmarshal(tenant.Connector.Config, &cfg); err != nil {
			return nil, fmt.Errorf("tenant %s: viewpoint config: %w", tenant.ID, err)
		}
		return source.NewViewpoint(cfg), nil

	case KindNone, "":
		return nil, fmt.Errorf("%w: tenant %s", ErrNotConfigured, tenant.ID)

	default:
		return nil, fmt.Errorf("%w: tenant %s has unknown kind %q",
			ErrNotConfigured, tenant.ID, tenant.Connector.Kind)
	}
}
