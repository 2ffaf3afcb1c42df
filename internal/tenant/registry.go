// Package tenant maintains the in-process tenant registry: active
// tenants, their quotas, and per-operation rate-limit overrides.
package tenant

import (
	"sync"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
)

// Registry is a concurrency-safe, process-wide table of tenants.
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]*model.Tenant
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tenants: make(map[string]*model.Tenant)}
}

// Put inserts or replaces a tenant record.
func (r *Registry) Put(t *model.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[t.ID] = t
}

// Get returns a tenant by id.
func (r *Registry) Get(id string) (*model.Tenant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	return t, ok
}

// Require returns a tenant by id, or a NotFound error naming it.
func (r *Registry) Require(id string) (*model.Tenant, error) {
	t, ok := r.Get(id)
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeTenantNotFound, "tenant "+id+" not found", nil)
	}
	if !t.Active {
		return nil, apperrors.PermissionDenied("tenant " + id + " is not active")
	}
	return t, nil
}

// Delete removes a tenant from the registry.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tenants, id)
}

// List returns every registered tenant.
func (r *Registry) List() []*model.Tenant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, t)
	}
	return out
}

// RateLimitOverrideFor returns the tenant's override for op, if any.
func (r *Registry) RateLimitOverrideFor(tenantID, op string) (model.RateLimitOverride, bool) {
	t, ok := r.Get(tenantID)
	if !ok || t.RateLimits == nil {
		return model.RateLimitOverride{}, false
	}
	o, ok := t.RateLimits[op]
	return o, ok
}
