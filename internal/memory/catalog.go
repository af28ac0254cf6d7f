package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dailywork/dailywork-server/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository over a mutex-guarded map.
type CatalogRepository struct {
	mu       sync.RWMutex
	services map[string]*catalog.Service
}

// NewCatalogRepository returns an empty in-memory catalog.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{services: make(map[string]*catalog.Service)}
}

// List returns catalog entries sorted by name; inactive ones only when
// includeInactive is set.
func (r *CatalogRepository) List(_ context.Context, includeInactive bool) ([]catalog.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Service, 0, len(r.services))
	for _, s := range r.services {
		if !s.IsActive && !includeInactive {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetByID returns the service or catalog.ErrNotFound.
func (r *CatalogRepository) GetByID(_ context.Context, id string) (*catalog.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// Create stores a new service.
func (r *CatalogRepository) Create(_ context.Context, s *catalog.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	r.services[s.ID] = &cp
	return nil
}

// Update replaces an existing service.
func (r *CatalogRepository) Update(_ context.Context, s *catalog.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[s.ID]; !ok {
		return catalog.ErrNotFound
	}
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

// Delete removes a service. Orders keep their denormalized service name.
func (r *CatalogRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.services, id)
	return nil
}
