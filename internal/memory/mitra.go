package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dailywork/dailywork-server/internal/domain/mitra"
)

var _ mitra.Repository = (*MitraRepository)(nil)

// MitraRepository implements mitra.Repository over a mutex-guarded map, with
// the same atomic check-then-write UpdateStatus as the order store.
type MitraRepository struct {
	mu   sync.RWMutex
	apps map[string]*mitra.Application
}

// NewMitraRepository returns an empty in-memory application store.
func NewMitraRepository() *MitraRepository {
	return &MitraRepository{apps: make(map[string]*mitra.Application)}
}

// Create stores a new application.
func (r *MitraRepository) Create(_ context.Context, a *mitra.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *a
	r.apps[a.ID] = &cp
	return nil
}

// Get returns the application or mitra.ErrNotFound.
func (r *MitraRepository) Get(_ context.Context, id string) (*mitra.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.apps[id]
	if !ok {
		return nil, mitra.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// GetByUser returns the user's application or mitra.ErrNotFound.
func (r *MitraRepository) GetByUser(_ context.Context, userID string) (*mitra.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.apps {
		if a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, mitra.ErrNotFound
}

// UpdateStatus applies the decision only while the stored status equals
// expected; otherwise mitra.ErrInvalidState.
func (r *MitraRepository) UpdateStatus(_ context.Context, id string, expected mitra.Status, patch mitra.StatusPatch) (*mitra.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.apps[id]
	if !ok {
		return nil, mitra.ErrNotFound
	}
	if a.Status != expected {
		return nil, mitra.ErrInvalidState
	}

	a.Status = patch.Status
	t := patch.DecidedAt
	a.DecidedAt = &t
	a.DecidedBy = patch.DecidedBy

	cp := *a
	return &cp, nil
}

// List returns applications with the given status, oldest submission first.
func (r *MitraRepository) List(_ context.Context, status mitra.Status) ([]mitra.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mitra.Application, 0)
	for _, a := range r.apps {
		if a.Status == status {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}
