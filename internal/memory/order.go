// Package memory provides in-process repository implementations with the
// same guarded-update guarantees as the PostgreSQL ones. They back the demo
// mode (no DATABASE_URL configured) and the handler/service tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dailywork/dailywork-server/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository over a mutex-guarded map. The
// mutex makes UpdateStatus an atomic check-then-write, which is what gives
// concurrent accepts a single winner.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

// NewOrderRepository returns an empty in-memory order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*order.Order)}
}

// Create stores a new order.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

// Get returns a copy of the order or order.ErrNotFound.
func (r *OrderRepository) Get(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// UpdateStatus applies patch only while the stored status equals expected.
// A status mismatch is order.ErrInvalidState; the record is left untouched.
func (r *OrderRepository) UpdateStatus(_ context.Context, id string, expected order.Status, patch order.StatusPatch) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status != expected {
		return nil, order.ErrInvalidState
	}

	o.Status = patch.Status
	if patch.MitraID != nil {
		o.MitraID = *patch.MitraID
	}
	if patch.WorkStart != nil {
		t := *patch.WorkStart
		o.WorkStart = &t
	}
	if patch.WorkEnd != nil {
		t := *patch.WorkEnd
		o.WorkEnd = &t
	}
	if patch.TotalAmount != nil {
		o.TotalAmount = *patch.TotalAmount
	}
	if patch.WorkDuration != nil {
		o.WorkDuration = *patch.WorkDuration
	}

	cp := *o
	return &cp, nil
}

// ListForUser returns the requester's orders, newest first.
func (r *OrderRepository) ListForUser(_ context.Context, userID string) ([]order.Order, error) {
	return r.filtered(func(o *order.Order) bool {
		return o.UserID == userID
	}), nil
}

// ListForMitra returns every order bound to the provider.
func (r *OrderRepository) ListForMitra(_ context.Context, mitraID string) ([]order.Order, error) {
	return r.filtered(func(o *order.Order) bool {
		return o.MitraID == mitraID
	}), nil
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(_ context.Context) ([]order.Order, error) {
	return r.filtered(func(*order.Order) bool { return true }), nil
}

// ListPending returns unassigned orders only.
func (r *OrderRepository) ListPending(_ context.Context) ([]order.Order, error) {
	return r.filtered(func(o *order.Order) bool {
		return o.Status == order.StatusPending
	}), nil
}

// ListCompletedForUser returns the requester's completed orders, optionally
// narrowed to a creation year-month.
func (r *OrderRepository) ListCompletedForUser(_ context.Context, userID string, f order.CompletedFilter) ([]order.Order, error) {
	return r.filtered(func(o *order.Order) bool {
		if o.UserID != userID || o.Status != order.StatusCompleted {
			return false
		}
		if f.YearMonth != "" && o.CreatedAt.Format("2006-01") != f.YearMonth {
			return false
		}
		return true
	}), nil
}

func (r *OrderRepository) filtered(keep func(*order.Order) bool) []order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
