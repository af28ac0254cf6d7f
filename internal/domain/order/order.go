package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors surfaced by the lifecycle engine.
var (
	// ErrNotFound indicates an unknown order id.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidState indicates a transition that is not legal from the
	// order's current status, including replays of an already-applied
	// transition.
	ErrInvalidState = errors.New("invalid order state")
	// ErrForbidden indicates the actor is not authorized for the transition.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidDuration indicates a negative elapsed work time at
	// completion (clock skew, end before start).
	ErrInvalidDuration = errors.New("invalid work duration")
)

// Status is the order lifecycle state. Transitions only move forward along
// pending → accepted → on-way → working → completed; cancelled absorbs from
// pending and accepted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusOnWay     Status = "on-way"
	StatusWorking   Status = "working"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Order is the central marketplace entity: a customer's service request and
// its progress through the provider workflow.
type Order struct {
	ID     string
	UserID string
	// MitraID is empty while the order is pending and fixed for the rest of
	// the order's life once a provider accepts.
	MitraID   string
	ServiceID string
	// ServiceName is copied from the catalog at creation time; later catalog
	// edits do not propagate.
	ServiceName   string
	Address       string
	ScheduledDate string
	ScheduledTime string
	Notes         string
	Status        Status

	// WorkStart is set when the provider begins work (status working).
	WorkStart *time.Time
	// WorkEnd, TotalAmount and WorkDuration are set exactly once, on
	// completion, and are immutable thereafter. TotalAmount is in currency
	// minor units and is always derived from WorkEnd - WorkStart.
	WorkEnd      *time.Time
	TotalAmount  int64
	WorkDuration time.Duration

	CreatedAt time.Time
}

// StatusPatch carries the fields a guarded transition may set alongside the
// new status. Nil fields are left untouched by the store.
type StatusPatch struct {
	Status       Status
	MitraID      *string
	WorkStart    *time.Time
	WorkEnd      *time.Time
	TotalAmount  *int64
	WorkDuration *time.Duration
}

// CompletedFilter narrows a completed-order history query. The zero value
// matches every completed order of the requester.
type CompletedFilter struct {
	// YearMonth filters by creation month in "2006-01" form when non-empty.
	YearMonth string
}

// Repository defines persistence operations for orders. Implementations must
// make UpdateStatus a guarded conditional update: the write applies only when
// the stored status still equals expected, atomically, so that concurrent
// accepts of one pending order have exactly one winner.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, expected Status, patch StatusPatch) (*Order, error)
	ListForUser(ctx context.Context, userID string) ([]Order, error)
	ListForMitra(ctx context.Context, mitraID string) ([]Order, error)
	ListPending(ctx context.Context) ([]Order, error)
	// ListAll returns every order, newest first (admin oversight view).
	ListAll(ctx context.Context) ([]Order, error)
	ListCompletedForUser(ctx context.Context, userID string, f CompletedFilter) ([]Order, error)
}
