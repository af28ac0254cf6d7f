// Package mitra implements the provider approval workflow: a prospective
// mitra submits an application, an administrator approves, rejects, suspends
// or reinstates it. Approval is what makes a mitra's actor identity verified;
// the order engine itself never inspects applications.
package mitra

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for the approval workflow.
var (
	// ErrNotFound indicates an unknown application id.
	ErrNotFound = errors.New("application not found")
	// ErrInvalidState indicates a decision that is not legal from the
	// application's current status.
	ErrInvalidState = errors.New("invalid application state")
	// ErrForbidden indicates the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyApplied indicates the user already has an application.
	ErrAlreadyApplied = errors.New("application already exists")
	// ErrInvalidRequest indicates a malformed application submission.
	ErrInvalidRequest = errors.New("invalid application request")
)

// Status is the application review state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
)

// Application is a mitra onboarding record, distinct from orders.
type Application struct {
	ID     string
	UserID string
	Name   string
	Email  string
	Phone  string
	// Skills is the free-text list of services the applicant offers.
	Skills      string
	Status      Status
	SubmittedAt time.Time
	// DecidedAt and DecidedBy record the latest admin decision.
	DecidedAt *time.Time
	DecidedBy string
}

// StatusPatch carries the decision fields a guarded transition sets.
type StatusPatch struct {
	Status    Status
	DecidedAt time.Time
	DecidedBy string
}

// Repository defines persistence operations for applications. UpdateStatus
// follows the same guarded conditional-update contract as the order store:
// the write applies only while the stored status equals expected.
type Repository interface {
	Create(ctx context.Context, a *Application) error
	Get(ctx context.Context, id string) (*Application, error)
	GetByUser(ctx context.Context, userID string) (*Application, error)
	UpdateStatus(ctx context.Context, id string, expected Status, patch StatusPatch) (*Application, error)
	List(ctx context.Context, status Status) ([]Application, error)
}
