package mitra

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/dailywork/dailywork-server/internal/domain/auth"
)

// SubmitRequest holds the applicant-supplied fields.
type SubmitRequest struct {
	Name   string
	Email  string
	Phone  string
	Skills string
}

// Service drives the application workflow. Decisions are admin-only and go
// through guarded conditional updates, so a double-submitted decision fails
// with ErrInvalidState instead of flip-flopping the record.
type Service struct {
	apps Repository
	now  func() time.Time
}

// NewService creates the approval workflow service.
func NewService(apps Repository) *Service {
	return &Service{apps: apps, now: time.Now}
}

// Submit files a new pending application for the acting user. One application
// per user; re-submission is ErrAlreadyApplied.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, req SubmitRequest) (*Application, error) {
	if req.Name == "" || req.Email == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "name and email are required")
	}
	if existing, err := s.apps.GetByUser(ctx, actor.ID); err == nil && existing != nil {
		return nil, errors.Wrapf(ErrAlreadyApplied, "user %s", actor.ID)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check existing application")
	}

	a := &Application{
		ID:          uuid.New().String(),
		UserID:      actor.ID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Skills:      req.Skills,
		Status:      StatusPending,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.apps.Create(ctx, a); err != nil {
		return nil, errors.Wrap(err, "create application")
	}
	return a, nil
}

// Approve grants the applicant verified-mitra standing. Pending only.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, id string) (*Application, error) {
	return s.decide(ctx, actor, id, StatusPending, StatusApproved)
}

// Reject declines a pending application.
func (s *Service) Reject(ctx context.Context, actor auth.Actor, id string) (*Application, error) {
	return s.decide(ctx, actor, id, StatusPending, StatusRejected)
}

// Suspend revokes an approved mitra's standing.
func (s *Service) Suspend(ctx context.Context, actor auth.Actor, id string) (*Application, error) {
	return s.decide(ctx, actor, id, StatusApproved, StatusSuspended)
}

// Reinstate restores a suspended mitra to approved.
func (s *Service) Reinstate(ctx context.Context, actor auth.Actor, id string) (*Application, error) {
	return s.decide(ctx, actor, id, StatusSuspended, StatusApproved)
}

// ListPending returns the admin review queue.
func (s *Service) ListPending(ctx context.Context, actor auth.Actor) ([]Application, error) {
	if !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "admin role required")
	}
	return s.apps.List(ctx, StatusPending)
}

// IsVerified reports whether the user holds an approved application. The
// identity layer uses this to mark mitra actors verified.
func (s *Service) IsVerified(ctx context.Context, userID string) (bool, error) {
	a, err := s.apps.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "get application")
	}
	return a.Status == StatusApproved, nil
}

func (s *Service) decide(ctx context.Context, actor auth.Actor, id string, from, to Status) (*Application, error) {
	if !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "admin role required")
	}

	a, err := s.apps.UpdateStatus(ctx, id, from, StatusPatch{
		Status:    to,
		DecidedAt: s.now().UTC(),
		DecidedBy: actor.ID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s application", to)
	}
	return a, nil
}
