package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/dailywork/dailywork-server/internal/domain/auth"
	"github.com/dailywork/dailywork-server/internal/domain/catalog"
)

// ErrInvalidRequest indicates a malformed or unsatisfiable order request.
var ErrInvalidRequest = errors.New("invalid order request")

// CreateRequest holds the input for placing a new order.
type CreateRequest struct {
	ServiceID     string
	Address       string
	ScheduledDate string
	ScheduledTime string
	Notes         string
}

// Elapsed is the advisory live view of a working order: how long the provider
// has been on the clock and what the bill would be if work stopped now. It is
// a derived read for display polling, never the source of the final amount.
type Elapsed struct {
	Duration      time.Duration
	RunningAmount int64
}

// Service is the order lifecycle engine. It validates and applies state
// transitions, enforces actor authorization, and computes elapsed work
// duration and cost on completion.
//
// Every transition goes through the repository's guarded conditional update,
// so a replayed command (flaky client retry, dropped ack) fails with
// ErrInvalidState instead of double-applying side effects.
type Service struct {
	orders     Repository
	services   catalog.Repository
	hourlyRate int64

	// now is swapped out in tests.
	now func() time.Time
}

// NewService creates the lifecycle engine. A non-positive hourlyRate falls
// back to DefaultHourlyRate.
func NewService(orders Repository, services catalog.Repository, hourlyRate int64) *Service {
	if hourlyRate <= 0 {
		hourlyRate = DefaultHourlyRate
	}
	return &Service{
		orders:     orders,
		services:   services,
		hourlyRate: hourlyRate,
		now:        time.Now,
	}
}

// Create places a new pending order for the requesting customer. The catalog
// service must exist and be active; its display name is copied onto the order.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Order, error) {
	if actor.Role != auth.RoleUser {
		return nil, errors.Wrap(ErrForbidden, "only customers place orders")
	}
	if req.ServiceID == "" || req.Address == "" || req.ScheduledDate == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "service, address and date are required")
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, errors.Wrapf(ErrInvalidRequest, "service %s not found", req.ServiceID)
		}
		return nil, errors.Wrap(err, "get service")
	}
	if !svc.IsActive {
		return nil, errors.Wrapf(ErrInvalidRequest, "service %s is inactive", req.ServiceID)
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        actor.ID,
		ServiceID:     svc.ID,
		ServiceName:   svc.Name,
		Address:       req.Address,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Notes:         req.Notes,
		Status:        StatusPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Accept binds the order to the accepting provider and moves it to accepted.
// Under concurrent accepts of the same pending order the store's conditional
// update guarantees at most one winner; losers observe ErrInvalidState.
func (s *Service) Accept(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	if err := requireVerifiedMitra(actor); err != nil {
		return nil, err
	}

	mitraID := actor.ID
	o, err := s.orders.UpdateStatus(ctx, orderID, StatusPending, StatusPatch{
		Status:  StatusAccepted,
		MitraID: &mitraID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "accept")
	}
	return o, nil
}

// Reject cancels a pending order without binding the provider.
func (s *Service) Reject(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	if err := requireVerifiedMitra(actor); err != nil {
		return nil, err
	}

	o, err := s.orders.UpdateStatus(ctx, orderID, StatusPending, StatusPatch{
		Status: StatusCancelled,
	})
	if err != nil {
		return nil, errors.Wrap(err, "reject")
	}
	return o, nil
}

// Cancel lets the requester withdraw their own order while it is still
// pending or accepted.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID && !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "not the requester")
	}
	if o.Status != StatusPending && o.Status != StatusAccepted {
		return nil, errors.Wrapf(ErrInvalidState, "cannot cancel from %s", o.Status)
	}

	o, err = s.orders.UpdateStatus(ctx, orderID, o.Status, StatusPatch{
		Status: StatusCancelled,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cancel")
	}
	return o, nil
}

// Depart marks the bound provider as en route to the job site.
func (s *Service) Depart(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	if err := s.requireBoundMitra(ctx, actor, orderID); err != nil {
		return nil, err
	}

	o, err := s.orders.UpdateStatus(ctx, orderID, StatusAccepted, StatusPatch{
		Status: StatusOnWay,
	})
	if err != nil {
		return nil, errors.Wrap(err, "depart")
	}
	return o, nil
}

// StartWork begins the billable clock: the order moves to working and the
// current time is recorded as work start. Calling it again on an already
// working order fails with ErrInvalidState and never resets the timestamp.
func (s *Service) StartWork(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	if err := s.requireBoundMitra(ctx, actor, orderID); err != nil {
		return nil, err
	}

	start := s.now().UTC()
	o, err := s.orders.UpdateStatus(ctx, orderID, StatusOnWay, StatusPatch{
		Status:    StatusWorking,
		WorkStart: &start,
	})
	if err != nil {
		return nil, errors.Wrap(err, "start work")
	}
	return o, nil
}

// FinishWork completes the order: elapsed time is computed from the stored
// work-start timestamp, billed at the hourly rate, and persisted together
// with the work-end timestamp. The stored pair is the sole billing authority;
// a second call fails with ErrInvalidState and leaves it untouched.
func (s *Service) FinishWork(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireVerifiedMitra(actor); err != nil {
		return nil, err
	}
	if o.MitraID != actor.ID {
		return nil, errors.Wrap(ErrForbidden, "order bound to another mitra")
	}
	if o.Status != StatusWorking {
		return nil, errors.Wrapf(ErrInvalidState, "cannot finish from %s", o.Status)
	}
	if o.WorkStart == nil {
		return nil, errors.Wrap(ErrInvalidState, "working order has no work start")
	}

	end := s.now().UTC()
	elapsed := end.Sub(*o.WorkStart)
	amount, err := Bill(elapsed, s.hourlyRate)
	if err != nil {
		return nil, err
	}

	o, err = s.orders.UpdateStatus(ctx, orderID, StatusWorking, StatusPatch{
		Status:       StatusCompleted,
		WorkEnd:      &end,
		TotalAmount:  &amount,
		WorkDuration: &elapsed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "finish work")
	}
	return o, nil
}

// LiveElapsed returns the advisory time-on-clock view for a working order,
// visible to the requester, the bound provider, and admins.
func (s *Service) LiveElapsed(ctx context.Context, actor auth.Actor, orderID string) (*Elapsed, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID && o.MitraID != actor.ID && !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "not a party to this order")
	}
	if o.Status != StatusWorking || o.WorkStart == nil {
		return nil, errors.Wrapf(ErrInvalidState, "order is %s, not working", o.Status)
	}

	elapsed := s.now().UTC().Sub(*o.WorkStart)
	if elapsed < 0 {
		elapsed = 0
	}
	amount, err := Bill(elapsed, s.hourlyRate)
	if err != nil {
		return nil, err
	}
	return &Elapsed{Duration: elapsed, RunningAmount: amount}, nil
}

// Get returns a single order, restricted to its parties and admins.
func (s *Service) Get(ctx context.Context, actor auth.Actor, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID && o.MitraID != actor.ID && !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "not a party to this order")
	}
	return o, nil
}

// OrdersForUser lists a requester's orders, newest first.
func (s *Service) OrdersForUser(ctx context.Context, actor auth.Actor, userID string) ([]Order, error) {
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "not your orders")
	}
	return s.orders.ListForUser(ctx, userID)
}

// OrdersForMitra lists every order bound to the provider.
func (s *Service) OrdersForMitra(ctx context.Context, actor auth.Actor, mitraID string) ([]Order, error) {
	if actor.ID != mitraID && !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "not your orders")
	}
	return s.orders.ListForMitra(ctx, mitraID)
}

// AllOrders lists every order for the admin oversight view.
func (s *Service) AllOrders(ctx context.Context, actor auth.Actor) ([]Order, error) {
	if !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "admin role required")
	}
	return s.orders.ListAll(ctx)
}

// PendingOrders lists unassigned orders claimable by any verified provider.
func (s *Service) PendingOrders(ctx context.Context, actor auth.Actor) ([]Order, error) {
	if !actor.IsAdmin() {
		if err := requireVerifiedMitra(actor); err != nil {
			return nil, err
		}
	}
	return s.orders.ListPending(ctx)
}

// CompletedForUser lists a requester's completed orders for history
// reporting, optionally narrowed to a year-month.
func (s *Service) CompletedForUser(ctx context.Context, actor auth.Actor, userID string, f CompletedFilter) ([]Order, error) {
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, errors.Wrap(ErrForbidden, "not your orders")
	}
	return s.orders.ListCompletedForUser(ctx, userID, f)
}

// requireBoundMitra loads the order and checks that the actor is the verified
// provider it is bound to. The subsequent guarded update still rechecks the
// status, so a stale read here cannot double-apply a transition.
func (s *Service) requireBoundMitra(ctx context.Context, actor auth.Actor, orderID string) error {
	if err := requireVerifiedMitra(actor); err != nil {
		return err
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.MitraID != actor.ID {
		return errors.Wrap(ErrForbidden, "order bound to another mitra")
	}
	return nil
}

func requireVerifiedMitra(actor auth.Actor) error {
	if !actor.IsMitra() {
		return errors.Wrap(ErrForbidden, "mitra role required")
	}
	if !actor.Verified {
		return errors.Wrap(ErrForbidden, "mitra not approved")
	}
	return nil
}
