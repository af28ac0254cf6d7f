package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dailywork/dailywork-server/internal/domain/auth"
	"github.com/dailywork/dailywork-server/internal/domain/catalog"
)

type stubOrders struct {
	orders map[string]*Order
}

func newStubOrders() *stubOrders {
	return &stubOrders{orders: make(map[string]*Order)}
}

func (r *stubOrders) Create(_ context.Context, o *Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *stubOrders) Get(_ context.Context, id string) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrders) UpdateStatus(_ context.Context, id string, expected Status, patch StatusPatch) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status != expected {
		return nil, ErrInvalidState
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

func (r *stubOrders) ListForUser(_ context.Context, userID string) ([]Order, error) {
	return r.filtered(func(o *Order) bool { return o.UserID == userID }), nil
}

func (r *stubOrders) ListForMitra(_ context.Context, mitraID string) ([]Order, error) {
	return r.filtered(func(o *Order) bool { return o.MitraID == mitraID }), nil
}

func (r *stubOrders) ListPending(_ context.Context) ([]Order, error) {
	return r.filtered(func(o *Order) bool { return o.Status == StatusPending }), nil
}

func (r *stubOrders) ListAll(_ context.Context) ([]Order, error) {
	return r.filtered(func(*Order) bool { return true }), nil
}

func (r *stubOrders) ListCompletedForUser(_ context.Context, userID string, _ CompletedFilter) ([]Order, error) {
	return r.filtered(func(o *Order) bool {
		return o.UserID == userID && o.Status == StatusCompleted
	}), nil
}

func (r *stubOrders) filtered(keep func(*Order) bool) []Order {
	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out
}

type stubCatalog struct {
	services map[string]*catalog.Service
}

func newStubCatalog(services ...catalog.Service) *stubCatalog {
	r := &stubCatalog{services: make(map[string]*catalog.Service)}
	for i := range services {
		r.services[services[i].ID] = &services[i]
	}
	return r
}

func (r *stubCatalog) List(_ context.Context, _ bool) ([]catalog.Service, error) {
	out := make([]catalog.Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubCatalog) GetByID(_ context.Context, id string) (*catalog.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubCatalog) Create(_ context.Context, s *catalog.Service) error {
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *stubCatalog) Update(_ context.Context, s *catalog.Service) error {
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *stubCatalog) Delete(_ context.Context, id string) error {
	delete(r.services, id)
	return nil
}

var (
	customer      = auth.Actor{ID: "user-1", Role: auth.RoleUser}
	otherCustomer = auth.Actor{ID: "user-2", Role: auth.RoleUser}
	verifiedMitra = auth.Actor{ID: "mitra-1", Role: auth.RoleMitra, Verified: true}
	otherMitra    = auth.Actor{ID: "mitra-2", Role: auth.RoleMitra, Verified: true}
	pendingMitra  = auth.Actor{ID: "mitra-3", Role: auth.RoleMitra}
	admin         = auth.Actor{ID: "admin-1", Role: auth.RoleAdmin}
)

// fixture wires the engine against stub stores with a controllable clock.
type fixture struct {
	svc   *Service
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalogRepo := newStubCatalog(
		catalog.Service{ID: "1", Name: "Cuci Baju", IsActive: true},
		catalog.Service{ID: "9", Name: "Retired", IsActive: false},
	)

	f := &fixture{clock: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	f.svc = NewService(newStubOrders(), catalogRepo, DefaultHourlyRate)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) place(t *testing.T) *Order {
	t.Helper()

	o, err := f.svc.Create(context.Background(), customer, CreateRequest{
		ServiceID:     "1",
		Address:       "Jl. Sudirman 12",
		ScheduledDate: "2026-03-15",
		ScheduledTime: "10:00",
	})
	require.NoError(t, err)
	return o
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	o := f.place(t)
	require.NotEmpty(t, o.ID)
	require.Equal(t, customer.ID, o.UserID)
	require.Equal(t, "Cuci Baju", o.ServiceName)
	require.Equal(t, StatusPending, o.Status)
	require.Empty(t, o.MitraID)
	require.Equal(t, f.clock, o.CreatedAt)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, verifiedMitra, CreateRequest{ServiceID: "1", Address: "a", ScheduledDate: "d"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Create(ctx, customer, CreateRequest{ServiceID: "1"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.Create(ctx, customer, CreateRequest{ServiceID: "nope", Address: "a", ScheduledDate: "d"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.Create(ctx, customer, CreateRequest{ServiceID: "9", Address: "a", ScheduledDate: "d"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	o, err := f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, o.Status)
	require.Equal(t, verifiedMitra.ID, o.MitraID)

	o, err = f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOnWay, o.Status)

	o, err = f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusWorking, o.Status)
	require.NotNil(t, o.WorkStart)
	require.Equal(t, f.clock, *o.WorkStart)

	f.advance(90 * time.Minute)

	o, err = f.svc.FinishWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, o.Status)
	require.NotNil(t, o.WorkEnd)
	require.Equal(t, 90*time.Minute, o.WorkDuration)
	require.Equal(t, int64(150_000), o.TotalAmount)
}

func TestAcceptRequiresVerifiedMitra(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.Accept(ctx, customer, o.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Accept(ctx, pendingMitra, o.ID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
}

func TestAcceptAlreadyAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, otherMitra, o.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	got, err := f.svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	require.Equal(t, verifiedMitra.ID, got.MitraID)
}

func TestRejectPendingOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	rejected, err := f.svc.Reject(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, rejected.Status)
	require.Empty(t, rejected.MitraID)

	o2 := f.place(t)
	_, err = f.svc.Accept(ctx, verifiedMitra, o2.ID)
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, verifiedMitra, o2.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Requester cancels while pending.
	o := f.place(t)
	cancelled, err := f.svc.Cancel(ctx, customer, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	// And while accepted.
	o = f.place(t)
	_, err = f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, customer, o.ID)
	require.NoError(t, err)

	// Someone else's order is off limits, admins excepted.
	o = f.place(t)
	_, err = f.svc.Cancel(ctx, otherCustomer, o.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Cancel(ctx, admin, o.ID)
	require.NoError(t, err)

	// Working orders cannot be withdrawn.
	o = f.place(t)
	_, err = f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, customer, o.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestTransitionsBoundToMitra(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	_, err = f.svc.Depart(ctx, otherMitra, o.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	_, err = f.svc.StartWork(ctx, otherMitra, o.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	_, err = f.svc.FinishWork(ctx, otherMitra, o.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSkippedTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	// Depart before accept, start before depart, finish before start.
	_, err := f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.ErrorIs(t, err, ErrForbidden) // not bound yet

	_, err = f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	_, err = f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.FinishWork(ctx, verifiedMitra, o.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestFinishWorkIdempotencyGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	started, err := f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	done, err := f.svc.FinishWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	require.Equal(t, int64(200_000), done.TotalAmount)

	// A replayed finish must not re-bill at a later clock.
	f.advance(3 * time.Hour)
	_, err = f.svc.FinishWork(ctx, verifiedMitra, o.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	got, err := f.svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	require.Equal(t, int64(200_000), got.TotalAmount)
	require.Equal(t, 2*time.Hour, got.WorkDuration)
	require.Equal(t, *started.WorkStart, *got.WorkStart)
}

func TestStartWorkNeverResetsClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	started, err := f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	f.advance(10 * time.Minute)
	_, err = f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	got, err := f.svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	require.Equal(t, *started.WorkStart, *got.WorkStart)
}

func TestLiveElapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.LiveElapsed(ctx, customer, o.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	f.advance(30 * time.Minute)

	for _, actor := range []auth.Actor{customer, verifiedMitra, admin} {
		e, err := f.svc.LiveElapsed(ctx, actor, o.ID)
		require.NoError(t, err)
		require.Equal(t, 30*time.Minute, e.Duration)
		require.Equal(t, int64(50_000), e.RunningAmount)
	}

	_, err = f.svc.LiveElapsed(ctx, otherCustomer, o.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, admin, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, otherCustomer, o.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(ctx, customer, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListingScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.place(t)
	second := f.place(t)
	_, err := f.svc.Accept(ctx, verifiedMitra, second.ID)
	require.NoError(t, err)

	mine, err := f.svc.OrdersForUser(ctx, customer, customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	_, err = f.svc.OrdersForUser(ctx, otherCustomer, customer.ID)
	require.ErrorIs(t, err, ErrForbidden)

	bound, err := f.svc.OrdersForMitra(ctx, verifiedMitra, verifiedMitra.ID)
	require.NoError(t, err)
	require.Len(t, bound, 1)
	require.Equal(t, second.ID, bound[0].ID)

	pending, err := f.svc.PendingOrders(ctx, verifiedMitra)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, first.ID, pending[0].ID)

	_, err = f.svc.PendingOrders(ctx, pendingMitra)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.PendingOrders(ctx, customer)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAllOrdersAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.place(t)
	o := f.place(t)
	_, err := f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	all, err := f.svc.AllOrders(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = f.svc.AllOrders(ctx, customer)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.AllOrders(ctx, verifiedMitra)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCompletedForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.Accept(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.Depart(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.StartWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)
	_, err = f.svc.FinishWork(ctx, verifiedMitra, o.ID)
	require.NoError(t, err)

	f.place(t) // still pending, must not appear

	done, err := f.svc.CompletedForUser(ctx, customer, customer.ID, CompletedFilter{})
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.Equal(t, o.ID, done[0].ID)

	_, err = f.svc.CompletedForUser(ctx, otherCustomer, customer.ID, CompletedFilter{})
	require.ErrorIs(t, err, ErrForbidden)
}
