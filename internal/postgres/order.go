package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailywork/dailywork-server/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, user_id, mitra_id, service_id, service_name, address,
	scheduled_date, scheduled_time, notes, status, work_start, work_end,
	total_amount, work_duration_ms, created_at`

const createOrderSQL = `INSERT INTO orders (id, user_id, mitra_id, service_id,
	service_name, address, scheduled_date, scheduled_time, notes, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.MitraID, o.ServiceID, o.ServiceName, o.Address,
		o.ScheduledDate, o.ScheduledTime, o.Notes, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// Get returns a single order by id.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return o, nil
}

const updateStatusSQL = `UPDATE orders SET
	status = $2,
	mitra_id = COALESCE($3, mitra_id),
	work_start = COALESCE($4, work_start),
	work_end = COALESCE($5, work_end),
	total_amount = COALESCE($6, total_amount),
	work_duration_ms = COALESCE($7, work_duration_ms)
	WHERE id = $1 AND status = $8
	RETURNING ` + orderColumns

// UpdateStatus performs the guarded transition: the UPDATE matches only while
// the stored status equals expected, so concurrent writers race on a single
// atomic row update and at most one wins. No matching row means either the
// order does not exist (ErrNotFound) or someone else already moved it
// (ErrInvalidState).
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, expected order.Status, patch order.StatusPatch) (*order.Order, error) {
	var durationMS *int64
	if patch.WorkDuration != nil {
		ms := patch.WorkDuration.Milliseconds()
		durationMS = &ms
	}

	row := r.pool.QueryRow(ctx, updateStatusSQL,
		id, string(patch.Status), patch.MitraID, patch.WorkStart, patch.WorkEnd,
		patch.TotalAmount, durationMS, string(expected),
	)
	o, err := scanOrder(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(err, "update order %q", id)
	}

	// Distinguish a missing order from a lost status race.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, errors.Wrapf(err, "check order %q", id)
	}
	if !exists {
		return nil, order.ErrNotFound
	}
	return nil, order.ErrInvalidState
}

// ListForUser returns the requester's orders, newest first.
func (r *OrderRepository) ListForUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListForMitra returns every order bound to the provider, newest first.
func (r *OrderRepository) ListForMitra(ctx context.Context, mitraID string) ([]order.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE mitra_id = $1 ORDER BY created_at DESC`, mitraID)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// ListPending returns unassigned orders, newest first.
func (r *OrderRepository) ListPending(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE status = 'pending' ORDER BY created_at DESC`)
}

// ListCompletedForUser returns the requester's completed orders, optionally
// narrowed to a creation year-month ("2006-01").
func (r *OrderRepository) ListCompletedForUser(ctx context.Context, userID string, f order.CompletedFilter) ([]order.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 AND status = 'completed'
		AND ($2 = '' OR to_char(created_at, 'YYYY-MM') = $2)
		ORDER BY created_at DESC`, userID, f.YearMonth)
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	orders := make([]order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o          order.Order
		status     string
		durationMS int64
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.MitraID, &o.ServiceID, &o.ServiceName, &o.Address,
		&o.ScheduledDate, &o.ScheduledTime, &o.Notes, &status, &o.WorkStart,
		&o.WorkEnd, &o.TotalAmount, &durationMS, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	o.WorkDuration = time.Duration(durationMS) * time.Millisecond
	return &o, nil
}
