package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailywork/dailywork-server/internal/domain/mitra"
)

var _ mitra.Repository = (*MitraRepository)(nil)

// MitraRepository implements mitra.Repository backed by PostgreSQL.
type MitraRepository struct {
	pool *pgxpool.Pool
}

// NewMitraRepository returns a MitraRepository that uses the given pool.
func NewMitraRepository(pool *pgxpool.Pool) *MitraRepository {
	return &MitraRepository{pool: pool}
}

const appColumns = `id, user_id, name, email, phone, skills, status,
	submitted_at, decided_at, decided_by`

// Create persists a new application.
func (r *MitraRepository) Create(ctx context.Context, a *mitra.Application) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO mitra_applications
		(id, user_id, name, email, phone, skills, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UserID, a.Name, a.Email, a.Phone, a.Skills, string(a.Status), a.SubmittedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create application %q", a.ID)
	}
	return nil
}

// Get returns a single application by id.
func (r *MitraRepository) Get(ctx context.Context, id string) (*mitra.Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM mitra_applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mitra.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get application %q", id)
	}
	return a, nil
}

// GetByUser returns the user's application.
func (r *MitraRepository) GetByUser(ctx context.Context, userID string) (*mitra.Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM mitra_applications WHERE user_id = $1`, userID)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mitra.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get application for user %q", userID)
	}
	return a, nil
}

// UpdateStatus applies the admin decision with the same guarded conditional
// update as order transitions.
func (r *MitraRepository) UpdateStatus(ctx context.Context, id string, expected mitra.Status, patch mitra.StatusPatch) (*mitra.Application, error) {
	row := r.pool.QueryRow(ctx, `UPDATE mitra_applications SET
		status = $2, decided_at = $3, decided_by = $4
		WHERE id = $1 AND status = $5
		RETURNING `+appColumns,
		id, string(patch.Status), patch.DecidedAt, patch.DecidedBy, string(expected),
	)
	a, err := scanApplication(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(err, "update application %q", id)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM mitra_applications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, errors.Wrapf(err, "check application %q", id)
	}
	if !exists {
		return nil, mitra.ErrNotFound
	}
	return nil, mitra.ErrInvalidState
}

// List returns applications with the given status, oldest submission first.
func (r *MitraRepository) List(ctx context.Context, status mitra.Status) ([]mitra.Application, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+appColumns+` FROM mitra_applications
		WHERE status = $1 ORDER BY submitted_at`, string(status))
	if err != nil {
		return nil, errors.Wrap(err, "list applications")
	}
	defer rows.Close()

	apps := make([]mitra.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan application")
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func scanApplication(row pgx.Row) (*mitra.Application, error) {
	var (
		a         mitra.Application
		status    string
		decidedBy *string
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.Name, &a.Email, &a.Phone, &a.Skills, &status,
		&a.SubmittedAt, &a.DecidedAt, &decidedBy,
	)
	if err != nil {
		return nil, err
	}
	a.Status = mitra.Status(status)
	if decidedBy != nil {
		a.DecidedBy = *decidedBy
	}
	return &a, nil
}
