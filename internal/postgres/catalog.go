package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailywork/dailywork-server/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const serviceColumns = `id, name, description, icon, base_price, is_active`

// List returns catalog entries ordered by name; inactive ones only when
// includeInactive is set.
func (r *CatalogRepository) List(ctx context.Context, includeInactive bool) ([]catalog.Service, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+serviceColumns+` FROM services
		WHERE is_active OR $1 ORDER BY name`, includeInactive)
	if err != nil {
		return nil, errors.Wrap(err, "list services")
	}
	defer rows.Close()

	services := make([]catalog.Service, 0)
	for rows.Next() {
		var s catalog.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.BasePrice, &s.IsActive); err != nil {
			return nil, errors.Wrap(err, "scan service")
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// GetByID returns a single service by id.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*catalog.Service, error) {
	var s catalog.Service
	err := r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.BasePrice, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get service %q", id)
	}
	return &s, nil
}

// Create persists a new catalog entry.
func (r *CatalogRepository) Create(ctx context.Context, s *catalog.Service) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO services (id, name, description, icon, base_price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.Description, s.Icon, s.BasePrice, s.IsActive,
	)
	if err != nil {
		return errors.Wrapf(err, "create service %q", s.ID)
	}
	return nil
}

// Update replaces an existing catalog entry.
func (r *CatalogRepository) Update(ctx context.Context, s *catalog.Service) error {
	tag, err := r.pool.Exec(ctx, `UPDATE services SET name = $2, description = $3,
		icon = $4, base_price = $5, is_active = $6 WHERE id = $1`,
		s.ID, s.Name, s.Description, s.Icon, s.BasePrice, s.IsActive,
	)
	if err != nil {
		return errors.Wrapf(err, "update service %q", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a catalog entry. Existing orders keep their denormalized
// service name.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete service %q", id)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
