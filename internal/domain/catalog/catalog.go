// Package catalog holds the service catalog: the offerings customers order.
// Base prices are display-only; billing happens per worked hour in the order
// engine.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested service does not exist.
var ErrNotFound = errors.New("service not found")

// Service is a catalog entry owned by the administrator. Orders reference it
// by ID but copy the display name at creation time, so later edits never
// rewrite order history.
type Service struct {
	ID          string
	Name        string
	Description string
	Icon        string
	// BasePrice is the advertised starting price in currency units. It is
	// not used by billing.
	BasePrice decimal.Decimal
	IsActive  bool
}

// Repository defines persistence operations for the catalog.
type Repository interface {
	// List returns catalog entries; inactive ones only when includeInactive
	// is set (admin view).
	List(ctx context.Context, includeInactive bool) ([]Service, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	Create(ctx context.Context, s *Service) error
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id string) error
}
