// Package auth defines the actor identity the engine trusts for
// authorization decisions. Authentication itself happens upstream; the
// transport resolves the actor and the domain services verify role and
// ownership per operation.
package auth

import "github.com/go-faster/errors"

// ErrUnknownRole is returned when an actor carries a role outside the
// marketplace's three roles.
var ErrUnknownRole = errors.New("unknown role")

// Role is a marketplace actor role.
type Role string

const (
	// RoleUser is a customer requesting services.
	RoleUser Role = "user"
	// RoleMitra is a service provider working orders.
	RoleMitra Role = "mitra"
	// RoleAdmin administers the catalog and the mitra approval queue.
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleMitra, RoleAdmin:
		return Role(s), nil
	default:
		return "", errors.Wrapf(ErrUnknownRole, "%q", s)
	}
}

// Actor is an authenticated caller. Verified is only meaningful for mitras:
// it reports whether an admin has approved their application. Users and
// admins are always verified.
type Actor struct {
	ID       string
	Role     Role
	Verified bool
}

// IsMitra reports whether the actor is a provider.
func (a Actor) IsMitra() bool { return a.Role == RoleMitra }

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
