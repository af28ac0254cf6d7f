package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/dailywork/dailywork-server/internal/domain/auth"
)

// Identity headers set by the authenticating proxy in front of this service.
const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
)

var errUnauthenticated = errors.New("missing or invalid identity")

// actor resolves the caller's identity from the trusted headers. Mitra actors
// get their Verified flag from the approval workflow: only an approved
// application makes a mitra verified.
func (h *Handler) actor(r *http.Request) (auth.Actor, error) {
	id := r.Header.Get(headerActorID)
	if id == "" {
		return auth.Actor{}, errUnauthenticated
	}

	role, err := auth.ParseRole(r.Header.Get(headerActorRole))
	if err != nil {
		return auth.Actor{}, errUnauthenticated
	}

	a := auth.Actor{ID: id, Role: role, Verified: true}
	if role == auth.RoleMitra {
		verified, err := h.apps.IsVerified(r.Context(), id)
		if err != nil {
			return auth.Actor{}, errors.Wrap(err, "verify mitra")
		}
		a.Verified = verified
	}
	return a, nil
}
