package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/dailywork/dailywork-server/internal/domain/auth"
	"github.com/dailywork/dailywork-server/internal/domain/mitra"
	"github.com/dailywork/dailywork-server/internal/domain/order"
)

type applicationRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Skills string `json:"skills"`
}

type applicationResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Skills      string `json:"skills,omitempty"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt"`
	DecidedAt   string `json:"decidedAt,omitempty"`
	DecidedBy   string `json:"decidedBy,omitempty"`
}

func toApplicationResponse(a *mitra.Application) applicationResponse {
	resp := applicationResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		Skills:      a.Skills,
		Status:      string(a.Status),
		SubmittedAt: a.SubmittedAt.Format(time.RFC3339),
		DecidedBy:   a.DecidedBy,
	}
	if a.DecidedAt != nil {
		resp.DecidedAt = a.DecidedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) submitApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(order.ErrInvalidRequest, "malformed JSON body"))
		return
	}

	a, err := h.apps.Submit(r.Context(), actor, mitra.SubmitRequest{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Skills: req.Skills,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationResponse(a))
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	apps, err := h.apps.ListPending(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]applicationResponse, len(apps))
	for i := range apps {
		out[i] = toApplicationResponse(&apps[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// decideApplication adapts an admin decision into a handler; approve, reject,
// suspend and reinstate all share the same shape.
func (h *Handler) decideApplication(op func(context.Context, auth.Actor, string) (*mitra.Application, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.actor(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		a, err := op(r.Context(), actor, r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}
