package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dailywork/dailywork-server/internal/domain/catalog"
	"github.com/dailywork/dailywork-server/internal/domain/order"
)

type serviceRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	IsActive    *bool           `json:"isActive"`
}

type serviceResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	IsActive    bool            `json:"isActive"`
}

func toServiceResponse(s *catalog.Service) serviceResponse {
	return serviceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Icon:        s.Icon,
		BasePrice:   s.BasePrice,
		IsActive:    s.IsActive,
	}
}

// listServices returns active catalog entries; admins see inactive ones too.
func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	services, err := h.services.List(r.Context(), actor.IsAdmin())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]serviceResponse, len(services))
	for i := range services {
		out[i] = toServiceResponse(&services[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !actor.IsAdmin() {
		writeError(w, r, errors.Wrap(order.ErrForbidden, "admin role required"))
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(order.ErrInvalidRequest, "malformed JSON body"))
		return
	}
	if req.Name == "" {
		writeError(w, r, errors.Wrap(order.ErrInvalidRequest, "name is required"))
		return
	}

	s := &catalog.Service{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		BasePrice:   req.BasePrice,
		IsActive:    true,
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if err := h.services.Create(r.Context(), s); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceResponse(s))
}

func (h *Handler) updateService(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !actor.IsAdmin() {
		writeError(w, r, errors.Wrap(order.ErrForbidden, "admin role required"))
		return
	}

	existing, err := h.services.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(order.ErrInvalidRequest, "malformed JSON body"))
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.Icon != "" {
		existing.Icon = req.Icon
	}
	if !req.BasePrice.IsZero() {
		existing.BasePrice = req.BasePrice
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := h.services.Update(r.Context(), existing); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceResponse(existing))
}

func (h *Handler) deleteService(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !actor.IsAdmin() {
		writeError(w, r, errors.Wrap(order.ErrForbidden, "admin role required"))
		return
	}

	if err := h.services.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
