// Package handler exposes the marketplace core over JSON/HTTP. Handlers stay
// thin: they resolve the actor, decode the request, delegate to a domain
// service, and map typed domain errors onto status codes.
package handler

import (
	"net/http"

	"github.com/dailywork/dailywork-server/internal/domain/catalog"
	"github.com/dailywork/dailywork-server/internal/domain/mitra"
	"github.com/dailywork/dailywork-server/internal/domain/order"
)

// Handler holds the domain dependencies for the HTTP surface.
type Handler struct {
	orders   *order.Service
	services catalog.Repository
	apps     *mitra.Service
}

// New constructs a Handler with the required domain dependencies.
func New(orders *order.Service, services catalog.Repository, apps *mitra.Service) *Handler {
	return &Handler{
		orders:   orders,
		services: services,
		apps:     apps,
	}
}

// Routes registers every API route on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("GET /api/orders/{id}/elapsed", h.orderElapsed)
	mux.HandleFunc("POST /api/orders/{id}/accept", h.transition(h.orders.Accept))
	mux.HandleFunc("POST /api/orders/{id}/reject", h.transition(h.orders.Reject))
	mux.HandleFunc("POST /api/orders/{id}/depart", h.transition(h.orders.Depart))
	mux.HandleFunc("POST /api/orders/{id}/start", h.transition(h.orders.StartWork))
	mux.HandleFunc("POST /api/orders/{id}/finish", h.transition(h.orders.FinishWork))
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.transition(h.orders.Cancel))

	mux.HandleFunc("GET /api/services", h.listServices)
	mux.HandleFunc("POST /api/services", h.createService)
	mux.HandleFunc("PUT /api/services/{id}", h.updateService)
	mux.HandleFunc("DELETE /api/services/{id}", h.deleteService)

	mux.HandleFunc("POST /api/mitra/applications", h.submitApplication)
	mux.HandleFunc("GET /api/mitra/applications", h.listApplications)
	mux.HandleFunc("POST /api/mitra/applications/{id}/approve", h.decideApplication(h.apps.Approve))
	mux.HandleFunc("POST /api/mitra/applications/{id}/reject", h.decideApplication(h.apps.Reject))
	mux.HandleFunc("POST /api/mitra/applications/{id}/suspend", h.decideApplication(h.apps.Suspend))
	mux.HandleFunc("POST /api/mitra/applications/{id}/reinstate", h.decideApplication(h.apps.Reinstate))
}
