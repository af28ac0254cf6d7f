package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/dailywork/dailywork-server/internal/domain/auth"
	"github.com/dailywork/dailywork-server/internal/domain/order"
)

type createOrderRequest struct {
	ServiceID     string `json:"serviceId"`
	Address       string `json:"address"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	Notes         string `json:"notes"`
}

type orderResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	MitraID        string `json:"mitraId,omitempty"`
	ServiceID      string `json:"serviceId"`
	ServiceName    string `json:"serviceName"`
	Address        string `json:"address"`
	ScheduledDate  string `json:"scheduledDate"`
	ScheduledTime  string `json:"scheduledTime,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Status         string `json:"status"`
	WorkStart      string `json:"workStart,omitempty"`
	WorkEnd        string `json:"workEnd,omitempty"`
	TotalAmount    int64  `json:"totalAmount"`
	WorkDurationMS int64  `json:"workDurationMs"`
	CreatedAt      string `json:"createdAt"`
}

type elapsedResponse struct {
	ElapsedMS     int64 `json:"elapsedMs"`
	RunningAmount int64 `json:"runningAmount"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		UserID:         o.UserID,
		MitraID:        o.MitraID,
		ServiceID:      o.ServiceID,
		ServiceName:    o.ServiceName,
		Address:        o.Address,
		ScheduledDate:  o.ScheduledDate,
		ScheduledTime:  o.ScheduledTime,
		Notes:          o.Notes,
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		WorkDurationMS: o.WorkDuration.Milliseconds(),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
	if o.WorkStart != nil {
		resp.WorkStart = o.WorkStart.Format(time.RFC3339)
	}
	if o.WorkEnd != nil {
		resp.WorkEnd = o.WorkEnd.Format(time.RFC3339)
	}
	return resp
}

func toOrderResponses(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(order.ErrInvalidRequest, "malformed JSON body"))
		return
	}

	o, err := h.orders.Create(r.Context(), actor, order.CreateRequest{
		ServiceID:     req.ServiceID,
		Address:       req.Address,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// listOrders is the role-scoped listing: customers see their own orders,
// mitras see orders bound to them (or the claimable pending pool with
// ?pending=1), admins see everything (or one party's orders with ?user= /
// ?mitra=), and ?completed=1 switches to the history projection with an
// optional ?month=2006-01 filter.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	var orders []order.Order
	switch {
	case q.Get("pending") == "1":
		orders, err = h.orders.PendingOrders(r.Context(), actor)
	case q.Get("completed") == "1":
		orders, err = h.orders.CompletedForUser(r.Context(), actor, actor.ID, order.CompletedFilter{
			YearMonth: q.Get("month"),
		})
	case q.Get("user") != "":
		orders, err = h.orders.OrdersForUser(r.Context(), actor, q.Get("user"))
	case q.Get("mitra") != "":
		orders, err = h.orders.OrdersForMitra(r.Context(), actor, q.Get("mitra"))
	case actor.IsAdmin():
		orders, err = h.orders.AllOrders(r.Context(), actor)
	case actor.IsMitra():
		orders, err = h.orders.OrdersForMitra(r.Context(), actor, actor.ID)
	default:
		orders, err = h.orders.OrdersForUser(r.Context(), actor, actor.ID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) orderElapsed(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.orders.LiveElapsed(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, elapsedResponse{
		ElapsedMS:     e.Duration.Milliseconds(),
		RunningAmount: e.RunningAmount,
	})
}

// transition adapts a lifecycle operation into a handler. All transitions
// share the same shape: resolve actor, apply, return the updated order.
func (h *Handler) transition(op func(context.Context, auth.Actor, string) (*order.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.actor(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		o, err := op(r.Context(), actor, r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponse(o))
	}
}
