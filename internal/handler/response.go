package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dailywork/dailywork-server/internal/domain/catalog"
	"github.com/dailywork/dailywork-server/internal/domain/mitra"
	"github.com/dailywork/dailywork-server/internal/domain/order"
)

// errorResponse is the JSON body for every failure.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps typed domain errors onto status codes. Unknown errors are
// logged and surfaced as an opaque 500 so internals never leak to callers.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeJSON(w, status, errorResponse{Code: status, Message: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Code: status, Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, mitra.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrForbidden), errors.Is(err, mitra.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrInvalidState),
		errors.Is(err, mitra.ErrInvalidState),
		errors.Is(err, mitra.ErrAlreadyApplied):
		return http.StatusConflict
	case errors.Is(err, order.ErrInvalidDuration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrInvalidRequest), errors.Is(err, mitra.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
