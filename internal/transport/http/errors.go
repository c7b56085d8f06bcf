package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidRange        = "invalid_range"
	codeInvalidID           = "invalid_id"
	codeListingNotFound     = "listing_not_found"
	codePropertyNotFound    = "property_not_found"
	codeReservationNotFound = "reservation_not_found"
	codeNotMapped           = "property_not_mapped"
	codeSourceUnavailable   = "source_unavailable"
	codeReservationConflict = "reservation_conflict"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the engine's error taxonomy to HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, codeInvalidRange, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrListingNotFound):
		writeError(w, http.StatusNotFound, codeListingNotFound, "listing not found")
	case errors.Is(err, domain.ErrPropertyNotFound):
		writeError(w, http.StatusNotFound, codePropertyNotFound, "property not found")
	case errors.Is(err, domain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, codeReservationNotFound, "reservation not found")
	case errors.Is(err, domain.ErrNotMapped):
		writeError(w, http.StatusConflict, codeNotMapped, "property not mapped to an external listing")
	case errors.Is(err, domain.ErrConflictLocalReservationWins):
		writeError(w, http.StatusConflict, codeReservationConflict, "day held by a local reservation")
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeSourceUnavailable, "pricing source unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
