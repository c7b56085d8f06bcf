package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// CalendarManager covers calendar reads and manual block/unblock.
type CalendarManager interface {
	GetCalendar(ctx context.Context, propertyID string, from, to time.Time) ([]domain.CalendarDay, error)
	BlockRange(ctx context.Context, propertyID string, from, to time.Time) (domain.SyncResult, error)
	UnblockRange(ctx context.Context, propertyID string, from, to time.Time) (domain.SyncResult, error)
}

// ReconcileRunner runs one property's inbound sync pass.
type ReconcileRunner interface {
	Reconcile(ctx context.Context, propertyID string) (domain.SyncResult, error)
}

// SyncEventLister reads the audit trail for a property.
type SyncEventLister interface {
	ListByProperty(ctx context.Context, propertyID string, limit int) ([]domain.SyncEvent, error)
}

const defaultEventLimit = 50

// HandleProperties dispatches the property-scoped routes:
//
//	GET  /properties/{id}/calendar?from&to
//	POST /properties/{id}/calendar/block
//	POST /properties/{id}/calendar/unblock
//	POST /properties/{id}/sync
//	GET  /properties/{id}/sync-events
func HandleProperties(cal CalendarManager, rec ReconcileRunner, events SyncEventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 3 || parts[0] != "properties" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		propertyID := parts[1]

		switch {
		case len(parts) == 3 && parts[2] == "calendar":
			handleGetCalendar(w, r, cal, propertyID)
		case len(parts) == 4 && parts[2] == "calendar" && parts[3] == "block":
			handleCalendarWrite(w, r, propertyID, cal.BlockRange)
		case len(parts) == 4 && parts[2] == "calendar" && parts[3] == "unblock":
			handleCalendarWrite(w, r, propertyID, cal.UnblockRange)
		case len(parts) == 3 && parts[2] == "sync":
			handlePropertySync(w, r, rec, propertyID)
		case len(parts) == 3 && parts[2] == "sync-events":
			handleSyncEvents(w, r, events, propertyID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type calendarDayResponse struct {
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	Reason        string  `json:"reason"`
	ReservationID *string `json:"reservation_id,omitempty"`
}

func handleGetCalendar(w http.ResponseWriter, r *http.Request, cal CalendarManager, propertyID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	from, err := domain.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRange, "from must be YYYY-MM-DD")
		return
	}
	to, err := domain.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRange, "to must be YYYY-MM-DD")
		return
	}

	days, err := cal.GetCalendar(r.Context(), propertyID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]calendarDayResponse, 0, len(days))
	for _, d := range days {
		resp = append(resp, calendarDayResponse{
			Date:          domain.DateKey(d.Day),
			Status:        string(d.Status),
			Reason:        d.Reason,
			ReservationID: d.ReservationID,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type calendarWriteRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func handleCalendarWrite(w http.ResponseWriter, r *http.Request, propertyID string, op func(ctx context.Context, propertyID string, from, to time.Time) (domain.SyncResult, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req calendarWriteRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	from, err := domain.ParseDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRange, "from must be YYYY-MM-DD")
		return
	}
	to, err := domain.ParseDate(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRange, "to must be YYYY-MM-DD")
		return
	}

	result, err := op(r.Context(), propertyID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handlePropertySync(w http.ResponseWriter, r *http.Request, rec ReconcileRunner, propertyID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	result, err := rec.Reconcile(r.Context(), propertyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleSyncEvents(w http.ResponseWriter, r *http.Request, events SyncEventLister, propertyID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "limit must be a positive integer")
			return
		}
		limit = n
	}

	list, err := events.ListByProperty(r.Context(), propertyID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []domain.SyncEvent{}
	}
	writeJSON(w, http.StatusOK, list)
}
