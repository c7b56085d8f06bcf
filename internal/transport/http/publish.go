package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// ReservationPublisher pushes a reservation to the PMS.
type ReservationPublisher interface {
	Publish(ctx context.Context, reservationID string) (domain.PublishResult, error)
}

// HandlePublishReservation returns an HTTP handler for
// POST /reservations/{id}/publish. Replaying a publish that already succeeded
// returns 200 with the stored external id.
func HandlePublishReservation(svc ReservationPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		reservationID, ok := parsePublishPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		result, err := svc.Publish(r.Context(), reservationID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		status := http.StatusCreated
		if result.AlreadySynced {
			status = http.StatusOK
		}
		writeJSON(w, status, result)
	}
}

func parsePublishPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "reservations" || parts[2] != "publish" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
