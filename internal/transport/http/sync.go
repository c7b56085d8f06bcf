package http

import (
	"context"
	"net/http"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// BulkSyncer reconciles every mapped property.
type BulkSyncer interface {
	SyncAll(ctx context.Context) (domain.BulkSyncReport, error)
}

// HandleSyncAll returns an HTTP handler for POST /sync, a full orchestrator
// pass. Per-property failures are reported in the body, not as an HTTP error.
func HandleSyncAll(svc BulkSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		report, err := svc.SyncAll(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
