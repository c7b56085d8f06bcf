package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/app"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// QuoteComputer is the minimal interface needed to price a stay.
type QuoteComputer interface {
	Quote(ctx context.Context, in app.QuoteInput) (domain.PricingQuote, error)
}

// HandleQuote returns an HTTP handler for guest-facing pricing quotes.
func HandleQuote(svc QuoteComputer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		q := r.URL.Query()
		listingID := q.Get("listing_id")
		if listingID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "listing_id is required")
			return
		}

		checkIn, err := domain.ParseDate(q.Get("check_in"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRange, "check_in must be YYYY-MM-DD")
			return
		}
		checkOut, err := domain.ParseDate(q.Get("check_out"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRange, "check_out must be YYYY-MM-DD")
			return
		}

		guests := 1
		if raw := q.Get("guests"); raw != "" {
			guests, err = strconv.Atoi(raw)
			if err != nil || guests < 1 {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "guests must be a positive integer")
				return
			}
		}

		quote, err := svc.Quote(r.Context(), app.QuoteInput{
			ExternalListingID: listingID,
			CheckIn:           checkIn,
			CheckOut:          checkOut,
			Guests:            guests,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, quote)
	}
}
