package pms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
	"golang.org/x/time/rate"
)

const defaultRequestTimeout = 10 * time.Second

// minorUnitThreshold drives sub-unit normalization: upstream prices at or
// above it are treated as already being in minor units, smaller values as
// major units. Prices near the boundary can be double-scaled; the PMS does
// not declare its unit convention per listing.
const minorUnitThreshold = 10000

// Client is an HTTP client for the Property Management System. Every request
// waits on the shared limiter so the engine never exceeds the PMS rate limit,
// regardless of how many callers are active.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

func NewClient(baseURL, apiKey string, limiter *rate.Limiter, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: defaultRequestTimeout},
		limiter: limiter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listingResponse struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Fees     struct {
		CleaningFee float64 `json:"cleaning_fee"`
		ServiceRate float64 `json:"service_rate"`
		TaxRate     float64 `json:"tax_rate"`
	} `json:"fees"`
	RateDays []struct {
		Date      string  `json:"date"`
		Status    string  `json:"status"`
		Price     float64 `json:"price"`
		MinNights int     `json:"min_nights"`
		MaxNights int     `json:"max_nights"`
		Note      string  `json:"note"`
	} `json:"rate_days"`
}

// GetListing fetches the listing's rate table and fee configuration.
func (c *Client) GetListing(ctx context.Context, externalListingID string) (domain.ListingSnapshot, error) {
	var resp listingResponse
	path := "/v1/listings/" + url.PathEscape(externalListingID)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return domain.ListingSnapshot{}, fmt.Errorf("get listing %s: %w", externalListingID, err)
	}

	rateDays := make(map[string]domain.RateDay, len(resp.RateDays))
	for _, rd := range resp.RateDays {
		rateDays[rd.Date] = domain.RateDay{
			Status:    domain.RateStatus(rd.Status),
			Price:     NormalizeMinorUnits(rd.Price),
			MinNights: rd.MinNights,
			MaxNights: rd.MaxNights,
			Note:      rd.Note,
		}
	}

	return domain.ListingSnapshot{
		ExternalListingID: externalListingID,
		Currency:          resp.Currency,
		RateDays:          rateDays,
		Fees: domain.FeeConfig{
			CleaningFee: NormalizeMinorUnits(resp.Fees.CleaningFee),
			ServiceRate: resp.Fees.ServiceRate,
			TaxRate:     resp.Fees.TaxRate,
		},
	}, nil
}

// AvailabilityProbe is the PMS answer to a pricing probe for a window. When
// the window cannot be booked, UnavailableDates names the dates that block it.
type AvailabilityProbe struct {
	Available        bool     `json:"available"`
	Total            float64  `json:"total"`
	UnavailableDates []string `json:"unavailable_dates"`
}

// GetPricing probes bookability of [checkIn, checkOut) for the listing. The
// reconciler uses it as its availability feed.
func (c *Client) GetPricing(ctx context.Context, externalListingID string, checkIn, checkOut time.Time, guests int) (AvailabilityProbe, error) {
	q := url.Values{}
	q.Set("check_in", domain.DateKey(checkIn))
	q.Set("check_out", domain.DateKey(checkOut))
	q.Set("guests", fmt.Sprintf("%d", guests))

	var probe AvailabilityProbe
	path := "/v1/listings/" + url.PathEscape(externalListingID) + "/pricing"
	if err := c.get(ctx, path, q, &probe); err != nil {
		return AvailabilityProbe{}, fmt.Errorf("get pricing %s %s..%s: %w",
			externalListingID, domain.DateKey(checkIn), domain.DateKey(checkOut), err)
	}
	return probe, nil
}

// CreateReservationRequest carries the guest and stay details the PMS needs
// to block the dates on every sales channel.
type CreateReservationRequest struct {
	ListingID  string `json:"listing_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestCount int    `json:"guest_count"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
}

type createReservationResponse struct {
	ReservationID string `json:"reservation_id"`
}

// CreateReservation creates the booking on the PMS side and returns the
// external reservation id.
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode reservation: %w", err)
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/reservations", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("create reservation: %w: %v", domain.ErrSourceUnavailable, err)
	}
	defer drainClose(httpResp.Body)

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create reservation: %w", statusError(httpResp.StatusCode))
	}

	var resp createReservationResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode reservation response: %w", err)
	}
	if resp.ReservationID == "" {
		return "", fmt.Errorf("create reservation: %w: empty reservation id", domain.ErrSourceUnavailable)
	}
	return resp.ReservationID, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func statusError(code int) error {
	if code == http.StatusNotFound {
		return domain.ErrListingNotFound
	}
	return fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, code)
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// NormalizeMinorUnits converts an upstream price to minor units. Values at or
// above minorUnitThreshold are assumed to already be minor units.
func NormalizeMinorUnits(v float64) int64 {
	if v >= minorUnitThreshold {
		return int64(math.Round(v))
	}
	return int64(math.Round(v * 100))
}
