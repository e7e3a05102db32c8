package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports"
	"github.com/srgjo27/tripdesk/internal/platform/clock"
	"github.com/srgjo27/tripdesk/internal/platform/logger"
)

// TokenSource supplies the bearer token for each upstream call.
type TokenSource interface {
	Token() (string, error)
}

type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client talks to the upstream booking backend: seat locks, bookings,
// leads and the trip catalog.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	clock   clock.Clock
	log     *slog.Logger
}

var (
	_ ports.SeatLockClient = (*Client)(nil)
	_ ports.BookingAPI     = (*Client)(nil)
	_ ports.TripCatalog    = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		clock:   clock.NewSystem(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from the backend. Err, when set, is the
// domain error the status maps to.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

type seatLockResponse struct {
	ID        flexString `json:"id"`
	Trip      flexString `json:"trip"`
	Seats     int        `json:"seats"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (r seatLockResponse) toDomain(lockedAt time.Time) *domain.SeatLock {
	return &domain.SeatLock{
		ID:        string(r.ID),
		TripID:    string(r.Trip),
		Seats:     r.Seats,
		LockedAt:  lockedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

func (c *Client) Acquire(ctx context.Context, tripID string, seats int) (*domain.SeatLock, error) {
	body := map[string]any{"trip": tripID, "seats": seats}

	var resp seatLockResponse
	err := c.do(ctx, "acquire seat lock", http.MethodPost, "/api/seatlocks/acquire/", body, &resp, func(status int) error {
		if status == http.StatusConflict || status == http.StatusUnprocessableEntity {
			return domain.ErrInsufficientSeats
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("acquire seat lock: response has no id")
	}
	return resp.toDomain(c.clock.Now()), nil
}

func (c *Client) Refresh(ctx context.Context, lockID string) (*domain.SeatLock, error) {
	var resp seatLockResponse
	path := "/api/seatlocks/" + url.PathEscape(lockID) + "/refresh/"
	if err := c.do(ctx, "refresh seat lock", http.MethodPost, path, nil, &resp, lockStatusErr); err != nil {
		return nil, err
	}
	return resp.toDomain(c.clock.Now()), nil
}

func (c *Client) Release(ctx context.Context, lockID string) error {
	path := "/api/seatlocks/" + url.PathEscape(lockID) + "/release/"
	return c.do(ctx, "release seat lock", http.MethodPost, path, nil, nil, lockStatusErr)
}

func lockStatusErr(status int) error {
	if status == http.StatusNotFound || status == http.StatusGone {
		return domain.ErrLockExpired
	}
	return nil
}

type idResponse struct {
	ID     flexString `json:"id"`
	Status string     `json:"status"`
	Amount flexFloat  `json:"amount"`
}

func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingReceipt, error) {
	var resp idResponse
	err := c.do(ctx, "create booking", http.MethodPost, "/api/bookings/", req, &resp, func(status int) error {
		if status == http.StatusConflict {
			return domain.ErrLockExpired
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("create booking: response has no id")
	}
	return &domain.BookingReceipt{ID: string(resp.ID), Status: resp.Status, Amount: float64(resp.Amount)}, nil
}

func (c *Client) CreateLead(ctx context.Context, req domain.LeadRequest) (string, error) {
	var resp idResponse
	if err := c.do(ctx, "create lead", http.MethodPost, "/api/leads/", req, &resp, nil); err != nil {
		return "", err
	}
	return string(resp.ID), nil
}

type tripResponse struct {
	ID          flexString `json:"id"`
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	Price       flexFloat  `json:"price"`
	Routes      []struct {
		Label string    `json:"label"`
		Price flexFloat `json:"price"`
	} `json:"routes"`
	IsAvailable *bool `json:"is_available"`
}

func (c *Client) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	var resp tripResponse
	path := "/api/trips/" + url.PathEscape(tripID) + "/"
	err := c.do(ctx, "get trip", http.MethodGet, path, nil, &resp, func(status int) error {
		if status == http.StatusNotFound {
			return domain.ErrTripNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	trip := &domain.Trip{
		ID:          string(resp.ID),
		Title:       resp.Title,
		Destination: resp.Destination,
		BasePrice:   float64(resp.Price),
		IsAvailable: resp.IsAvailable == nil || *resp.IsAvailable,
	}
	for _, r := range resp.Routes {
		trip.Routes = append(trip.Routes, domain.RouteOption{Label: r.Label, Price: float64(r.Price)})
	}
	return trip, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any, mapStatus func(int) error) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("%s: token: %w", op, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := c.clock.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend call", "op", op, "method", method, "path", path, "status", resp.StatusCode, "took", c.clock.Now().Sub(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if mapStatus != nil {
			apiErr.Err = mapStatus(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty response body", op)
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// flexString accepts a JSON string or number; Django primary keys arrive
// as either depending on the model.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat accepts a JSON number or a decimal string such as "1500.00".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid decimal %s: %w", b, err)
	}
	*f = flexFloat(v)
	return nil
}
