package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/platform/clock"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", StaticToken("tok"), WithClock(clock.NewManual(now)))
}

func TestClient_Acquire(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/seatlocks/acquire/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "trip-7", body["trip"])
		assert.Equal(t, float64(3), body["seats"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "trip": 7, "seats": 3, "expires_at": "2025-06-01T09:10:00Z"}`))
	})

	lock, err := c.Acquire(context.Background(), "trip-7", 3)
	require.NoError(t, err)
	assert.Equal(t, "42", lock.ID)
	assert.Equal(t, "7", lock.TripID)
	assert.Equal(t, 3, lock.Seats)
	assert.Equal(t, now, lock.LockedAt)
	assert.Equal(t, now.Add(10*time.Minute), lock.ExpiresAt.UTC())
}

func TestClient_Acquire_InsufficientSeats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail": "only 2 seats left"}`))
	})

	_, err := c.Acquire(context.Background(), "trip-7", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "only 2 seats left")
}

func TestClient_RefreshAndRelease(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/api/seatlocks/l-1/refresh/":
			_, _ = w.Write([]byte(`{"id": "l-1", "trip": "t", "seats": 2, "expires_at": "2025-06-01T09:12:00Z"}`))
		case "/api/seatlocks/l-1/release/":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	lock, err := c.Refresh(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(12*time.Minute), lock.ExpiresAt.UTC())

	require.NoError(t, c.Release(context.Background(), "l-1"))

	err = c.Release(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrLockExpired)

	assert.Equal(t, []string{"/api/seatlocks/l-1/refresh/", "/api/seatlocks/l-1/release/", "/api/seatlocks/gone/release/"}, paths)
}

func TestClient_CreateBooking(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/", r.URL.Path)

		var req domain.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "l-9", req.SeatLock)
		assert.Equal(t, 2, req.Seats)
		assert.Equal(t, 300.0, req.Amount)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 501, "status": "pending", "amount": "300.00"}`))
	})

	receipt, err := c.CreateBooking(context.Background(), domain.BookingRequest{
		Destination: "Bromo", Date: "2025-07-01", Trip: "t-1", Seats: 2, SeatLock: "l-9", Amount: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, "501", receipt.ID)
	assert.Equal(t, 300.0, receipt.Amount)
}

func TestClient_CreateBooking_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.CreateBooking(context.Background(), domain.BookingRequest{})
	assert.ErrorContains(t, err, "no id")
}

func TestClient_CreateLead(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req domain.LeadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "booking", req.Source)
		_, _ = w.Write([]byte(`{"id": "lead-3"}`))
	})

	id, err := c.CreateLead(context.Background(), domain.LeadRequest{Name: "Rina", Source: "booking"})
	require.NoError(t, err)
	assert.Equal(t, "lead-3", id)
}

func TestClient_GetTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/trips/bromo/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{
			"id": "bromo", "title": "Bromo Sunrise", "destination": "Bromo",
			"price": "1500.00",
			"routes": [{"label": "Surabaya", "price": 1700}, {"label": "Malang", "price": "1600.50"}]
		}`))
	})

	trip, err := c.GetTrip(context.Background(), "bromo")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, trip.BasePrice)
	assert.True(t, trip.IsAvailable)
	require.Len(t, trip.Routes, 2)
	assert.Equal(t, 1600.5, trip.Routes[1].Price)

	_, err = c.GetTrip(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrTripNotFound)
}
