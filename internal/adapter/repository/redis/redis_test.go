package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports/mocks"
)

func TestOwnerCursor_Next(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cursor := NewOwnerCursor(db)

	mock.ExpectIncr(ownerCursorKey).SetVal(1)
	mock.ExpectIncr(ownerCursorKey).SetVal(2)

	first, err := cursor.Next(context.Background())
	require.NoError(t, err)
	second, err := cursor.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerCursor_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cursor := NewOwnerCursor(db)

	mock.ExpectIncr(ownerCursorKey).SetErr(errors.New("connection refused"))

	_, err := cursor.Next(context.Background())
	assert.ErrorContains(t, err, "advance owner cursor")
}

func TestTripCache_MissThenStore(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	catalog := mocks.NewTripCatalog(t)
	cache := NewTripCache(catalog, db, time.Minute, nil)

	trip := &domain.Trip{ID: "bromo", Title: "Bromo Sunrise", BasePrice: 1500, IsAvailable: true}
	data, err := json.Marshal(trip)
	require.NoError(t, err)

	mock.ExpectGet("trips:bromo").RedisNil()
	catalog.On("GetTrip", ctx, "bromo").Return(trip, nil).Once()
	mock.ExpectSet("trips:bromo", data, time.Minute).SetVal("OK")

	got, err := cache.GetTrip(ctx, "bromo")
	require.NoError(t, err)
	assert.Equal(t, trip, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripCache_Hit(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	catalog := mocks.NewTripCatalog(t)
	cache := NewTripCache(catalog, db, time.Minute, nil)

	mock.ExpectGet("trips:bromo").SetVal(`{"id":"bromo","title":"Bromo Sunrise","price":1500,"routes":[{"label":"Malang","price":1600}],"is_available":true}`)

	got, err := cache.GetTrip(ctx, "bromo")
	require.NoError(t, err)
	assert.Equal(t, 1600.0, got.EffectiveBase("Malang"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripCache_CatalogErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	catalog := mocks.NewTripCatalog(t)
	cache := NewTripCache(catalog, db, time.Minute, nil)

	mock.ExpectGet("trips:nowhere").SetErr(errors.New("redis down"))
	catalog.On("GetTrip", ctx, "nowhere").Return(nil, domain.ErrTripNotFound)

	_, err := cache.GetTrip(ctx, "nowhere")
	assert.ErrorIs(t, err, domain.ErrTripNotFound)
}

func TestEventCounter(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	counter := NewEventCounter(db, nil)

	day := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	key := "tracking:booking:2025-06-01"

	mock.ExpectTxPipeline()
	mock.ExpectHIncrBy(key, "booking_open", 1).SetVal(1)
	mock.ExpectExpire(key, eventCounterTTL).SetVal(true)
	mock.ExpectTxPipelineExec()

	counter.Track(ctx, domain.TrackingEvent{Name: domain.EventBookingOpen, At: day})

	mock.ExpectHGetAll(key).SetVal(map[string]string{"booking_open": "4", "booking_abandoned": "1"})

	counts, err := counter.Counts(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"booking_open": 4, "booking_abandoned": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
