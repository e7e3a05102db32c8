package ports

import (
	"context"

	"github.com/srgjo27/tripdesk/internal/core/domain"
)

type SeatLockClient interface {
	Acquire(ctx context.Context, tripID string, seats int) (*domain.SeatLock, error)
	Refresh(ctx context.Context, lockID string) (*domain.SeatLock, error)
	Release(ctx context.Context, lockID string) error
}

type BookingAPI interface {
	CreateLead(ctx context.Context, req domain.LeadRequest) (string, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingReceipt, error)
}

type TripCatalog interface {
	GetTrip(ctx context.Context, tripID string) (*domain.Trip, error)
}

type Tracker interface {
	Track(ctx context.Context, ev domain.TrackingEvent)
}
