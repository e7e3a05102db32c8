package domain

import "time"

type TrackingEventName string

const (
	EventBookingOpen      TrackingEventName = "booking_open"
	EventBookingClose     TrackingEventName = "booking_close"
	EventBookingAbandoned TrackingEventName = "booking_abandoned"
)

type TrackingEvent struct {
	Name      TrackingEventName
	SessionID string
	TripID    string
	Step      BookingStep
	At        time.Time
}
