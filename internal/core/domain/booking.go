package domain

import "time"

type BookingStep int

const (
	StepDetails BookingStep = iota + 1
	StepGuest
	StepReview
	StepSubmitting
	StepDone
)

func (s BookingStep) String() string {
	switch s {
	case StepDetails:
		return "DETAILS"
	case StepGuest:
		return "GUEST"
	case StepReview:
		return "REVIEW"
	case StepSubmitting:
		return "SUBMITTING"
	case StepDone:
		return "DONE"
	}
	return "UNKNOWN"
}

type Customer struct {
	Name  string `json:"name" validate:"max=120"`
	Phone string `json:"phone" validate:"max=40"`
	Email string `json:"email" validate:"omitempty,email"`
}

// BookingDraft accumulates the wizard input until it is confirmed.
type BookingDraft struct {
	TripID    string
	GroupSize int
	Route     string
	Date      string
	Customer  Customer
	Medical   string
	Diet      string
}

// Total is always EffectiveBase * GroupSize.
func (d *BookingDraft) Total(trip *Trip) float64 {
	return trip.EffectiveBase(d.Route) * float64(d.GroupSize)
}

type BookingRequest struct {
	Destination string  `json:"destination"`
	Date        string  `json:"date"`
	Trip        string  `json:"trip"`
	Seats       int     `json:"seats"`
	SeatLock    string  `json:"seat_lock"`
	Route       string  `json:"route,omitempty"`
	Amount      float64 `json:"amount"`
}

type LeadRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Source     string `json:"source"`
	Trip       string `json:"trip"`
	IsWhatsApp bool   `json:"is_whatsapp"`
}

type BookingReceipt struct {
	ID     string  `json:"id"`
	Status string  `json:"status,omitempty"`
	Amount float64 `json:"amount,omitempty"`
}

// BookingSummary is handed to the completion callback once a booking has
// been accepted by the backend.
type BookingSummary struct {
	BookingID   string    `json:"booking_id"`
	LeadID      string    `json:"lead_id,omitempty"`
	TripID      string    `json:"trip_id"`
	TripTitle   string    `json:"trip_title"`
	Destination string    `json:"destination"`
	Date        string    `json:"date"`
	Seats       int       `json:"seats"`
	Route       string    `json:"route,omitempty"`
	Amount      float64   `json:"amount"`
	Customer    Customer  `json:"customer"`
	CreatedAt   time.Time `json:"created_at"`
}
