package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports"
	"github.com/srgjo27/tripdesk/internal/platform/clock"
	"github.com/srgjo27/tripdesk/internal/platform/logger"
	"github.com/srgjo27/tripdesk/internal/platform/validate"
)

const (
	defaultRefreshInterval   = 120 * time.Second
	defaultCountdownInterval = time.Second

	bookingLeadSource = "booking"
)

// BookingFlow is one booking wizard session: trip details, guest info,
// review and confirm. It owns the session's seat lock from acquisition to
// release or lapse.
//
// Network calls are made without holding mu. Mutating calls that need the
// network mark the session busy so a second one is rejected with ErrBusy
// instead of racing.
type BookingFlow struct {
	id                string
	trip              *domain.Trip
	locks             ports.SeatLockClient
	api               ports.BookingAPI
	tracker           ports.Tracker
	clock             clock.Clock
	log               *slog.Logger
	refreshInterval   time.Duration
	countdownInterval time.Duration
	onComplete        func(domain.BookingSummary)

	mu           sync.Mutex
	step         domain.BookingStep
	draft        domain.BookingDraft
	lock         domain.LockState
	busy         bool
	lastErr      error
	summary      *domain.BookingSummary
	completed    bool
	closed       bool
	closePending bool
	lastActivity time.Time
	done         chan struct{}
}

type BookingFlowOption func(*BookingFlow)

func WithSessionID(id string) BookingFlowOption {
	return func(f *BookingFlow) {
		if id != "" {
			f.id = id
		}
	}
}

func WithClock(c clock.Clock) BookingFlowOption {
	return func(f *BookingFlow) {
		if c != nil {
			f.clock = c
		}
	}
}

func WithLogger(l *slog.Logger) BookingFlowOption {
	return func(f *BookingFlow) {
		if l != nil {
			f.log = l
		}
	}
}

func WithTracker(t ports.Tracker) BookingFlowOption {
	return func(f *BookingFlow) {
		if t != nil {
			f.tracker = t
		}
	}
}

func WithRefreshInterval(d time.Duration) BookingFlowOption {
	return func(f *BookingFlow) {
		if d > 0 {
			f.refreshInterval = d
		}
	}
}

func WithCountdownInterval(d time.Duration) BookingFlowOption {
	return func(f *BookingFlow) {
		if d > 0 {
			f.countdownInterval = d
		}
	}
}

func WithCompletionHandler(fn func(domain.BookingSummary)) BookingFlowOption {
	return func(f *BookingFlow) {
		f.onComplete = fn
	}
}

// NewBookingFlow starts a session for trip and emits booking_open.
func NewBookingFlow(trip *domain.Trip, locks ports.SeatLockClient, api ports.BookingAPI, opts ...BookingFlowOption) *BookingFlow {
	f := &BookingFlow{
		id:                uuid.NewString(),
		trip:              trip,
		locks:             locks,
		api:               api,
		tracker:           nopTracker{},
		clock:             clock.NewSystem(),
		log:               logger.Discard(),
		refreshInterval:   defaultRefreshInterval,
		countdownInterval: defaultCountdownInterval,
		step:              domain.StepDetails,
		draft:             domain.BookingDraft{TripID: trip.ID, GroupSize: 1},
		lock:              domain.LockState{Status: domain.LockNone},
		done:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With("session_id", f.id, "trip_id", trip.ID)
	f.lastActivity = f.clock.Now()

	f.track(domain.EventBookingOpen, domain.StepDetails)
	return f
}

func (f *BookingFlow) ID() string { return f.id }

func (f *BookingFlow) SetDate(date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return domain.ErrDateRequired
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return domain.ErrInvalidDate
	}
	return f.edit(func() { f.draft.Date = date })
}

func (f *BookingFlow) SetRoute(label string) error {
	label = strings.TrimSpace(label)
	if label != "" {
		if _, ok := f.trip.Route(label); !ok {
			return domain.ErrUnknownRoute
		}
	}
	return f.edit(func() { f.draft.Route = label })
}

func (f *BookingFlow) SetCustomer(c domain.Customer) error {
	return f.edit(func() { f.draft.Customer = c })
}

func (f *BookingFlow) SetNotes(medical, diet string) error {
	return f.edit(func() {
		f.draft.Medical = medical
		f.draft.Diet = diet
	})
}

func (f *BookingFlow) edit(apply func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkEditable(); err != nil {
		return err
	}
	apply()
	f.lastActivity = f.clock.Now()
	return nil
}

func (f *BookingFlow) checkEditable() error {
	if f.closed {
		return domain.ErrSessionClosed
	}
	if f.busy {
		return domain.ErrBusy
	}
	if f.step >= domain.StepReview {
		return domain.ErrInvalidStep
	}
	return nil
}

// SetGroupSize changes the number of seats. When a live lock for a
// different count is held, it is released and a new one acquired; there is
// no endpoint to resize a lock in place.
func (f *BookingFlow) SetGroupSize(ctx context.Context, n int) error {
	if n < 1 {
		return domain.ErrInvalidGroupSize
	}

	f.mu.Lock()
	if err := f.checkEditable(); err != nil {
		f.mu.Unlock()
		return err
	}
	now := f.clock.Now()
	f.lastActivity = now
	if n == f.draft.GroupSize {
		f.mu.Unlock()
		return nil
	}
	f.draft.GroupSize = n

	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventTick, Now: now})
	held := f.lock.Held(now)
	if held == nil || held.Seats == n {
		f.mu.Unlock()
		return nil
	}

	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventDiscarded})
	f.busy = true
	f.mu.Unlock()

	f.releaseQuietly(ctx, held.ID)
	lock, err := f.acquire(ctx, n)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if f.closed {
		if lock != nil {
			f.releaseQuietly(context.WithoutCancel(ctx), lock.ID)
		}
		return domain.ErrSessionClosed
	}
	if err != nil {
		f.lastErr = err
		f.step = domain.StepDetails
		return err
	}
	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventAcquired, Lock: lock})
	f.lastErr = nil
	return nil
}

// Next validates the current step and advances. Leaving the details step
// acquires a seat lock unless a live one is already held.
func (f *BookingFlow) Next(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if f.busy {
		f.mu.Unlock()
		return domain.ErrBusy
	}
	now := f.clock.Now()
	f.lastActivity = now

	switch f.step {
	case domain.StepGuest:
		defer f.mu.Unlock()
		if err := f.validateGuest(); err != nil {
			return err
		}
		f.step = domain.StepReview
		return nil
	case domain.StepDetails:
	default:
		f.mu.Unlock()
		return domain.ErrInvalidStep
	}

	if err := f.validateDetails(); err != nil {
		f.mu.Unlock()
		return err
	}

	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventTick, Now: now})
	if f.lock.Held(now) != nil {
		f.step = domain.StepGuest
		f.mu.Unlock()
		return nil
	}
	if f.lock.Status != domain.LockNone {
		f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventDiscarded})
	}

	seats := f.draft.GroupSize
	f.busy = true
	f.mu.Unlock()

	lock, err := f.acquire(ctx, seats)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if f.closed {
		if lock != nil {
			f.releaseQuietly(context.WithoutCancel(ctx), lock.ID)
		}
		return domain.ErrSessionClosed
	}
	if err != nil {
		f.lastErr = err
		return err
	}
	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventAcquired, Lock: lock})
	f.lastErr = nil
	f.step = domain.StepGuest
	return nil
}

// Back moves one step towards the details step. The seat lock is kept.
func (f *BookingFlow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return domain.ErrSessionClosed
	}
	if f.busy {
		return domain.ErrBusy
	}
	if f.step <= domain.StepDetails || f.step > domain.StepReview {
		return domain.ErrInvalidStep
	}
	f.step--
	f.lastActivity = f.clock.Now()
	return nil
}

// Confirm submits the booking. It fails fast when the trip is unavailable
// or the lock is missing or expired; a failed submission stays on review so
// it can be retried without re-entering data.
func (f *BookingFlow) Confirm(ctx context.Context) (*domain.BookingSummary, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	if f.busy {
		f.mu.Unlock()
		return nil, domain.ErrBusy
	}
	if f.step != domain.StepReview {
		f.mu.Unlock()
		return nil, domain.ErrInvalidStep
	}
	now := f.clock.Now()
	f.lastActivity = now

	if !f.trip.IsAvailable {
		f.lastErr = domain.ErrTripUnavailable
		f.mu.Unlock()
		return nil, domain.ErrTripUnavailable
	}

	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventTick, Now: now})
	held := f.lock.Held(now)
	if held == nil {
		err := domain.ErrLockRequired
		if f.lock.Status == domain.LockExpired {
			err = domain.ErrLockExpired
		}
		f.lastErr = err
		f.mu.Unlock()
		return nil, err
	}

	draft := f.draft
	total := draft.Total(f.trip)
	f.step = domain.StepSubmitting
	f.busy = true
	f.mu.Unlock()

	leadID, err := f.api.CreateLead(ctx, f.leadRequest(draft))
	if err != nil {
		// Lead capture is best effort; the booking goes ahead without it.
		f.log.Warn("booking lead not recorded", "error", err)
	}

	receipt, err := f.api.CreateBooking(ctx, domain.BookingRequest{
		Destination: f.destination(),
		Date:        draft.Date,
		Trip:        f.trip.ID,
		Seats:       draft.GroupSize,
		SeatLock:    held.ID,
		Route:       draft.Route,
		Amount:      total,
	})

	f.mu.Lock()
	f.busy = false
	closeAfter := f.closePending
	f.closePending = false
	if err != nil {
		err = fmt.Errorf("create booking: %w", err)
		f.lastErr = err
		f.step = domain.StepReview
		f.mu.Unlock()
		if closeAfter {
			// Closed while submitting: nothing will retry, so give the seats back.
			_ = f.Cancel(context.WithoutCancel(ctx))
		}
		return nil, err
	}

	summary := &domain.BookingSummary{
		BookingID:   receipt.ID,
		LeadID:      leadID,
		TripID:      f.trip.ID,
		TripTitle:   f.trip.Title,
		Destination: f.destination(),
		Date:        draft.Date,
		Seats:       draft.GroupSize,
		Route:       draft.Route,
		Amount:      total,
		Customer:    draft.Customer,
		CreatedAt:   f.clock.Now(),
	}
	f.summary = summary
	f.lastErr = nil
	f.completed = true
	f.step = domain.StepDone
	onComplete := f.onComplete
	f.mu.Unlock()

	f.log.Info("booking confirmed", "booking_id", receipt.ID, "seats", draft.GroupSize, "amount", total)
	if onComplete != nil {
		onComplete(*summary)
	}
	if closeAfter {
		f.Close()
	}
	return summary, nil
}

// Heartbeat refreshes a held lock. A failed refresh expires the lock at
// once; there is no retry. A response for a lock that has since been
// replaced is ignored.
func (f *BookingFlow) Heartbeat(ctx context.Context) {
	f.mu.Lock()
	if f.closed || f.completed {
		f.mu.Unlock()
		return
	}
	now := f.clock.Now()
	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventTick, Now: now})
	held := f.lock.Held(now)
	f.mu.Unlock()
	if held == nil {
		return
	}

	refreshed, err := f.locks.Refresh(ctx, held.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.log.Debug("seat lock refresh failed, treating as expired", "lock_id", held.ID, "error", err)
		f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventRefreshFailed, LockID: held.ID})
		return
	}
	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventRefreshed, LockID: held.ID, Lock: refreshed})
}

func (f *BookingFlow) CheckExpiry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventTick, Now: f.clock.Now()})
}

// Run drives the heartbeat and the countdown until ctx is done or the
// session is closed.
func (f *BookingFlow) Run(ctx context.Context) {
	refresh := time.NewTicker(f.refreshInterval)
	defer refresh.Stop()
	countdown := time.NewTicker(f.countdownInterval)
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-refresh.C:
			f.Heartbeat(ctx)
		case <-countdown.C:
			f.CheckExpiry()
		}
	}
}

// Cancel releases the lock (best effort) and closes the session. A submission
// in flight cannot be cancelled; its lock is still in use.
func (f *BookingFlow) Cancel(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting() {
		f.mu.Unlock()
		return domain.ErrBusy
	}
	var lockID string
	if !f.completed && f.lock.Status == domain.LockLocked && f.lock.Lock != nil {
		lockID = f.lock.Lock.ID
		f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventReleased, LockID: lockID})
	}
	f.mu.Unlock()

	if lockID != "" {
		f.releaseQuietly(ctx, lockID)
	}
	f.Close()
	return nil
}

// Close ends the session and emits exactly one of booking_close or
// booking_abandoned. During a submission the close is deferred until the
// backend has answered, so the event reflects the outcome.
func (f *BookingFlow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if f.submitting() {
		f.closePending = true
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.done)
	name := domain.EventBookingAbandoned
	if f.completed {
		name = domain.EventBookingClose
	}
	step := f.step
	f.mu.Unlock()

	f.track(name, step)
}

func (f *BookingFlow) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *BookingFlow) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *BookingFlow) LastActivity() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActivity
}

func (f *BookingFlow) submitting() bool {
	return f.busy && f.step == domain.StepSubmitting
}

type BookingView struct {
	SessionID     string                 `json:"session_id"`
	TripID        string                 `json:"trip_id"`
	TripTitle     string                 `json:"trip_title"`
	Step          int                    `json:"step"`
	StepName      string                 `json:"step_name"`
	GroupSize     int                    `json:"group_size"`
	Route         string                 `json:"route,omitempty"`
	Date          string                 `json:"date,omitempty"`
	Customer      domain.Customer        `json:"customer"`
	Medical       string                 `json:"medical,omitempty"`
	Diet          string                 `json:"diet,omitempty"`
	Total         float64                `json:"total"`
	LockStatus    domain.LockStatus      `json:"lock_status"`
	LockID        string                 `json:"lock_id,omitempty"`
	LockExpiresAt *time.Time             `json:"lock_expires_at,omitempty"`
	SecondsLeft   int                    `json:"seconds_left"`
	LockExpired   bool                   `json:"lock_expired"`
	Busy          bool                   `json:"busy"`
	Error         string                 `json:"error,omitempty"`
	Summary       *domain.BookingSummary `json:"summary,omitempty"`
	Closed        bool                   `json:"closed"`
}

func (f *BookingFlow) Snapshot() BookingView {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	f.lock = domain.ReduceLock(f.lock, domain.LockEvent{Kind: domain.LockEventTick, Now: now})

	v := BookingView{
		SessionID:   f.id,
		TripID:      f.trip.ID,
		TripTitle:   f.trip.Title,
		Step:        int(f.step),
		StepName:    f.step.String(),
		GroupSize:   f.draft.GroupSize,
		Route:       f.draft.Route,
		Date:        f.draft.Date,
		Customer:    f.draft.Customer,
		Medical:     f.draft.Medical,
		Diet:        f.draft.Diet,
		Total:       f.draft.Total(f.trip),
		LockStatus:  f.lock.Status,
		LockExpired: f.lock.Status == domain.LockExpired,
		Busy:        f.busy,
		Summary:     f.summary,
		Closed:      f.closed,
	}
	if l := f.lock.Lock; l != nil {
		exp := l.ExpiresAt
		v.LockID = l.ID
		v.LockExpiresAt = &exp
		v.SecondsLeft = int(l.Remaining(now) / time.Second)
	}
	if f.lastErr != nil {
		v.Error = f.lastErr.Error()
	}
	return v
}

func (f *BookingFlow) validateDetails() error {
	if !f.trip.IsAvailable {
		return domain.ErrTripUnavailable
	}
	if f.draft.Date == "" {
		return domain.ErrDateRequired
	}
	if f.draft.GroupSize <= 0 {
		return domain.ErrInvalidGroupSize
	}
	if f.trip.HasRoutes() && f.draft.Route == "" {
		return domain.ErrRouteRequired
	}
	return nil
}

func (f *BookingFlow) validateGuest() error {
	c := f.draft.Customer
	if strings.TrimSpace(c.Name) == "" {
		return domain.ErrNameRequired
	}
	if strings.TrimSpace(c.Phone) == "" {
		return domain.ErrPhoneRequired
	}
	if email := strings.TrimSpace(c.Email); email != "" && !validate.Email(email) {
		return domain.ErrInvalidEmail
	}
	if errs := validate.Struct(c); errs != nil {
		return fmt.Errorf("invalid guest details: %v", errs)
	}
	return nil
}

func (f *BookingFlow) acquire(ctx context.Context, seats int) (*domain.SeatLock, error) {
	lock, err := f.locks.Acquire(ctx, f.trip.ID, seats)
	if err != nil {
		f.log.Info("seat lock not acquired", "seats", seats, "error", err)
		if errors.Is(err, domain.ErrInsufficientSeats) {
			return nil, err
		}
		return nil, fmt.Errorf("acquire seat lock: %w", err)
	}
	if lock == nil {
		return nil, fmt.Errorf("acquire seat lock: empty response")
	}
	if lock.LockedAt.IsZero() {
		lock.LockedAt = f.clock.Now()
	}
	f.log.Info("seat lock acquired", "lock_id", lock.ID, "seats", lock.Seats, "expires_at", lock.ExpiresAt)
	return lock, nil
}

// releaseQuietly never surfaces failures; an unreleased lock lapses on its
// own.
func (f *BookingFlow) releaseQuietly(ctx context.Context, lockID string) {
	if err := f.locks.Release(ctx, lockID); err != nil {
		f.log.Warn("seat lock release failed", "lock_id", lockID, "error", err)
		return
	}
	f.log.Info("seat lock released", "lock_id", lockID)
}

func (f *BookingFlow) leadRequest(d domain.BookingDraft) domain.LeadRequest {
	var msg strings.Builder
	fmt.Fprintf(&msg, "Booking %s on %s for %d guest(s)", f.trip.Title, d.Date, d.GroupSize)
	if d.Route != "" {
		fmt.Fprintf(&msg, ", route %s", d.Route)
	}
	if d.Medical != "" {
		fmt.Fprintf(&msg, ". Medical: %s", d.Medical)
	}
	if d.Diet != "" {
		fmt.Fprintf(&msg, ". Diet: %s", d.Diet)
	}

	return domain.LeadRequest{
		Name:    strings.TrimSpace(d.Customer.Name),
		Phone:   strings.TrimSpace(d.Customer.Phone),
		Email:   strings.TrimSpace(d.Customer.Email),
		Message: msg.String(),
		Source:  bookingLeadSource,
		Trip:    f.trip.ID,
	}
}

func (f *BookingFlow) destination() string {
	if f.trip.Destination != "" {
		return f.trip.Destination
	}
	return f.trip.Title
}

func (f *BookingFlow) track(name domain.TrackingEventName, step domain.BookingStep) {
	f.tracker.Track(context.Background(), domain.TrackingEvent{
		Name:      name,
		SessionID: f.id,
		TripID:    f.trip.ID,
		Step:      step,
		At:        f.clock.Now(),
	})
}

type nopTracker struct{}

func (nopTracker) Track(context.Context, domain.TrackingEvent) {}
