package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/srgjo27/tripdesk/internal/core/domain"
	"github.com/srgjo27/tripdesk/internal/core/ports"
	"github.com/srgjo27/tripdesk/internal/platform/clock"
	"github.com/srgjo27/tripdesk/internal/platform/logger"
)

type SessionManager struct {
	catalog     ports.TripCatalog
	locks       ports.SeatLockClient
	api         ports.BookingAPI
	clock       clock.Clock
	log         *slog.Logger
	idleTimeout time.Duration
	flowOpts    []BookingFlowOption

	mu       sync.Mutex
	sessions map[string]*managedSession
}

type managedSession struct {
	flow   *BookingFlow
	cancel context.CancelFunc
}

type SessionManagerConfig struct {
	IdleTimeout time.Duration
	Clock       clock.Clock
	Logger      *slog.Logger
	// FlowOptions are applied to every session after the manager's own.
	FlowOptions []BookingFlowOption
}

func NewSessionManager(catalog ports.TripCatalog, locks ports.SeatLockClient, api ports.BookingAPI, cfg SessionManagerConfig) *SessionManager {
	m := &SessionManager{
		catalog:     catalog,
		locks:       locks,
		api:         api,
		clock:       cfg.Clock,
		log:         cfg.Logger,
		idleTimeout: cfg.IdleTimeout,
		flowOpts:    cfg.FlowOptions,
		sessions:    make(map[string]*managedSession),
	}
	if m.clock == nil {
		m.clock = clock.NewSystem()
	}
	if m.log == nil {
		m.log = logger.Discard()
	}
	if m.idleTimeout <= 0 {
		m.idleTimeout = 30 * time.Minute
	}
	return m
}

// Start opens a booking session for tripID and starts its lock timers.
func (m *SessionManager) Start(ctx context.Context, tripID string) (*BookingFlow, error) {
	trip, err := m.catalog.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load trip %s: %w", tripID, err)
	}

	opts := append([]BookingFlowOption{
		WithClock(m.clock),
		WithLogger(m.log),
	}, m.flowOpts...)
	flow := NewBookingFlow(trip, m.locks, m.api, opts...)

	runCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.sessions[flow.ID()] = &managedSession{flow: flow, cancel: cancel}
	m.mu.Unlock()

	go flow.Run(runCtx)
	return flow, nil
}

func (m *SessionManager) Get(id string) (*BookingFlow, error) {
	s, ok := m.lookup(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.flow, nil
}

// Cancel releases the session's lock and forgets the session. A session
// that is submitting stays registered and ErrBusy is returned.
func (m *SessionManager) Cancel(ctx context.Context, id string) error {
	s, ok := m.lookup(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := s.flow.Cancel(ctx); err != nil {
		return err
	}
	if s, ok := m.remove(id); ok {
		s.cancel()
	}
	return nil
}

// Close ends the session without releasing its lock, e.g. after a booking
// went through.
func (m *SessionManager) Close(id string) error {
	s, ok := m.remove(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.flow.Close()
	s.cancel()
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) lookup(id string) (*managedSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *SessionManager) remove(id string) (*managedSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	return s, ok
}

func (m *SessionManager) RunBackgroundCleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	m.log.Info("booking session sweeper started", "interval", every, "idle_timeout", m.idleTimeout)

	for {
		select {
		case <-ctx.Done():
			m.log.Info("booking session sweeper stopped")
			return
		case <-ticker.C:
			m.SweepIdle(ctx)
		}
	}
}

// SweepIdle closes sessions idle for longer than the idle timeout.
// Unfinished ones are cancelled, which releases their lock and records
// them as abandoned.
func (m *SessionManager) SweepIdle(ctx context.Context) int {
	now := m.clock.Now()

	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if s.flow.Closed() || now.Sub(s.flow.LastActivity()) > m.idleTimeout {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	if len(stale) == 0 {
		return 0
	}
	m.log.Info("sweeping idle booking sessions", "count", len(stale))

	swept := 0
	for _, id := range stale {
		var err error
		if s, ok := m.lookup(id); ok && s.flow.Completed() {
			err = m.Close(id)
		} else {
			err = m.Cancel(ctx, id)
		}
		if err == nil {
			swept++
		}
	}
	return swept
}

// Shutdown closes every open session, releasing unfinished locks.
func (m *SessionManager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.Cancel(ctx, id); errors.Is(err, domain.ErrBusy) {
			_ = m.Close(id)
		}
	}
}
