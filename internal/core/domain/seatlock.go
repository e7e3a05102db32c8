package domain

import "time"

// SeatLock is a time-boxed reservation of seats on a trip held by the
// upstream backend on behalf of one booking session.
type SeatLock struct {
	ID        string
	TripID    string
	Seats     int
	LockedAt  time.Time
	ExpiresAt time.Time
}

func (l *SeatLock) IsValid(now time.Time) bool {
	return l != nil && now.Before(l.ExpiresAt)
}

// Remaining returns the time left before the lock lapses, never negative.
func (l *SeatLock) Remaining(now time.Time) time.Duration {
	if l == nil {
		return 0
	}
	if d := l.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

type LockStatus string

const (
	LockNone     LockStatus = "NONE"
	LockLocked   LockStatus = "LOCKED"
	LockExpired  LockStatus = "EXPIRED"
	LockReleased LockStatus = "RELEASED"
)

// LockState is the client-observed state of a session's seat lock. Lock is
// set only while Status is LOCKED.
type LockState struct {
	Status LockStatus
	Lock   *SeatLock
}

// Held returns the lock when it is LOCKED and still valid at now.
func (s LockState) Held(now time.Time) *SeatLock {
	if s.Status != LockLocked || !s.Lock.IsValid(now) {
		return nil
	}
	return s.Lock
}

type LockEventKind int

const (
	LockEventAcquired LockEventKind = iota + 1
	LockEventRefreshed
	LockEventRefreshFailed
	LockEventTick
	LockEventReleased
	LockEventDiscarded
)

// LockEvent drives ReduceLock. LockID identifies the lock a network
// response belongs to; Lock carries the server view for acquire/refresh.
type LockEvent struct {
	Kind   LockEventKind
	LockID string
	Lock   *SeatLock
	Now    time.Time
}

// ReduceLock is the only place lock state changes. Events that name a lock
// other than the one currently held are stale and leave the state as is.
func ReduceLock(state LockState, ev LockEvent) LockState {
	switch ev.Kind {
	case LockEventAcquired:
		if ev.Lock == nil {
			return state
		}
		return LockState{Status: LockLocked, Lock: ev.Lock}

	case LockEventRefreshed:
		if !state.holds(ev.LockID) || ev.Lock == nil {
			return state
		}
		refreshed := *state.Lock
		refreshed.ExpiresAt = ev.Lock.ExpiresAt
		if ev.Lock.Seats > 0 {
			refreshed.Seats = ev.Lock.Seats
		}
		return LockState{Status: LockLocked, Lock: &refreshed}

	case LockEventRefreshFailed:
		if !state.holds(ev.LockID) {
			return state
		}
		return LockState{Status: LockExpired}

	case LockEventTick:
		if state.Status == LockLocked && !state.Lock.IsValid(ev.Now) {
			return LockState{Status: LockExpired}
		}
		return state

	case LockEventReleased:
		if !state.holds(ev.LockID) {
			return state
		}
		return LockState{Status: LockReleased}

	case LockEventDiscarded:
		return LockState{Status: LockNone}
	}
	return state
}

func (s LockState) holds(id string) bool {
	return s.Status == LockLocked && s.Lock != nil && s.Lock.ID == id
}
