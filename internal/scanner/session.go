package scanner

import (
	"errors"
	"fmt"
	"sync"
)

// State is a step of the gate scan workflow.
type State string

const (
	StateIdle         State = "IDLE"
	StateScanning     State = "SCANNING"
	StateProcessing   State = "PROCESSING"
	StateVerified     State = "VERIFIED"
	StateAllowPending State = "ALLOW_PENDING"
	StateDenyPending  State = "DENY_PENDING"
	StateError        State = "ERROR"
)

// Event drives a Session from one State to the next.
type Event string

const (
	EventStart            Event = "start"
	EventDecodeSuccess    Event = "decodeSuccess"
	EventVerified         Event = "verified"
	EventFailed           Event = "failed"
	EventDismiss          Event = "dismiss"
	EventOperatorAllows   Event = "operatorAllows"
	EventOperatorDenies   Event = "operatorDenies"
	EventDecisionRecorded Event = "decisionRecorded"
	EventReset            Event = "reset"
)

// ErrInvalidTransition is returned when an event is not accepted in the current state.
var ErrInvalidTransition = errors.New("invalid scanner transition")

// A failed decision write leaves the session pending; the operator re-submits
// the same decision explicitly.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStart: StateScanning,
	},
	StateScanning: {
		EventDecodeSuccess: StateProcessing,
		EventFailed:        StateError,
	},
	StateProcessing: {
		EventVerified: StateVerified,
		EventFailed:   StateError,
	},
	StateError: {
		EventDismiss: StateScanning,
	},
	StateVerified: {
		EventOperatorAllows: StateAllowPending,
		EventOperatorDenies: StateDenyPending,
	},
	StateAllowPending: {
		EventOperatorAllows:   StateAllowPending,
		EventDecisionRecorded: StateIdle,
	},
	StateDenyPending: {
		EventOperatorDenies:   StateDenyPending,
		EventDecisionRecorded: StateIdle,
	},
}

// Session is the per-gate scan state machine. It is safe for concurrent use;
// PROCESSING doubles as the guard against overlapping verification requests.
type Session struct {
	mu    sync.Mutex
	state State
}

// NewSession starts in IDLE.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fire applies ev and returns the resulting state. Reset is accepted from any state.
func (s *Session) Fire(ev Event) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev == EventReset {
		s.state = StateIdle
		return s.state, nil
	}
	next, ok := transitions[s.state][ev]
	if !ok {
		return s.state, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev, s.state)
	}
	s.state = next
	return next, nil
}
