// Package avatar holds the character state machine and the controller that
// arbitrates which timeline owns the character.
package avatar

import (
	"sync"
	"time"
)

// State is the controller-level state of the character.
type State string

const (
	StateIdle          State = "IDLE"
	StateEmotion       State = "EMOTION"
	StateTransitionIn  State = "TRANSITION_IN"
	StateTransitionOut State = "TRANSITION_OUT"
	StateSearch        State = "SEARCH"
	StatePaused        State = "PAUSED"
	StateOff           State = "OFF"
)

// DefaultHistorySize caps the transition history.
const DefaultHistorySize = 50

var transitions = map[State][]State{
	StateIdle:          {StateIdle, StateEmotion, StateTransitionOut, StateSearch, StatePaused},
	StateEmotion:       {StateIdle, StateEmotion, StateTransitionOut, StateSearch, StatePaused},
	StateTransitionIn:  {StateIdle},
	StateTransitionOut: {StateOff},
	StateOff:           {StateTransitionIn},
	StateSearch:        {StateIdle, StateTransitionOut, StatePaused},
	StatePaused:        {StateIdle, StateEmotion, StateSearch},
}

var priorities = map[State]int{
	StateIdle:          0,
	StateOff:           0,
	StateEmotion:       1,
	StateSearch:        2,
	StatePaused:        3,
	StateTransitionIn:  4,
	StateTransitionOut: 4,
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Priority is the static priority of s; higher is harder to interrupt.
func Priority(s State) int { return priorities[s] }

// HistoryEntry records one accepted transition.
type HistoryEntry struct {
	From  State     `json:"from"`
	State State     `json:"state"`
	At    time.Time `json:"at"`
	Force bool      `json:"force,omitempty"`
}

// StateMachineOption configures a StateMachine.
type StateMachineOption func(*StateMachine)

// WithHistorySize caps the history ring.
func WithHistorySize(n int) StateMachineOption {
	return func(sm *StateMachine) {
		if n > 0 {
			sm.maxHistory = n
		}
	}
}

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) StateMachineOption {
	return func(sm *StateMachine) {
		if now != nil {
			sm.now = now
		}
	}
}

// WithInitialState starts the machine somewhere other than IDLE.
func WithInitialState(s State) StateMachineOption {
	return func(sm *StateMachine) { sm.current = s }
}

// StateMachine validates transitions and keeps a bounded history. It holds
// no timers.
type StateMachine struct {
	mu         sync.RWMutex
	current    State
	previous   State
	history    []HistoryEntry
	maxHistory int
	now        func() time.Time
}

// NewStateMachine creates a machine in IDLE.
func NewStateMachine(opts ...StateMachineOption) *StateMachine {
	sm := &StateMachine{
		current:    StateIdle,
		previous:   StateIdle,
		maxHistory: DefaultHistorySize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// State returns the current state.
func (sm *StateMachine) State() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// Previous returns the state before the last transition.
func (sm *StateMachine) Previous() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.previous
}

// CanInterrupt reports whether target may displace the current state.
// force always wins.
func (sm *StateMachine) CanInterrupt(target State, force bool) bool {
	if force {
		return true
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return Priority(target) >= Priority(sm.current)
}

// Transition moves to the given state if the table allows it and it can
// interrupt the current one. force bypasses priority, never the table.
func (sm *StateMachine) Transition(to State, force bool) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !CanTransition(sm.current, to) {
		return false
	}
	if !force && Priority(to) < Priority(sm.current) {
		return false
	}
	sm.record(to, force)
	return true
}

// Reset returns to IDLE unconditionally.
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.record(StateIdle, true)
}

// History returns the recorded transitions, oldest first.
func (sm *StateMachine) History() []HistoryEntry {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]HistoryEntry, len(sm.history))
	copy(out, sm.history)
	return out
}

func (sm *StateMachine) record(to State, force bool) {
	sm.history = append(sm.history, HistoryEntry{
		From:  sm.current,
		State: to,
		At:    sm.now(),
		Force: force,
	})
	if over := len(sm.history) - sm.maxHistory; over > 0 {
		sm.history = append(sm.history[:0], sm.history[over:]...)
	}
	sm.previous = sm.current
	sm.current = to
}
