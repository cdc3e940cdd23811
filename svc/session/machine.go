package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State of the session controller.
type State string

// Event triggers a transition between states.
type Event string

const (
	StateIdle   State = "idle"
	StateActive State = "active"

	EventStart Event = "start"
	EventEnd   Event = "end"
)

// guard returns a non-nil error to reject a transition.
type guard func(ctx context.Context, data any) error

// action executes a side effect of a transition. An error aborts the
// transition and leaves the current state unchanged.
type action func(ctx context.Context, data any) error

type transition struct {
	to      State
	guards  []guard
	actions []action
}

var errNoTransition = errors.New("no transition available")

// machine is a guarded finite state machine with one transition per
// state and event.
type machine struct {
	mu          sync.Mutex
	current     State
	transitions map[State]map[Event]transition
}

func newMachine(initial State) *machine {
	return &machine{
		current:     initial,
		transitions: make(map[State]map[Event]transition),
	}
}

func (m *machine) add(from, to State, ev Event, guards []guard, actions []action) {
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[Event]transition)
	}
	m.transitions[from][ev] = transition{to: to, guards: guards, actions: actions}
}

func (m *machine) state() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// fire runs guards in order, then actions in order, then moves to the target state.
func (m *machine) fire(ctx context.Context, ev Event, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transitions[m.current][ev]
	if !ok {
		return fmt.Errorf("%w: %s on %s", errNoTransition, m.current, ev)
	}

	for _, g := range t.guards {
		if err := g(ctx, data); err != nil {
			return err
		}
	}
	for _, a := range t.actions {
		if err := a(ctx, data); err != nil {
			return err
		}
	}

	m.current = t.to
	return nil
}
