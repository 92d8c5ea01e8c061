package rules

import (
	"errors"
	"fmt"
)

// ErrTransitionNotAllowed is returned when a state transition is not in the table.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// TurnState is the engine's position within a turn.
type TurnState int

const (
	StateAwaitingRoll TurnState = iota
	StateMoving
	StateLandingResolution
	StateActionRequired
	StateTurnComplete
	StateGameOver
)

var turnStateNames = map[TurnState]string{
	StateAwaitingRoll:      "AWAITING_ROLL",
	StateMoving:            "MOVING",
	StateLandingResolution: "LANDING_RESOLUTION",
	StateActionRequired:    "ACTION_REQUIRED",
	StateTurnComplete:      "TURN_COMPLETE",
	StateGameOver:          "GAME_OVER",
}

func (s TurnState) String() string {
	if name, ok := turnStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// transitions lists every legal move of the turn state machine.
var transitions = map[TurnState][]TurnState{
	// A jailed player who fails to roll out ends the turn without moving,
	// as does a third consecutive doubles.
	StateAwaitingRoll:      {StateMoving, StateTurnComplete},
	StateMoving:            {StateLandingResolution},
	StateLandingResolution: {StateActionRequired, StateTurnComplete},
	StateActionRequired:    {StateTurnComplete},
	StateTurnComplete:      {StateAwaitingRoll, StateGameOver},
	StateGameOver:          nil,
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to TurnState) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// StateMachine tracks the current turn state and enforces the transition table.
type StateMachine struct {
	current TurnState
	history []TurnState
}

// NewStateMachine starts a machine in AwaitingRoll.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateAwaitingRoll}
}

// Current returns the current state.
func (sm *StateMachine) Current() TurnState {
	return sm.current
}

// Transition moves to the next state if the table allows it.
func (sm *StateMachine) Transition(to TurnState) error {
	if !CanTransition(sm.current, to) {
		return fmt.Errorf("%s -> %s: %w", sm.current, to, ErrTransitionNotAllowed)
	}
	sm.history = append(sm.history, sm.current)
	sm.current = to
	return nil
}

// MustTransition is Transition for callers whose transitions are fixed by
// construction; a refused transition means the caller is broken.
func (sm *StateMachine) MustTransition(to TurnState) {
	if err := sm.Transition(to); err != nil {
		panic(err)
	}
}

// History returns the states left so far, oldest first.
func (sm *StateMachine) History() []TurnState {
	return sm.history
}
