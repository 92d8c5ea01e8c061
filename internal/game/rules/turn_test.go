package rules

import (
	"errors"
	"testing"
)

func TestStateMachineFollowsTable(t *testing.T) {
	sm := NewStateMachine()
	if sm.Current() != StateAwaitingRoll {
		t.Fatalf("expected AWAITING_ROLL, got %s", sm.Current())
	}

	path := []TurnState{StateMoving, StateLandingResolution, StateActionRequired, StateTurnComplete, StateAwaitingRoll}
	for _, next := range path {
		if err := sm.Transition(next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if len(sm.History()) != len(path) {
		t.Fatalf("expected %d history entries, got %d", len(path), len(sm.History()))
	}
}

func TestStateMachineRejectsIllegalTransitions(t *testing.T) {
	sm := NewStateMachine()
	err := sm.Transition(StateActionRequired)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
	if sm.Current() != StateAwaitingRoll {
		t.Fatalf("state changed on refused transition: %s", sm.Current())
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected MustTransition to panic")
		}
	}()
	sm.MustTransition(StateGameOver)
}

func TestGameOverIsTerminal(t *testing.T) {
	for _, state := range []TurnState{StateAwaitingRoll, StateMoving, StateLandingResolution, StateActionRequired, StateTurnComplete, StateGameOver} {
		if CanTransition(StateGameOver, state) {
			t.Fatalf("GAME_OVER should not lead to %s", state)
		}
	}
}

func TestTurnStateString(t *testing.T) {
	if StateLandingResolution.String() != "LANDING_RESOLUTION" {
		t.Fatalf("unexpected name %s", StateLandingResolution)
	}
	if TurnState(42).String() != "STATE_42" {
		t.Fatalf("unexpected name %s", TurnState(42))
	}
}

func TestTurnOrderSkipsEliminatedSeats(t *testing.T) {
	order := NewTurnOrder([]string{"alice", " bob ", "carol"})
	if order.ActivePlayer() != "alice" || order.TurnNumber() != 1 {
		t.Fatalf("unexpected start %s/%d", order.ActivePlayer(), order.TurnNumber())
	}

	out := map[string]bool{"bob": true}
	eliminated := func(name string) bool { return out[name] }

	if next := order.Advance(eliminated); next != "carol" {
		t.Fatalf("expected carol, got %s", next)
	}
	if next := order.Advance(eliminated); next != "alice" {
		t.Fatalf("expected alice, got %s", next)
	}
	if order.TurnNumber() != 3 {
		t.Fatalf("expected turn 3, got %d", order.TurnNumber())
	}

	out["alice"], out["carol"] = true, true
	if next := order.Advance(eliminated); next != "" {
		t.Fatalf("expected no player, got %s", next)
	}
}
