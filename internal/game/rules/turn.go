package rules

import "strings"

// TurnOrder tracks the seating order, the active player and the turn count.
type TurnOrder struct {
	seats      []string
	index      int
	turnNumber int
}

// NewTurnOrder creates a turn order starting with the first seat on turn 1.
func NewTurnOrder(seats []string) *TurnOrder {
	trimmed := make([]string, len(seats))
	for i, seat := range seats {
		trimmed[i] = strings.TrimSpace(seat)
	}
	return &TurnOrder{seats: trimmed, turnNumber: 1}
}

// ActivePlayer returns the player who currently has the turn.
func (t *TurnOrder) ActivePlayer() string {
	if len(t.seats) == 0 {
		return ""
	}
	return t.seats[t.index]
}

// TurnNumber returns the current turn number (1-based).
func (t *TurnOrder) TurnNumber() int {
	return t.turnNumber
}

// Seats returns the seating order.
func (t *TurnOrder) Seats() []string {
	return t.seats
}

// Advance passes the turn to the next seat that is not eliminated and
// increments the turn number. It returns the new active player, or "" when
// every seat is eliminated.
func (t *TurnOrder) Advance(eliminated func(string) bool) string {
	for step := 1; step <= len(t.seats); step++ {
		next := (t.index + step) % len(t.seats)
		if eliminated != nil && eliminated(t.seats[next]) {
			continue
		}
		t.index = next
		t.turnNumber++
		return t.seats[next]
	}
	return ""
}
