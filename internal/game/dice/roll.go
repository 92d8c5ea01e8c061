// Package dice rolls the pair of six-sided dice that drive movement.
//
// A Roll keeps both faces so callers can detect doubles; the total alone is
// not enough to decide a jail release.
package dice

import (
	"errors"
	"fmt"
	"math/rand"
)

// Sides is the number of faces on each die.
const Sides = 6

// ErrSequenceExhausted is returned by a Sequence that has no rolls left.
var ErrSequenceExhausted = errors.New("dice sequence exhausted")

// Roll is the outcome of throwing two dice.
type Roll struct {
	First  int
	Second int
}

// Total returns the sum of both faces.
func (r Roll) Total() int {
	return r.First + r.Second
}

// IsDouble reports whether both faces show the same value.
func (r Roll) IsDouble() bool {
	return r.First == r.Second
}

func (r Roll) String() string {
	return fmt.Sprintf("%d+%d", r.First, r.Second)
}

// Roller produces dice rolls.
type Roller interface {
	Roll() Roll
}

// RandomRoller rolls dice from a pseudo-random source.
type RandomRoller struct {
	rng *rand.Rand
}

// NewRandomRoller creates a roller backed by rng.
func NewRandomRoller(rng *rand.Rand) *RandomRoller {
	return &RandomRoller{rng: rng}
}

// Roll throws both dice.
func (r *RandomRoller) Roll() Roll {
	return Roll{First: rollDie(r.rng), Second: rollDie(r.rng)}
}

func rollDie(rng *rand.Rand) int {
	return rng.Intn(Sides) + 1
}

// Sequence replays a fixed list of rolls. It is used by scripted games and
// tests where the outcome of every throw must be known up front.
type Sequence struct {
	rolls []Roll
	next  int
}

// NewSequence creates a roller that returns rolls in order.
func NewSequence(rolls ...Roll) *Sequence {
	return &Sequence{rolls: append([]Roll(nil), rolls...)}
}

// Of is shorthand for Roll{First: a, Second: b}.
func Of(a, b int) Roll {
	return Roll{First: a, Second: b}
}

// Push appends rolls to the end of the sequence.
func (s *Sequence) Push(rolls ...Roll) {
	s.rolls = append(s.rolls, rolls...)
}

// Remaining returns how many rolls are left.
func (s *Sequence) Remaining() int {
	return len(s.rolls) - s.next
}

// Roll returns the next scripted roll. Running out of rolls means the script
// does not match the game being played, so it panics.
func (s *Sequence) Roll() Roll {
	if s.next >= len(s.rolls) {
		panic(ErrSequenceExhausted)
	}
	roll := s.rolls[s.next]
	s.next++
	return roll
}
