package cards

import (
	"errors"
	"math/rand"
)

// ErrDeckExhausted is returned when every card of a deck is held by players.
var ErrDeckExhausted = errors.New("deck exhausted")

// ReshuffleFunc is told when a deck turns its discard pile into a new draw pile.
type ReshuffleFunc func(deck string, size int)

// Deck is a draw pile plus a discard pile. Cards held by players belong to
// neither until they are returned.
type Deck struct {
	name        string
	draw        []*Card
	discard     []*Card
	total       int
	rng         *rand.Rand
	onReshuffle ReshuffleFunc
}

// NewDeck copies cards into a freshly shuffled draw pile.
func NewDeck(name string, cards []*Card, rng *rand.Rand) *Deck {
	d := &Deck{
		name:  name,
		draw:  append([]*Card(nil), cards...),
		total: len(cards),
		rng:   rng,
	}
	d.shuffle()
	return d
}

// Name returns the deck's display name.
func (d *Deck) Name() string {
	return d.name
}

// OnReshuffle registers fn to run whenever the discard pile is reshuffled.
func (d *Deck) OnReshuffle(fn ReshuffleFunc) {
	d.onReshuffle = fn
}

// Draw pops the top card, reshuffling the discard pile first when the draw
// pile is empty.
func (d *Deck) Draw() (*Card, error) {
	if len(d.draw) == 0 {
		d.Reshuffle()
	}
	if len(d.draw) == 0 {
		return nil, ErrDeckExhausted
	}
	top := len(d.draw) - 1
	card := d.draw[top]
	d.draw[top] = nil
	d.draw = d.draw[:top]
	return card, nil
}

// Discard puts a resolved card on the discard pile. Keepable cards stay with
// their holder and are ignored here.
func (d *Deck) Discard(card *Card) {
	if card == nil || card.Keepable {
		return
	}
	d.discard = append(d.discard, card)
}

// Return puts a used keepable card back on the discard pile.
func (d *Deck) Return(card *Card) {
	if card == nil {
		return
	}
	d.discard = append(d.discard, card)
}

// Reshuffle moves the discard pile into the draw pile. It does nothing while
// cards remain to be drawn.
func (d *Deck) Reshuffle() {
	if len(d.draw) > 0 || len(d.discard) == 0 {
		return
	}
	d.draw = d.discard
	d.discard = nil
	d.shuffle()
	if d.onReshuffle != nil {
		d.onReshuffle(d.name, len(d.draw))
	}
}

// DrawCount is the number of cards left to draw.
func (d *Deck) DrawCount() int {
	return len(d.draw)
}

// DiscardCount is the number of cards on the discard pile.
func (d *Deck) DiscardCount() int {
	return len(d.discard)
}

// Total is the size of the deck as built.
func (d *Deck) Total() int {
	return d.total
}

// Contents lists the draw pile top first, then the discard pile.
func (d *Deck) Contents() []*Card {
	out := make([]*Card, 0, len(d.draw)+len(d.discard))
	for i := len(d.draw) - 1; i >= 0; i-- {
		out = append(out, d.draw[i])
	}
	return append(out, d.discard...)
}

func (d *Deck) shuffle() {
	if d.rng == nil {
		return
	}
	d.rng.Shuffle(len(d.draw), func(i, j int) {
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	})
}

// PutOnTop moves card to the top of the draw pile, taking it from wherever
// it currently sits in the deck. Scenario setups use it to rig a draw.
func (d *Deck) PutOnTop(card *Card) {
	d.draw = remove(d.draw, card)
	d.discard = remove(d.discard, card)
	d.draw = append(d.draw, card)
}

func remove(pile []*Card, card *Card) []*Card {
	for i, c := range pile {
		if c == card {
			return append(pile[:i], pile[i+1:]...)
		}
	}
	return pile
}
