package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
	"github.com/magefree/monopoly-server-go/internal/game/dice"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
)

// engineHarness drives an engine with scripted dice and scripted answers.
type engineHarness struct {
	t       *testing.T
	engine  *Engine
	dice    *dice.Sequence
	answers map[string]map[policy.Question]bool
	events  []rules.Event
}

func newTestEngine(t *testing.T, names ...string) *engineHarness {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return newTestEngineWithCatalog(t, catalog, names...)
}

func newTestEngineWithCatalog(t *testing.T, catalog *Catalog, names ...string) *engineHarness {
	t.Helper()
	h := &engineHarness{
		t:       t,
		dice:    dice.NewSequence(),
		answers: make(map[string]map[policy.Question]bool),
	}

	seats := make([]Seat, len(names))
	for i, name := range names {
		name := name
		h.answers[name] = make(map[policy.Question]bool)
		seats[i] = Seat{Name: name, Controller: policy.ControllerFunc(func(d policy.Decision) bool {
			return h.answers[name][d.Question]
		})}
	}

	bus := rules.NewEventBus()
	bus.Subscribe(func(evt rules.Event) { h.events = append(h.events, evt) })

	engine, err := NewEngine(Options{
		GameID:  "test-game",
		Rules:   DefaultRules(),
		Catalog: catalog,
		Seats:   seats,
		Seed:    1,
		Roller:  h.dice,
		Bus:     bus,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	h.engine = engine
	return h
}

func (h *engineHarness) player(name string) *player.Player {
	h.t.Helper()
	p, err := h.engine.Player(name)
	require.NoError(h.t, err)
	return p
}

func (h *engineHarness) space(index int) *board.Space {
	return h.engine.Registry().SpaceAt(index)
}

func (h *engineHarness) answer(name string, q policy.Question, yes bool) {
	h.answers[name][q] = yes
}

// roll scripts the next throw and plays it.
func (h *engineHarness) roll(a, b int) {
	h.t.Helper()
	h.dice.Push(dice.Of(a, b))
	_, err := h.engine.Roll()
	require.NoError(h.t, err)
}

// rig puts the card with id on top of its deck.
func (h *engineHarness) rig(deckName, id string) *cards.Card {
	h.t.Helper()
	deck := h.engine.Deck(deckName)
	require.NotNil(h.t, deck)
	for _, card := range deck.Contents() {
		if card.ID == id {
			deck.PutOnTop(card)
			return card
		}
	}
	h.t.Fatalf("card %s not in %s deck", id, deckName)
	return nil
}

func (h *engineHarness) count(eventType rules.EventType) int {
	n := 0
	for _, evt := range h.events {
		if evt.Type == eventType {
			n++
		}
	}
	return n
}

func (h *engineHarness) requireState(state rules.TurnState, active string) {
	h.t.Helper()
	require.Equal(h.t, state, h.engine.State())
	require.Equal(h.t, active, h.engine.ActivePlayer().Name)
}
