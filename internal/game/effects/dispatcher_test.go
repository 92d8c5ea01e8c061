package effects

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
	"github.com/magefree/monopoly-server-go/internal/game/dice"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
)

type tableHarness struct {
	t          *testing.T
	dispatcher *Dispatcher
	table      *Table
	events     []rules.Event
	landings   []int
	dice       *dice.Sequence
	answer     bool
}

func newTableHarness(t *testing.T, names ...string) *tableHarness {
	t.Helper()
	layout, err := board.DefaultLayout()
	require.NoError(t, err)
	registry, err := board.NewRegistry(layout)
	require.NoError(t, err)

	h := &tableHarness{t: t, dice: dice.NewSequence()}
	players := make([]*player.Player, len(names))
	for i, name := range names {
		players[i] = player.New(name, 1500)
	}
	rng := rand.New(rand.NewSource(1))
	h.table = &Table{
		Actor:       players[0],
		Players:     players,
		Registry:    registry,
		Decks:       map[string]*cards.Deck{"Test": cards.NewDeck("Test", nil, rng)},
		Dice:        h.dice,
		PassGoBonus: 200,
		JailIndex:   registry.JailIndex(),
		Controller: func(*player.Player) policy.Controller {
			return policy.ControllerFunc(func(policy.Decision) bool { return h.answer })
		},
		Land:   func(p *player.Player) { h.landings = append(h.landings, p.Position) },
		Emit:   func(evt rules.Event) { h.events = append(h.events, evt) },
		Logger: zaptest.NewLogger(t),
	}
	h.dispatcher = NewDispatcher(zaptest.NewLogger(t))
	return h
}

func (h *tableHarness) player(i int) *player.Player {
	return h.table.Players[i]
}

func (h *tableHarness) resolve(effect cards.Effect) *cards.Card {
	card := &cards.Card{ID: "test", Deck: "Test", Title: string(effect.Kind()), Effect: effect,
		Keepable: effect.Kind() == cards.KindGetOutOfJailFree}
	h.dispatcher.Resolve(card, h.table)
	return card
}

func (h *tableHarness) count(eventType rules.EventType) int {
	n := 0
	for _, evt := range h.events {
		if evt.Type == eventType {
			n++
		}
	}
	return n
}

func TestMoveToPosition(t *testing.T) {
	t.Run("backwards destination pays the bonus", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob")
		h.player(0).Position = 36
		h.resolve(cards.MoveToPosition{Position: 11})
		assert.Equal(t, 11, h.player(0).Position)
		assert.Equal(t, 1700, h.player(0).Balance)
		assert.Equal(t, []int{11}, h.landings)
	})

	t.Run("forward destination pays nothing", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob")
		h.player(0).Position = 7
		h.resolve(cards.MoveToPosition{Position: 24})
		assert.Equal(t, 1500, h.player(0).Balance)
		assert.Zero(t, h.count(rules.EventPassedGo))
	})

	t.Run("go always pays", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob")
		h.player(0).Position = 0
		h.resolve(cards.MoveToPosition{Position: 0})
		assert.Equal(t, 1700, h.player(0).Balance)
	})
}

func TestMoveRelative(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	h.player(0).Position = 2
	h.resolve(cards.MoveRelative{Spaces: -3})
	assert.Equal(t, 39, h.player(0).Position)
	assert.Equal(t, 1500, h.player(0).Balance, "moving back past Go pays nothing")

	h.resolve(cards.MoveRelative{Spaces: 3})
	assert.Equal(t, 2, h.player(0).Position)
	assert.Equal(t, 1700, h.player(0).Balance)

	h.player(0).Position = 37
	h.resolve(cards.MoveRelative{Spaces: 3})
	assert.Equal(t, 0, h.player(0).Position)
	assert.Equal(t, 1900, h.player(0).Balance, "landing exactly on Go pays the bonus")
	assert.Equal(t, []int{39, 2, 0}, h.landings)
}

func TestMoneyEffects(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	h.resolve(cards.PayMoney{Amount: 15})
	h.resolve(cards.ReceiveMoney{Amount: 150})
	assert.Equal(t, 1635, h.player(0).Balance)
}

func TestGoToJailDoesNotLand(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	h.player(0).Position = 22
	h.player(0).Doubles = 2
	h.resolve(cards.GoToJail{})
	assert.True(t, h.player(0).InJail)
	assert.Equal(t, 10, h.player(0).Position)
	assert.Zero(t, h.player(0).Doubles)
	assert.Empty(t, h.landings)
	assert.Equal(t, 1500, h.player(0).Balance)
}

func TestGetOutOfJailFreeIsKept(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	card := h.resolve(cards.GetOutOfJailFree{})
	require.Len(t, h.player(0).JailCards(), 1)
	assert.Same(t, card, h.player(0).JailCards()[0])
	assert.Zero(t, h.table.Decks["Test"].DiscardCount())
	assert.Equal(t, 1, h.count(rules.EventCardKept))
}

func TestNonKeepableCardIsDiscarded(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	h.resolve(cards.ReceiveMoney{Amount: 10})
	assert.Equal(t, 1, h.table.Decks["Test"].DiscardCount())
}

func TestRepairs(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	alice := h.player(0)
	registry := h.table.Registry
	for _, index := range []int{1, 3, 6} {
		require.True(t, alice.Purchase(registry.SpaceAt(index)))
	}
	registry.SpaceAt(1).Development = 2
	registry.SpaceAt(3).Development = board.HotelLevel
	before := alice.Balance

	h.resolve(cards.PropertyRepairs{PerHouse: 25, PerHotel: 100})
	assert.Equal(t, before-(2*25+100), alice.Balance)

	h.resolve(cards.StreetRepairs{PerHouse: 40, PerHotel: 115})
	assert.Equal(t, before-150-(2*40+115), alice.Balance)
	assert.Equal(t, 2, h.count(rules.EventRepairsAssessed))
}

func TestRepairsWithNothingBuiltStillReports(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	h.resolve(cards.PropertyRepairs{PerHouse: 25, PerHotel: 100})
	assert.Equal(t, 1500, h.player(0).Balance)
	require.Equal(t, 1, h.count(rules.EventRepairsAssessed))
	assert.Zero(t, h.count(rules.EventMoneyPaid))
}

func TestAdvanceToNearestRailroad(t *testing.T) {
	t.Run("unowned railroad is offered", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob")
		h.answer = true
		h.player(0).Position = 7
		h.resolve(cards.AdvanceToNearestRailroad{})
		assert.Equal(t, 15, h.player(0).Position)
		assert.Equal(t, "alice", h.table.Registry.SpaceAt(15).Owner)
		assert.Equal(t, 1300, h.player(0).Balance)
		assert.Empty(t, h.landings, "card advances do not run a generic landing")
	})

	t.Run("owned railroad pays double", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob")
		bob := h.player(1)
		require.True(t, bob.Purchase(h.table.Registry.SpaceAt(5)))
		require.True(t, bob.Purchase(h.table.Registry.SpaceAt(25)))
		h.player(0).Position = 36

		h.resolve(cards.AdvanceToNearestRailroad{})
		assert.Equal(t, 5, h.player(0).Position)
		assert.Equal(t, 1500+200-100, h.player(0).Balance)
		assert.Equal(t, 1500-400+100, bob.Balance)
	})

	t.Run("mortgaged railroad charges nothing", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob")
		bob := h.player(1)
		reading := h.table.Registry.SpaceAt(15)
		require.True(t, bob.Purchase(reading))
		require.NoError(t, bob.Mortgage(reading))
		h.player(0).Position = 7

		h.resolve(cards.AdvanceToNearestRailroad{})
		assert.Equal(t, 1500, h.player(0).Balance)
	})
}

func TestAdvanceToNearestUtility(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	bob := h.player(1)
	require.True(t, bob.Purchase(h.table.Registry.SpaceAt(28)))
	h.player(0).Position = 22
	h.dice.Push(dice.Of(3, 4))

	h.resolve(cards.AdvanceToNearestUtility{})
	assert.Equal(t, 28, h.player(0).Position)
	assert.Equal(t, 1500-70, h.player(0).Balance)
	assert.Equal(t, 1500-150+70, bob.Balance)
	assert.Zero(t, h.dice.Remaining())
}

func TestCollectFromAllPlayers(t *testing.T) {
	h := newTableHarness(t, "alice", "bob", "carol", "dave")
	h.player(3).Debit(5000)
	require.True(t, h.player(3).Bankrupt)

	h.resolve(cards.CollectFromAllPlayers{Amount: 10})
	assert.Equal(t, 1520, h.player(0).Balance)
	assert.Equal(t, 1490, h.player(1).Balance)
	assert.Equal(t, 1490, h.player(2).Balance)
	assert.Zero(t, h.player(3).Balance)
}

func TestPayToAllPlayers(t *testing.T) {
	t.Run("pays each solvent player", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob", "carol")
		h.resolve(cards.PayToAllPlayers{Amount: 50})
		assert.Equal(t, 1400, h.player(0).Balance)
		assert.Equal(t, 1550, h.player(1).Balance)
		assert.Equal(t, 1550, h.player(2).Balance)
	})

	t.Run("bankrupt payer pays nobody", func(t *testing.T) {
		h := newTableHarness(t, "alice", "bob", "carol")
		h.player(0).Balance = 60
		h.resolve(cards.PayToAllPlayers{Amount: 50})
		assert.True(t, h.player(0).Bankrupt)
		assert.Equal(t, 1500, h.player(1).Balance)
		assert.Equal(t, 1500, h.player(2).Balance)
		assert.Equal(t, 1, h.count(rules.EventPlayerBankrupt))
	})
}

func TestAdvanceToGo(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	h.player(0).Position = 17
	h.resolve(cards.AdvanceToGo{})
	assert.Zero(t, h.player(0).Position)
	assert.Equal(t, 1700, h.player(0).Balance)
	assert.Equal(t, []int{0}, h.landings)
}

type unknownEffect struct{ cards.Effect }

func TestUnknownEffectPanics(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	card := &cards.Card{ID: "bad", Deck: "Test", Effect: unknownEffect{cards.GoToJail{}}}
	assert.Panics(t, func() { h.dispatcher.Apply(card, h.table) })
}

func TestBankruptcyReturnsHeldJailCards(t *testing.T) {
	h := newTableHarness(t, "alice", "bob")
	h.resolve(cards.GetOutOfJailFree{})
	require.Len(t, h.player(0).JailCards(), 1)

	h.resolve(cards.PayMoney{Amount: 5000})
	assert.True(t, h.player(0).Bankrupt)
	assert.Empty(t, h.player(0).JailCards())
	assert.Equal(t, 2, h.table.Decks["Test"].DiscardCount())
}
