package cards

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogs(t *testing.T) {
	chance, err := DefaultChance()
	require.NoError(t, err)
	require.Len(t, chance, 16)

	chest, err := DefaultCommunityChest()
	require.NoError(t, err)
	require.Len(t, chest, 16)

	keepable := 0
	for _, card := range append(chance, chest...) {
		assert.NotEmpty(t, card.ID)
		assert.NotNil(t, card.Effect, card.ID)
		if card.Keepable {
			keepable++
			assert.Equal(t, KindGetOutOfJailFree, card.Effect.Kind())
		}
	}
	assert.Equal(t, 2, keepable)

	var chairman *Card
	for _, card := range chance {
		if card.ID == "chance-chairman" {
			chairman = card
		}
	}
	require.NotNil(t, chairman)
	assert.Equal(t, PayToAllPlayers{Amount: 50}, chairman.Effect)
	assert.Equal(t, Chance, chairman.Deck)
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"empty", "cards: []\n", "no cards"},
		{"missing id", "cards:\n  - {title: X, effect: go_to_jail}\n", "no id"},
		{"duplicate id", "cards:\n  - {id: a, effect: go_to_jail}\n  - {id: a, effect: go_to_jail}\n", "duplicated"},
		{"unknown effect", "cards:\n  - {id: a, effect: teleport}\n", "unknown effect"},
		{"missing param", "cards:\n  - {id: a, effect: pay_money}\n", "amount"},
		{"off board", "cards:\n  - {id: a, effect: move_to_position, params: {position: 41}}\n", "off the board"},
		{"negative amount", "cards:\n  - {id: a, effect: receive_money, params: {amount: -5}}\n", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog("Test", []byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCatalogMarksJailCardsKeepable(t *testing.T) {
	parsed, err := ParseCatalog("Test", []byte("cards:\n  - {id: free, effect: get_out_of_jail_free}\n"))
	require.NoError(t, err)
	assert.True(t, parsed[0].Keepable)
}

func testCards(n int) []*Card {
	out := make([]*Card, n)
	for i := range out {
		out[i] = &Card{ID: string(rune('a' + i)), Deck: "Test", Effect: ReceiveMoney{Amount: i}}
	}
	return out
}

func TestDeckDrawAndReshuffle(t *testing.T) {
	deck := NewDeck("Test", testCards(3), rand.New(rand.NewSource(1)))
	var reshuffled []int
	deck.OnReshuffle(func(name string, size int) {
		assert.Equal(t, "Test", name)
		reshuffled = append(reshuffled, size)
	})

	drawn := map[string]bool{}
	for i := 0; i < 3; i++ {
		card, err := deck.Draw()
		require.NoError(t, err)
		drawn[card.ID] = true
		deck.Discard(card)
	}
	assert.Len(t, drawn, 3)
	assert.Zero(t, deck.DrawCount())
	assert.Equal(t, 3, deck.DiscardCount())
	assert.Empty(t, reshuffled)

	_, err := deck.Draw()
	require.NoError(t, err)
	assert.Equal(t, []int{3}, reshuffled)
	assert.Equal(t, 2, deck.DrawCount())
	assert.Zero(t, deck.DiscardCount())
}

func TestDeckReshuffleIsNoOpWithCardsLeft(t *testing.T) {
	deck := NewDeck("Test", testCards(2), rand.New(rand.NewSource(1)))
	card, err := deck.Draw()
	require.NoError(t, err)
	deck.Discard(card)

	deck.Reshuffle()
	assert.Equal(t, 1, deck.DrawCount())
	assert.Equal(t, 1, deck.DiscardCount())
}

func TestDeckExhaustedWhenAllCardsHeld(t *testing.T) {
	held := &Card{ID: "free", Deck: "Test", Effect: GetOutOfJailFree{}, Keepable: true}
	deck := NewDeck("Test", []*Card{held}, rand.New(rand.NewSource(1)))

	card, err := deck.Draw()
	require.NoError(t, err)
	deck.Discard(card)
	assert.Zero(t, deck.DiscardCount(), "keepable cards never reach the discard pile")

	_, err = deck.Draw()
	assert.True(t, errors.Is(err, ErrDeckExhausted))

	deck.Return(card)
	again, err := deck.Draw()
	require.NoError(t, err)
	assert.Same(t, held, again)
}

func TestDeckConservesCards(t *testing.T) {
	catalog, err := DefaultChance()
	require.NoError(t, err)
	deck := NewDeck(Chance, catalog, rand.New(rand.NewSource(7)))

	var held []*Card
	for i := 0; i < 100; i++ {
		card, err := deck.Draw()
		require.NoError(t, err)
		if card.Keepable {
			held = append(held, card)
		} else {
			deck.Discard(card)
		}
		if i%10 == 9 && len(held) > 0 {
			deck.Return(held[0])
			held = held[1:]
		}

		seen := map[*Card]int{}
		for _, c := range deck.Contents() {
			seen[c]++
		}
		for _, c := range held {
			seen[c]++
		}
		require.Len(t, seen, deck.Total())
		for c, n := range seen {
			require.Equal(t, 1, n, "card %s counted %d times", c.ID, n)
		}
	}
}

func TestPutOnTop(t *testing.T) {
	cards := testCards(4)
	deck := NewDeck("Test", cards, rand.New(rand.NewSource(3)))

	deck.PutOnTop(cards[2])
	card, err := deck.Draw()
	require.NoError(t, err)
	assert.Same(t, cards[2], card)
	deck.Discard(card)

	deck.PutOnTop(cards[2])
	assert.Zero(t, deck.DiscardCount())
	assert.Equal(t, 4, deck.DrawCount())
}
