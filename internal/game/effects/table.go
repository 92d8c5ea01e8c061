// Package effects applies card effects to the table.
package effects

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
	"github.com/magefree/monopoly-server-go/internal/game/dice"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
)

// Effect is the sealed card effect type.
type Effect = cards.Effect

// Table is everything an effect may read or change. The engine builds one
// per game and points Actor at whoever drew the card.
type Table struct {
	Actor       *player.Player
	Players     []*player.Player
	Registry    *board.Registry
	Decks       map[string]*cards.Deck
	Dice        dice.Roller
	PassGoBonus int
	JailIndex   int

	// Controller returns the decision maker for a player.
	Controller func(*player.Player) policy.Controller
	// Land re-enters landing resolution for a player who was moved.
	Land func(*player.Player)
	// Emit publishes an event.
	Emit func(rules.Event)

	Logger *zap.Logger
}

func (t *Table) emit(evt rules.Event) {
	if t.Emit != nil {
		t.Emit(evt)
	}
}

func (t *Table) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}

// Others returns the solvent players other than p, in seating order.
func (t *Table) Others(p *player.Player) []*player.Player {
	var others []*player.Player
	for _, other := range t.Players {
		if other != p && !other.Bankrupt {
			others = append(others, other)
		}
	}
	return others
}

// Player finds a seated player by name.
func (t *Table) Player(name string) *player.Player {
	for _, p := range t.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Credit pays the bank's money to p.
func (t *Table) Credit(p *player.Player, amount int, reason string) {
	p.Credit(amount)
	t.emit(rules.NewEventWithAmount(rules.EventMoneyReceived, p.Name, reason, amount))
}

// PassGo pays the pass-start bonus.
func (t *Table) PassGo(p *player.Player) {
	p.Credit(t.PassGoBonus)
	t.emit(rules.NewEventWithAmount(rules.EventPassedGo, p.Name,
		fmt.Sprintf("%s passed Go", p.Name), t.PassGoBonus))
}

// MoveTo places p on index and reports the move.
func (t *Table) MoveTo(p *player.Player, index int) *board.Space {
	p.MoveTo(index)
	space := t.Registry.SpaceAt(p.Position)
	t.emit(withTarget(rules.NewEventWithAmount(rules.EventMoved, p.Name,
		fmt.Sprintf("%s moved to %s", p.Name, space.Name), p.Position), space.Name))
	return space
}

// Debit charges p and reports property sales and bankruptcy as events.
func (t *Table) Debit(p *player.Player, amount int, reason string) player.DebitResult {
	result := p.Debit(amount)
	for _, sale := range result.Sold {
		t.emit(withTarget(rules.NewEventWithAmount(rules.EventPropertySold, p.Name,
			fmt.Sprintf("%s sold %s back to the bank", p.Name, sale.Space.Name), sale.Value), sale.Space.Name))
	}
	if result.Bankrupt {
		t.logger().Info("player bankrupt",
			zap.String("player", p.Name),
			zap.Int("owed", amount),
			zap.String("reason", reason))
		t.emit(rules.NewEventWithAmount(rules.EventPlayerBankrupt, p.Name,
			fmt.Sprintf("%s could not pay %s", p.Name, reason), amount))
		t.returnJailCards(p)
		return result
	}
	if result.Paid > 0 {
		t.emit(rules.NewEventWithAmount(rules.EventMoneyPaid, p.Name, reason, result.Paid))
	}
	return result
}

// Transfer moves money from payer to payee. The payee receives only what
// the payer actually paid.
func (t *Table) Transfer(payer, payee *player.Player, amount int, reason string) player.DebitResult {
	result := t.Debit(payer, amount, reason)
	if result.Paid > 0 {
		payee.Credit(result.Paid)
		t.emit(withTarget(rules.NewEventWithAmount(rules.EventMoneyReceived, payee.Name, reason, result.Paid), payer.Name))
	}
	return result
}

// SendToJail moves p to jail without passing Go.
func (t *Table) SendToJail(p *player.Player, reason string) {
	p.SendToJail(t.JailIndex)
	t.emit(rules.NewEventWithAmount(rules.EventSentToJail, p.Name, reason, t.JailIndex))
}

// Offer asks p's controller whether to buy space at its price and buys it
// on a yes.
func (t *Table) Offer(p *player.Player, space *board.Space) bool {
	t.emit(withTarget(rules.NewEventWithAmount(rules.EventPurchaseOffered, p.Name,
		fmt.Sprintf("%s may buy %s", p.Name, space.Name), space.Price), space.Name))

	wants := false
	if t.Controller != nil {
		if c := t.Controller(p); c != nil {
			wants = c.Decide(policy.Decision{
				Question: policy.QuestionBuyProperty,
				Player:   p,
				Space:    space,
				Amount:   space.Price,
			})
		}
	}
	if wants && p.Purchase(space) {
		t.emit(withTarget(rules.NewEventWithAmount(rules.EventPropertyPurchased, p.Name,
			fmt.Sprintf("%s bought %s", p.Name, space.Name), space.Price), space.Name))
		return true
	}
	t.emit(withTarget(rules.NewEventWithAmount(rules.EventPurchaseDeclined, p.Name,
		fmt.Sprintf("%s did not buy %s", p.Name, space.Name), space.Price), space.Name))
	return false
}

func (t *Table) returnJailCards(p *player.Player) {
	for card := p.TakeJailCard(); card != nil; card = p.TakeJailCard() {
		if deck, ok := t.Decks[card.Deck]; ok {
			deck.Return(card)
			t.emit(withTarget(rules.NewEvent(rules.EventCardReturned, p.Name,
				fmt.Sprintf("%s returned to the %s deck", card.Title, card.Deck)), card.ID))
		}
	}
}

func withTarget(evt rules.Event, target string) rules.Event {
	evt.TargetID = target
	return evt
}
