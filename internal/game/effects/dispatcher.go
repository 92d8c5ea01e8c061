package effects

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

// Dispatcher resolves drawn cards against a Table.
type Dispatcher struct {
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards output.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Resolve applies card for t.Actor, then settles where the card goes: a
// keepable card stays with a solvent actor, anything else goes back to its
// deck's discard pile.
func (d *Dispatcher) Resolve(card *cards.Card, t *Table) {
	d.Apply(card, t)

	actor := t.Actor
	deck := t.Decks[card.Deck]
	switch {
	case card.Keepable && !actor.Bankrupt:
		actor.HoldCard(card)
		t.emit(withTarget(rules.NewEvent(rules.EventCardKept, actor.Name,
			fmt.Sprintf("%s keeps %s", actor.Name, card.Title)), card.ID))
	case card.Keepable:
		if deck != nil {
			deck.Return(card)
		}
	case deck != nil:
		deck.Discard(card)
	}
}

// Apply runs card's effect. Every effect type must have a case here.
func (d *Dispatcher) Apply(card *cards.Card, t *Table) {
	actor := t.Actor
	d.logger.Debug("applying card",
		zap.String("player", actor.Name),
		zap.String("card", card.ID),
		zap.String("effect", string(card.Effect.Kind())))

	switch e := card.Effect.(type) {
	case cards.MoveToPosition:
		if e.Position < actor.Position || e.Position == 0 {
			t.PassGo(actor)
		}
		t.MoveTo(actor, e.Position)
		d.land(t, actor)
	case cards.MoveRelative:
		from := actor.Position
		to := board.Wrap(from + e.Spaces)
		if e.Spaces > 0 && to < from {
			t.PassGo(actor)
		}
		t.MoveTo(actor, to)
		d.land(t, actor)
	case cards.PayMoney:
		t.Debit(actor, e.Amount, card.Title)
	case cards.ReceiveMoney:
		t.Credit(actor, e.Amount, card.Title)
	case cards.GoToJail:
		t.SendToJail(actor, card.Title)
	case cards.GetOutOfJailFree:
		// Resolve hands the card to the actor.
	case cards.PropertyRepairs:
		d.repairs(t, actor, e.PerHouse, e.PerHotel, card.Title)
	case cards.StreetRepairs:
		d.repairs(t, actor, e.PerHouse, e.PerHotel, card.Title)
	case cards.AdvanceToNearestRailroad:
		d.advanceToNearest(t, actor, board.KindRailroad)
	case cards.AdvanceToNearestUtility:
		d.advanceToNearest(t, actor, board.KindUtility)
	case cards.CollectFromAllPlayers:
		d.collectFromAll(t, actor, e.Amount, card.Title)
	case cards.PayToAllPlayers:
		d.payToAll(t, actor, e.Amount, card.Title)
	case cards.AdvanceToGo:
		t.MoveTo(actor, 0)
		t.PassGo(actor)
		d.land(t, actor)
	default:
		panic(fmt.Sprintf("effects: unhandled effect %T", card.Effect))
	}
}

func (d *Dispatcher) land(t *Table, p *player.Player) {
	if t.Land != nil && !p.Bankrupt {
		t.Land(p)
	}
}

func (d *Dispatcher) repairs(t *Table, p *player.Player, perHouse, perHotel int, reason string) {
	houses, hotels := p.Buildings()
	total := houses*perHouse + hotels*perHotel

	evt := rules.NewEventWithAmount(rules.EventRepairsAssessed, p.Name,
		fmt.Sprintf("%s owes %d for %d houses and %d hotels", p.Name, total, houses, hotels), total)
	evt.Metadata["houses"] = fmt.Sprint(houses)
	evt.Metadata["hotels"] = fmt.Sprint(hotels)
	t.emit(evt)

	if total > 0 {
		t.Debit(p, total, reason)
	}
}

// advanceToNearest moves p to the next railroad or utility. Rent here
// follows the card-advance rules instead of a normal landing.
func (d *Dispatcher) advanceToNearest(t *Table, p *player.Player, kind board.Kind) {
	index, wrapped := t.Registry.NextOfKind(p.Position, kind)
	if wrapped {
		t.PassGo(p)
	}
	space := t.MoveTo(p, index)

	switch {
	case !space.Owned():
		t.Offer(p, space)
	case space.OwnedBy(p.Name), space.Mortgaged:
		t.emit(withTarget(rules.NewEvent(rules.EventLanded, p.Name,
			fmt.Sprintf("%s landed on %s", p.Name, space.Name)), space.Name))
	default:
		owner := t.Player(space.Owner)
		if owner == nil {
			panic(fmt.Sprintf("effects: %s is owned by unknown player %q", space.Name, space.Owner))
		}
		ctx := board.RentContext{
			OwnerRailroads: owner.Railroads,
			OwnerUtilities: owner.CountKind(board.KindUtility),
			Mode:           board.RentCardAdvance,
		}
		if kind == board.KindUtility {
			roll := t.Dice.Roll()
			ctx.Dice = roll.Total()
			t.emit(rules.NewEventWithAmount(rules.EventDiceRolled, p.Name,
				fmt.Sprintf("%s rolled %s for utility rent", p.Name, roll), roll.Total()))
		}
		rent := board.Rent(space, ctx)
		result := t.Transfer(p, owner, rent, "rent for "+space.Name)
		t.emit(withTarget(rules.NewEventWithAmount(rules.EventRentPaid, p.Name,
			fmt.Sprintf("%s paid %s rent for %s", p.Name, owner.Name, space.Name), result.Paid), owner.Name))
	}
}

func (d *Dispatcher) collectFromAll(t *Table, p *player.Player, amount int, reason string) {
	others := t.Others(p)
	for _, other := range others {
		t.Debit(other, amount, reason)
	}
	if total := amount * len(others); total > 0 {
		t.Credit(p, total, reason)
	}
}

func (d *Dispatcher) payToAll(t *Table, p *player.Player, amount int, reason string) {
	others := t.Others(p)
	total := amount * len(others)
	if total == 0 {
		return
	}
	if result := t.Debit(p, total, reason); !result.Complete() {
		return
	}
	for _, other := range others {
		t.Credit(other, amount, reason)
	}
}
