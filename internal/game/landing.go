package game

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

// land resolves whatever occupies p's position. Card effects that move the
// player call back in here, so nesting is capped at MaxLandingDepth.
func (e *Engine) land(p *player.Player) {
	e.depth++
	defer func() { e.depth-- }()

	space := e.registry.SpaceAt(p.Position)
	if e.depth > e.rules.MaxLandingDepth {
		e.logger.Warn("landing chain stopped",
			zap.String("player", p.Name),
			zap.String("space", space.Name),
			zap.Int("depth", e.depth))
		evt := rules.NewEventWithAmount(rules.EventLandingDepthExceeded, p.Name,
			fmt.Sprintf("landing on %s ignored after %d nested moves", space.Name, e.rules.MaxLandingDepth), e.depth)
		evt.TargetID = space.Name
		e.emit(evt)
		return
	}

	evt := rules.NewEventWithAmount(rules.EventLanded, p.Name, fmt.Sprintf("%s landed on %s", p.Name, space.Name), space.Index)
	evt.TargetID = space.Name
	e.emit(evt)

	switch space.Kind {
	case board.KindGo, board.KindJail, board.KindFreeParking:
	case board.KindTax:
		result := e.table.Debit(p, space.Tax, space.Name)
		taxEvt := rules.NewEventWithAmount(rules.EventTaxPaid, p.Name, fmt.Sprintf("%s paid %s", p.Name, space.Name), result.Paid)
		taxEvt.TargetID = space.Name
		e.emit(taxEvt)
	case board.KindGoToJail:
		e.table.SendToJail(p, space.Name)
	case board.KindChance:
		e.draw(p, e.decks[cards.Chance])
	case board.KindCommunityChest:
		e.draw(p, e.decks[cards.CommunityChest])
	case board.KindProperty, board.KindRailroad, board.KindUtility:
		e.landOnPurchasable(p, space)
	default:
		panic(fmt.Sprintf("game: no landing rule for %s", space.Kind))
	}
}

func (e *Engine) landOnPurchasable(p *player.Player, space *board.Space) {
	switch {
	case !space.Owned():
		e.pending = space
		evt := rules.NewEventWithAmount(rules.EventPurchaseOffered, p.Name,
			fmt.Sprintf("%s may buy %s", p.Name, space.Name), space.Price)
		evt.TargetID = space.Name
		e.emit(evt)
	case space.OwnedBy(p.Name), space.Mortgaged:
	default:
		owner, err := e.findPlayer(space.Owner)
		if err != nil {
			panic(fmt.Sprintf("game: %s owned by unseated player: %v", space.Name, err))
		}
		rent := board.Rent(space, board.RentContext{
			OwnerRailroads: owner.Railroads,
			OwnerUtilities: owner.CountKind(board.KindUtility),
			Dice:           e.lastRoll.Total(),
		})
		result := e.table.Transfer(p, owner, rent, "rent for "+space.Name)
		e.logger.Debug("rent paid",
			zap.String("player", p.Name),
			zap.String("owner", owner.Name),
			zap.String("space", space.Name),
			zap.Int("rent", rent),
			zap.Int("paid", result.Paid))
		evt := rules.NewEventWithAmount(rules.EventRentPaid, p.Name,
			fmt.Sprintf("%s paid %s rent for %s", p.Name, owner.Name, space.Name), result.Paid)
		evt.TargetID = owner.Name
		e.emit(evt)
	}
}

func (e *Engine) draw(p *player.Player, deck *cards.Deck) {
	card, err := deck.Draw()
	if errors.Is(err, cards.ErrDeckExhausted) {
		e.logger.Warn("deck exhausted", zap.String("deck", deck.Name()))
		evt := rules.NewEvent(rules.EventDeckExhausted, p.Name, fmt.Sprintf("every %s card is held", deck.Name()))
		evt.TargetID = deck.Name()
		e.emit(evt)
		return
	}

	evt := rules.NewEvent(rules.EventCardDrawn, p.Name, fmt.Sprintf("%s drew %s", p.Name, card))
	evt.TargetID = card.ID
	evt.Metadata["deck"] = deck.Name()
	evt.Metadata["effect"] = string(card.Effect.Kind())
	e.emit(evt)

	e.table.Actor = p
	e.dispatcher.Resolve(card, e.table)
}
