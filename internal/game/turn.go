package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/dice"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
)

// Roll throws the dice for the active player and plays out the move. On
// return the engine is waiting for the next roll, waiting for a purchase
// decision, or over.
func (e *Engine) Roll() (dice.Roll, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expect(rules.StateAwaitingRoll); err != nil {
		return dice.Roll{}, err
	}
	e.roll()
	return e.lastRoll, nil
}

// Buy purchases the space on offer for the active player.
func (e *Engine) Buy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expect(rules.StateActionRequired); err != nil {
		return err
	}
	return e.buy()
}

// Skip declines the space on offer.
func (e *Engine) Skip() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expect(rules.StateActionRequired); err != nil {
		return err
	}
	e.skip()
	return nil
}

// PlayTurn plays the active player's whole turn, asking their controller
// for every decision and rolling again after doubles.
func (e *Engine) PlayTurn() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expect(rules.StateAwaitingRoll); err != nil {
		return err
	}

	turn := e.order.TurnNumber()
	for {
		p := e.active()
		e.roll()

		if e.machine.Current() == rules.StateActionRequired {
			space := e.pending
			wants := e.ask(p, policy.Decision{
				Question: policy.QuestionBuyProperty,
				Space:    space,
				Amount:   space.Price,
			})
			if !wants || e.buy() != nil {
				e.skip()
			}
		}

		if e.machine.Current() != rules.StateAwaitingRoll || e.order.TurnNumber() != turn {
			return nil
		}
	}
}

// Run plays turns until the game ends, maxTurns turns have been played
// (zero means no limit) or ctx is done.
func (e *Engine) Run(ctx context.Context, maxTurns int) error {
	for played := 0; maxTurns <= 0 || played < maxTurns; played++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.State() == rules.StateGameOver {
			return nil
		}
		if err := e.PlayTurn(); err != nil {
			return err
		}
	}
	e.logger.Info("turn limit reached", zap.Int("turns", maxTurns))
	return nil
}

func (e *Engine) expect(state rules.TurnState) error {
	current := e.machine.Current()
	if current == rules.StateGameOver {
		return ErrGameOver
	}
	if current != state {
		return fmt.Errorf("%w: %s, want %s", ErrWrongState, current, state)
	}
	return nil
}

func (e *Engine) roll() {
	p := e.active()
	e.rollAgain = false

	if p.InJail && !e.leaveJail(p) {
		return
	}

	roll := e.throw(p)
	if roll.IsDouble() {
		p.Doubles++
		if p.Doubles >= e.rules.MaxDoubles {
			e.logger.Info("too many doubles", zap.String("player", p.Name), zap.Int("doubles", p.Doubles))
			e.table.SendToJail(p, fmt.Sprintf("%d doubles in a row", p.Doubles))
			e.machine.MustTransition(rules.StateTurnComplete)
			e.completeTurn()
			return
		}
		e.rollAgain = true
		e.emit(rules.NewEventWithAmount(rules.EventDoublesRolled, p.Name,
			fmt.Sprintf("%s rolled doubles and goes again", p.Name), p.Doubles))
	} else {
		p.Doubles = 0
	}
	e.move(p, roll)
}

// leaveJail runs the jailed player's options in order: escape card, bail,
// then a roll for doubles. It reports whether the player goes on to a
// normal roll. When it returns false the turn has already been settled.
func (e *Engine) leaveJail(p *player.Player) bool {
	if len(p.JailCards()) > 0 && e.ask(p, policy.Decision{Question: policy.QuestionUseJailCard}) {
		card := p.TakeJailCard()
		if deck := e.decks[card.Deck]; deck != nil {
			deck.Return(card)
		}
		p.ReleaseFromJail()
		evt := rules.NewEvent(rules.EventJailCardUsed, p.Name, fmt.Sprintf("%s used %s", p.Name, card.Title))
		evt.TargetID = card.ID
		e.emit(evt)
		return true
	}

	forced := p.JailTurns >= e.rules.MaxJailTurns
	if forced || (p.Balance >= e.rules.Bail &&
		e.ask(p, policy.Decision{Question: policy.QuestionPayBail, Amount: e.rules.Bail})) {
		result := e.table.Debit(p, e.rules.Bail, "bail")
		if result.Bankrupt {
			e.machine.MustTransition(rules.StateTurnComplete)
			e.completeTurn()
			return false
		}
		p.ReleaseFromJail()
		evt := rules.NewEventWithAmount(rules.EventBailPaid, p.Name, fmt.Sprintf("%s paid bail", p.Name), e.rules.Bail)
		evt.Metadata["forced"] = fmt.Sprint(forced)
		e.emit(evt)
		return true
	}

	roll := e.throw(p)
	if roll.IsDouble() {
		p.ReleaseFromJail()
		e.emit(rules.NewEventWithAmount(rules.EventReleasedFromJail, p.Name,
			fmt.Sprintf("%s rolled %s and leaves jail", p.Name, roll), roll.Total()))
		e.move(p, roll)
		return false
	}

	p.JailTurns++
	e.emit(rules.NewEventWithAmount(rules.EventJailRollFailed, p.Name,
		fmt.Sprintf("%s rolled %s and stays in jail", p.Name, roll), p.JailTurns))
	e.machine.MustTransition(rules.StateTurnComplete)
	e.completeTurn()
	return false
}

func (e *Engine) throw(p *player.Player) dice.Roll {
	roll := e.roller.Roll()
	e.lastRoll = roll
	evt := rules.NewEventWithAmount(rules.EventDiceRolled, p.Name, fmt.Sprintf("%s rolled %s", p.Name, roll), roll.Total())
	evt.Metadata["dice"] = roll.String()
	e.emit(evt)
	return roll
}

func (e *Engine) move(p *player.Player, roll dice.Roll) {
	e.machine.MustTransition(rules.StateMoving)
	if p.MoveBy(roll.Total()) {
		e.table.PassGo(p)
	}
	space := e.registry.SpaceAt(p.Position)
	evt := rules.NewEventWithAmount(rules.EventMoved, p.Name, fmt.Sprintf("%s moved to %s", p.Name, space.Name), p.Position)
	evt.TargetID = space.Name
	e.emit(evt)

	e.machine.MustTransition(rules.StateLandingResolution)
	e.land(p)

	if p.InJail || p.Bankrupt {
		e.rollAgain = false
	}
	if e.pending != nil && !p.Bankrupt {
		e.machine.MustTransition(rules.StateActionRequired)
		return
	}
	e.pending = nil
	e.machine.MustTransition(rules.StateTurnComplete)
	e.completeTurn()
}

func (e *Engine) buy() error {
	p := e.active()
	space := e.pending
	if p.Balance < space.Price {
		return fmt.Errorf("buy %s for %d with balance %d: %w", space.Name, space.Price, p.Balance, ErrInsufficientFunds)
	}
	if !p.Purchase(space) {
		return fmt.Errorf("%w: %s is not for sale", ErrWrongState, space.Name)
	}
	e.logger.Info("property purchased",
		zap.String("player", p.Name),
		zap.String("space", space.Name),
		zap.Int("price", space.Price))
	evt := rules.NewEventWithAmount(rules.EventPropertyPurchased, p.Name, fmt.Sprintf("%s bought %s", p.Name, space.Name), space.Price)
	evt.TargetID = space.Name
	e.emit(evt)

	e.pending = nil
	e.machine.MustTransition(rules.StateTurnComplete)
	e.completeTurn()
	return nil
}

func (e *Engine) skip() {
	p := e.active()
	space := e.pending
	evt := rules.NewEventWithAmount(rules.EventPurchaseDeclined, p.Name, fmt.Sprintf("%s did not buy %s", p.Name, space.Name), space.Price)
	evt.TargetID = space.Name
	e.emit(evt)

	e.pending = nil
	e.machine.MustTransition(rules.StateTurnComplete)
	e.completeTurn()
}

// completeTurn settles a finished turn: it ends the game when one player is
// left, gives the same player another roll after doubles, or passes the
// turn on.
func (e *Engine) completeTurn() {
	p := e.active()
	e.emit(rules.NewEventWithAmount(rules.EventTurnCompleted, p.Name,
		fmt.Sprintf("%s finished turn %d", p.Name, e.order.TurnNumber()), e.order.TurnNumber()))

	if solvent := e.solvent(); len(solvent) <= 1 {
		if len(solvent) == 1 {
			e.winner = solvent[0].Name
		}
		e.machine.MustTransition(rules.StateGameOver)
		e.logger.Info("game over",
			zap.String("winner", e.winner),
			zap.Int("turns", e.order.TurnNumber()))
		e.emit(rules.NewEvent(rules.EventGameOver, e.winner, fmt.Sprintf("%s wins", e.winner)))
		return
	}

	e.machine.MustTransition(rules.StateAwaitingRoll)
	if e.rollAgain && !p.Bankrupt && !p.InJail {
		e.rollAgain = false
		return
	}

	p.Doubles = 0
	next := e.order.Advance(func(name string) bool {
		np, err := e.findPlayer(name)
		return err != nil || np.Bankrupt
	})
	e.emit(rules.NewEvent(rules.EventTurnStarted, next, fmt.Sprintf("%s to roll", next)))
}
