package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
)

// Trade is an offer from one player to another, naming spaces by their
// display names.
type Trade struct {
	From        string
	To          string
	OfferedCash int
	WantedCash  int
	Offered     []string
	Wanted      []string
}

// ProposeTrade puts a trade to the recipient's controller and carries it out
// if accepted. It reports whether the trade happened.
func (e *Engine) ProposeTrade(t Trade) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine.Current() == rules.StateGameOver {
		return false, ErrGameOver
	}
	proposal, err := e.resolveTrade(t)
	if err != nil {
		return false, err
	}

	e.emit(tradeEvent(rules.EventTradeProposed, proposal, fmt.Sprintf("%s proposes a trade to %s", proposal.Proposer.Name, proposal.Recipient.Name)))
	if !e.ask(proposal.Recipient, policy.Decision{Question: policy.QuestionAcceptTrade, Trade: &proposal}) {
		e.emit(tradeEvent(rules.EventTradeRejected, proposal, fmt.Sprintf("%s rejected the trade", proposal.Recipient.Name)))
		return false, nil
	}

	if err := checkTrade(proposal); err != nil {
		return false, err
	}
	from, to := proposal.Proposer, proposal.Recipient
	for _, space := range proposal.Offered {
		if err := player.TransferProperty(from, to, space); err != nil {
			panic(fmt.Sprintf("game: checked trade failed: %v", err))
		}
	}
	for _, space := range proposal.Wanted {
		if err := player.TransferProperty(to, from, space); err != nil {
			panic(fmt.Sprintf("game: checked trade failed: %v", err))
		}
	}
	if proposal.OfferedCash > 0 {
		e.table.Transfer(from, to, proposal.OfferedCash, "trade")
	}
	if proposal.WantedCash > 0 {
		e.table.Transfer(to, from, proposal.WantedCash, "trade")
	}

	e.logger.Info("trade accepted",
		zap.String("from", from.Name),
		zap.String("to", to.Name),
		zap.Int("offered_cash", proposal.OfferedCash),
		zap.Int("wanted_cash", proposal.WantedCash),
		zap.Int("offered_spaces", len(proposal.Offered)),
		zap.Int("wanted_spaces", len(proposal.Wanted)))
	e.emit(tradeEvent(rules.EventTradeAccepted, proposal, fmt.Sprintf("%s accepted the trade", to.Name)))
	return true, nil
}

func (e *Engine) resolveTrade(t Trade) (policy.TradeProposal, error) {
	var proposal policy.TradeProposal

	from, err := e.solventPlayer(t.From)
	if err != nil {
		return proposal, err
	}
	to, err := e.solventPlayer(t.To)
	if err != nil {
		return proposal, err
	}
	if from == to {
		return proposal, fmt.Errorf("%w: %s cannot trade with themselves", ErrInvalidTrade, from.Name)
	}
	if t.OfferedCash < 0 || t.WantedCash < 0 {
		return proposal, fmt.Errorf("%w: cash amounts must not be negative", ErrInvalidTrade)
	}
	if from.Balance < t.OfferedCash {
		return proposal, fmt.Errorf("%s offers %d with balance %d: %w", from.Name, t.OfferedCash, from.Balance, ErrInsufficientFunds)
	}
	if to.Balance < t.WantedCash {
		return proposal, fmt.Errorf("%s asked for %d with balance %d: %w", to.Name, t.WantedCash, to.Balance, ErrInsufficientFunds)
	}

	offered, err := e.ownedSpaces(from, t.Offered)
	if err != nil {
		return proposal, err
	}
	wanted, err := e.ownedSpaces(to, t.Wanted)
	if err != nil {
		return proposal, err
	}

	return policy.TradeProposal{
		Proposer:    from,
		Recipient:   to,
		OfferedCash: t.OfferedCash,
		WantedCash:  t.WantedCash,
		Offered:     offered,
		Wanted:      wanted,
	}, nil
}

func (e *Engine) solventPlayer(name string) (*player.Player, error) {
	p, err := e.findPlayer(name)
	if err != nil {
		return nil, err
	}
	if p.Bankrupt {
		return nil, fmt.Errorf("%w: %s is bankrupt", ErrPlayerNotFound, p.Name)
	}
	return p, nil
}

// checkTrade confirms both sides can still deliver, so an accepted trade is
// carried out in full or not at all.
func checkTrade(t policy.TradeProposal) error {
	for _, space := range t.Offered {
		if !t.Proposer.Owns(space) {
			return fmt.Errorf("%s no longer owns %s: %w", t.Proposer.Name, space.Name, ErrNotOwner)
		}
	}
	for _, space := range t.Wanted {
		if !t.Recipient.Owns(space) {
			return fmt.Errorf("%s no longer owns %s: %w", t.Recipient.Name, space.Name, ErrNotOwner)
		}
	}
	if t.Proposer.Balance < t.OfferedCash {
		return fmt.Errorf("%s offers %d with balance %d: %w", t.Proposer.Name, t.OfferedCash, t.Proposer.Balance, ErrInsufficientFunds)
	}
	if t.Recipient.Balance < t.WantedCash {
		return fmt.Errorf("%s asked for %d with balance %d: %w", t.Recipient.Name, t.WantedCash, t.Recipient.Balance, ErrInsufficientFunds)
	}
	return nil
}

func (e *Engine) ownedSpaces(owner *player.Player, names []string) ([]*board.Space, error) {
	spaces := make([]*board.Space, 0, len(names))
	seen := make(map[*board.Space]bool, len(names))
	for _, name := range names {
		space, err := e.registry.FindSpace(name)
		if err != nil {
			return nil, err
		}
		if seen[space] {
			return nil, fmt.Errorf("%w: %s named twice", ErrInvalidTrade, space.Name)
		}
		seen[space] = true
		if !owner.Owns(space) {
			return nil, fmt.Errorf("%s does not own %s: %w", owner.Name, space.Name, ErrNotOwner)
		}
		spaces = append(spaces, space)
	}
	return spaces, nil
}

func tradeEvent(eventType rules.EventType, t policy.TradeProposal, description string) rules.Event {
	evt := rules.NewEventWithAmount(eventType, t.Proposer.Name, description, t.OfferedCash-t.WantedCash)
	evt.TargetID = t.Recipient.Name
	return evt
}

// Mortgage pledges one of the named player's spaces to the bank.
func (e *Engine) Mortgage(playerName, spaceName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, space, err := e.ownership(playerName, spaceName)
	if err != nil {
		return err
	}
	if err := p.Mortgage(space); err != nil {
		return err
	}
	evt := rules.NewEventWithAmount(rules.EventMortgaged, p.Name, fmt.Sprintf("%s mortgaged %s", p.Name, space.Name), space.Mortgage)
	evt.TargetID = space.Name
	e.emit(evt)
	return nil
}

// Unmortgage lifts the mortgage on one of the named player's spaces.
func (e *Engine) Unmortgage(playerName, spaceName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, space, err := e.ownership(playerName, spaceName)
	if err != nil {
		return err
	}
	if err := p.Unmortgage(space); err != nil {
		return err
	}
	evt := rules.NewEventWithAmount(rules.EventUnmortgaged, p.Name, fmt.Sprintf("%s lifted the mortgage on %s", p.Name, space.Name), player.UnmortgageCost(space))
	evt.TargetID = space.Name
	e.emit(evt)
	return nil
}

func (e *Engine) ownership(playerName, spaceName string) (*player.Player, *board.Space, error) {
	if e.machine.Current() == rules.StateGameOver {
		return nil, nil, ErrGameOver
	}
	p, err := e.solventPlayer(playerName)
	if err != nil {
		return nil, nil, err
	}
	space, err := e.registry.FindSpace(spaceName)
	if err != nil {
		return nil, nil, err
	}
	return p, space, nil
}
