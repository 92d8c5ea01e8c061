// Package policy holds the decision makers that sit at a table: human
// prompts, the default buying/trading heuristic and Lua-scripted players.
package policy

import (
	"fmt"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/player"
)

// Question identifies the yes/no choice a controller is asked to make.
type Question int

const (
	QuestionBuyProperty Question = iota
	QuestionPayBail
	QuestionUseJailCard
	QuestionAcceptTrade
)

var questionNames = map[Question]string{
	QuestionBuyProperty: "BUY_PROPERTY",
	QuestionPayBail:     "PAY_BAIL",
	QuestionUseJailCard: "USE_JAIL_CARD",
	QuestionAcceptTrade: "ACCEPT_TRADE",
}

func (q Question) String() string {
	if name, ok := questionNames[q]; ok {
		return name
	}
	return fmt.Sprintf("QUESTION_%d", int(q))
}

// Decision is a question put to the player who has to answer it.
type Decision struct {
	Question Question
	Player   *player.Player
	Space    *board.Space   // BuyProperty
	Amount   int            // price or bail
	Trade    *TradeProposal // AcceptTrade
}

// Controller answers decisions for one seat.
type Controller interface {
	Decide(Decision) bool
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(Decision) bool

// Decide calls f.
func (f ControllerFunc) Decide(d Decision) bool {
	return f(d)
}

// Always answers every question the same way.
func Always(answer bool) Controller {
	return ControllerFunc(func(Decision) bool { return answer })
}

// TradeProposal is an offer from one player to another. Offered items move
// from the proposer to the recipient, wanted items the other way.
type TradeProposal struct {
	Proposer    *player.Player
	Recipient   *player.Player
	OfferedCash int
	WantedCash  int
	Offered     []*board.Space
	Wanted      []*board.Space
}

// OfferedValue is the printed value of the spaces the proposer gives up.
func (t TradeProposal) OfferedValue() int {
	return sumPrices(t.Offered)
}

// WantedValue is the printed value of the spaces the proposer asks for.
func (t TradeProposal) WantedValue() int {
	return sumPrices(t.Wanted)
}

func sumPrices(spaces []*board.Space) int {
	total := 0
	for _, space := range spaces {
		total += space.Price
	}
	return total
}

// Policy is the contract an automated player implements.
type Policy interface {
	ShouldBuy(p *player.Player, price, balance int) bool
	EvaluateTrade(TradeProposal) bool
}

// AI turns a Policy into a Controller.
type AI struct {
	Policy Policy
}

// Decide routes purchase and trade questions to the policy. Bail is paid
// whenever the player can afford it, and escape cards are always used.
func (a AI) Decide(d Decision) bool {
	switch d.Question {
	case QuestionBuyProperty:
		return a.Policy.ShouldBuy(d.Player, d.Amount, d.Player.Balance)
	case QuestionPayBail:
		return d.Player.Balance >= d.Amount
	case QuestionUseJailCard:
		return true
	case QuestionAcceptTrade:
		if d.Trade == nil {
			return false
		}
		return a.Policy.EvaluateTrade(*d.Trade)
	default:
		return false
	}
}
