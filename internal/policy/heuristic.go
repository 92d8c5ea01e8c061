package policy

import "github.com/magefree/monopoly-server-go/internal/game/player"

const (
	lowCashThreshold  = 200
	lowCashMultiplier = 5.0
	cashMultiplier    = 2.5
	tradeMargin       = 10.0
)

// Heuristic buys anything it can afford with cash to spare and accepts a
// trade when the value it receives clearly exceeds the value it gives up.
type Heuristic struct{}

// ShouldBuy buys when the balance strictly exceeds the price.
func (Heuristic) ShouldBuy(_ *player.Player, price, balance int) bool {
	return balance > price
}

// EvaluateTrade scores the proposal from the recipient's side. Property is
// valued at its printed price; the net cash is weighted more heavily when
// the recipient is short of money.
func (Heuristic) EvaluateTrade(t TradeProposal) bool {
	multiplier := cashMultiplier
	if t.Recipient != nil && t.Recipient.Balance < lowCashThreshold {
		multiplier = lowCashMultiplier
	}

	gain := float64(t.OfferedValue())
	loss := float64(t.WantedValue())
	gain += float64(t.OfferedCash-t.WantedCash) * multiplier / 10

	return gain > loss+tradeMargin
}
