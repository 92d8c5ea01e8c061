package player

import (
	"fmt"
	"sort"

	"github.com/magefree/monopoly-server-go/internal/game/board"
)

// Sale records a space sold back to the bank to raise cash.
type Sale struct {
	Space *board.Space
	Value int
}

// DebitResult describes how a debit was settled.
type DebitResult struct {
	Amount   int
	Paid     int
	Bankrupt bool
	Sold     []Sale
}

// Complete reports whether the full amount changed hands.
func (r DebitResult) Complete() bool {
	return !r.Bankrupt && r.Paid == r.Amount
}

// Credit adds money to the balance.
func (p *Player) Credit(amount int) {
	if amount < 0 {
		panic(fmt.Sprintf("player: negative credit %d for %s", amount, p.Name))
	}
	p.Balance += amount
}

// NetWorth is the cash the player could raise: the balance plus the
// liquidation value of every owned space.
func (p *Player) NetWorth() int {
	worth := p.Balance
	for _, space := range p.properties {
		worth += space.LiquidationValue()
	}
	return worth
}

// Debit takes amount from the player. When the balance falls short the
// player sells property back to the bank, cheapest first, until the debt is
// covered. A player whose net worth cannot cover the debt goes bankrupt
// and pays nothing.
func (p *Player) Debit(amount int) DebitResult {
	result := DebitResult{Amount: amount}
	if amount <= 0 {
		return result
	}
	if p.Bankrupt {
		result.Bankrupt = true
		return result
	}

	if p.Balance < amount {
		if p.NetWorth() < amount {
			p.DeclareBankruptcy()
			result.Bankrupt = true
			return result
		}
		result.Sold = p.liquidate(amount)
	}

	p.Balance -= amount
	result.Paid = amount
	return result
}

// DeclareBankruptcy returns all property to the bank and takes the player
// out of the game. It returns the released spaces.
func (p *Player) DeclareBankruptcy() []*board.Space {
	released := p.properties
	for _, space := range released {
		space.Release()
	}
	p.properties = nil
	p.Railroads = 0
	p.Balance = 0
	p.Bankrupt = true
	p.InJail = false
	p.Doubles = 0
	return released
}

func (p *Player) liquidate(target int) []Sale {
	candidates := append([]*board.Space(nil), p.properties...)
	sort.SliceStable(candidates, func(i, j int) bool {
		vi, vj := candidates[i].LiquidationValue(), candidates[j].LiquidationValue()
		if vi != vj {
			return vi < vj
		}
		return candidates[i].Index < candidates[j].Index
	})

	var sales []Sale
	for _, space := range candidates {
		if p.Balance >= target {
			break
		}
		value := space.LiquidationValue()
		p.dropProperty(space)
		space.Release()
		p.Balance += value
		sales = append(sales, Sale{Space: space, Value: value})
	}
	return sales
}
