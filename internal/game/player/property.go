package player

import (
	"fmt"

	"github.com/magefree/monopoly-server-go/internal/game/board"
)

// MortgageInterestPercent is charged on top of the mortgage value to lift it.
const MortgageInterestPercent = 10

// Purchase buys space from the bank at its printed price. It does nothing
// and returns false when the space is owned, mortgaged, not for sale, or
// costs more than the player's cash.
func (p *Player) Purchase(space *board.Space) bool {
	if space == nil || !space.Purchasable() || space.Owned() || space.Mortgaged {
		return false
	}
	if p.Bankrupt || p.Balance < space.Price {
		return false
	}
	p.Balance -= space.Price
	p.addProperty(space)
	return true
}

// Mortgage pledges an owned, undeveloped space to the bank for its mortgage value.
func (p *Player) Mortgage(space *board.Space) error {
	if !p.Owns(space) {
		return fmt.Errorf("mortgage %s: %w", space.Name, ErrNotOwner)
	}
	if space.Mortgaged {
		return fmt.Errorf("mortgage %s: %w", space.Name, ErrAlreadyMortgaged)
	}
	if space.Development > 0 {
		return fmt.Errorf("mortgage %s: %w", space.Name, ErrDeveloped)
	}
	space.Mortgaged = true
	p.Credit(space.Mortgage)
	return nil
}

// UnmortgageCost is the mortgage value plus interest.
func UnmortgageCost(space *board.Space) int {
	return space.Mortgage + space.Mortgage*MortgageInterestPercent/100
}

// Unmortgage pays off the mortgage on an owned space.
func (p *Player) Unmortgage(space *board.Space) error {
	if !p.Owns(space) {
		return fmt.Errorf("unmortgage %s: %w", space.Name, ErrNotOwner)
	}
	if !space.Mortgaged {
		return fmt.Errorf("unmortgage %s: %w", space.Name, ErrNotMortgaged)
	}
	cost := UnmortgageCost(space)
	if p.Balance < cost {
		return fmt.Errorf("unmortgage %s costs %d, balance %d: %w", space.Name, cost, p.Balance, ErrInsufficientFunds)
	}
	p.Balance -= cost
	space.Mortgaged = false
	return nil
}

// TransferProperty hands space from one player to another. A mortgage
// travels with the space.
func TransferProperty(from, to *Player, space *board.Space) error {
	if !from.Owns(space) {
		return fmt.Errorf("transfer %s from %s: %w", space.Name, from.Name, ErrNotOwner)
	}
	from.dropProperty(space)
	to.addProperty(space)
	return nil
}
