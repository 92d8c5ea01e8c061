// Package player holds per-player game state: the money ledger, the board
// position and jail status, owned property and held cards.
package player

import (
	"errors"
	"fmt"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
)

var (
	// ErrNotOwner is returned when a player acts on property they do not own.
	ErrNotOwner = errors.New("not the owner")
	// ErrInsufficientFunds is returned when a voluntary payment exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyMortgaged is returned when mortgaging a mortgaged space.
	ErrAlreadyMortgaged = errors.New("already mortgaged")
	// ErrNotMortgaged is returned when lifting a mortgage that does not exist.
	ErrNotMortgaged = errors.New("not mortgaged")
	// ErrDeveloped is returned when mortgaging a space that still has buildings.
	ErrDeveloped = errors.New("space has buildings")
)

// Player is one seat at the table.
type Player struct {
	Name      string
	Balance   int
	Position  int
	InJail    bool
	JailTurns int // failed attempts to roll out of jail
	Railroads int
	Doubles   int // consecutive doubles this turn
	Bankrupt  bool

	properties []*board.Space
	jailCards  []*cards.Card
}

// New creates a player on Go with the given starting balance.
func New(name string, balance int) *Player {
	return &Player{Name: name, Balance: balance}
}

func (p *Player) String() string {
	return p.Name
}

// Properties returns the spaces the player owns, in acquisition order.
func (p *Player) Properties() []*board.Space {
	return p.properties
}

// Owns reports whether space is in the player's holdings.
func (p *Player) Owns(space *board.Space) bool {
	return space != nil && space.OwnedBy(p.Name) && p.indexOf(space) >= 0
}

// CountKind counts owned spaces of a kind.
func (p *Player) CountKind(kind board.Kind) int {
	n := 0
	for _, space := range p.properties {
		if space.Kind == kind {
			n++
		}
	}
	return n
}

// CountGroup counts owned spaces in a color group.
func (p *Player) CountGroup(group string) int {
	n := 0
	for _, space := range p.properties {
		if space.Group == group {
			n++
		}
	}
	return n
}

// Buildings counts houses and hotels across the player's property.
func (p *Player) Buildings() (houses, hotels int) {
	for _, space := range p.properties {
		if space.IsHotel() {
			hotels++
			continue
		}
		houses += space.Houses()
	}
	return houses, hotels
}

// MoveBy advances the token by steps, wrapping around the board. It reports
// whether a forward move passed or landed on Go.
func (p *Player) MoveBy(steps int) (passedGo bool) {
	passedGo = steps > 0 && p.Position+steps >= board.Size
	p.Position = board.Wrap(p.Position + steps)
	return passedGo
}

// MoveTo places the token on index without any pass-Go handling.
func (p *Player) MoveTo(index int) {
	p.Position = board.Wrap(index)
}

// SendToJail moves the player straight to jail.
func (p *Player) SendToJail(jailIndex int) {
	p.Position = jailIndex
	p.InJail = true
	p.JailTurns = 0
	p.Doubles = 0
}

// ReleaseFromJail clears the jail flag and counter.
func (p *Player) ReleaseFromJail() {
	p.InJail = false
	p.JailTurns = 0
}

// HoldCard keeps an escape card for later.
func (p *Player) HoldCard(card *cards.Card) {
	p.jailCards = append(p.jailCards, card)
}

// JailCards returns the escape cards the player holds.
func (p *Player) JailCards() []*cards.Card {
	return p.jailCards
}

// TakeJailCard removes and returns the oldest held escape card, or nil.
func (p *Player) TakeJailCard() *cards.Card {
	if len(p.jailCards) == 0 {
		return nil
	}
	card := p.jailCards[0]
	p.jailCards = p.jailCards[1:]
	return card
}

func (p *Player) indexOf(space *board.Space) int {
	for i, owned := range p.properties {
		if owned == space {
			return i
		}
	}
	return -1
}

func (p *Player) addProperty(space *board.Space) {
	space.Owner = p.Name
	p.properties = append(p.properties, space)
	if space.Kind == board.KindRailroad {
		p.Railroads++
	}
}

func (p *Player) dropProperty(space *board.Space) {
	i := p.indexOf(space)
	if i < 0 {
		panic(fmt.Sprintf("player: %s does not hold %s", p.Name, space.Name))
	}
	p.properties = append(p.properties[:i], p.properties[i+1:]...)
	if space.Kind == board.KindRailroad {
		p.Railroads--
	}
}
