// Package board holds the board layout, the mutable per-game space records
// and the rent rules for purchasable spaces.
package board

import (
	"fmt"
	"strings"
)

// Size is the number of spaces on the board.
const Size = 40

// HotelLevel is the development level that represents a hotel.
const HotelLevel = 5

// Bank is the owner sentinel for spaces no player owns.
const Bank = ""

// Kind classifies a board space.
type Kind int

const (
	KindGo Kind = iota
	KindProperty
	KindRailroad
	KindUtility
	KindTax
	KindChance
	KindCommunityChest
	KindJail
	KindFreeParking
	KindGoToJail
)

var kindNames = map[Kind]string{
	KindGo:             "go",
	KindProperty:       "property",
	KindRailroad:       "railroad",
	KindUtility:        "utility",
	KindTax:            "tax",
	KindChance:         "chance",
	KindCommunityChest: "community_chest",
	KindJail:           "jail",
	KindFreeParking:    "free_parking",
	KindGoToJail:       "go_to_jail",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind_%d", int(k))
}

// ParseKind converts a layout name such as "community_chest" into a Kind.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for kind, kindName := range kindNames {
		if kindName == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown space kind %q", name)
}

// UnmarshalText lets layout files spell kinds by name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Purchasable reports whether spaces of this kind can be owned.
func (k Kind) Purchasable() bool {
	return k == KindProperty || k == KindRailroad || k == KindUtility
}

// Definition is the immutable description of a space from the layout.
type Definition struct {
	Index    int    `yaml:"index"`
	Name     string `yaml:"name"`
	Kind     Kind   `yaml:"kind"`
	Group    string `yaml:"group"`
	Price    int    `yaml:"price"`
	Mortgage int    `yaml:"mortgage"`
	Rent     []int  `yaml:"rent"`
	Tax      int    `yaml:"tax"`
}

// Space is a board entry together with its ownership state for one game.
type Space struct {
	Definition

	Owner       string // player name, or Bank
	Mortgaged   bool
	Development int // 0..HotelLevel
}

func newSpace(def Definition) *Space {
	def.Rent = append([]int(nil), def.Rent...)
	return &Space{Definition: def, Owner: Bank}
}

// Purchasable reports whether the space can be owned at all.
func (s *Space) Purchasable() bool {
	return s.Kind.Purchasable()
}

// Owned reports whether a player owns the space.
func (s *Space) Owned() bool {
	return s.Owner != Bank
}

// OwnedBy reports whether the named player owns the space.
func (s *Space) OwnedBy(name string) bool {
	return s.Owned() && s.Owner == name
}

// IsHotel reports whether the space is developed to a hotel.
func (s *Space) IsHotel() bool {
	return s.Development == HotelLevel
}

// Houses returns the number of houses standing on the space. A hotel
// occupies the house slots, so it counts as zero houses.
func (s *Space) Houses() int {
	if s.IsHotel() || s.Development < 0 {
		return 0
	}
	return s.Development
}

// LiquidationValue is what the bank pays to take the space back: the price,
// less the outstanding mortgage when mortgaged.
func (s *Space) LiquidationValue() int {
	if s.Mortgaged {
		return s.Price - s.Mortgage
	}
	return s.Price
}

// Release returns the space to the bank and clears its development.
func (s *Space) Release() {
	s.Owner = Bank
	s.Mortgaged = false
	s.Development = 0
}

func (s *Space) String() string {
	return s.Name
}
