package board

import "fmt"

const (
	// RailroadRent is charged per railroad the owner holds.
	RailroadRent = 25
	// UtilityMultiplier applies when the owner holds a single utility.
	UtilityMultiplier = 4
	// UtilityFullMultiplier applies when the owner holds every utility, and
	// to any card-driven advance to a utility.
	UtilityFullMultiplier = 10
)

// RentMode distinguishes ordinary landings from card-driven advances.
type RentMode int

const (
	RentStandard RentMode = iota
	RentCardAdvance
)

// RentContext carries the owner and roll details rent depends on.
type RentContext struct {
	OwnerRailroads int
	OwnerUtilities int
	Dice           int
	Mode           RentMode
}

// Rent computes the rent owed for landing on space. Mortgaged spaces never
// charge rent. Asking for rent on a space kind that has no rent rule is a
// catalog error and panics.
func Rent(space *Space, ctx RentContext) int {
	if space.Mortgaged {
		return 0
	}

	switch space.Kind {
	case KindProperty:
		level := space.Development
		if level < 0 || level >= len(space.Rent) {
			panic(fmt.Sprintf("board: %s has no rent tier %d", space.Name, level))
		}
		return space.Rent[level]
	case KindRailroad:
		rent := RailroadRent * ctx.OwnerRailroads
		if ctx.Mode == RentCardAdvance {
			rent *= 2
		}
		return rent
	case KindUtility:
		multiplier := UtilityMultiplier
		if ctx.Mode == RentCardAdvance || ctx.OwnerUtilities >= 2 {
			multiplier = UtilityFullMultiplier
		}
		return ctx.Dice * multiplier
	default:
		panic(fmt.Sprintf("board: no rent rule for %s space %s", space.Kind, space.Name))
	}
}
