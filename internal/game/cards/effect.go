package cards

import "fmt"

// EffectKind names an effect in catalogs and events.
type EffectKind string

const (
	KindMoveToPosition           EffectKind = "move_to_position"
	KindMoveRelative             EffectKind = "move_relative"
	KindPayMoney                 EffectKind = "pay_money"
	KindReceiveMoney             EffectKind = "receive_money"
	KindGoToJail                 EffectKind = "go_to_jail"
	KindGetOutOfJailFree         EffectKind = "get_out_of_jail_free"
	KindPropertyRepairs          EffectKind = "property_repairs"
	KindStreetRepairs            EffectKind = "street_repairs"
	KindAdvanceToNearestRailroad EffectKind = "advance_to_nearest_railroad"
	KindAdvanceToNearestUtility  EffectKind = "advance_to_nearest_utility"
	KindCollectFromAllPlayers    EffectKind = "collect_from_all_players"
	KindPayToAllPlayers          EffectKind = "pay_to_all_players"
	KindAdvanceToGo              EffectKind = "advance_to_go"
)

// Effect is the closed set of things a drawn card can do. Only types in
// this package implement it.
type Effect interface {
	Kind() EffectKind
	effect()
}

// MoveToPosition moves the player to an absolute board index.
type MoveToPosition struct {
	Position int
}

// MoveRelative moves the player by a signed number of spaces.
type MoveRelative struct {
	Spaces int
}

// PayMoney debits a flat amount to the bank.
type PayMoney struct {
	Amount int
}

// ReceiveMoney credits a flat amount from the bank.
type ReceiveMoney struct {
	Amount int
}

type GoToJail struct{}

// GetOutOfJailFree is kept by the player until used.
type GetOutOfJailFree struct{}

// PropertyRepairs charges per house and per hotel the player owns.
type PropertyRepairs struct {
	PerHouse int
	PerHotel int
}

// StreetRepairs is the community chest variant of PropertyRepairs.
type StreetRepairs struct {
	PerHouse int
	PerHotel int
}

type AdvanceToNearestRailroad struct{}

type AdvanceToNearestUtility struct{}

// CollectFromAllPlayers takes Amount from every other solvent player.
type CollectFromAllPlayers struct {
	Amount int
}

// PayToAllPlayers pays Amount to every other solvent player.
type PayToAllPlayers struct {
	Amount int
}

type AdvanceToGo struct{}

func (MoveToPosition) Kind() EffectKind           { return KindMoveToPosition }
func (MoveRelative) Kind() EffectKind             { return KindMoveRelative }
func (PayMoney) Kind() EffectKind                 { return KindPayMoney }
func (ReceiveMoney) Kind() EffectKind             { return KindReceiveMoney }
func (GoToJail) Kind() EffectKind                 { return KindGoToJail }
func (GetOutOfJailFree) Kind() EffectKind         { return KindGetOutOfJailFree }
func (PropertyRepairs) Kind() EffectKind          { return KindPropertyRepairs }
func (StreetRepairs) Kind() EffectKind            { return KindStreetRepairs }
func (AdvanceToNearestRailroad) Kind() EffectKind { return KindAdvanceToNearestRailroad }
func (AdvanceToNearestUtility) Kind() EffectKind  { return KindAdvanceToNearestUtility }
func (CollectFromAllPlayers) Kind() EffectKind    { return KindCollectFromAllPlayers }
func (PayToAllPlayers) Kind() EffectKind          { return KindPayToAllPlayers }
func (AdvanceToGo) Kind() EffectKind              { return KindAdvanceToGo }

func (MoveToPosition) effect()           {}
func (MoveRelative) effect()             {}
func (PayMoney) effect()                 {}
func (ReceiveMoney) effect()             {}
func (GoToJail) effect()                 {}
func (GetOutOfJailFree) effect()         {}
func (PropertyRepairs) effect()          {}
func (StreetRepairs) effect()            {}
func (AdvanceToNearestRailroad) effect() {}
func (AdvanceToNearestUtility) effect()  {}
func (CollectFromAllPlayers) effect()    {}
func (PayToAllPlayers) effect()          {}
func (AdvanceToGo) effect()              {}

// buildEffect turns a catalog entry's kind and parameters into an Effect.
func buildEffect(kind EffectKind, params map[string]int) (Effect, error) {
	need := func(key string) (int, error) {
		value, ok := params[key]
		if !ok {
			return 0, fmt.Errorf("%s requires parameter %q", kind, key)
		}
		return value, nil
	}
	needPositive := func(key string) (int, error) {
		value, err := need(key)
		if err != nil {
			return 0, err
		}
		if value < 0 {
			return 0, fmt.Errorf("%s parameter %q must not be negative, got %d", kind, key, value)
		}
		return value, nil
	}
	repairs := func() (int, int, error) {
		house, err := needPositive("house_cost")
		if err != nil {
			return 0, 0, err
		}
		hotel, err := needPositive("hotel_cost")
		if err != nil {
			return 0, 0, err
		}
		return house, hotel, nil
	}

	switch kind {
	case KindMoveToPosition:
		position, err := need("position")
		if err != nil {
			return nil, err
		}
		if position < 0 || position >= 40 {
			return nil, fmt.Errorf("%s position %d is off the board", kind, position)
		}
		return MoveToPosition{Position: position}, nil
	case KindMoveRelative:
		spaces, err := need("spaces")
		if err != nil {
			return nil, err
		}
		return MoveRelative{Spaces: spaces}, nil
	case KindPayMoney:
		amount, err := needPositive("amount")
		if err != nil {
			return nil, err
		}
		return PayMoney{Amount: amount}, nil
	case KindReceiveMoney:
		amount, err := needPositive("amount")
		if err != nil {
			return nil, err
		}
		return ReceiveMoney{Amount: amount}, nil
	case KindGoToJail:
		return GoToJail{}, nil
	case KindGetOutOfJailFree:
		return GetOutOfJailFree{}, nil
	case KindPropertyRepairs:
		house, hotel, err := repairs()
		if err != nil {
			return nil, err
		}
		return PropertyRepairs{PerHouse: house, PerHotel: hotel}, nil
	case KindStreetRepairs:
		house, hotel, err := repairs()
		if err != nil {
			return nil, err
		}
		return StreetRepairs{PerHouse: house, PerHotel: hotel}, nil
	case KindAdvanceToNearestRailroad:
		return AdvanceToNearestRailroad{}, nil
	case KindAdvanceToNearestUtility:
		return AdvanceToNearestUtility{}, nil
	case KindCollectFromAllPlayers:
		amount, err := needPositive("amount")
		if err != nil {
			return nil, err
		}
		return CollectFromAllPlayers{Amount: amount}, nil
	case KindPayToAllPlayers:
		amount, err := needPositive("amount")
		if err != nil {
			return nil, err
		}
		return PayToAllPlayers{Amount: amount}, nil
	case KindAdvanceToGo:
		return AdvanceToGo{}, nil
	default:
		return nil, fmt.Errorf("unknown effect %q", kind)
	}
}
