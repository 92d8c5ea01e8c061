package board

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

type layoutFile struct {
	Spaces []Definition `yaml:"spaces"`
}

// DefaultLayout returns the standard board.
func DefaultLayout() ([]Definition, error) {
	return ParseLayout(defaultLayout)
}

// ParseLayout decodes and validates a YAML layout document.
func ParseLayout(data []byte) ([]Definition, error) {
	var file layoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := ValidateLayout(file.Spaces); err != nil {
		return nil, err
	}
	return file.Spaces, nil
}

// ValidateLayout checks that a layout describes a complete, playable board.
func ValidateLayout(layout []Definition) error {
	if len(layout) != Size {
		return fmt.Errorf("layout has %d spaces, want %d", len(layout), Size)
	}

	jails := 0
	for i, def := range layout {
		if def.Index != i {
			return fmt.Errorf("space %q has index %d, want %d", def.Name, def.Index, i)
		}
		if def.Name == "" {
			return fmt.Errorf("space %d has no name", i)
		}
		switch def.Kind {
		case KindProperty:
			if len(def.Rent) != HotelLevel+1 {
				return fmt.Errorf("property %q has %d rent tiers, want %d", def.Name, len(def.Rent), HotelLevel+1)
			}
		case KindJail:
			jails++
		case KindTax:
			if def.Tax <= 0 {
				return fmt.Errorf("tax space %q has no amount", def.Name)
			}
		}
		if def.Kind.Purchasable() {
			if def.Price <= 0 {
				return fmt.Errorf("space %q has no price", def.Name)
			}
			if def.Mortgage < 0 || def.Mortgage > def.Price {
				return fmt.Errorf("space %q has mortgage %d outside [0, %d]", def.Name, def.Mortgage, def.Price)
			}
		}
	}
	if layout[0].Kind != KindGo {
		return fmt.Errorf("space 0 must be go, got %s", layout[0].Kind)
	}
	if jails != 1 {
		return fmt.Errorf("layout has %d jail spaces, want 1", jails)
	}
	return nil
}
