// Package cards models Chance and Community Chest cards, their catalogs and
// the draw/discard cycle of a deck.
package cards

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Deck names used by the standard catalogs.
const (
	Chance         = "Chance"
	CommunityChest = "Community Chest"
)

// Card is one printed card. Cards are shared by pointer between a deck and
// the player holding them, so identity is pointer identity.
type Card struct {
	ID          string
	Deck        string
	Title       string
	Description string
	Effect      Effect
	Keepable    bool
}

func (c *Card) String() string {
	if c.Description == "" {
		return c.Title
	}
	return fmt.Sprintf("%s: %s", c.Title, c.Description)
}

//go:embed chance.yaml
var chanceCatalog []byte

//go:embed community_chest.yaml
var communityChestCatalog []byte

type catalogFile struct {
	Cards []catalogEntry `yaml:"cards"`
}

type catalogEntry struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Effect      EffectKind     `yaml:"effect"`
	Params      map[string]int `yaml:"params"`
	Keepable    bool           `yaml:"keepable"`
}

// DefaultChance returns the standard Chance cards.
func DefaultChance() ([]*Card, error) {
	return ParseCatalog(Chance, chanceCatalog)
}

// DefaultCommunityChest returns the standard Community Chest cards.
func DefaultCommunityChest() ([]*Card, error) {
	return ParseCatalog(CommunityChest, communityChestCatalog)
}

// ParseCatalog decodes a YAML card list for the named deck.
func ParseCatalog(deck string, data []byte) ([]*Card, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode %s catalog: %w", deck, err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("%s catalog has no cards", deck)
	}

	seen := make(map[string]bool, len(file.Cards))
	result := make([]*Card, 0, len(file.Cards))
	for i, entry := range file.Cards {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("%s card %d has no id", deck, i)
		}
		if seen[id] {
			return nil, fmt.Errorf("%s card id %q is duplicated", deck, id)
		}
		seen[id] = true

		effect, err := buildEffect(entry.Effect, entry.Params)
		if err != nil {
			return nil, fmt.Errorf("%s card %q: %w", deck, id, err)
		}
		keepable := entry.Keepable
		if effect.Kind() == KindGetOutOfJailFree {
			keepable = true
		}
		result = append(result, &Card{
			ID:          id,
			Deck:        deck,
			Title:       entry.Title,
			Description: entry.Description,
			Effect:      effect,
			Keepable:    keepable,
		})
	}
	return result, nil
}
