package game

import (
	"fmt"
	"os"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
)

// Catalog is the fixed content of a game: the board and both card lists.
// It is never mutated once loaded and may be shared between engines.
type Catalog struct {
	Layout         []board.Definition
	Chance         []*cards.Card
	CommunityChest []*cards.Card
}

// CatalogFiles names optional override files. Empty paths use the
// built-in content.
type CatalogFiles struct {
	Layout         string
	Chance         string
	CommunityChest string
}

// DefaultCatalog returns the standard board and cards.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(CatalogFiles{})
}

// LoadCatalog builds a catalog, reading any override files given.
func LoadCatalog(files CatalogFiles) (*Catalog, error) {
	layout, err := loadPart(files.Layout, board.DefaultLayout, board.ParseLayout)
	if err != nil {
		return nil, fmt.Errorf("load board layout: %w", err)
	}
	chance, err := loadPart(files.Chance, cards.DefaultChance, func(data []byte) ([]*cards.Card, error) {
		return cards.ParseCatalog(cards.Chance, data)
	})
	if err != nil {
		return nil, fmt.Errorf("load chance cards: %w", err)
	}
	chest, err := loadPart(files.CommunityChest, cards.DefaultCommunityChest, func(data []byte) ([]*cards.Card, error) {
		return cards.ParseCatalog(cards.CommunityChest, data)
	})
	if err != nil {
		return nil, fmt.Errorf("load community chest cards: %w", err)
	}
	return &Catalog{Layout: layout, Chance: chance, CommunityChest: chest}, nil
}

func loadPart[T any](path string, builtin func() (T, error), parse func([]byte) (T, error)) (T, error) {
	if path == "" {
		return builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		var zero T
		return zero, err
	}
	return parse(data)
}
