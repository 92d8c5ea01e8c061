package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/magefree/monopoly-server-go/internal/game/cards"
)

// CardImport represents a card record from the CSV export
type CardImport struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description,omitempty"`
	Effect      string         `yaml:"effect"`
	Params      map[string]int `yaml:"params,omitempty"`
	Keepable    bool           `yaml:"keepable,omitempty"`
}

type catalogFile struct {
	Cards []*CardImport `yaml:"cards"`
}

// Columns: id, title, description, effect, params, keepable. Params are
// written as "amount=50;position=3".
const columns = 6

func main() {
	if len(os.Args) < 3 {
		log.Fatalf("usage: go run ./scripts <chance|community_chest> <cards.csv> [out.yaml]")
	}

	deck := cards.Chance
	if os.Args[1] == "community_chest" {
		deck = cards.CommunityChest
	}
	csvPath := os.Args[2]
	outPath := strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".yaml"
	if len(os.Args) > 3 {
		outPath = os.Args[3]
	}

	fmt.Println("=== Card Catalog Import ===")
	fmt.Printf("Deck: %s\n", deck)
	fmt.Printf("CSV file: %s\n", csvPath)

	file, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	imported, skipped, err := readCards(file)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	for _, warning := range skipped {
		log.Printf("Warning: %s", warning)
	}
	fmt.Printf("Parsed %d cards\n", len(imported))

	data, err := encodeCatalog(deck, imported)
	if err != nil {
		log.Fatalf("Catalog is not valid: %v", err)
	}
	fmt.Println("✓ Catalog validated")

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write catalog: %v", err)
	}

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("✓ Wrote %d cards to %s\n", len(imported), outPath)
	fmt.Println("\nNext steps:")
	fmt.Printf("  Point catalog.%s in config/config.yaml at %s\n", catalogKey(deck), outPath)
}

// readCards parses CSV rows after the header. Rows that cannot be read are
// skipped and reported.
func readCards(r io.Reader) ([]*CardImport, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("CSV file is empty or has no data rows")
	}

	var imported []*CardImport
	var skipped []string
	for i, record := range records[1:] { // Skip header
		row := i + 2
		if len(record) < columns {
			skipped = append(skipped, fmt.Sprintf("skipping row %d - insufficient columns", row))
			continue
		}

		params, err := parseParams(record[4])
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("skipping row %d - %v", row, err))
			continue
		}

		imported = append(imported, &CardImport{
			ID:          strings.TrimSpace(record[0]),
			Title:       strings.TrimSpace(record[1]),
			Description: strings.TrimSpace(record[2]),
			Effect:      strings.TrimSpace(record[3]),
			Params:      params,
			Keepable:    parseBool(record[5]),
		})
	}
	return imported, skipped, nil
}

// encodeCatalog renders the cards as catalog YAML and checks that the
// result loads.
func encodeCatalog(deck string, imported []*CardImport) ([]byte, error) {
	data, err := yaml.Marshal(catalogFile{Cards: imported})
	if err != nil {
		return nil, err
	}
	if _, err := cards.ParseCatalog(deck, data); err != nil {
		return nil, err
	}
	return data, nil
}

func parseParams(s string) (map[string]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	params := make(map[string]int)
	for _, pair := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("param %q is not key=value", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", pair, err)
		}
		params[strings.TrimSpace(key)] = n
	}
	return params, nil
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return strings.ToLower(s) == "true" || s == "1"
}

func catalogKey(deck string) string {
	if deck == cards.CommunityChest {
		return "community_chest"
	}
	return "chance"
}
