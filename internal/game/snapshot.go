package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/magefree/monopoly-server-go/internal/game/cards"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

// checksumVersion changes whenever the canonical representation does.
const checksumVersion = 1

// Snapshot is a point-in-time copy of the game state.
type Snapshot struct {
	GameID       string
	State        rules.TurnState
	ActivePlayer string
	TurnNumber   int
	Winner       string
	Players      []PlayerSnapshot
	Spaces       []SpaceSnapshot // spaces that differ from a fresh board
	Decks        []DeckSnapshot
	Timestamp    time.Time
}

// PlayerSnapshot is one player's state.
type PlayerSnapshot struct {
	Name       string
	Balance    int
	Position   int
	InJail     bool
	JailTurns  int
	Railroads  int
	Doubles    int
	Bankrupt   bool
	Properties []string
	JailCards  []string
}

// SpaceSnapshot is the ownership state of one space.
type SpaceSnapshot struct {
	Index       int
	Owner       string
	Mortgaged   bool
	Development int
}

// DeckSnapshot lists a deck's piles by card ID, draw pile top first.
type DeckSnapshot struct {
	Name    string
	Draw    []string
	Discard []string
}

// Checksum is a deterministic digest of a snapshot.
type Checksum struct {
	Hash      string // SHA-256 of the canonical representation
	Timestamp string
	Version   int
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := &Snapshot{
		GameID:       e.id,
		State:        e.machine.Current(),
		ActivePlayer: e.order.ActivePlayer(),
		TurnNumber:   e.order.TurnNumber(),
		Winner:       e.winner,
		Timestamp:    time.Now(),
	}

	for _, p := range e.players {
		ps := PlayerSnapshot{
			Name:      p.Name,
			Balance:   p.Balance,
			Position:  p.Position,
			InJail:    p.InJail,
			JailTurns: p.JailTurns,
			Railroads: p.Railroads,
			Doubles:   p.Doubles,
			Bankrupt:  p.Bankrupt,
		}
		for _, space := range e.registry.OwnedBy(p.Name) {
			ps.Properties = append(ps.Properties, space.Name)
		}
		for _, card := range p.JailCards() {
			ps.JailCards = append(ps.JailCards, card.ID)
		}
		snap.Players = append(snap.Players, ps)
	}

	for _, space := range e.registry.Spaces() {
		if !space.Owned() && !space.Mortgaged && space.Development == 0 {
			continue
		}
		snap.Spaces = append(snap.Spaces, SpaceSnapshot{
			Index:       space.Index,
			Owner:       space.Owner,
			Mortgaged:   space.Mortgaged,
			Development: space.Development,
		})
	}

	for _, name := range []string{cards.Chance, cards.CommunityChest} {
		deck := e.decks[name]
		ds := DeckSnapshot{Name: name}
		contents := deck.Contents()
		for i, card := range contents {
			if i < deck.DrawCount() {
				ds.Draw = append(ds.Draw, card.ID)
			} else {
				ds.Discard = append(ds.Discard, card.ID)
			}
		}
		snap.Decks = append(snap.Decks, ds)
	}
	return snap
}

// Checksum digests the snapshot. The game ID and timestamp are left out so
// two games played from the same seed and inputs produce the same hash.
func (s *Snapshot) Checksum() (*Checksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(s.canonical())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &Checksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: s.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   checksumVersion,
	}, nil
}

// VerifyChecksum reports whether the snapshot still matches expected.
func (s *Snapshot) VerifyChecksum(expected *Checksum) (bool, error) {
	if expected == nil {
		return false, fmt.Errorf("expected checksum is nil")
	}
	if expected.Version != checksumVersion {
		return false, fmt.Errorf("checksum version %d, want %d", expected.Version, checksumVersion)
	}
	computed, err := s.Checksum()
	if err != nil {
		return false, err
	}
	return computed.Hash == expected.Hash, nil
}

// canonical renders the snapshot in seating and board order. Order matters
// for players, spaces and deck piles, so nothing is sorted.
func (s *Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%s\n", s.State, s.ActivePlayer, s.TurnNumber, s.Winner)

	for _, p := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%d|%t|%d|%d|%d|%t\n",
			p.Name,
			p.Balance,
			p.Position,
			p.InJail,
			p.JailTurns,
			p.Railroads,
			p.Doubles,
			p.Bankrupt,
		)
		fmt.Fprintf(&buf, "  PROPERTIES:%s\n", strings.Join(p.Properties, ","))
		fmt.Fprintf(&buf, "  JAIL_CARDS:%s\n", strings.Join(p.JailCards, ","))
	}

	for _, space := range s.Spaces {
		fmt.Fprintf(&buf, "SPACE:%d|%s|%t|%d\n", space.Index, space.Owner, space.Mortgaged, space.Development)
	}

	for _, deck := range s.Decks {
		fmt.Fprintf(&buf, "DECK:%s\n", deck.Name)
		fmt.Fprintf(&buf, "  DRAW:%s\n", strings.Join(deck.Draw, ","))
		fmt.Fprintf(&buf, "  DISCARD:%s\n", strings.Join(deck.Discard, ","))
	}

	return buf.String()
}
