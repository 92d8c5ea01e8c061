// Package game runs a property-trading board game: it owns the players,
// the board and both card decks, and moves a turn through rolling, moving
// and landing resolution.
package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/board"
	"github.com/magefree/monopoly-server-go/internal/game/cards"
	"github.com/magefree/monopoly-server-go/internal/game/dice"
	"github.com/magefree/monopoly-server-go/internal/game/effects"
	"github.com/magefree/monopoly-server-go/internal/game/player"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
	"github.com/magefree/monopoly-server-go/internal/random"
)

var (
	// ErrWrongState is returned when an action is not valid in the current turn state.
	ErrWrongState = errors.New("action not valid in current state")
	// ErrGameOver is returned for any action after the game has ended.
	ErrGameOver = errors.New("game over")
	// ErrPlayerNotFound is returned when a player name is not seated.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidSeats is returned when a game cannot be seated as requested.
	ErrInvalidSeats = errors.New("invalid seats")
	// ErrInvalidTrade is returned for trades that can never be carried out.
	ErrInvalidTrade = errors.New("invalid trade")

	ErrSpaceNotFound     = board.ErrSpaceNotFound
	ErrNotOwner          = player.ErrNotOwner
	ErrInsufficientFunds = player.ErrInsufficientFunds
)

// Rules holds the tunable numbers of the game.
type Rules struct {
	StartingBalance int
	PassGoBonus     int
	Bail            int
	MaxJailTurns    int // failed doubles attempts before bail is forced
	MaxDoubles      int // consecutive doubles that send a player to jail
	MaxLandingDepth int // nested landings a single move may trigger
}

// DefaultRules returns the standard values.
func DefaultRules() Rules {
	return Rules{
		StartingBalance: 1500,
		PassGoBonus:     200,
		Bail:            50,
		MaxJailTurns:    3,
		MaxDoubles:      3,
		MaxLandingDepth: 8,
	}
}

// Validate checks that every value is usable.
func (r Rules) Validate() error {
	switch {
	case r.StartingBalance < 0:
		return fmt.Errorf("starting balance must not be negative, got %d", r.StartingBalance)
	case r.PassGoBonus < 0:
		return fmt.Errorf("pass go bonus must not be negative, got %d", r.PassGoBonus)
	case r.Bail < 0:
		return fmt.Errorf("bail must not be negative, got %d", r.Bail)
	case r.MaxJailTurns < 1:
		return fmt.Errorf("max jail turns must be at least 1, got %d", r.MaxJailTurns)
	case r.MaxDoubles < 1:
		return fmt.Errorf("max doubles must be at least 1, got %d", r.MaxDoubles)
	case r.MaxLandingDepth < 1:
		return fmt.Errorf("max landing depth must be at least 1, got %d", r.MaxLandingDepth)
	}
	return nil
}

// Seat is a player name and whoever makes its decisions. A nil controller
// plays with the default heuristic.
type Seat struct {
	Name       string
	Controller policy.Controller
}

// Options configures a new engine.
type Options struct {
	GameID  string   // generated when empty
	Rules   Rules    // DefaultRules when zero
	Catalog *Catalog // default catalog when nil
	Seats   []Seat
	Seed    int64       // crypto seed when zero
	Roller  dice.Roller // random dice from the seed when nil
	Bus     *rules.EventBus
	Logger  *zap.Logger
}

// Engine runs one game. Public methods are safe to call from several
// goroutines, but the game itself advances strictly one action at a time.
type Engine struct {
	mu sync.Mutex

	id     string
	seed   int64
	rules  Rules
	logger *zap.Logger
	bus    *rules.EventBus

	registry    *board.Registry
	players     []*player.Player
	controllers map[string]policy.Controller
	decks       map[string]*cards.Deck
	roller      dice.Roller
	dispatcher  *effects.Dispatcher
	table       *effects.Table

	machine   *rules.StateMachine
	order     *rules.TurnOrder
	pending   *board.Space // offered to the active player in ActionRequired
	lastRoll  dice.Roll
	rollAgain bool
	depth     int
	winner    string
}

// NewEngine seats the players and deals a fresh board.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if len(opts.Seats) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidSeats, len(opts.Seats))
	}

	catalog := opts.Catalog
	if catalog == nil {
		var err error
		if catalog, err = DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	registry, err := board.NewRegistry(catalog.Layout)
	if err != nil {
		return nil, fmt.Errorf("build board: %w", err)
	}

	rng, seed, err := random.NewSource(opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("seed game: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bus := opts.Bus
	if bus == nil {
		bus = rules.NewEventBus()
	}
	roller := opts.Roller
	if roller == nil {
		roller = dice.NewRandomRoller(rng)
	}
	gameID := opts.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}

	e := &Engine{
		id:          gameID,
		seed:        seed,
		rules:       opts.Rules,
		logger:      logger.With(zap.String("game_id", gameID)),
		bus:         bus,
		registry:    registry,
		controllers: make(map[string]policy.Controller, len(opts.Seats)),
		roller:      roller,
		machine:     rules.NewStateMachine(),
	}

	names := make([]string, 0, len(opts.Seats))
	for _, seat := range opts.Seats {
		name := strings.TrimSpace(seat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty player name", ErrInvalidSeats)
		}
		if _, taken := e.controllers[name]; taken {
			return nil, fmt.Errorf("%w: duplicate player %q", ErrInvalidSeats, name)
		}
		controller := seat.Controller
		if controller == nil {
			controller = policy.AI{Policy: policy.Heuristic{}}
		}
		e.controllers[name] = controller
		e.players = append(e.players, player.New(name, opts.Rules.StartingBalance))
		names = append(names, name)
	}
	e.order = rules.NewTurnOrder(names)

	e.decks = map[string]*cards.Deck{
		cards.Chance:         cards.NewDeck(cards.Chance, catalog.Chance, rng),
		cards.CommunityChest: cards.NewDeck(cards.CommunityChest, catalog.CommunityChest, rng),
	}
	for _, deck := range e.decks {
		deck.OnReshuffle(e.onReshuffle)
	}

	e.dispatcher = effects.NewDispatcher(e.logger)
	e.table = &effects.Table{
		Players:     e.players,
		Registry:    registry,
		Decks:       e.decks,
		Dice:        roller,
		PassGoBonus: opts.Rules.PassGoBonus,
		JailIndex:   registry.JailIndex(),
		Controller:  e.controllerFor,
		Land:        e.land,
		Emit:        e.emit,
		Logger:      e.logger,
	}

	e.logger.Info("game started",
		zap.Strings("players", names),
		zap.Int64("seed", seed),
		zap.Int("starting_balance", opts.Rules.StartingBalance))
	e.emit(rules.NewEventWithAmount(rules.EventGameStarted, "",
		fmt.Sprintf("game started with %s", strings.Join(names, ", ")), len(names)))
	e.emit(rules.NewEvent(rules.EventTurnStarted, names[0], fmt.Sprintf("%s to roll", names[0])))
	return e, nil
}

// ID returns the game ID.
func (e *Engine) ID() string {
	return e.id
}

// Seed returns the seed of the engine's random source.
func (e *Engine) Seed() int64 {
	return e.seed
}

// Bus returns the event bus the engine publishes on.
func (e *Engine) Bus() *rules.EventBus {
	return e.bus
}

// State returns the current turn state.
func (e *Engine) State() rules.TurnState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Current()
}

// ActivePlayer returns the player whose turn it is.
func (e *Engine) ActivePlayer() *player.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active()
}

// Players returns every seated player in seating order, bankrupt ones included.
func (e *Engine) Players() []*player.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*player.Player(nil), e.players...)
}

// Player looks up a seated player by name.
func (e *Engine) Player(name string) (*player.Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findPlayer(name)
}

// Registry returns the game's board.
func (e *Engine) Registry() *board.Registry {
	return e.registry
}

// Deck returns the named card deck, or nil.
func (e *Engine) Deck(name string) *cards.Deck {
	return e.decks[name]
}

// Pending returns the space offered for purchase while in ActionRequired.
func (e *Engine) Pending() *board.Space {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// LastRoll returns the most recent roll of the dice.
func (e *Engine) LastRoll() dice.Roll {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRoll
}

// Winner returns the last player standing, or "" while the game is running.
func (e *Engine) Winner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.winner
}

// TurnNumber returns the current turn number (1-based).
func (e *Engine) TurnNumber() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order.TurnNumber()
}

func (e *Engine) active() *player.Player {
	p, err := e.findPlayer(e.order.ActivePlayer())
	if err != nil {
		panic(fmt.Sprintf("game: active player missing: %v", err))
	}
	return p
}

func (e *Engine) findPlayer(name string) (*player.Player, error) {
	trimmed := strings.TrimSpace(name)
	for _, p := range e.players {
		if p.Name == trimmed {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
}

func (e *Engine) controllerFor(p *player.Player) policy.Controller {
	return e.controllers[p.Name]
}

func (e *Engine) ask(p *player.Player, d policy.Decision) bool {
	d.Player = p
	answer := e.controllerFor(p).Decide(d)
	e.logger.Debug("decision",
		zap.String("player", p.Name),
		zap.Stringer("question", d.Question),
		zap.Bool("answer", answer))
	return answer
}

func (e *Engine) solvent() []*player.Player {
	var out []*player.Player
	for _, p := range e.players {
		if !p.Bankrupt {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) emit(evt rules.Event) {
	evt.GameID = e.id
	e.bus.Publish(evt)
}

func (e *Engine) onReshuffle(deck string, size int) {
	e.logger.Debug("deck reshuffled", zap.String("deck", deck), zap.Int("cards", size))
	evt := rules.NewEventWithAmount(rules.EventDeckReshuffled, "", fmt.Sprintf("%s deck reshuffled", deck), size)
	evt.TargetID = deck
	e.emit(evt)
}
