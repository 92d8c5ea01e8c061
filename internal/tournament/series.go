// Package tournament plays a series of unattended games between the same
// entrants and keeps standings.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
)

var (
	ErrSeriesStarted   = errors.New("series already started")
	ErrEntrantExists   = errors.New("entrant already joined")
	ErrEntrantNotFound = errors.New("entrant not found")
	ErrNotEnough       = errors.New("not enough entrants")
)

// Points awarded per game.
const (
	WinPoints  = 3
	DrawPoints = 1
)

// SeriesState represents the state of a series
type SeriesState int

const (
	SeriesStateWaiting SeriesState = iota
	SeriesStateInProgress
	SeriesStateFinished
)

func (s SeriesState) String() string {
	switch s {
	case SeriesStateWaiting:
		return "WAITING"
	case SeriesStateInProgress:
		return "IN_PROGRESS"
	case SeriesStateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Entrant is a seat that plays every game of the series.
type Entrant struct {
	Name       string
	Controller policy.Controller // nil plays the default heuristic
	Points     int
	Wins       int
	Losses     int
	Draws      int // games that hit the turn limit with the entrant still solvent
}

// GameResult is the outcome of one game.
type GameResult struct {
	Number   int
	GameID   string
	Seed     int64
	Winner   string // empty when the turn limit was reached
	Turns    int
	Checksum string
}

// EntrantSnapshot captures entrant standings for external use.
type EntrantSnapshot struct {
	Name   string
	Points int
	Wins   int
	Losses int
	Draws  int
}

// SeriesSnapshot captures a consistent view of a series.
type SeriesSnapshot struct {
	ID         string
	Name       string
	State      SeriesState
	Entrants   []EntrantSnapshot
	Results    []GameResult
	NumGames   int
	MaxTurns   int
	Seed       int64
	CreateTime time.Time
	StartTime  *time.Time
	EndTime    *time.Time
}

// PlayOptions configures how a series plays its games.
type PlayOptions struct {
	Rules   game.Rules
	Catalog *game.Catalog
	Workers int
	// Observe, when set, is subscribed to every game's event bus. It is
	// called from several goroutines at once.
	Observe rules.Listener
}

// Series is a fixed number of games between the same entrants. Game n is
// seeded with Seed+n and seats the entrants rotated by n, so a series is
// reproducible and every entrant takes every seat.
type Series struct {
	ID         string
	Name       string
	State      SeriesState
	Entrants   map[string]*Entrant
	Order      []string // Maintains insertion order
	Results    []GameResult
	NumGames   int
	MaxTurns   int
	Seed       int64
	CreateTime time.Time
	StartTime  *time.Time
	EndTime    *time.Time
	logger     *zap.Logger
	mu         sync.RWMutex
}

// NewSeries creates a new series
func NewSeries(name string, numGames, maxTurns int, seed int64, logger *zap.Logger) *Series {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Series{
		ID:         id,
		Name:       name,
		State:      SeriesStateWaiting,
		Entrants:   make(map[string]*Entrant),
		Order:      make([]string, 0),
		NumGames:   numGames,
		MaxTurns:   maxTurns,
		Seed:       seed,
		CreateTime: time.Now(),
		logger:     logger.With(zap.String("series_id", id)),
	}
}

// AddEntrant adds an entrant to the series
func (s *Series) AddEntrant(name string, controller policy.Controller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != SeriesStateWaiting {
		return ErrSeriesStarted
	}
	if _, exists := s.Entrants[name]; exists {
		return fmt.Errorf("%w: %s", ErrEntrantExists, name)
	}

	s.Entrants[name] = &Entrant{Name: name, Controller: controller}
	s.Order = append(s.Order, name)
	return nil
}

// RemoveEntrant removes an entrant before the series starts
func (s *Series) RemoveEntrant(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != SeriesStateWaiting {
		return ErrSeriesStarted
	}
	if _, exists := s.Entrants[name]; !exists {
		return fmt.Errorf("%w: %s", ErrEntrantNotFound, name)
	}

	delete(s.Entrants, name)

	// Remove from order
	for i, n := range s.Order {
		if n == name {
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			break
		}
	}
	return nil
}

// GetState returns the current series state
func (s *Series) GetState() SeriesState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State
}

// Start moves the series into progress.
func (s *Series) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != SeriesStateWaiting {
		return ErrSeriesStarted
	}
	if len(s.Entrants) < 2 {
		return fmt.Errorf("%w: need 2, have %d", ErrNotEnough, len(s.Entrants))
	}
	if s.NumGames < 1 {
		return fmt.Errorf("series needs at least one game, got %d", s.NumGames)
	}

	now := time.Now()
	s.StartTime = &now
	s.State = SeriesStateInProgress
	return nil
}

// seating returns the entrants for game n, rotated by n.
func (s *Series) seating(n int) []game.Seat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seats := make([]game.Seat, len(s.Order))
	for i := range s.Order {
		name := s.Order[(i+n)%len(s.Order)]
		seats[i] = game.Seat{Name: name, Controller: s.Entrants[name].Controller}
	}
	return seats
}

// RecordResult updates the standings with the outcome of one game. The
// winner takes WinPoints and every other entrant a loss; without a winner
// every solvent entrant takes a draw.
func (s *Series) RecordResult(result GameResult, solvent []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != SeriesStateInProgress {
		return fmt.Errorf("series is %s", s.State)
	}
	if result.Winner != "" {
		if _, ok := s.Entrants[result.Winner]; !ok {
			return fmt.Errorf("%w: %s", ErrEntrantNotFound, result.Winner)
		}
	}

	alive := make(map[string]bool, len(solvent))
	for _, name := range solvent {
		alive[name] = true
	}
	for _, name := range s.Order {
		entrant := s.Entrants[name]
		switch {
		case name == result.Winner:
			entrant.Wins++
			entrant.Points += WinPoints
		case result.Winner == "" && alive[name]:
			entrant.Draws++
			entrant.Points += DrawPoints
		default:
			entrant.Losses++
		}
	}

	s.Results = append(s.Results, result)
	if len(s.Results) == s.NumGames {
		now := time.Now()
		s.EndTime = &now
		s.State = SeriesStateFinished
	}
	return nil
}

// Play starts the series and plays every game on a pool of workers. It
// returns the first error a game produced, or ctx's error.
func (s *Series) Play(ctx context.Context, opts PlayOptions) error {
	if err := s.Start(); err != nil {
		return err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				if err := s.playGame(ctx, n, opts); err != nil {
					errs <- err
					cancel()
					return
				}
			}
		}()
	}

feed:
	for n := 0; n < s.NumGames; n++ {
		select {
		case jobs <- n:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return err
	}
	if s.GetState() != SeriesStateFinished {
		return ctx.Err()
	}

	s.logger.Info("series finished",
		zap.String("name", s.Name),
		zap.Int("games", s.NumGames))
	return nil
}

func (s *Series) playGame(ctx context.Context, n int, opts PlayOptions) error {
	bus := rules.NewEventBus()
	if opts.Observe != nil {
		bus.Subscribe(opts.Observe)
	}

	engine, err := game.NewEngine(game.Options{
		Rules:   opts.Rules,
		Catalog: opts.Catalog,
		Seats:   s.seating(n),
		Seed:    s.Seed + int64(n),
		Bus:     bus,
		Logger:  s.logger.With(zap.Int("game", n)),
	})
	if err != nil {
		return fmt.Errorf("game %d: %w", n, err)
	}
	if err := engine.Run(ctx, s.MaxTurns); err != nil {
		return fmt.Errorf("game %d: %w", n, err)
	}

	checksum, err := engine.Snapshot().Checksum()
	if err != nil {
		return fmt.Errorf("game %d: %w", n, err)
	}
	var solvent []string
	for _, p := range engine.Players() {
		if !p.Bankrupt {
			solvent = append(solvent, p.Name)
		}
	}

	result := GameResult{
		Number:   n,
		GameID:   engine.ID(),
		Seed:     engine.Seed(),
		Winner:   engine.Winner(),
		Turns:    engine.TurnNumber(),
		Checksum: checksum.Hash,
	}
	s.logger.Debug("series game finished",
		zap.Int("game", n),
		zap.String("winner", result.Winner),
		zap.Int("turns", result.Turns))
	return s.RecordResult(result, solvent)
}

// Standings returns the entrants ordered by points, then wins, then
// insertion order.
func (s *Series) Standings() []EntrantSnapshot {
	snap := s.Snapshot()
	standings := append([]EntrantSnapshot(nil), snap.Entrants...)
	for i := 1; i < len(standings); i++ {
		for j := i; j > 0 && ahead(standings[j], standings[j-1]); j-- {
			standings[j], standings[j-1] = standings[j-1], standings[j]
		}
	}
	return standings
}

func ahead(a, b EntrantSnapshot) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.Wins > b.Wins
}

// Snapshot returns a consistent copy of the series state. Results are in
// the order games finished.
func (s *Series) Snapshot() SeriesSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entrants := make([]EntrantSnapshot, 0, len(s.Order))
	for _, name := range s.Order {
		if e, ok := s.Entrants[name]; ok {
			entrants = append(entrants, EntrantSnapshot{
				Name:   e.Name,
				Points: e.Points,
				Wins:   e.Wins,
				Losses: e.Losses,
				Draws:  e.Draws,
			})
		}
	}

	return SeriesSnapshot{
		ID:         s.ID,
		Name:       s.Name,
		State:      s.State,
		Entrants:   entrants,
		Results:    append([]GameResult(nil), s.Results...),
		NumGames:   s.NumGames,
		MaxTurns:   s.MaxTurns,
		Seed:       s.Seed,
		CreateTime: s.CreateTime,
		StartTime:  cloneTime(s.StartTime),
		EndTime:    cloneTime(s.EndTime),
	}
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	cp := *src
	return &cp
}

// Manager manages series
type Manager struct {
	series map[string]*Series
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewManager creates a new series manager
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		series: make(map[string]*Series),
		logger: logger,
	}
}

// CreateSeries creates a new series
func (m *Manager) CreateSeries(name string, numGames, maxTurns int, seed int64) *Series {
	m.mu.Lock()
	defer m.mu.Unlock()

	series := NewSeries(name, numGames, maxTurns, seed, m.logger)
	m.series[series.ID] = series

	m.logger.Info("series created",
		zap.String("series_id", series.ID),
		zap.String("name", name),
		zap.Int("games", numGames),
		zap.Int64("seed", seed),
	)
	return series
}

// GetSeries retrieves a series by ID
func (m *Manager) GetSeries(id string) (*Series, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series, ok := m.series[id]
	return series, ok
}

// RemoveSeries removes a series
func (m *Manager) RemoveSeries(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.series, id)

	m.logger.Info("series removed", zap.String("series_id", id))
}

// ActiveCount returns the number of series that have not finished
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, series := range m.series {
		if series.GetState() != SeriesStateFinished {
			count++
		}
	}
	return count
}
