package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/magefree/monopoly-server-go/internal/config"
	"github.com/magefree/monopoly-server-go/internal/game"
	"github.com/magefree/monopoly-server-go/internal/game/rules"
	"github.com/magefree/monopoly-server-go/internal/policy"
	"github.com/magefree/monopoly-server-go/internal/random"
	"github.com/magefree/monopoly-server-go/internal/telemetry"
	"github.com/magefree/monopoly-server-go/internal/tournament"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	seed       = flag.Int64("seed", 0, "seed override, 0 keeps the configured seed")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting monopoly",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			return
		}
		logger.Error("game failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	catalog, err := game.LoadCatalog(cfg.CatalogFiles())
	if err != nil {
		return err
	}

	ai, err := loadPolicy(cfg.Game.PolicyScript, logger)
	if err != nil {
		return err
	}

	money := telemetry.ParseLocale(cfg.Game.Locale)
	listeners := []rules.Listener{telemetry.LogSink(logger.Named("events"), money)}

	var servers []*http.Server
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("server shutdown failed", zap.String("address", srv.Addr), zap.Error(err))
			}
		}
	}()

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics := telemetry.NewMetrics(cfg.Metrics.Namespace, reg)
		listeners = append(listeners, metrics.Observe)

		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler(reg))
		servers = append(servers, serve(cfg.Metrics.Address, mux, "metrics", logger))
	}

	if cfg.Spectator.Enabled {
		hub := telemetry.NewHub(money, logger.Named("spectator"))
		go hub.Run(ctx)
		listeners = append(listeners, hub.Publish)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		servers = append(servers, serve(cfg.Spectator.Address, mux, "spectator", logger))
	}

	if cfg.Game.Series > 0 {
		return runSeries(ctx, cfg, catalog, ai, listeners, logger)
	}
	return runGame(ctx, cfg, catalog, ai, listeners, logger)
}

func runGame(ctx context.Context, cfg *config.Config, catalog *game.Catalog, ai policy.Controller, listeners []rules.Listener, logger *zap.Logger) error {
	bus := rules.NewEventBus()
	for _, listener := range listeners {
		bus.Subscribe(listener)
	}
	recorder := telemetry.NewRecorder()
	bus.Subscribe(recorder.Record)

	var terminal *policy.Terminal
	seats := make([]game.Seat, 0, len(cfg.Game.Players))
	for _, name := range cfg.Game.Players {
		seat := game.Seat{Name: name, Controller: ai}
		if cfg.IsHuman(name) {
			if terminal == nil {
				terminal = policy.NewTerminal(os.Stdin, os.Stdout)
			}
			seat.Controller = policy.Human{Asker: terminal}
		}
		seats = append(seats, seat)
	}

	engine, err := game.NewEngine(game.Options{
		Rules:   cfg.GameRules(),
		Catalog: catalog,
		Seats:   seats,
		Seed:    cfg.Game.Seed,
		Bus:     bus,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if err := engine.Run(ctx, cfg.Game.MaxTurns); err != nil {
		return err
	}

	checksum, err := engine.Snapshot().Checksum()
	if err != nil {
		return err
	}
	counts := recorder.Counts()
	money := telemetry.ParseLocale(cfg.Game.Locale)
	for _, p := range engine.Players() {
		houses, hotels := p.Buildings()
		logger.Info("final standing",
			zap.String("player", p.Name),
			zap.String("balance", money.Format(p.Balance)),
			zap.String("net_worth", money.Format(p.NetWorth())),
			zap.Int("properties", len(p.Properties())),
			zap.Int("houses", houses),
			zap.Int("hotels", hotels),
			zap.Bool("bankrupt", p.Bankrupt))
	}
	logger.Info("game finished",
		zap.String("game_id", engine.ID()),
		zap.Int64("seed", engine.Seed()),
		zap.String("winner", engine.Winner()),
		zap.Int("turns", engine.TurnNumber()),
		zap.Int("events", recorder.Len()),
		zap.Int("rents_paid", counts[rules.EventRentPaid]),
		zap.Int("cards_drawn", counts[rules.EventCardDrawn]),
		zap.String("checksum", checksum.Hash))
	return nil
}

func runSeries(ctx context.Context, cfg *config.Config, catalog *game.Catalog, ai policy.Controller, listeners []rules.Listener, logger *zap.Logger) error {
	baseSeed := cfg.Game.Seed
	if baseSeed == 0 {
		generated, err := random.NewSeed()
		if err != nil {
			return err
		}
		baseSeed = generated
	}

	manager := tournament.NewManager(logger)
	series := manager.CreateSeries("series", cfg.Game.Series, cfg.Game.MaxTurns, baseSeed)
	for _, name := range cfg.Game.Players {
		if err := series.AddEntrant(name, ai); err != nil {
			return err
		}
	}

	observe := func(evt rules.Event) {
		for _, listener := range listeners {
			listener(evt)
		}
	}
	if err := series.Play(ctx, tournament.PlayOptions{
		Rules:   cfg.GameRules(),
		Catalog: catalog,
		Workers: cfg.Game.Workers,
		Observe: observe,
	}); err != nil {
		return err
	}

	for i, entrant := range series.Standings() {
		logger.Info("series standing",
			zap.Int("rank", i+1),
			zap.String("player", entrant.Name),
			zap.Int("points", entrant.Points),
			zap.Int("wins", entrant.Wins),
			zap.Int("draws", entrant.Draws),
			zap.Int("losses", entrant.Losses))
	}
	return nil
}

func loadPolicy(script string, logger *zap.Logger) (policy.Controller, error) {
	if script == "" {
		return policy.AI{Policy: policy.Heuristic{}}, nil
	}
	lua, err := policy.LoadLuaPolicy(script, logger.Named("policy"))
	if err != nil {
		return nil, fmt.Errorf("load policy script: %w", err)
	}
	logger.Info("policy script loaded", zap.String("path", script))
	return policy.AI{Policy: lua}, nil
}

func serve(addr string, handler http.Handler, name string, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting "+name+" server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(name+" server error", zap.Error(err))
		}
	}()
	return srv
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
