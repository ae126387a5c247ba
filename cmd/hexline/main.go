package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hexline/server/internal/config"
	"github.com/hexline/server/internal/core/event"
	coresys "github.com/hexline/server/internal/core/system"
	"github.com/hexline/server/internal/data"
	"github.com/hexline/server/internal/game"
	"github.com/hexline/server/internal/persist"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/round"
	"github.com/hexline/server/internal/scripting"
	"github.com/hexline/server/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name, scenario string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              hexline  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mgame:\033[0m %s \033[90m(%s)\033[0m\n\n", name, scenario)
}

func printSection(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(3, 42-len(label)-len(numStr))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main game logic ───────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("HEXLINE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.Scenario)

	// 3. Load the scenario
	printSection("scenario")
	scn, err := data.LoadScenario(cfg.Server.Scenario)
	if err != nil {
		return err
	}
	board := scn.HexBoard()
	printStat("board cells", board.Width()*board.Height())
	printStat("players", len(scn.Players))
	printStat("units", len(scn.Units))
	fmt.Println()

	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g, err := setupGame(scn, board, cfg.Options, seed, log)
	if err != nil {
		return err
	}
	defer g.Shutdown()

	// 4. Signal handling: the first SIGINT/SIGTERM stops the driver between steps.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if sig, ok := <-shutdownCh; ok {
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			cancel()
		}
	}()
	defer signal.Stop(shutdownCh)

	// 5. Combat scripts
	printSection("scripting")
	lua, err := scripting.NewEngine(cfg.Scripting.Dir, g.Lookup, log.Named("lua"))
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	printOK("combat scripts loaded")

	runner := coresys.NewRunner()
	runner.Register(system.NewResolveSystem(g, lua, phase.Firing, log.Named("resolve")))
	runner.Register(system.NewResolveSystem(g, lua, phase.Physical, log.Named("resolve")))
	runner.Register(system.NewCleanupSystem(g, log.Named("cleanup")))
	runner.Register(system.NewVictorySystem(g))

	// 6. Optional archive
	var archive *system.PersistenceSystem
	if cfg.Database.DSN != "" {
		printSection("archive")
		dbCtx, dbCancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			dbCancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		err = persist.RunMigrations(dbCtx, db.Pool, log)
		dbCancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		archive = system.NewPersistenceSystem(g, persist.NewArchiveRepo(db), system.GameInfo{
			Name:      cfg.Server.Name,
			Scenario:  scn.Name,
			Seed:      seed,
			StartedAt: time.Unix(cfg.Server.StartTime, 0),
		}, log.Named("archive"))
		runner.Register(archive)
	}
	fmt.Println()

	event.Subscribe(g.Bus(), func(ev event.ReportAdded) {
		fmt.Printf("  \033[90m[%d %s]\033[0m %s\n", ev.Round, ev.Phase.DisplayName(), ev.Text)
	})

	// 7. Play
	driver := round.NewDriver(g, runner, round.NewAutoPlayer(board, log.Named("auto")), cfg.Server.MaxRounds, log.Named("round"))
	runErr := driver.Run(ctx)

	if archive != nil {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := archive.Flush(flushCtx); err != nil {
			log.Error("final archive flush failed", zap.Error(err))
		}
		flushCancel()
	}

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	player, team := g.Winner()
	log.Info("game finished",
		zap.Stringer("game", g.ID()),
		zap.Int("rounds", g.Round()),
		zap.Int("winner", player),
		zap.Int("team", team),
	)
	return nil
}

// setupGame builds an engine in the lounge from the scenario.
func setupGame(scn *data.Scenario, board *data.HexBoard, opts config.Options, seed int64, log *zap.Logger) (*game.Engine, error) {
	g := game.New(opts, seed, log)
	if err := g.SetBoard(board); err != nil {
		return nil, err
	}
	for _, p := range scn.Players {
		if err := g.AddPlayer(&game.Player{
			ID:        p.ID,
			Name:      p.Name,
			Team:      p.Team,
			Observer:  p.Observer,
			Mines:     p.Mines,
			InitBonus: p.InitBonus,
		}); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scn.Name, err)
		}
	}
	for _, piece := range scn.Pieces() {
		g.AddUnit(piece)
	}
	return g, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
