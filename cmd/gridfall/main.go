package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/config"
	"github.com/gridfall/server/internal/core/ecs"
	"github.com/gridfall/server/internal/core/pipe"
	"github.com/gridfall/server/internal/data"
	"github.com/gridfall/server/internal/query"
	"github.com/gridfall/server/internal/scripting"
	"github.com/gridfall/server/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Gridfall  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      staged tile combat simulation        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/gridfall.toml"
	if p := os.Getenv("GRIDFALL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		cfg.Server.StartTime = time.Now().Unix()
	} else if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Load data tables
	printSection("data")

	abilities, err := data.LoadAbilityTable(filepath.Join(cfg.Paths.Data, "ability_list.yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		abilities = data.DefaultAbilityTable()
	} else if err != nil {
		return fmt.Errorf("load ability table: %w", err)
	}
	printStat("abilities", abilities.Count())

	// 4. Init Lua scripting engine
	engine, err := scripting.NewEngine(cfg.Paths.Scripts, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()
	printOK("lua scripts loaded")

	// 5. Create world and component stores
	world := ecs.NewWorld()
	health := ecs.NewStore[component.Health]()
	mana := ecs.NewStore[component.Mana]()
	pos := ecs.NewStore[component.Position]()
	resist := ecs.NewStore[component.Resist]()
	world.RegisterStore(health)
	world.RegisterStore(mana)
	world.RegisterStore(pos)
	world.RegisterStore(resist)

	duelists := seedDuel(world, health, mana, pos, resist)
	printStat("combatants", len(duelists))

	// 6. Assemble the pipeline
	b := pipe.NewBuilder(
		pipe.WithLogger(log),
		pipe.WithParallelism(cfg.Sim.Workers),
	)
	deps := &sim.Deps{
		World:          world,
		Health:         health,
		Mana:           mana,
		Pos:            pos,
		Resist:         resist,
		Abilities:      abilities,
		Engine:         engine,
		Log:            log,
		IntentCapacity: cfg.Sim.IntentQueueSize,
	}
	if err := sim.Register(b, deps); err != nil {
		return fmt.Errorf("register systems: %w", err)
	}
	pl, err := b.Build()
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	// 7. Run the game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	printSection("server ready")
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Sim.TickRate))
	fmt.Println()

	healthOf := query.HealthOf{Health: health.Lens()}
	castCounter := 0
	const castInterval = 5 // one exchange per second at the default tick rate

	for {
		select {
		case <-ticker.C:
			castCounter++
			if castCounter >= castInterval {
				castCounter = 0
				queueDuelCasts(pl, world, duelists, log)
			}

			rep, err := pl.Tick()
			if err != nil {
				return fmt.Errorf("tick: %w", err)
			}
			for _, f := range rep.Failures {
				log.Error("system failed",
					zap.String("stage", f.Stage),
					zap.String("system", f.System),
					zap.Error(f.Err))
			}
			reportDuelHealth(pl, world, healthOf, duelists, log)

			if survivors(world, duelists) <= 1 {
				log.Info("duel decided", zap.Uint64("tick", rep.Tick))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// duelist pairs an entity with the ability it spams at its opponent.
type duelist struct {
	id      ecs.EntityID
	ability string
}

// seedDuel places two opposed casters on the grid. Until a real client
// transport lands this is the input source for the pipeline.
func seedDuel(world *ecs.World, health *ecs.Store[component.Health], mana *ecs.Store[component.Mana], pos *ecs.Store[component.Position], resist *ecs.Store[component.Resist]) []duelist {
	a := world.Create()
	health.Set(a, &component.Health{Current: 120, Max: 120})
	mana.Set(a, &component.Mana{Current: 60, Max: 60})
	pos.Set(a, &component.Position{X: 2, Y: 2})
	resist.Set(a, &component.Resist{Magic: 0.1})

	b := world.Create()
	health.Set(b, &component.Health{Current: 150, Max: 150})
	mana.Set(b, &component.Mana{Current: 40, Max: 40})
	pos.Set(b, &component.Position{X: 9, Y: 7})
	resist.Set(b, &component.Resist{Magic: 0.75})

	return []duelist{
		{id: a, ability: "firebolt"},
		{id: b, ability: "spark"},
	}
}

// queueDuelCasts injects one cast intent per living duelist at its opponent.
func queueDuelCasts(pl *pipe.Pipeline, world *ecs.World, duelists []duelist, log *zap.Logger) {
	for i, d := range duelists {
		if !world.Alive(d.id) {
			continue
		}
		foe := duelists[(i+1)%len(duelists)]
		if !world.Alive(foe.id) {
			continue
		}
		err := pipe.Inject(pl, sim.CastIntent{Caster: d.id, Target: foe.id, Ability: d.ability})
		if err != nil {
			log.Warn("cast intent dropped", zap.String("ability", d.ability), zap.Error(err))
		}
	}
}

func reportDuelHealth(pl *pipe.Pipeline, world *ecs.World, healthOf query.HealthOf, duelists []duelist, log *zap.Logger) {
	view := world.View()
	for _, d := range duelists {
		hp, err := healthOf.Evaluate(view, d.id)
		if err != nil {
			continue
		}
		log.Debug("combatant status",
			zap.Uint64("entity", uint64(d.id)),
			zap.Int("health", hp))
	}
	if n, err := pipe.Pending[sim.GameAction](pl); err == nil && n > 0 {
		log.Debug("actions in flight", zap.Int("count", n))
	}
}

func survivors(world *ecs.World, duelists []duelist) int {
	n := 0
	for _, d := range duelists {
		if world.Alive(d.id) {
			n++
		}
	}
	return n
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
