package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/isleclash/server/internal/api"
	"github.com/isleclash/server/internal/config"
	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/handler"
	"github.com/isleclash/server/internal/metrics"
	gonet "github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/path"
	"github.com/isleclash/server/internal/persist"
	"github.com/isleclash/server/internal/scripting"
	"github.com/isleclash/server/internal/system"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             IsleClash  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        島嶼戰鬥 · 權威模擬伺服器          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK characters as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
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
	// 1. Load config: -config flag, then ISLECLASH_CONFIG, then built-in defaults
	cfgFlag := flag.String("config", "", "path to server.toml")
	flag.Parse()

	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = os.Getenv("ISLECLASH_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = "config/server.toml"
	}
	cfg, err := config.Load(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && *cfgFlag == "":
		cfg = config.Default()
	case err != nil:
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Static tables: rules → attacks → enemies → islands
	printSection("資料載入")

	rules, err := data.LoadRuleTable(cfg.Data.MoveRules)
	if err != nil {
		return fmt.Errorf("load move rules: %w", err)
	}
	printStat("移動規則", rules.Count())

	attacks, err := data.LoadAttackTable(cfg.Data.Attacks)
	if err != nil {
		return fmt.Errorf("load attacks: %w", err)
	}
	printStat("攻擊", attacks.Count())

	enemies, err := data.LoadEnemyTable(cfg.Data.Enemies, attacks, rules)
	if err != nil {
		return fmt.Errorf("load enemies: %w", err)
	}
	printStat("敵人模板", enemies.Count())

	islandTable, err := data.LoadIslandTable(cfg.Data.Islands, enemies)
	if err != nil {
		return fmt.Errorf("load islands: %w", err)
	}
	printStat("島嶼模板", islandTable.Count())

	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	if luaEngine.HasFunc("enemy_ai") {
		printOK("Lua 敵人 AI 已載入")
	} else {
		printOK("使用內建敵人 AI")
	}
	fmt.Println()

	// 4. Event ledger (optional)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.New()

	var ledger *persist.AsyncLedger
	if cfg.Database.DSN != "" {
		printSection("資料庫")
		dbCtx, dbCancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			dbCancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL 連線成功")

		err = persist.RunMigrations(dbCtx, db.Pool)
		dbCancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("資料庫遷移完成")
		fmt.Println()

		ledger = persist.NewAsyncLedger(persist.NewLedgerRepo(db), cfg.Database.BatchSize, cfg.Database.FlushInterval, log)
		ledger.CountDrops(collector)
		go ledger.Run(ctx)
	}

	// 5. World state and simulation context
	snapshots := &api.SnapshotStore{}

	hub := gonet.NewHub(gonet.HubConfig{
		InQueueSize:      cfg.Network.InQueueSize,
		OutQueueSize:     cfg.Network.OutQueueSize,
		IntentsPerSecond: cfg.Network.IntentsPerSecond,
		IntentBurst:      cfg.Network.IntentBurst,
	}, log)

	deps := &system.Deps{
		World:     world.NewState(grid.NewIslands(islandTable)),
		Attacks:   attacks,
		Enemies:   enemies,
		Rules:     rules,
		Events:    event.NewQueue(),
		Planner:   path.Planner{MaxExpanded: cfg.Simulation.MaxPathNodes},
		Scripting: luaEngine,
		Metrics:   collector,
		Sessions:  gonet.NewSessionStore(),
		Intents:   system.NewIntents(),
		Config:    cfg,
		Log:       log,
	}

	// 6. Packet handlers
	pktReg := packet.NewRegistry(log)
	handler.RegisterAll(pktReg, deps)

	// 7. Systems, in tick order
	runner := coresys.NewRunner()
	caster := system.NewCaster(deps)
	system.NewDamagePipeline(deps)

	// Phase 0
	runner.Register(system.NewInputSystem(hub, pktReg, deps, cfg.Network.MaxPacketsPerTick))
	// Phase 1
	runner.Register(system.NewTimerSystem(deps.World))
	runner.Register(system.NewInterruptSystem(deps.World))
	// Phase 2
	runner.Register(system.NewIslandSystem(deps))
	runner.Register(system.NewMovementSystem(deps))
	runner.Register(system.NewEnemyAISystem(deps, caster))
	runner.Register(system.NewCombatSystem(deps, caster))
	// Phase 3
	runner.Register(system.NewProjectileSystem(deps))
	runner.Register(system.NewEventSystem(deps.Events))
	runner.Register(system.NewActionStateSystem(deps))
	// Phase 4
	runner.Register(system.NewOutputSystem(deps, snapshots))
	// Phase 5
	if ledger != nil {
		runner.Register(system.NewLedgerSystem(deps, ledger))
	}
	// Phase 6
	runner.Register(system.NewIslandSweepSystem(deps))
	runner.Register(system.NewCleanupSystem(deps))

	// 8. Debug HTTP
	var debugSrv *api.Server
	if cfg.Metrics.Enabled {
		debugSrv = api.NewServer(cfg.Metrics.BindAddress, api.RouterConfig{
			Snapshots:   snapshots,
			Metrics:     collector.Handler(),
			CORSOrigins: cfg.Metrics.CORSOrigins,
			Log:         log,
		})
		debugSrv.Start()
	}

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	tickRate := cfg.Simulation.TickRate
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	if debugSrv != nil {
		printReady(fmt.Sprintf("除錯介面 http://%s", cfg.Metrics.BindAddress))
	}
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s, systems: %d)", tickRate, runner.Len()))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			runner.Tick(tickRate)
			elapsed := time.Since(start)
			collector.ObserveTick(elapsed)
			if elapsed > tickRate {
				log.Warn("tick 超時", zap.Duration("elapsed", elapsed), zap.Uint64("tick", deps.Tick))
			}
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			shutdown(debugSrv, ledger, cancel, log)
			log.Info("伺服器已停止")
			return nil
		}
	}
}

// shutdown stops the debug server, then lets the ledger flush what it holds.
func shutdown(debugSrv *api.Server, ledger *persist.AsyncLedger, cancel context.CancelFunc, log *zap.Logger) {
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if debugSrv != nil {
		if err := debugSrv.Shutdown(stopCtx); err != nil {
			log.Warn("除錯伺服器關閉失敗", zap.Error(err))
		}
	}
	cancel()
	if ledger != nil {
		select {
		case <-ledger.Done():
		case <-stopCtx.Done():
			log.Warn("事件紀錄未能在時限內寫完")
		}
	}
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
