package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
	"github.com/rtsops/reinforce/internal/adapters/enginebridge"
	"github.com/rtsops/reinforce/internal/adapters/keybinds"
	"github.com/rtsops/reinforce/internal/adapters/metrics"
	"github.com/rtsops/reinforce/internal/adapters/persistence"
	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/application/sessions"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/infrastructure/config"
	"github.com/rtsops/reinforce/internal/infrastructure/database"
	"github.com/rtsops/reinforce/internal/infrastructure/logging"
	"github.com/rtsops/reinforce/internal/infrastructure/pidfile"
	"github.com/rtsops/reinforce/internal/infrastructure/sweeper"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	flag.Parse()

	fmt.Printf("Reinforce Daemon v%s\n", version)
	fmt.Println("=====================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig("") // Empty string = search default paths

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)

	// Try to acquire the lock
	err := pf.Acquire()
	if err != nil {
		if *forceFlag {
			// Force mode: kill existing daemon and try again
			fmt.Println("Force mode enabled - attempting to kill existing daemon...")
			if killErr := pf.KillExisting(); killErr != nil {
				log.Fatalf("Failed to kill existing daemon: %v", killErr)
			}
			fmt.Println("Existing daemon killed")

			// Try to acquire lock again
			if err := pf.Acquire(); err != nil {
				log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
			}
		} else {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	// Initialize application
	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	// 1. Setup structured logging
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	// 2. Setup session storage
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)

	var sessionRepo session.Repository
	var journalRepo session.JournalRepository

	if cfg.Database.Type == "memory" {
		memSessions, err := persistence.NewMemorySessionRepository()
		if err != nil {
			return fmt.Errorf("failed to create session store: %w", err)
		}
		memJournal, err := persistence.NewMemoryJournalRepository()
		if err != nil {
			return fmt.Errorf("failed to create journal store: %w", err)
		}
		sessionRepo = memSessions
		journalRepo = memJournal
	} else {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close(db)
		sessionRepo = persistence.NewSessionRepository(db)
		journalRepo = persistence.NewJournalRepository(db)
	}
	fmt.Println("Session storage ready")

	// 3. Initialize metrics
	var cmdMetrics *metrics.CommandMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		cmdMetrics = metrics.NewCommandMetricsCollector()
		if err := cmdMetrics.Register(); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}
		fmt.Println("Metrics registry initialized")
	}

	// 4. Load the keymap that resolves mod hotkey events to tag/untag
	var keymap *keybinds.Keymap
	if cfg.Keybinds.Path != "" {
		fmt.Printf("Loading keybinds from %s...\n", cfg.Keybinds.Path)
		keymap, err = keybinds.Load(cfg.Keybinds.Path)
		if err != nil {
			return fmt.Errorf("failed to load keybinds: %w", err)
		}
	}

	// 5. Initialize the session runner
	runner := enginebridge.NewSessionRunner(
		sessionRepo,
		journalRepo,
		keymap,
		enginebridge.RunnerConfig{
			StrategyNames: cfg.Replacement.Strategies,
			CaptureDepth:  cfg.Replacement.CaptureDepth,
			OrderRate:     cfg.Replacement.OrderRate,
			OrderBurst:    cfg.Replacement.OrderBurst,
		},
		cmdMetrics,
		nil, // nil = use RealClock
		logger,
	)

	// 6. Initialize daemon mediator for session history queries
	med := common.NewMediator()

	// 6a. Register middleware (must be done before registering handlers)
	med.RegisterMiddleware(metrics.PrometheusMiddleware(cmdMetrics))

	// 6b. Register history handlers
	listSessionsHandler := sessions.NewListSessionsHandler(sessionRepo)
	if err := common.RegisterHandler[*sessions.ListSessionsQuery](med, listSessionsHandler); err != nil {
		return fmt.Errorf("failed to register ListSessions handler: %w", err)
	}

	listJournalHandler := sessions.NewListJournalHandler(journalRepo)
	if err := common.RegisterHandler[*sessions.ListJournalQuery](med, listJournalHandler); err != nil {
		return fmt.Errorf("failed to register ListJournal handler: %w", err)
	}

	// 7. Start session gauges and the metrics endpoint
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sessionGauges *metrics.SessionMetricsCollector
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		sessionGauges = metrics.NewSessionMetricsCollector(runner.ActiveStats)
		if err := sessionGauges.Register(); err != nil {
			return fmt.Errorf("failed to register session metrics: %w", err)
		}
		metrics.SetGlobalCollector(sessionGauges)
		sessionGauges.Start(ctx)

		metricsServer = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path, logger)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		fmt.Printf("Metrics endpoint: http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 8. Start the engine bridge
	fmt.Printf("Starting engine bridge on: %s\n", cfg.Daemon.EngineSocket)
	engineServer := enginebridge.NewServer(cfg.Daemon.EngineSocket, runner, logger)
	if err := engineServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine bridge: %w", err)
	}

	// 9. Start the control server
	fmt.Printf("Starting control server on: %s\n", cfg.Daemon.ControlSocket)
	controlServer := daemonctl.NewServer(cfg.Daemon.ControlSocket, med, runner, version, logger)
	if err := controlServer.Start(ctx); err != nil {
		engineServer.Stop()
		return fmt.Errorf("failed to start control server: %w", err)
	}

	// 10. Start the reconcile sweeper
	var sweep *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		sweep = sweeper.New(cfg.Sweeper.Schedule, runner, logger)
		if err := sweep.Start(); err != nil {
			return fmt.Errorf("failed to start sweeper: %w", err)
		}
	}

	fmt.Println("\n✓ Daemon is ready to accept connections")
	fmt.Println("Press Ctrl+C to stop")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutdown signal received, stopping daemon...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer shutdownCancel()

	if sweep != nil {
		sweep.Stop()
	}
	controlServer.Stop()
	engineServer.Stop()
	if sessionGauges != nil {
		sessionGauges.Stop()
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	fmt.Println("\nDaemon stopped")
	return nil
}
