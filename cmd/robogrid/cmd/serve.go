package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/robogrid/internal/board"
	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/journal"
	"github.com/msto63/robogrid/internal/server"
	"github.com/msto63/robogrid/pkg/core/logging"
	"github.com/msto63/robogrid/pkg/core/version"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet die HTTP-API mit Live-Feed",
	Long: `Startet einen gemeinsamen Interpreter hinter einer HTTP-API.

Endpunkte:
  GET  /health                  Gesundheitsstatus
  GET  /api/v1/state            Zustand und Raster
  POST /api/v1/run              Programm starten ({"program": "..."})
  POST /api/v1/stop|resume|restart|reset|rerun
  GET  /api/v1/history          Journal
  GET  /api/v1/ws               WebSocket Live-Feed

Zusätzlich läuft der gRPC Health-Service auf server.grpc_port.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host (default: aus Config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP-Port (default: aus Config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := newGrid(cfg)
	if err != nil {
		return err
	}
	base := newLogger(cfg, os.Stderr)
	logger := logging.Wrap(base, "server")

	store, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if store != nil {
		defer store.Close()
		pruneJournal(store, cfg.Journal.RetentionDays, logger)
	}

	b := board.New(g)
	hub := server.NewHub(logger)
	reporters := engine.Reporters{hub}
	if store != nil {
		reporters = append(engine.Reporters{journal.NewReporter(store, base)}, reporters...)
	}

	eng := engine.New(engine.Options{
		Grid:      g,
		StepDelay: cfg.Engine.StepDelay.Duration,
		Renderer:  engine.Renderers{b, hub},
		Reporter:  reporters,
		Logger:    base,
	})
	defer eng.Stop()

	srv, err := server.New(server.Config{
		Host:            cfg.Server.Host,
		HTTPPort:        cfg.Server.Port,
		GRPCPort:        cfg.Server.GRPCPort,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    cfg.Server.WriteTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
		Version:         version.Server,
	}, server.HandlerOptions{
		Engine:  eng,
		Board:   b,
		Journal: store,
		Hub:     hub,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("RoboGrid v%s\n", version.Server)
	fmt.Printf("  HTTP: http://%s\n", cfg.HTTPAddress())
	fmt.Printf("  gRPC: %s\n", cfg.GRPCAddress())
	fmt.Println("Beenden mit Ctrl+C")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// pruneJournal drops entries older than the retention period
func pruneJournal(store journal.Store, days int, logger *logging.Logger) {
	if days <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := store.Prune(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		logger.Warn("journal prune failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("journal pruned", "removed", n, "retention_days", days)
	}
}
