package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/brokerledger/internal/buildinfo"
	"github.com/xelth-com/brokerledger/internal/config"
	"github.com/xelth-com/brokerledger/internal/database"
	"github.com/xelth-com/brokerledger/internal/handlers"
	"github.com/xelth-com/brokerledger/internal/logger"
	"github.com/xelth-com/brokerledger/internal/services/autotask"
	"github.com/xelth-com/brokerledger/internal/store"
	"github.com/xelth-com/brokerledger/internal/tasks"
	"github.com/xelth-com/brokerledger/internal/unitmaster"
	"github.com/xelth-com/brokerledger/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. Initialize database (embedded, external PostgreSQL or SQLite)
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	// 3. Migrate schema
	st := store.New(db.DB, log)
	if err := st.Migrate(context.Background()); err != nil {
		log.Fatal("Schema migration failed", "error", err)
	}
	log.Info("Schema synchronized")

	// 4. Core services
	layouts := unitmaster.NewRegistry(cfg.Layouts.Sources, cfg.Layouts.CacheTTL)
	reconciler := tasks.NewReconciler(st, tasks.NewEvaluator(layouts, cfg.Location()), log)

	hub := websocket.NewHub(log)
	go hub.Run()
	reconciler.OnReconciled(func(open int) {
		hub.Broadcast(websocket.EventTasksReconciled, map[string]int{"open_auto_tasks": open})
	})

	scheduler := autotask.NewService(reconciler, cfg.AutoReconcile, log)
	scheduler.Start()

	// 5. HTTP router
	router := handlers.NewRouter(handlers.Deps{
		Store:      st,
		Layouts:    layouts,
		Reconciler: reconciler,
		Hub:        hub,
		Log:        log,
		JWTSecret:  cfg.JWTSecret,
	})

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	log.Info("Server starting", "port", cfg.Port, "version", buildinfo.Version, "db", cfg.Database.Driver)
	serveErr := serve(server, shutdown, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()
	hub.Stop()

	// Close database (this also stops embedded PostgreSQL)
	if err := db.Close(); err != nil {
		log.Error("Database close error", "error", err)
	}

	log.Info("Shutdown complete")
	if serveErr != nil {
		log.Sync()
		os.Exit(1)
	}
}
