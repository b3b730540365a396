/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vacation request server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags + environment)
  2. Initialize SQLite store
  3. Optionally load demo data (-seed)
  4. Create services, notifier and API handler
  5. Start balance provisioner
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port                HTTP server port (default: 8080, env VACATION_PORT)
  -db                  SQLite database path (default: vacations.db, env VACATION_DB)
                       Use ":memory:" for in-memory database
  -seed                Load demo data on startup
  -cors-origins        Allowed origins (env CORS_ORIGINS)
  -provision-interval  Balance provisioning interval (default: 1h, 0 disables)

ENVIRONMENT:
  JWT_SECRET_KEY     Token signing secret (required unless dev mode)
  VACATION_DEV_MODE  true: generated secret, wildcard CORS, demo endpoints
  SENDER_EMAIL       From address of status notifications

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the provisioner and flush queued notifications
  4. Close database connection
*/
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/vacationflow/api"
	"github.com/warp/vacationflow/auth"
	"github.com/warp/vacationflow/config"
	"github.com/warp/vacationflow/notify"
	"github.com/warp/vacationflow/seed"
	"github.com/warp/vacationflow/store/sqlite"
	"github.com/warp/vacationflow/vacation"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if cfg.Seed {
		if _, err := seed.Load(context.Background(), store, time.Now()); err != nil {
			log.Fatalf("Failed to load demo data: %v", err)
		}
	}

	// Notifications are delivered off the request path
	notifier := notify.NewAsync(notify.NewLogNotifier(cfg.SenderEmail), 64)
	defer notifier.Close()

	requests := vacation.NewRequestService(store, notifier)
	authSvc := auth.NewService(store, auth.NewJWTIssuer(cfg.JWTSecret))
	authSvc.AllowRoleSelection = cfg.DevMode

	handler := api.NewHandler(store, requests, authSvc)
	handler.DevMode = cfg.DevMode
	router := api.NewRouter(handler, api.CORSOptions{
		Origins:  cfg.CORSOrigins,
		AllowAny: cfg.AllowAnyOrigin,
	})

	provisioner := api.NewBalanceProvisioner(store)
	provisioner.CheckInterval = cfg.ProvisionInterval
	provisioner.Start()
	defer provisioner.Stop()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost%s", cfg.Addr())
		if cfg.DevMode {
			log.Printf("Dev mode: demo endpoints enabled, CORS origins %v", cfg.CORSOrigins)
		}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
