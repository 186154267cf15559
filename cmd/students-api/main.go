// main is the entry point of the student records API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (.env, then YAML, then environment overrides)
//  2. Initialise the logger
//  3. Open the database and apply migrations
//  4. Build the record service and the router
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close the store
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/routes"
	"github.com/aanand-mishra/student-records/internal/service"
	"github.com/aanand-mishra/student-records/internal/storage/sqlstore"
)

func main() {
	os.Exit(run())
}

// run holds the program so deferred cleanup happens before the exit code
// is returned to main.
func run() int {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-records",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// sqlstore.New runs the embedded migrations before returning, so the
	// students table is guaranteed to exist from here on.
	store, err := sqlstore.New(cfg.Storage, log)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		return 1
	}
	defer store.Close()

	log.Info("storage initialised",
		slog.String("driver", cfg.Storage.Driver))

	// ── 4. Service + Router ───────────────────────────────────────────────
	// Route table:
	//   GET    /records        → list/search students
	//   GET    /records/{id}   → get one student
	//   POST   /records        → create a student   (bearer token)
	//   PATCH  /records/{id}   → update a student   (bearer token)
	//   GET    /healthz        → database ping
	svc := service.NewStudents(store, log)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      routes.New(svc, cfg, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	// A listen failure is sent back to run instead of exiting from the
	// goroutine, so the deferred store.Close still runs.
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info("shutdown signal received, stopping server...")
	case err := <-serverErr:
		log.Error("server encountered an error", slog.String("error", err.Error()))
		return 1
	}

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		return 1
	}

	log.Info("server stopped gracefully")
	return 0
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
//	dev (default) → text, DEBUG
//	staging       → JSON, DEBUG
//	prod          → JSON, INFO
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
