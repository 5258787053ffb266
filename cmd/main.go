package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"wanderpush/internal/config"
	"wanderpush/internal/db"
	"wanderpush/internal/handlers"
	"wanderpush/internal/migrations"
	"wanderpush/internal/notification"
	"wanderpush/internal/push"
	"wanderpush/internal/queue"
	"wanderpush/internal/routes"
	"wanderpush/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}

	if err := db.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := migrations.Up(db.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := config.InitFirebase(); err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer config.CloseFirebaseConnection()

	if err := queue.InitQueue(); err != nil {
		log.Fatalf("Failed to initialize task queue: %v", err)
	}
	defer queue.Close()

	// Wire the core: store, collaborators, gateway, orchestrator.
	store := notification.NewFirestoreStore(config.FirebaseConnection.Firestore)
	registry := db.NewTokenRegistry(db.DB)
	prefs := db.NewPreferenceStore(db.DB)
	catalog := notification.NewCatalog()
	transport := push.NewFCMTransport(config.FirebaseConnection.Messaging)
	gateway := push.NewGateway(transport, registry, catalog)
	dispatcher := notification.NewDispatcher(store, prefs, catalog, gateway)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Arm the periodic drivers; the worker re-arms each tick.
	if err := queue.ScheduleSweep(queue.SweepInterval); err != nil {
		log.Fatalf("Failed to schedule notification sweep: %v", err)
	}
	if err := queue.ScheduleTokenCleanup(queue.TokenCleanupInterval); err != nil {
		log.Fatalf("Failed to schedule token cleanup: %v", err)
	}

	w := worker.NewWorker(dispatcher, gateway)
	go func() {
		if err := w.Start(ctx); err != nil {
			slog.Error("Worker stopped with error", "error", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request", "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	h := handlers.NewNotificationHandler(dispatcher, gateway, registry)
	routes.SetupRoutes(e.Group("/api"), h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			slog.Error("Server stopped with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down server cleanly", "error", err)
	}
}
