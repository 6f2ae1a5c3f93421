// DevMatch - developer matchmaking and collaboration server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/veeraj-singh/devmatch/internal/api"
	"github.com/veeraj-singh/devmatch/internal/auth"
	"github.com/veeraj-singh/devmatch/internal/chat"
	"github.com/veeraj-singh/devmatch/internal/config"
	"github.com/veeraj-singh/devmatch/internal/middleware"
	"github.com/veeraj-singh/devmatch/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Chat core: room registry, session lifecycle, message dispatch.
	registry := chat.NewRegistry()
	manager := chat.NewManager(registry, cfg.Chat.SendQueueSize)
	dispatcher := chat.NewDispatcher(repo, registry)
	chatHandler := chat.NewHandler(manager, dispatcher,
		cfg.JWTSecret, cfg.FrontendURL, cfg.IsDevelopment(), cfg.Chat.PingInterval)

	// HTTP handlers.
	baseHandler := api.NewHandler(repo, cfg)
	healthHandler := api.NewHealthHandler(repo)
	authHandler := api.NewAuthHandler(baseHandler)
	userHandler := api.NewUserHandler(baseHandler)
	projectHandler := api.NewProjectHandler(baseHandler)
	matchHandler := api.NewMatchHandler(baseHandler)
	taskHandler := api.NewTaskHandler(baseHandler)
	messageHandler := api.NewMessageHandler(baseHandler)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)
	authHandler.RegisterRoutes(r)

	// WebSocket endpoint authenticates via its ?token= handshake.
	r.Get("/ws/chat", chatHandler.ServeHTTP)

	// Everything else under /api requires a verified token.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWTSecret))
		userHandler.RegisterRoutes(r)
		projectHandler.RegisterRoutes(r)
		matchHandler.RegisterRoutes(r)
		taskHandler.RegisterRoutes(r)
		messageHandler.RegisterRoutes(r)
	})

	// Create server. No WriteTimeout: websocket connections outlive any
	// sane request deadline.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
