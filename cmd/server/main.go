package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/auth"
	"github.com/gdg-garage/trip-planner-api/internal/config"
	"github.com/gdg-garage/trip-planner-api/internal/database"
	"github.com/gdg-garage/trip-planner-api/internal/handlers"
	"github.com/gdg-garage/trip-planner-api/internal/idgen"
	"github.com/gdg-garage/trip-planner-api/internal/llm"
	"github.com/gdg-garage/trip-planner-api/internal/logger"
	"github.com/gdg-garage/trip-planner-api/internal/notifier"
	"github.com/gdg-garage/trip-planner-api/internal/planner"
	"github.com/gdg-garage/trip-planner-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	zl := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zl.Sync()

	ids, err := idgen.New(cfg.SnowflakeNode)
	if err != nil {
		log.Fatalf("Failed to create id generator: %v", err)
	}

	// Connect to Database
	db, err := database.Connect(cfg, zl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Model client, absent without an API key so every plan uses the fallback
	var model planner.Model
	if cfg.ModelAPIKey != "" {
		model = llm.NewClient(llm.Options{
			APIKey:  cfg.ModelAPIKey,
			BaseURL: cfg.ModelBaseURL,
			Model:   cfg.ModelName,
			Timeout: cfg.ModelTimeout,
		}, zl)
		if cfg.ModelCacheTTL > 0 {
			model = llm.NewCachedClient(model, cfg.ModelCacheTTL)
		}
	} else {
		zl.Warn("MODEL_API_KEY not set, itineraries will use the fallback plan")
	}

	// Notifications
	var tripNotifier notifier.Notifier
	session, err := notifier.NewDiscordSession(cfg.DiscordBotToken)
	if err != nil {
		zl.Warn("Discord notifier not initialized", zap.Error(err))
	} else if session != nil {
		tripNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID, zl)
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, ids, zl)
	tripService := service.NewTripService(db, ids, planner.New(model, zl), tripNotifier, zl)
	expenseService := service.NewExpenseService(db, ids, zl)
	tripHandler := handlers.NewTripHandler(tripService, authHandler, zl)
	expenseHandler := handlers.NewExpenseHandler(expenseService, authHandler, zl)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, tripHandler, expenseHandler, cfg.DiscordOAuthEnabled())

	var handler http.Handler = r
	if cfg.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		})
		handler = c.Handler(r)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start Server
	go func() {
		zl.Info("Starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Server shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
