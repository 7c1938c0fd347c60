// Command api is the TaskFlow backend server.
//
// Usage:
//
//	taskflow-api
//	API_PORT=8080 taskflow-api

// @title TaskFlow Backend API
// @version 1.0.0
// @description Push-notification and scheduling backend: FCM delivery, user preferences, activity analytics, and recurring scheduled tasks.
// @host localhost:5000
// @BasePath /
// @schemes http https
// @contact.name TaskFlow
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskflowhq/taskflow-api/internal/analytics"
	"github.com/taskflowhq/taskflow-api/internal/api"
	"github.com/taskflowhq/taskflow-api/internal/api/handler"
	"github.com/taskflowhq/taskflow-api/internal/auth"
	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/fcm"
	"github.com/taskflowhq/taskflow-api/internal/notifications"
	"github.com/taskflowhq/taskflow-api/internal/preferences"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
	"github.com/taskflowhq/taskflow-api/internal/tasks"

	_ "github.com/taskflowhq/taskflow-api/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Firebase: one app, initialized at most once; missing credentials
	// degrade delivery and login instead of killing the API surface.
	fbApp := fcm.New(fcm.Credentials{
		File:        cfg.FirebaseCredentialsFile,
		ProjectID:   cfg.FirebaseProjectID,
		PrivateKey:  cfg.FirebasePrivateKey,
		ClientEmail: cfg.FirebaseClientEmail,
		ClientID:    cfg.FirebaseClientID,
	}, logger)

	var gateway notifications.Gateway
	if client, err := fbApp.Messaging(ctx); err != nil {
		logger.Warn("FCM messaging unavailable, sends will fail", "error", err)
	} else {
		gateway = client
	}
	dispatcher := notifications.New(gateway, cfg.SendTimeout, logger)

	var verifier auth.Verifier
	if client, err := fbApp.Auth(ctx); err != nil {
		logger.Warn("Firebase auth unavailable, logins will fail", "error", err)
		verifier = auth.NewFirebaseVerifier(nil)
	} else {
		verifier = auth.NewFirebaseVerifier(client)
	}

	sessions := auth.NewSessions(cfg.JWTSecret, cfg.JWTExpiry)

	// In-memory stores (placeholders for a future database)
	activity := analytics.NewLog(logger)
	prefs := preferences.NewStore(logger)

	// Job registry + task store
	registry := scheduler.NewRegistry(logger)
	registry.Start()
	defer registry.Stop()
	taskStore := tasks.NewStore(registry, dispatcher, logger)

	// Built-in overdue-task reminder
	if cfg.ReminderInterval > 0 {
		minutes := int(cfg.ReminderInterval / time.Minute)
		if _, err := registry.Add(scheduler.Interval(minutes), func() {
			reminderCtx, cancel := context.WithTimeout(context.Background(), cfg.SendTimeout)
			defer cancel()
			if _, err := dispatcher.SendToTopic(reminderCtx, "task-reminders",
				"Task Reminder", "You have tasks that need attention", nil); err != nil {
				logger.Error("Scheduled reminder failed", "error", err)
			}
		}); err != nil {
			logger.Error("Failed to schedule task reminder", "error", err)
		} else {
			logger.Info("Task reminder scheduled", "interval", cfg.ReminderInterval)
		}
	}

	// Create router
	h := handler.New(cfg, dispatcher, activity, prefs, taskStore, sessions, verifier, logger)
	router := api.NewRouter(h, sessions, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting TaskFlow backend",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
