package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/config"
	"github.com/eliteadvisers/portal/internal/database"
	"github.com/eliteadvisers/portal/internal/handler"
	"github.com/eliteadvisers/portal/internal/logger"
	"github.com/eliteadvisers/portal/internal/middleware"
	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/router"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

// noticeBacklog bounds the notices kept between two responses.
const noticeBacklog = 20

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup("portal-server", cfg.LogLevel, cfg.LogFormat, os.Stderr)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("api", cfg.APIBaseURL).
		Str("session_store", cfg.SessionStore).
		Msg("Starting Elite Advisers companion")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Session Storage ──────────────────────────────────────────
	storage, closeStorage, err := database.OpenSessionStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session storage")
	}
	defer closeStorage()

	// ─── Initialize Core ───────────────────────────────────────────────
	api := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, log)
	repo := session.NewRepository(storage)
	notices := ui.NewRecorder(noticeBacklog)
	gate := session.NewGate(repo, notices, notices, log)

	auth := portal.NewAuth(api, repo, notices, notices, log)
	dashboard := portal.NewDashboard(api, gate, notices, api.ResolveURL, log)
	console := portal.NewAdminConsole(api, gate, notices, cfg.ClockInterval, log)
	library := portal.NewLibrary(api, notices, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(auth, gate, notices),
		Home:    handler.NewHomeHandler(dashboard, notices),
		Profile: handler.NewProfileHandler(dashboard, notices),
		Admin:   handler.NewAdminHandler(console, notices),
		Library: handler.NewLibraryHandler(library, notices),
		WS:      handler.NewWSHandler(gate, cfg.ClockInterval, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(notices, cfg.APIBaseURL),
	}

	var authLimiter *middleware.RateLimiter
	if cfg.AuthRateLimit > 0 {
		authLimiter = middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
		defer authLimiter.Close()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, authLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the admin clock.
	console.Close()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
