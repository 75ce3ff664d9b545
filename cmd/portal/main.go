package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/config"
	"github.com/eliteadvisers/portal/internal/database"
	"github.com/eliteadvisers/portal/internal/logger"
	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name, args := os.Args[1], os.Args[2:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// Results go to stdout; logs and notices go to stderr.
	log := logger.Setup("portal", cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Open Session Storage ──────────────────────────────────────────
	storage, closeStorage, err := database.OpenSessionStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session storage")
	}

	app := newApp(cfg, storage, log)
	err = cmd.run(ctx, app, args)
	app.console.Close()
	_ = closeStorage()

	if err != nil {
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(os.Stderr, "%s\n\nUsage: portal %s %s\n", uerr, name, cmd.usage)
			os.Exit(2)
		}
		// Notices already told the user what went wrong.
		log.Debug().Err(err).Str("command", name).Msg("Command failed")
		os.Exit(1)
	}
}

// app is the client core wired for one terminal invocation.
type app struct {
	api       *apiclient.Client
	repo      session.Repository
	gate      *session.Gate
	auth      *portal.Auth
	dashboard *portal.Dashboard
	console   *portal.AdminConsole
	library   *portal.Library
	log       zerolog.Logger
}

func newApp(cfg *config.Config, storage session.Storage, log zerolog.Logger) *app {
	api := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout, log)
	repo := session.NewRepository(storage)
	printer := ui.NewPrinter(os.Stderr, log)
	gate := session.NewGate(repo, printer, printer, log)

	return &app{
		api:       api,
		repo:      repo,
		gate:      gate,
		auth:      portal.NewAuth(api, repo, printer, printer, log),
		dashboard: portal.NewDashboard(api, gate, printer, api.ResolveURL, log),
		console:   portal.NewAdminConsole(api, gate, printer, cfg.ClockInterval, log),
		library:   portal.NewLibrary(api, printer, log),
		log:       log,
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: portal <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")

	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", n, commands[n].summary)
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
