package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/ui"
)

// ErrNoSession is returned when a protected view is entered without a token.
// It is not shown to the user: the gate has already navigated to login.
var ErrNoSession = errors.New("no session")

// Gate guards protected views and performs logout.
type Gate struct {
	repo  Repository
	nav   ui.Navigator
	notes ui.Notifier
	log   zerolog.Logger

	mu       sync.Mutex
	onLogout map[Kind][]func()
}

// NewGate creates a Gate. nav is used unless a request-scoped navigator is
// attached to the context.
func NewGate(repo Repository, nav ui.Navigator, notes ui.Notifier, log zerolog.Logger) *Gate {
	return &Gate{
		repo:  repo,
		nav:   nav,
		notes: notes,
		log:   log.With().Str("component", "session_gate").Logger(),
	}
}

// OnLogout registers fn to run when kind logs out, before the user is sent
// to the login view. Views use it to drop the state of the old principal.
func (g *Gate) OnLogout(kind Kind, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.onLogout == nil {
		g.onLogout = make(map[Kind][]func())
	}
	g.onLogout[kind] = append(g.onLogout[kind], fn)
}

func (g *Gate) runLogoutHooks(kind Kind) {
	g.mu.Lock()
	hooks := append([]func(){}, g.onLogout[kind]...)
	g.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Repository exposes the underlying store.
func (g *Gate) Repository() Repository {
	return g.repo
}

// RequireSession returns the stored token for kind. When none is stored it
// navigates to the kind's login view and returns ErrNoSession; the caller
// must then load nothing.
func (g *Gate) RequireSession(ctx context.Context, kind Kind) (string, error) {
	token, err := g.repo.Get(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("read %s session: %w", kind, err)
	}
	if token == "" {
		g.log.Debug().Str("kind", string(kind)).Msg("No session, redirecting to login")
		ui.NavigatorFrom(ctx, g.nav).Navigate(kind.LoginPath())
		return "", ErrNoSession
	}
	return token, nil
}

// Token reads the token without navigating. Used by actions inside an
// already-entered view.
func (g *Gate) Token(ctx context.Context, kind Kind) (string, error) {
	token, err := g.repo.Get(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("read %s session: %w", kind, err)
	}
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// Logout clears the local session and returns to the login view. No call is
// made to the API.
func (g *Gate) Logout(ctx context.Context, kind Kind) error {
	if err := g.repo.Clear(ctx, kind); err != nil {
		return fmt.Errorf("clear %s session: %w", kind, err)
	}

	msg := "Logged out"
	if kind == KindUser {
		if err := g.repo.ClearDisplayName(ctx); err != nil {
			return fmt.Errorf("clear display name: %w", err)
		}
		msg = "Logged out successfully"
	}

	g.runLogoutHooks(kind)

	g.log.Info().Str("kind", string(kind)).Msg("Logged out")
	g.notes.Success(msg)
	ui.NavigatorFrom(ctx, g.nav).Navigate(kind.LoginPath())
	return nil
}

// Navigate moves to path with the request-scoped navigator when present.
func (g *Gate) Navigate(ctx context.Context, path string) {
	ui.NavigatorFrom(ctx, g.nav).Navigate(path)
}
