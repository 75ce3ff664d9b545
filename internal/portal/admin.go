package portal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/clock"
	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/querylist"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
)

// AdminAPI is the slice of the API the admin console needs.
type AdminAPI interface {
	querylist.ProblemAPI
	ListAdmins(ctx context.Context) ([]model.Admin, error)
	UpdateAdminProfile(ctx context.Context, token string, profile model.Admin) error
	PublishArticle(ctx context.Context, token string, draft model.ArticleDraft) error
}

// AdminProfileEdit carries changed admin profile fields.
type AdminProfileEdit struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
	Bio   *string `json:"bio"`
}

// AdminConsole is the advisor dashboard: a live clock, the advisor's own
// profile, the query list and the article publisher.
type AdminConsole struct {
	api      AdminAPI
	gate     *session.Gate
	notes    ui.Notifier
	queries  *querylist.Controller
	display  *clock.Display
	interval time.Duration
	log      zerolog.Logger

	mu       sync.RWMutex
	advisors []model.Admin
	profile  model.Admin
	draft    model.ArticleDraft
	stop     func()
}

// NewAdminConsole creates the console. interval is the clock period.
func NewAdminConsole(api AdminAPI, gate *session.Gate, notes ui.Notifier, interval time.Duration, log zerolog.Logger) *AdminConsole {
	if interval <= 0 {
		interval = time.Second
	}
	a := &AdminConsole{
		api:      api,
		gate:     gate,
		notes:    notes,
		queries:  querylist.NewController(api, notes, log),
		display:  clock.NewDisplay(time.Now()),
		interval: interval,
		log:      log.With().Str("component", "admin_console").Logger(),
	}
	gate.OnLogout(session.KindAdmin, func() {
		a.Close()
		a.Reset()
	})
	return a
}

// Reset forgets the advisor list, the profile form, the draft and every
// query row.
func (a *AdminConsole) Reset() {
	a.mu.Lock()
	a.advisors = nil
	a.profile = model.Admin{}
	a.draft = model.ArticleDraft{}
	a.mu.Unlock()
	a.queries.Reset()
}

// Enter is run when the console is opened. Without an admin session it only
// navigates to the admin login. Otherwise the console starts empty, the
// clock is started and the advisor list and the problems are fetched
// concurrently.
func (a *AdminConsole) Enter(ctx context.Context) error {
	token, err := a.gate.RequireSession(ctx, session.KindAdmin)
	if err != nil {
		return err
	}
	a.Reset()

	a.startClock()

	var g errgroup.Group
	g.Go(func() error {
		a.LoadAdmins(ctx)
		return nil
	})
	g.Go(func() error {
		return a.queries.Load(ctx, token)
	})
	return g.Wait()
}

func (a *AdminConsole) startClock() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return
	}
	a.display.Set(time.Now())
	a.stop = clock.Start(context.Background(), a.interval, a.display.Set)
}

// Close stops the clock. The console can be entered again. An admin logout
// closes and resets the console.
func (a *AdminConsole) Close() {
	a.mu.Lock()
	stop := a.stop
	a.stop = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Clock returns the displayed time.
func (a *AdminConsole) Clock() *clock.Display {
	return a.display
}

// Queries exposes the problem list.
func (a *AdminConsole) Queries() *querylist.Controller {
	return a.queries
}

// LoadAdmins refreshes the advisor list and picks the signed-in advisor:
// the one whose email matches the profile, else the first. The pick is
// merged into the profile only while the profile has no name yet. Failures
// are logged and otherwise ignored.
func (a *AdminConsole) LoadAdmins(ctx context.Context) {
	admins, err := a.api.ListAdmins(ctx)
	if err != nil {
		a.log.Debug().Err(err).Msg("Load advisor list failed")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.advisors = admins
	if len(admins) == 0 || a.profile.Name != "" {
		return
	}
	me := admins[0]
	for _, adm := range admins {
		if a.profile.Email != "" && adm.Email == a.profile.Email {
			me = adm
			break
		}
	}
	a.profile = me
}

// Advisors returns the advisor list.
func (a *AdminConsole) Advisors() []model.Admin {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Admin(nil), a.advisors...)
}

// Profile returns the advisor's profile form.
func (a *AdminConsole) Profile() model.Admin {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profile
}

// EditProfile changes the local profile form only.
func (a *AdminConsole) EditProfile(e AdminProfileEdit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e.Name != nil {
		a.profile.Name = *e.Name
	}
	if e.Photo != nil {
		a.profile.Photo = *e.Photo
	}
	if e.Bio != nil {
		a.profile.Bio = *e.Bio
	}
}

// SaveProfile pushes the profile form. Nothing is reloaded afterwards.
func (a *AdminConsole) SaveProfile(ctx context.Context) error {
	token, err := a.gate.Token(ctx, session.KindAdmin)
	if err != nil {
		return err
	}

	profile := a.Profile()
	if err := a.api.UpdateAdminProfile(ctx, token, profile); err != nil {
		a.log.Warn().Err(err).Str("email", profile.Email).Msg("Update admin profile failed")
		a.notes.Error(apiclient.Describe(err, "Update failed", "Server unavailable"))
		return fmt.Errorf("update admin profile: %w", err)
	}

	a.log.Info().Str("email", profile.Email).Msg("Admin profile updated")
	a.notes.Success("Profile updated successfully")
	return nil
}

// SubmitQuery saves one row of the query list.
func (a *AdminConsole) SubmitQuery(ctx context.Context, key string) error {
	token, err := a.gate.Token(ctx, session.KindAdmin)
	if err != nil {
		return err
	}
	return a.queries.Submit(ctx, token, key)
}

// Draft returns the article being composed.
func (a *AdminConsole) Draft() model.ArticleDraft {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.draft
}

// SetDraft replaces the article being composed.
func (a *AdminConsole) SetDraft(d model.ArticleDraft) {
	a.mu.Lock()
	a.draft = d
	a.mu.Unlock()
}

// PublishArticle posts the draft to the library and clears it on success.
func (a *AdminConsole) PublishArticle(ctx context.Context) error {
	draft := a.Draft()
	if err := validator.Struct(draft); err != nil {
		a.notes.Error("Title and summary required")
		return ErrValidation
	}

	token, err := a.gate.Token(ctx, session.KindAdmin)
	if err != nil {
		return err
	}

	if err := a.api.PublishArticle(ctx, token, draft); err != nil {
		a.log.Warn().Err(err).Str("title", draft.Title).Msg("Publish article failed")
		a.notes.Error(apiclient.Describe(err, "Failed to add article", "Server unavailable"))
		return fmt.Errorf("publish article: %w", err)
	}

	a.mu.Lock()
	a.draft = model.ArticleDraft{}
	a.mu.Unlock()

	a.log.Info().Str("title", draft.Title).Msg("Article published")
	a.notes.Success("Article published to library")
	return nil
}

// AdminView is the rendered admin console.
type AdminView struct {
	Clock    string                `json:"clock"`
	Profile  model.Admin           `json:"profile"`
	Advisors []model.Admin         `json:"advisors"`
	Loaded   bool                  `json:"loaded"`
	Active   []model.Problem       `json:"active"`
	Closed   []model.Problem       `json:"closed"`
	Statuses []model.ProblemStatus `json:"statuses"`
	Draft    model.ArticleDraft    `json:"draft"`
}

// View renders the current state.
func (a *AdminConsole) View() AdminView {
	advisors := a.Advisors()
	if advisors == nil {
		advisors = []model.Admin{}
	}
	return AdminView{
		Clock:    a.display.Format(),
		Profile:  a.Profile(),
		Advisors: advisors,
		Loaded:   a.queries.Loaded(),
		Active:   a.queries.Active(),
		Closed:   a.queries.Closed(),
		Statuses: model.ProblemStatuses,
		Draft:    a.Draft(),
	}
}
