package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/querylist"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
)

// ErrNotificationNotFound is returned when dismissing an index that is not shown.
var ErrNotificationNotFound = errors.New("notification not found")

// DashboardAPI is the slice of the API the client views need.
type DashboardAPI interface {
	Dashboard(ctx context.Context, token string) (*model.Dashboard, error)
	ListAdmins(ctx context.Context) ([]model.Admin, error)
	RateQuery(ctx context.Context, token, id string, rating int) error
	ReopenQuery(ctx context.Context, token, id string) error
	Me(ctx context.Context, token string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, token string, form model.ProfileForm) error
}

// Dashboard reconciles the client's view with the server aggregate. Every
// successful load replaces the aggregate wholesale and re-derives the
// notifications, so local dismissals do not survive a reload.
type Dashboard struct {
	api     DashboardAPI
	gate    *session.Gate
	notes   ui.Notifier
	resolve func(string) string
	log     zerolog.Logger

	mu            sync.RWMutex
	data          *model.Dashboard
	advisors      []model.Admin
	notifications []model.Notification
	profile       *model.ProfileForm
}

// NewDashboard creates a client dashboard. resolve turns attachment paths
// into absolute links and may be nil.
// The dashboard is reset whenever the client session logs out.
func NewDashboard(api DashboardAPI, gate *session.Gate, notes ui.Notifier, resolve func(string) string, log zerolog.Logger) *Dashboard {
	d := &Dashboard{
		api:     api,
		gate:    gate,
		notes:   notes,
		resolve: resolve,
		log:     log.With().Str("component", "dashboard").Logger(),
	}
	gate.OnLogout(session.KindUser, d.Reset)
	return d
}

// Reset forgets the aggregate, the notifications and the profile form.
// The advisor directory is public and is kept.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	d.data = nil
	d.notifications = nil
	d.profile = nil
	d.mu.Unlock()
}

// Enter is run when the dashboard is opened. Without a session it only
// navigates to login. Otherwise the view starts empty and the aggregate and
// the advisor list are fetched concurrently; neither waits on the other.
// Notifications are derived once both fetches are done.
func (d *Dashboard) Enter(ctx context.Context) error {
	token, err := d.gate.RequireSession(ctx, session.KindUser)
	if err != nil {
		return err
	}
	d.Reset()

	var data *model.Dashboard
	var g errgroup.Group
	g.Go(func() error {
		var err error
		data, err = d.fetch(ctx, token)
		return err
	})
	g.Go(func() error {
		d.LoadReferenceList(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	d.apply(data)
	return nil
}

// Load refetches the aggregate.
func (d *Dashboard) Load(ctx context.Context) error {
	token, err := d.gate.Token(ctx, session.KindUser)
	if err != nil {
		return err
	}
	return d.load(ctx, token)
}

func (d *Dashboard) load(ctx context.Context, token string) error {
	data, err := d.fetch(ctx, token)
	if err != nil {
		return err
	}
	d.apply(data)
	return nil
}

func (d *Dashboard) fetch(ctx context.Context, token string) (*model.Dashboard, error) {
	data, err := d.api.Dashboard(ctx, token)
	if err != nil {
		d.log.Warn().Err(err).Msg("Load dashboard failed")
		d.notes.Error(apiclient.Describe(err, "Unable to load dashboard", connectionFailed))
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return data, nil
}

// apply replaces the aggregate and re-derives notifications against the
// advisor directory held at that moment.
func (d *Dashboard) apply(data *model.Dashboard) {
	d.mu.Lock()
	d.data = data
	d.notifications = DeriveNotifications(data.Problems, d.advisors)
	d.mu.Unlock()

	d.log.Debug().Int("problems", len(data.Problems)).Msg("Dashboard loaded")
}

// LoadReferenceList fetches the advisor directory used to name advisors.
// Failures are logged and otherwise ignored.
func (d *Dashboard) LoadReferenceList(ctx context.Context) {
	admins, err := d.api.ListAdmins(ctx)
	if err != nil {
		d.log.Debug().Err(err).Msg("Load advisor list failed")
		return
	}
	d.mu.Lock()
	d.advisors = admins
	d.mu.Unlock()
}

// Aggregate returns the last loaded aggregate, or nil.
func (d *Dashboard) Aggregate() *model.Dashboard {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data
}

// Advisors returns the advisor directory.
func (d *Dashboard) Advisors() []model.Admin {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Admin(nil), d.advisors...)
}

// Notifications returns the notifications still shown.
func (d *Dashboard) Notifications() []model.Notification {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Notification{}, d.notifications...)
}

// View renders the current state.
func (d *Dashboard) View() HomeView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return BuildHomeView(d.data, d.advisors, append([]model.Notification{}, d.notifications...), d.resolve)
}

// Dismiss hides the notification at index i. Nothing is sent to the server.
func (d *Dashboard) Dismiss(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.notifications) {
		return ErrNotificationNotFound
	}
	d.notifications = append(d.notifications[:i:i], d.notifications[i+1:]...)
	return nil
}

// row finds a problem in the loaded aggregate.
func (d *Dashboard) row(id string) (model.Problem, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.data == nil {
		return model.Problem{}, false
	}
	return querylist.Find(d.data.Problems, id)
}

// problemID is the id used in client query routes.
func problemID(p model.Problem) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Key()
}

// Rate submits a 1..5 rating for a closed query, then reloads.
func (d *Dashboard) Rate(ctx context.Context, id string, rating int) error {
	token, err := d.gate.Token(ctx, session.KindUser)
	if err != nil {
		return err
	}
	p, ok := d.row(id)
	if !ok {
		return querylist.ErrRowNotFound
	}
	if err := querylist.CheckRate(p, rating); err != nil {
		return err
	}

	if err := d.api.RateQuery(ctx, token, problemID(p), rating); err != nil {
		d.log.Warn().Err(err).Str("problem_id", problemID(p)).Msg("Rate query failed")
		d.notes.Error(apiclient.Describe(err, "Unable to submit rating", connectionFailed))
		return fmt.Errorf("rate query: %w", err)
	}

	d.log.Info().Str("problem_id", problemID(p)).Int("rating", rating).Msg("Query rated")
	d.notes.Success("Thank you for your feedback!")
	return d.load(ctx, token)
}

// Reopen asks the server to reopen a closed query, then reloads. The
// resulting status is chosen by the server.
func (d *Dashboard) Reopen(ctx context.Context, id string) error {
	token, err := d.gate.Token(ctx, session.KindUser)
	if err != nil {
		return err
	}
	p, ok := d.row(id)
	if !ok {
		return querylist.ErrRowNotFound
	}
	if err := querylist.CheckReopen(p); err != nil {
		return err
	}

	if err := d.api.ReopenQuery(ctx, token, problemID(p)); err != nil {
		d.log.Warn().Err(err).Str("problem_id", problemID(p)).Msg("Reopen query failed")
		d.notes.Error(apiclient.Describe(err, "Unable to reopen case", connectionFailed))
		return fmt.Errorf("reopen query: %w", err)
	}

	d.log.Info().Str("problem_id", problemID(p)).Msg("Query reopened")
	d.notes.Success("Case reopened")
	return d.load(ctx, token)
}
