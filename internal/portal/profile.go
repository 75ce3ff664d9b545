package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/session"
)

// ErrProfileNotLoaded is returned when editing before a profile was loaded.
var ErrProfileNotLoaded = errors.New("profile not loaded")

// ProfileEdit carries changed profile fields. Nil fields are left as they are.
type ProfileEdit struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Picture  *string `json:"picture"`
}

// LoadProfile opens the profile editor: the form is seeded from the server
// with a blank password.
func (d *Dashboard) LoadProfile(ctx context.Context) error {
	token, err := d.gate.RequireSession(ctx, session.KindUser)
	if err != nil {
		return err
	}

	p, err := d.api.Me(ctx, token)
	if err != nil {
		d.log.Warn().Err(err).Msg("Load profile failed")
		d.notes.Error(apiclient.Describe(err, "Unable to load profile", connectionFailed))
		return fmt.Errorf("load profile: %w", err)
	}

	form := model.NewProfileForm(*p)
	d.mu.Lock()
	d.profile = &form
	d.mu.Unlock()
	return nil
}

// ProfileForm returns the form being edited.
func (d *Dashboard) ProfileForm() (model.ProfileForm, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.profile == nil {
		return model.ProfileForm{}, false
	}
	return *d.profile, true
}

// EditProfile changes the local form only.
func (d *Dashboard) EditProfile(e ProfileEdit) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.profile == nil {
		return ErrProfileNotLoaded
	}
	if e.Name != nil {
		d.profile.Name = *e.Name
	}
	if e.Email != nil {
		d.profile.Email = *e.Email
	}
	if e.Phone != nil {
		d.profile.Phone = *e.Phone
	}
	if e.Password != nil {
		d.profile.Password = *e.Password
	}
	if e.Picture != nil {
		d.profile.Picture = *e.Picture
	}
	return nil
}

// SaveProfile pushes the whole form. On success the display name is cached,
// the dashboard is reloaded and the user is sent home; on failure the form
// keeps its edits.
func (d *Dashboard) SaveProfile(ctx context.Context) error {
	token, err := d.gate.Token(ctx, session.KindUser)
	if errors.Is(err, session.ErrNoSession) {
		d.notes.Error("Please login again")
		return err
	}
	if err != nil {
		return err
	}

	form, ok := d.ProfileForm()
	if !ok {
		return ErrProfileNotLoaded
	}

	if err := d.api.UpdateProfile(ctx, token, form); err != nil {
		d.log.Warn().Err(err).Msg("Update profile failed")
		d.notes.Error(apiclient.Describe(err, "Unable to update profile", "Update failed. Please try again."))
		return fmt.Errorf("update profile: %w", err)
	}

	if err := d.gate.Repository().SetDisplayName(ctx, form.Name); err != nil {
		return fmt.Errorf("store display name: %w", err)
	}

	d.log.Info().Msg("Profile updated")
	d.notes.Success("Profile updated")

	// A failed reload has already been reported; the save itself stands.
	_ = d.load(ctx, token)
	d.gate.Navigate(ctx, session.KindUser.HomePath())
	return nil
}
