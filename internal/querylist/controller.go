package querylist

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/ui"
)

// ProblemAPI is the slice of the API the admin list needs.
type ProblemAPI interface {
	AdminProblems(ctx context.Context, token string) ([]model.Problem, error)
	UpdateProblem(ctx context.Context, token, id string, req model.UpdateProblemRequest) error
}

// Controller loads the admin problem list, holds per-row edits and submits
// rows one at a time. Every successful submit is followed by a full reload,
// which also drops unsaved edits on other rows.
//
// The lock covers local state only; concurrent submits of the same row are
// not prevented and the last reload wins.
type Controller struct {
	api   ProblemAPI
	notes ui.Notifier
	log   zerolog.Logger

	mu     sync.RWMutex
	list   *List
	loaded bool
}

// NewController creates an empty Controller.
func NewController(api ProblemAPI, notes ui.Notifier, log zerolog.Logger) *Controller {
	return &Controller{
		api:   api,
		notes: notes,
		log:   log.With().Str("component", "query_list").Logger(),
		list:  NewList(nil),
	}
}

// Load replaces the list with the server copy.
func (c *Controller) Load(ctx context.Context, token string) error {
	rows, err := c.api.AdminProblems(ctx, token)
	if err != nil {
		c.log.Warn().Err(err).Msg("Load problems failed")
		c.notes.Error(apiclient.Describe(err, "Failed to load problems", "Server unavailable"))
		return fmt.Errorf("load problems: %w", err)
	}

	c.mu.Lock()
	c.list.Replace(rows)
	c.loaded = true
	c.mu.Unlock()

	c.log.Debug().Int("rows", len(rows)).Msg("Problems loaded")
	return nil
}

// Submit sends the full editable field set of one row, then reloads.
// On failure the local edits are kept for a retry.
func (c *Controller) Submit(ctx context.Context, token, key string) error {
	c.mu.RLock()
	row, ok := c.list.Row(key)
	c.mu.RUnlock()
	if !ok {
		return ErrRowNotFound
	}

	key = row.Key()
	req := model.NewUpdateProblemRequest(row)
	if err := c.api.UpdateProblem(ctx, token, key, req); err != nil {
		c.log.Warn().Err(err).Str("problem_id", key).Msg("Update problem failed")
		c.notes.Error(apiclient.Describe(err, "Update failed", "Server unavailable"))
		return fmt.Errorf("update problem %s: %w", key, err)
	}

	c.log.Info().Str("problem_id", key).Str("status", string(req.Status)).Msg("Problem updated")
	c.notes.Success("Query updated")
	return c.Load(ctx, token)
}

// Reset drops every row and edit, as if nothing was ever loaded.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.list.Replace(nil)
	c.loaded = false
	c.mu.Unlock()
}

// Loaded reports whether at least one load succeeded.
func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Rows returns all rows.
func (c *Controller) Rows() []model.Problem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Rows()
}

// Active returns the editable partition.
func (c *Controller) Active() []model.Problem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Active()
}

// Closed returns the closed partition.
func (c *Controller) Closed() []model.Problem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Closed()
}

// Row looks up one row.
func (c *Controller) Row(key string) (model.Problem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Row(key)
}

// Edit applies a set of field changes to one row under the lock. Nil fields
// are left as they are.
func (c *Controller) Edit(key string, e RowEdit) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.list.Row(key); !ok {
		return ErrRowNotFound
	}
	if e.AdminMessage != nil {
		c.list.SetMessage(key, *e.AdminMessage)
	}
	if e.Status != nil {
		c.list.SetStatus(key, model.ProblemStatus(*e.Status))
	}
	if e.AssignTo != nil {
		c.list.SetAssignee(key, *e.AssignTo)
	}
	if e.MeetupDate != nil {
		c.list.SetMeetupDate(key, *e.MeetupDate)
	}
	return nil
}

// RowEdit is a partial edit of one row's advisor-editable fields.
type RowEdit struct {
	AdminMessage *string `json:"adminMessage"`
	Status       *string `json:"status"`
	AssignTo     *string `json:"assignTo"`
	MeetupDate   *string `json:"meetupDate"`
}
