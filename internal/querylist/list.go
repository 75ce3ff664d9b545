// Package querylist holds the locally editable copy of a problem list.
package querylist

import (
	"errors"

	"github.com/eliteadvisers/portal/internal/model"
)

var (
	// ErrRowNotFound is returned when no row has the given key.
	ErrRowNotFound = errors.New("query not found")
	// ErrNotClosed guards actions only offered on closed queries.
	ErrNotClosed = errors.New("query is not closed")
	// ErrInvalidRating rejects ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// RatingOptions is the exact set of ratings a user can pick.
var RatingOptions = []int{1, 2, 3, 4, 5}

// ValidRating reports whether r is one of RatingOptions.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}

// CheckRate returns nil when p may be rated with r.
func CheckRate(p model.Problem, r int) error {
	if !p.IsClosed() {
		return ErrNotClosed
	}
	if !ValidRating(r) {
		return ErrInvalidRating
	}
	return nil
}

// CheckReopen returns nil when p may be reopened.
func CheckReopen(p model.Problem) error {
	if !p.IsClosed() {
		return ErrNotClosed
	}
	return nil
}

// Partition splits rows into active (not closed) and closed, keeping the
// server order within each.
func Partition(rows []model.Problem) (active, closed []model.Problem) {
	active = []model.Problem{}
	closed = []model.Problem{}
	for _, p := range rows {
		if p.IsClosed() {
			closed = append(closed, p)
		} else {
			active = append(active, p)
		}
	}
	return active, closed
}

// Find returns the row whose Key or _id equals key.
func Find(rows []model.Problem, key string) (model.Problem, bool) {
	for _, p := range rows {
		if p.Key() == key || p.ID == key {
			return p, true
		}
	}
	return model.Problem{}, false
}

// List is an in-memory problem list with per-row edits. It is not safe for
// concurrent use; Controller adds locking.
type List struct {
	rows []model.Problem
}

// NewList copies rows into a List.
func NewList(rows []model.Problem) *List {
	l := &List{}
	l.Replace(rows)
	return l
}

// Replace swaps in a fresh server copy, discarding every local edit.
func (l *List) Replace(rows []model.Problem) {
	l.rows = append([]model.Problem{}, rows...)
}

// Rows returns a copy of all rows in server order.
func (l *List) Rows() []model.Problem {
	return append([]model.Problem{}, l.rows...)
}

// Active returns rows that are not closed.
func (l *List) Active() []model.Problem {
	active, _ := Partition(l.rows)
	return active
}

// Closed returns closed rows.
func (l *List) Closed() []model.Problem {
	_, closed := Partition(l.rows)
	return closed
}

// Row looks up a row by key.
func (l *List) Row(key string) (model.Problem, bool) {
	return Find(l.rows, key)
}

// edit applies fn to the single row matching key. Other rows are untouched.
func (l *List) edit(key string, fn func(p *model.Problem)) error {
	for i := range l.rows {
		if l.rows[i].Key() == key || l.rows[i].ID == key {
			fn(&l.rows[i])
			return nil
		}
	}
	return ErrRowNotFound
}

// SetMessage edits the advisor message. Empty messages are allowed.
func (l *List) SetMessage(key, msg string) error {
	return l.edit(key, func(p *model.Problem) { p.AdminMessage = msg })
}

// SetStatus edits the status. The value is not checked.
func (l *List) SetStatus(key string, status model.ProblemStatus) error {
	return l.edit(key, func(p *model.Problem) { p.Status = status })
}

// SetAssignee edits the pending assignment; an empty id means unassign.
func (l *List) SetAssignee(key, adminID string) error {
	return l.edit(key, func(p *model.Problem) {
		p.AssignEdited = true
		if adminID == "" {
			p.AssignTo = nil
			return
		}
		id := adminID
		p.AssignTo = &id
	})
}

// SetMeetupDate edits the meetup date (YYYY-MM-DD as entered).
func (l *List) SetMeetupDate(key, date string) error {
	return l.edit(key, func(p *model.Problem) { p.MeetupDate = date })
}
