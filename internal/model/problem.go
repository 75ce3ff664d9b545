package model

import "encoding/json"

// ProblemStatus enumerates the lifecycle states of a client query.
type ProblemStatus string

const (
	ProblemStatusPending    ProblemStatus = "pending"
	ProblemStatusInProgress ProblemStatus = "in-progress"
	ProblemStatusClosed     ProblemStatus = "closed"
)

// ProblemStatuses lists the values offered when editing a row.
var ProblemStatuses = []ProblemStatus{ProblemStatusPending, ProblemStatusInProgress, ProblemStatusClosed}

// Attachment is a file uploaded with a query. URL is relative to the API origin.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Problem is a client query ("problem" on the wire).
type Problem struct {
	ID            string        `json:"_id,omitempty" binding:"required_without=ProblemID"`
	ProblemID     string        `json:"problemId,omitempty"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	UserName      string        `json:"userName,omitempty"`
	UserEmail     string        `json:"userEmail,omitempty"`
	AssignedAdmin *AdminRef     `json:"assignedAdmin,omitempty"`
	AdminMessage  string        `json:"adminMessage,omitempty"`
	MeetupDate    string        `json:"meetupDate,omitempty"`
	Status        ProblemStatus `json:"status,omitempty"`
	Attachments   []Attachment  `json:"attachments,omitempty"`
	Rating        *int          `json:"rating,omitempty"`

	// AssignTo holds a pending reassignment; nil with AssignEdited set means
	// "unassign". It is never populated by the API.
	AssignTo     *string `json:"assignTo,omitempty"`
	AssignEdited bool    `json:"-"`
}

// Key identifies the row: problemId when present, else _id.
func (p Problem) Key() string {
	if p.ProblemID != "" {
		return p.ProblemID
	}
	return p.ID
}

// IsClosed reports whether the problem is in the closed partition.
func (p Problem) IsClosed() bool {
	return p.Status == ProblemStatusClosed
}

// RateRequest submits a satisfaction rating for a closed query.
type RateRequest struct {
	Rating int `json:"rating" binding:"min=1,max=5"`
}

// UpdateProblemRequest is the admin edit pushed for a single row.
type UpdateProblemRequest struct {
	AdminMessage string
	Status       ProblemStatus
	MeetupDate   string
	AssignTo     *string
	AssignToSet  bool
}

// NewUpdateProblemRequest copies the editable fields of a row.
func NewUpdateProblemRequest(p Problem) UpdateProblemRequest {
	return UpdateProblemRequest{
		AdminMessage: p.AdminMessage,
		Status:       p.Status,
		MeetupDate:   p.MeetupDate,
		AssignTo:     p.AssignTo,
		AssignToSet:  p.AssignEdited,
	}
}

// MarshalJSON omits assignTo unless the row's assignment was edited, so an
// untouched row never clears its advisor.
func (r UpdateProblemRequest) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"adminMessage": r.AdminMessage,
		"status":       r.Status,
		"meetupDate":   r.MeetupDate,
	}
	if r.AssignToSet {
		body["assignTo"] = r.AssignTo
	}
	return json.Marshal(body)
}
