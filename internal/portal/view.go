package portal

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/eliteadvisers/portal/internal/model"
)

// Placeholders shown when a view has nothing to render.
const (
	DashboardUnavailable = "Dashboard unavailable"
	NoAdvisorAssigned    = "No advisor assigned"
	NoLibraryMatches     = "No matches yet"
)

// fallbackTrends is charted when the server sends no service trends.
var fallbackTrends = []model.ServiceTrend{
	{Label: "GST", Value: 92},
	{Label: "ITR", Value: 78},
	{Label: "Audit", Value: 65},
	{Label: "ROC", Value: 58},
	{Label: "Others", Value: 42},
}

// Stats are the dashboard counters.
type Stats struct {
	Active   int `json:"active"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
	Total    int `json:"total"`
}

// ComputeStats derives the counters; pending is never negative.
func ComputeStats(t *model.Totals) Stats {
	if t == nil {
		return Stats{}
	}
	pending := t.TotalProblems - t.SolvedProblems
	if pending < 0 {
		pending = 0
	}
	return Stats{
		Active:   t.ActiveCases,
		Resolved: t.SolvedProblems,
		Pending:  pending,
		Total:    t.TotalProblems,
	}
}

// ChartData returns the trend series, or the fallback series when empty.
func ChartData(trends []model.ServiceTrend) []model.ServiceTrend {
	if len(trends) == 0 {
		return append([]model.ServiceTrend(nil), fallbackTrends...)
	}
	out := make([]model.ServiceTrend, len(trends))
	for i, t := range trends {
		if t.Label == "" {
			t.Label = fmt.Sprintf("Service %d", i+1)
		}
		out[i] = t
	}
	return out
}

// AvatarURL is the generated avatar used when no picture is set.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name)
}

// AdvisorCard is one assigned advisor as shown on the dashboard.
type AdvisorCard struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Photo string `json:"photo"`
}

// AdvisorCards joins the assigned advisor ids against the advisor list.
// Unknown ids still produce a card with default text.
func AdvisorCards(ids []string, advisors []model.Admin) []AdvisorCard {
	cards := make([]AdvisorCard, 0, len(ids))
	for _, id := range ids {
		a, _ := model.FindAdmin(advisors, id)
		card := AdvisorCard{ID: id, Name: a.Name, Bio: a.Bio, Photo: a.Photo}
		if card.Photo == "" {
			name := a.Name
			if name == "" {
				name = "CA"
			}
			card.Photo = AvatarURL(name)
		}
		if card.Name == "" {
			card.Name = "Advisor"
		}
		if card.Bio == "" {
			card.Bio = "Your compliance expert"
		}
		cards = append(cards, card)
	}
	return cards
}

// StatusLabel capitalizes a status for display.
func StatusLabel(s model.ProblemStatus) string {
	if s == "" {
		return "Pending"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ProblemCard is one query row on the client dashboard.
type ProblemCard struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AdvisorName  string              `json:"advisorName,omitempty"`
	AdminMessage string              `json:"adminMessage,omitempty"`
	MeetupDate   string              `json:"meetupDate,omitempty"`
	Status       model.ProblemStatus `json:"status"`
	StatusLabel  string              `json:"statusLabel"`
	Attachments  []model.Attachment  `json:"attachments"`
	Rating       *int                `json:"rating,omitempty"`
	CanRate      bool                `json:"canRate"`
	CanReopen    bool                `json:"canReopen"`
}

// NewProblemCard prepares a problem for display. resolve turns attachment
// paths into absolute links.
func NewProblemCard(p model.Problem, advisors []model.Admin, resolve func(string) string) ProblemCard {
	card := ProblemCard{
		ID:           p.Key(),
		Title:        p.Title,
		Description:  p.Description,
		AdminMessage: p.AdminMessage,
		MeetupDate:   p.MeetupDate,
		Status:       p.Status,
		StatusLabel:  StatusLabel(p.Status),
		Attachments:  make([]model.Attachment, 0, len(p.Attachments)),
		Rating:       p.Rating,
		CanRate:      p.IsClosed(),
		CanReopen:    p.IsClosed(),
	}
	if p.ID != "" {
		card.ID = p.ID
	}
	if card.Title == "" {
		card.Title = "Untitled Query"
	}
	if card.Description == "" {
		card.Description = "No description"
	}
	if p.AssignedAdmin != nil {
		card.AdvisorName = p.AssignedAdmin.ResolveName(advisors)
		if card.AdvisorName == "" {
			card.AdvisorName = "CA"
		}
	}
	for _, a := range p.Attachments {
		if resolve != nil {
			a.URL = resolve(a.URL)
		}
		card.Attachments = append(card.Attachments, a)
	}
	return card
}

// HomeView is the rendered client dashboard.
type HomeView struct {
	Available     bool                 `json:"available"`
	Placeholder   string               `json:"placeholder,omitempty"`
	FullName      string               `json:"fullName,omitempty"`
	Picture       string               `json:"picture,omitempty"`
	Stats         Stats                `json:"stats"`
	Chart         []model.ServiceTrend `json:"chart,omitempty"`
	Advisors      []AdvisorCard        `json:"advisors,omitempty"`
	AdvisorsEmpty string               `json:"advisorsEmpty,omitempty"`
	Problems      []ProblemCard        `json:"problems,omitempty"`
	Notifications []model.Notification `json:"notifications"`
}

// BuildHomeView renders a dashboard aggregate. A nil aggregate renders the
// unavailable placeholder.
func BuildHomeView(d *model.Dashboard, advisors []model.Admin, notes []model.Notification, resolve func(string) string) HomeView {
	if notes == nil {
		notes = []model.Notification{}
	}
	if d == nil {
		return HomeView{Placeholder: DashboardUnavailable, Notifications: notes}
	}

	v := HomeView{
		Available:     true,
		FullName:      d.FullName,
		Picture:       d.Picture,
		Stats:         ComputeStats(d.Totals),
		Chart:         ChartData(d.ServiceTrends),
		Advisors:      AdvisorCards(d.AssignedCA, advisors),
		Problems:      make([]ProblemCard, 0, len(d.Problems)),
		Notifications: notes,
	}
	if v.Picture == "" {
		v.Picture = AvatarURL(d.FullName)
	}
	if len(v.Advisors) == 0 {
		v.AdvisorsEmpty = NoAdvisorAssigned
	}
	for _, p := range d.Problems {
		v.Problems = append(v.Problems, NewProblemCard(p, advisors, resolve))
	}
	return v
}
