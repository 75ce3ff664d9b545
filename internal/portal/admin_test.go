package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/querylist"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
)

const twoAdminsBody = `{"success":true,"admins":[
	{"_id":"a1","name":"Ravi","email":"ravi@example.com","bio":"GST"},
	{"_id":"a2","name":"Meera","email":"meera@example.com"}]}`

func newConsole(t *testing.T, h *harness) *AdminConsole {
	t.Helper()
	c := NewAdminConsole(h.client, h.gate, h.rec, 10*time.Millisecond, zerolog.Nop())
	t.Cleanup(c.Close)
	return c
}

// problemServer keeps a server-side problem list that PUTs mutate.
type problemServer struct {
	mu   sync.Mutex
	rows []model.Problem
}

func (s *problemServer) install(h *harness) {
	h.api.handle("GET", "/admin/problems", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"success": true, "problems": s.rows})
	})
	for _, id := range []string{"p1", "p2"} {
		id := id
		h.api.handle("PUT", "/admin/problems/"+id, func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				AdminMessage string              `json:"adminMessage"`
				Status       model.ProblemStatus `json:"status"`
				MeetupDate   string              `json:"meetupDate"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			s.mu.Lock()
			for i := range s.rows {
				if s.rows[i].Key() == id {
					s.rows[i].AdminMessage = body.AdminMessage
					s.rows[i].Status = body.Status
					s.rows[i].MeetupDate = body.MeetupDate
				}
			}
			s.mu.Unlock()
			io.WriteString(w, `{"success":true}`)
		})
	}
}

func TestAdminEnterWithoutSession(t *testing.T) {
	h := newHarness(t)
	c := newConsole(t, h)

	if err := c.Enter(context.Background()); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("err = %v", err)
	}
	h.lastPath(t, "/admin-login")
	if h.api.total() != 0 {
		t.Errorf("API called %d times", h.api.total())
	}
	if user := h.rec.Paths(); len(user) != 1 {
		t.Errorf("paths = %v", user)
	}
}

func TestAdminEnterLoadsListAndProblems(t *testing.T) {
	h := newHarness(t)
	loggedIn(t, h, session.KindAdmin)
	h.api.reply("GET", "/admin/list", twoAdminsBody)
	srv := &problemServer{rows: []model.Problem{
		{ProblemID: "p1", Title: "GST", Status: model.ProblemStatusPending},
		{ProblemID: "p2", Title: "Audit", Status: model.ProblemStatusClosed},
	}}
	srv.install(h)
	c := newConsole(t, h)

	if err := c.Enter(context.Background()); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	v := c.View()
	if v.Profile.Name != "Ravi" {
		t.Errorf("profile = %+v, want first admin", v.Profile)
	}
	if len(v.Advisors) != 2 || !v.Loaded {
		t.Errorf("view = %+v", v)
	}
	if len(v.Active) != 1 || len(v.Closed) != 1 {
		t.Errorf("partition active=%d closed=%d", len(v.Active), len(v.Closed))
	}
	if v.Clock == "" {
		t.Error("clock not rendered")
	}

	c.EditProfile(AdminProfileEdit{Name: strPtr("Ravi K")})
	c.LoadAdmins(context.Background())
	if got := c.Profile().Name; got != "Ravi K" {
		t.Errorf("profile overwritten by reload: %q", got)
	}
}

func TestAdminPicksSelfByEmail(t *testing.T) {
	h := newHarness(t)
	h.api.reply("GET", "/admin/list", twoAdminsBody)
	c := newConsole(t, h)

	c.mu.Lock()
	c.profile.Email = "meera@example.com"
	c.mu.Unlock()
	c.LoadAdmins(context.Background())

	if p := c.Profile(); p.ID != "a2" || p.Name != "Meera" {
		t.Errorf("profile = %+v", p)
	}
}

func TestAdminSubmitMovesRowToClosed(t *testing.T) {
	h := newHarness(t)
	loggedIn(t, h, session.KindAdmin)
	h.api.reply("GET", "/admin/list", twoAdminsBody)
	srv := &problemServer{rows: []model.Problem{
		{ProblemID: "p1", Title: "GST", Status: model.ProblemStatusPending},
		{ProblemID: "p2", Title: "ITR", Status: model.ProblemStatusInProgress},
	}}
	srv.install(h)
	c := newConsole(t, h)
	ctx := context.Background()
	if err := c.Enter(ctx); err != nil {
		t.Fatal(err)
	}

	c.Queries().Edit("p2", querylist.RowEdit{AdminMessage: strPtr("unsaved")})
	c.Queries().Edit("p1", querylist.RowEdit{Status: strPtr("closed"), AdminMessage: strPtr("Done")})
	if err := c.SubmitQuery(ctx, "p1"); err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}

	body := h.api.body(t, "PUT", "/admin/problems/p1")
	if body["status"] != "closed" || body["adminMessage"] != "Done" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["assignTo"]; ok {
		t.Error("assignTo sent without an assignment edit")
	}
	h.lastNotice(t, ui.LevelSuccess, "Query updated")

	v := c.View()
	if len(v.Closed) != 1 || v.Closed[0].Key() != "p1" {
		t.Errorf("closed = %+v", v.Closed)
	}
	if p2, _ := c.Queries().Row("p2"); p2.AdminMessage != "" {
		t.Errorf("p2 kept unsaved edit across reload: %q", p2.AdminMessage)
	}
}

func TestAdminSaveProfile(t *testing.T) {
	tests := []struct {
		name  string
		resp  string
		level ui.Level
		want  string
	}{
		{name: "ok", resp: `{"success":true}`, level: ui.LevelSuccess, want: "Profile updated successfully"},
		{name: "rejected", resp: `{"success":false}`, level: ui.LevelError, want: "Update failed"},
		{name: "transport", resp: `Bad Gateway`, level: ui.LevelError, want: "Server unavailable"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			loggedIn(t, h, session.KindAdmin)
			h.api.reply("PUT", "/admin/profile", tc.resp)
			c := newConsole(t, h)
			c.EditProfile(AdminProfileEdit{Name: strPtr("Ravi"), Bio: strPtr("GST, ITR")})

			err := c.SaveProfile(context.Background())
			if (err == nil) != (tc.level == ui.LevelSuccess) {
				t.Fatalf("err = %v", err)
			}
			h.lastNotice(t, tc.level, tc.want)
			if body := h.api.body(t, "PUT", "/admin/profile"); body["bio"] != "GST, ITR" {
				t.Errorf("body = %v", body)
			}
			if n := h.api.count("GET", "/admin/problems"); n != 0 {
				t.Errorf("reloaded after profile save")
			}
		})
	}
}

func TestPublishArticle(t *testing.T) {
	h := newHarness(t)
	loggedIn(t, h, session.KindAdmin)
	h.api.reply("POST", "/library", `{"success":true}`)
	c := newConsole(t, h)
	ctx := context.Background()

	c.SetDraft(model.ArticleDraft{Title: "TDS rates", Tags: "TDS, Compliance"})
	if err := c.PublishArticle(ctx); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	h.lastNotice(t, ui.LevelError, "Title and summary required")
	if h.api.total() != 0 {
		t.Fatal("published an incomplete draft")
	}

	c.SetDraft(model.ArticleDraft{Title: "TDS rates", Tags: "TDS, Compliance", Summary: "FY rates"})
	if err := c.PublishArticle(ctx); err != nil {
		t.Fatalf("PublishArticle: %v", err)
	}
	if body := h.api.body(t, "POST", "/library"); body["tags"] != "TDS, Compliance" || body["summary"] != "FY rates" {
		t.Errorf("body = %v", body)
	}
	h.lastNotice(t, ui.LevelSuccess, "Article published to library")
	if d := c.Draft(); d != (model.ArticleDraft{}) {
		t.Errorf("draft not cleared: %+v", d)
	}
}

func TestPublishArticleFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	loggedIn(t, h, session.KindAdmin)
	h.api.reply("POST", "/library", `{"success":false}`)
	c := newConsole(t, h)

	draft := model.ArticleDraft{Title: "T", Summary: "S"}
	c.SetDraft(draft)
	if err := c.PublishArticle(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	h.lastNotice(t, ui.LevelError, "Failed to add article")
	if c.Draft() != draft {
		t.Errorf("draft = %+v", c.Draft())
	}
}

func TestAdminClockStopsOnClose(t *testing.T) {
	h := newHarness(t)
	loggedIn(t, h, session.KindAdmin)
	h.api.reply("GET", "/admin/list", `{"success":true,"admins":[]}`)
	h.api.reply("GET", "/admin/problems", `{"success":true,"problems":[]}`)
	c := newConsole(t, h)

	if err := c.Enter(context.Background()); err != nil {
		t.Fatal(err)
	}
	start := c.Clock().Now()
	deadline := time.Now().Add(2 * time.Second)
	for !c.Clock().Now().After(start) {
		if time.Now().After(deadline) {
			t.Fatal("clock never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.Close()
	stopped := c.Clock().Now()
	time.Sleep(50 * time.Millisecond)
	if !c.Clock().Now().Equal(stopped) {
		t.Error("clock ticked after Close")
	}
	c.Close()
}
