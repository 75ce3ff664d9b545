package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/config"
	"github.com/eliteadvisers/portal/internal/handler"
	"github.com/eliteadvisers/portal/internal/middleware"
	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
	"github.com/eliteadvisers/portal/internal/validator"
	ws "github.com/eliteadvisers/portal/internal/websocket"
)

// remote is a stand-in for the advisory API.
type remote struct {
	mu      sync.Mutex
	routes  map[string]string
	hits    map[string]int
	queries map[string]string
	rows    []map[string]any
}

func (f *remote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[key]++
	f.queries[key] = r.URL.RawQuery

	switch {
	case key == "GET /admin/problems":
		json.NewEncoder(w).Encode(map[string]any{"success": true, "problems": f.rows})
		return
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/admin/problems/"):
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		id := strings.TrimPrefix(r.URL.Path, "/admin/problems/")
		for _, row := range f.rows {
			if row["problemId"] == id {
				row["status"] = body["status"]
				row["adminMessage"] = body["adminMessage"]
			}
		}
		io.WriteString(w, `{"success":true}`)
		return
	}

	body, ok := f.routes[key]
	if !ok {
		http.NotFound(w, r)
		return
	}
	io.WriteString(w, body)
}

func (f *remote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

type env struct {
	remote  *remote
	repo    session.Repository
	console *portal.AdminConsole
	engine  *gin.Engine
}

func newEnv(t *testing.T, limiter *middleware.RateLimiter) *env {
	t.Helper()
	validator.Setup()

	rm := &remote{
		routes: map[string]string{
			"POST /auth/login":    `{"success":true,"jwtToken":"tok-1","name":"Asha"}`,
			"GET /auth/dashboard": `{"success":true,"data":{"fullName":"Asha Rao","totals":{"activeCases":1,"solvedProblems":0,"totalProblems":1},"problems":[{"_id":"q1","title":"GST","status":"pending"}]}}`,
			"GET /admin/list":     `{"success":true,"admins":[{"_id":"a1","name":"Ravi","email":"ravi@example.com"}]}`,
			"GET /library":        `{"success":true,"items":[]}`,
		},
		hits:    map[string]int{},
		queries: map[string]string{},
		rows: []map[string]any{
			{"_id": "m1", "problemId": "p1", "title": "Audit", "status": "pending"},
		},
	}
	srv := httptest.NewServer(rm)
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	api := apiclient.New(srv.URL, 0, log)
	repo := session.NewRepository(session.NewMemoryStorage())
	notices := ui.NewRecorder(0)
	gate := session.NewGate(repo, notices, notices, log)

	dashboard := portal.NewDashboard(api, gate, notices, api.ResolveURL, log)
	console := portal.NewAdminConsole(api, gate, notices, 10*time.Millisecond, log)
	t.Cleanup(console.Close)

	handlers := &Handlers{
		Auth:    handler.NewAuthHandler(portal.NewAuth(api, repo, notices, notices, log), gate, notices),
		Home:    handler.NewHomeHandler(dashboard, notices),
		Profile: handler.NewProfileHandler(dashboard, notices),
		Admin:   handler.NewAdminHandler(console, notices),
		Library: handler.NewLibraryHandler(portal.NewLibrary(api, notices, log), notices),
		WS:      handler.NewWSHandler(gate, 10*time.Millisecond, log, nil),
		System:  handler.NewSystemHandler(notices, srv.URL),
	}
	cfg := &config.Config{GinMode: gin.TestMode}

	return &env{remote: rm, repo: repo, console: console, engine: SetupRouter(handlers, limiter, cfg)}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Notices  []ui.Notice `json:"notices"`
	Navigate string      `json:"navigate"`
}

func (e *env) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out envelope
	if w.Code != http.StatusFound {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, out
}

func TestHealth(t *testing.T) {
	e := newEnv(t, nil)
	w, _ := e.do(t, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestGatedViewsRedirectWithoutSession(t *testing.T) {
	e := newEnv(t, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/home", "/login"},
		{"/profile", "/login"},
		{"/admin-dashboard", "/admin-login"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			w, _ := e.do(t, "GET", tc.path, "")
			if w.Code != http.StatusFound {
				t.Fatalf("status = %d, want 302", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != tc.want {
				t.Errorf("Location = %q, want %q", loc, tc.want)
			}
		})
	}
	if n := e.remote.total(); n != 0 {
		t.Errorf("API called %d times without a session", n)
	}
}

func TestLoginThenHome(t *testing.T) {
	e := newEnv(t, nil)

	w, out := e.do(t, "POST", "/login", `{"email":"asha@example.com","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	if out.Navigate != "/home" {
		t.Errorf("navigate = %q", out.Navigate)
	}
	if len(out.Notices) == 0 || out.Notices[len(out.Notices)-1].Message != "Welcome back, Asha!" {
		t.Errorf("notices = %+v", out.Notices)
	}

	w, out = e.do(t, "GET", "/home", "")
	if w.Code != http.StatusOK {
		t.Fatalf("home status = %d: %s", w.Code, w.Body.String())
	}
	var view portal.HomeView
	if err := json.Unmarshal(out.Data, &view); err != nil {
		t.Fatal(err)
	}
	if !view.Available || view.FullName != "Asha Rao" {
		t.Errorf("view = %+v", view)
	}
	if view.Stats.Pending != 1 {
		t.Errorf("pending = %d", view.Stats.Pending)
	}
}

func TestLoginValidationMessage(t *testing.T) {
	e := newEnv(t, nil)

	w, out := e.do(t, "POST", "/login", `{"email":"","password":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if out.Error == nil || out.Error.Message != "Please fill in all fields" {
		t.Errorf("error = %+v", out.Error)
	}
	if e.remote.total() != 0 {
		t.Error("invalid login reached the API")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.repo.Set(ctx, session.KindUser, "tok")

	w, out := e.do(t, "POST", "/logout", "")
	if w.Code != http.StatusOK || out.Navigate != "/login" {
		t.Fatalf("status = %d navigate = %q", w.Code, out.Navigate)
	}
	if tok, _ := e.repo.Get(ctx, session.KindUser); tok != "" {
		t.Errorf("token still stored: %q", tok)
	}
}

func TestLibrarySearch(t *testing.T) {
	e := newEnv(t, nil)

	w, out := e.do(t, "GET", "/library?q=input+tax&tag=Income+Tax", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var view portal.LibraryView
	if err := json.Unmarshal(out.Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.Placeholder != "No matches yet" {
		t.Errorf("placeholder = %q", view.Placeholder)
	}
	if got := e.remote.queries["GET /library"]; got != "q=input%20tax&tag=Income%20Tax" {
		t.Errorf("query = %q", got)
	}
}

func TestAdminEditSaveMovesRowToClosed(t *testing.T) {
	e := newEnv(t, nil)
	e.repo.Set(context.Background(), session.KindAdmin, "adm")

	if w, _ := e.do(t, "GET", "/admin-dashboard", ""); w.Code != http.StatusOK {
		t.Fatalf("enter status = %d: %s", w.Code, w.Body.String())
	}
	if w, _ := e.do(t, "PATCH", "/admin-dashboard/problems/p1", `{"status":"closed","adminMessage":"Done"}`); w.Code != http.StatusOK {
		t.Fatalf("edit status = %d: %s", w.Code, w.Body.String())
	}
	w, out := e.do(t, "POST", "/admin-dashboard/problems/p1/save", "")
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", w.Code, w.Body.String())
	}

	closed := e.console.Queries().Closed()
	if len(closed) != 1 || closed[0].Key() != "p1" {
		t.Errorf("closed = %+v", closed)
	}
	if len(out.Notices) == 0 || out.Notices[len(out.Notices)-1].Message != "Query updated" {
		t.Errorf("notices = %+v", out.Notices)
	}
}

func TestAdminPublishRequiresTitleAndSummary(t *testing.T) {
	e := newEnv(t, nil)
	e.repo.Set(context.Background(), session.KindAdmin, "adm")

	w, out := e.do(t, "POST", "/admin-dashboard/articles", `{"title":"GST rate change"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if out.Error == nil || out.Error.Message != "Title and summary required" {
		t.Errorf("error = %+v", out.Error)
	}
}

func TestAdminLogoutStopsConsoleClock(t *testing.T) {
	e := newEnv(t, nil)
	e.repo.Set(context.Background(), session.KindAdmin, "adm")

	if w, _ := e.do(t, "GET", "/admin-dashboard", ""); w.Code != http.StatusOK {
		t.Fatalf("enter status = %d", w.Code)
	}
	start := e.console.Clock().Now()
	deadline := time.Now().Add(2 * time.Second)
	for !e.console.Clock().Now().After(start) {
		if time.Now().After(deadline) {
			t.Fatal("clock never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}

	w, out := e.do(t, "POST", "/admin-logout", "")
	if w.Code != http.StatusOK || out.Navigate != "/admin-login" {
		t.Fatalf("status = %d navigate = %q", w.Code, out.Navigate)
	}
	stopped := e.console.Clock().Now()
	time.Sleep(60 * time.Millisecond)
	if !e.console.Clock().Now().Equal(stopped) {
		t.Error("clock ticked after admin logout")
	}
	if e.console.Queries().Loaded() {
		t.Error("query list survived admin logout")
	}
}

func TestAuthRateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Close()
	e := newEnv(t, limiter)

	if w, _ := e.do(t, "POST", "/logout", ""); w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	w, _ := e.do(t, "POST", "/logout", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestAdminClockStream(t *testing.T) {
	e := newEnv(t, nil)
	srv := httptest.NewServer(e.engine)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/admin/clock"

	t.Run("requires admin session", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatal("expected handshake failure")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("resp = %v", resp)
		}
	})

	t.Run("ticks and pongs", func(t *testing.T) {
		e.repo.Set(context.Background(), session.KindAdmin, "adm")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		var tick ws.TickResponse
		if err := conn.ReadJSON(&tick); err != nil {
			t.Fatal(err)
		}
		if tick.Event != ws.EventTick || tick.Display == "" {
			t.Errorf("tick = %+v", tick)
		}

		if err := conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
			t.Fatal(err)
		}
		for {
			var msg struct {
				Event ws.Event `json:"event"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatal(err)
			}
			if msg.Event == ws.EventPong {
				return
			}
		}
	})
}
