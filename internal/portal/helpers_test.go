package portal

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/session"
	"github.com/eliteadvisers/portal/internal/ui"
)

// fakeAPI is a scripted stand-in for the remote API. Unscripted routes
// answer with a failure envelope.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
	bodies map[string][]byte
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.hits[key]++
	f.bodies[key] = body
	h := f.routes[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if h == nil {
		io.WriteString(w, `{"success":false,"message":"no route"}`)
		return
	}
	h(w, r)
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	f.routes[method+" "+path] = h
	f.mu.Unlock()
}

func (f *fakeAPI) reply(method, path, body string) {
	f.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

// body decodes the last request body sent to a route.
func (f *fakeAPI) body(t *testing.T, method, path string) map[string]any {
	t.Helper()
	f.mu.Lock()
	raw := f.bodies[method+" "+path]
	f.mu.Unlock()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode %s %s body %q: %v", method, path, raw, err)
	}
	return m
}

type harness struct {
	api    *fakeAPI
	client *apiclient.Client
	repo   session.Repository
	rec    *ui.Recorder
	gate   *session.Gate
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &fakeAPI{
		routes: map[string]http.HandlerFunc{},
		hits:   map[string]int{},
		bodies: map[string][]byte{},
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	rec := ui.NewRecorder(0)
	repo := session.NewRepository(session.NewMemoryStorage())
	return &harness{
		api:    api,
		client: apiclient.New(srv.URL, 0, zerolog.Nop()),
		repo:   repo,
		rec:    rec,
		gate:   session.NewGate(repo, rec, rec, zerolog.Nop()),
	}
}

// lastNotice fails the test unless a notice with the given level and text
// was the most recent one.
func (h *harness) lastNotice(t *testing.T, level ui.Level, msg string) {
	t.Helper()
	n, ok := h.rec.Last()
	if !ok {
		t.Fatalf("no notice, want %s %q", level, msg)
	}
	if n.Level != level || n.Message != msg {
		t.Fatalf("notice = %s %q, want %s %q", n.Level, n.Message, level, msg)
	}
}

func (h *harness) lastPath(t *testing.T, want string) {
	t.Helper()
	p := h.rec.Paths()
	if len(p) == 0 || p[len(p)-1] != want {
		t.Fatalf("paths = %v, want last %q", p, want)
	}
}

func strPtr(s string) *string { return &s }
