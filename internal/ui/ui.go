// Package ui holds the two side channels every view uses: transient notices
// (toasts) and navigation.
package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is the kind of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one transient message shown to the user.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type navigatorKey struct{}

// WithNavigator scopes a navigator to a single request.
func WithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, navigatorKey{}, nav)
}

// NavigatorFrom returns the request-scoped navigator, or fallback.
func NavigatorFrom(ctx context.Context, fallback Navigator) Navigator {
	if nav, ok := ctx.Value(navigatorKey{}).(Navigator); ok && nav != nil {
		return nav
	}
	if fallback == nil {
		return NavigatorFunc(func(string) {})
	}
	return fallback
}

// Recorder keeps the most recent notices and navigations. It backs the
// companion server's /notices endpoint and the tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
	paths   []string
	limit   int
}

// NewRecorder keeps at most limit notices (0 = unbounded).
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: msg, At: time.Now()})
	if r.limit > 0 && len(r.notices) > r.limit {
		r.notices = r.notices[len(r.notices)-r.limit:]
	}
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

// Navigate records a navigation.
func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Drain returns and clears the recorded notices.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Paths returns the recorded navigations in order.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Redirect captures the last navigation of one request so the HTTP layer can
// turn it into a redirect.
type Redirect struct {
	mu     sync.Mutex
	target string
}

func (r *Redirect) Navigate(path string) {
	r.mu.Lock()
	r.target = path
	r.mu.Unlock()
}

// Target returns the captured path, or "".
func (r *Redirect) Target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// Printer writes notices to a terminal and logs them.
type Printer struct {
	out io.Writer
	log zerolog.Logger
}

// NewPrinter creates a terminal notifier.
func NewPrinter(out io.Writer, log zerolog.Logger) *Printer {
	return &Printer{out: out, log: log.With().Str("component", "notice").Logger()}
}

func (p *Printer) Success(msg string) {
	p.log.Debug().Str("level", string(LevelSuccess)).Msg(msg)
	fmt.Fprintf(p.out, "✔ %s\n", msg)
}

func (p *Printer) Error(msg string) {
	p.log.Debug().Str("level", string(LevelError)).Msg(msg)
	fmt.Fprintf(p.out, "✖ %s\n", msg)
}

// Navigate prints the view the user is being sent to.
func (p *Printer) Navigate(path string) {
	p.log.Debug().Str("path", path).Msg("Navigate")
	fmt.Fprintf(p.out, "→ %s\n", path)
}
