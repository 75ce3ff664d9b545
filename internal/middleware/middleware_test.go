package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/ui"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other visitors have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("bucket should refill after the interval")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(5 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	_, ok := rl.visitors["old"]
	rl.mu.Unlock()
	if ok {
		t.Error("stale visitor not removed")
	}
}

func serve(r *gin.Engine, acceptBr bool, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if acceptBr {
		req.Header.Set("Accept-Encoding", "gzip, br")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("compliance ", 400)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusCreated, "ok") })

	t.Run("compresses large bodies", func(t *testing.T) {
		w := serve(r, true, "/large")
		if w.Header().Get("Content-Encoding") != "br" {
			t.Fatalf("Content-Encoding = %q", w.Header().Get("Content-Encoding"))
		}
		got, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != large {
			t.Error("decompressed body differs")
		}
	})

	t.Run("passes small bodies through", func(t *testing.T) {
		w := serve(r, true, "/small")
		if w.Code != http.StatusCreated || w.Body.String() != "ok" {
			t.Errorf("got %d %q", w.Code, w.Body.String())
		}
		if w.Header().Get("Content-Encoding") != "" {
			t.Error("small body should not be encoded")
		}
	})

	t.Run("ignores clients without br", func(t *testing.T) {
		w := serve(r, false, "/large")
		if w.Header().Get("Content-Encoding") != "" || w.Body.String() != large {
			t.Error("body should be sent as is")
		}
	})
}

func TestNavigationCapturesTarget(t *testing.T) {
	r := gin.New()
	r.Use(Navigation())
	r.GET("/go", func(c *gin.Context) {
		ui.NavigatorFrom(c.Request.Context(), nil).Navigate("/login")
		c.String(http.StatusOK, NavigationTarget(c))
	})

	w := serve(r, false, "/go")
	if w.Body.String() != "/login" {
		t.Errorf("target = %q", w.Body.String())
	}
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.Use(NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, false, "/")
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}
