package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/ui"
)

func newGate(t *testing.T) (*Gate, Repository, *ui.Recorder) {
	t.Helper()
	rec := ui.NewRecorder(0)
	repo := NewRepository(NewMemoryStorage())
	return NewGate(repo, rec, rec, zerolog.Nop()), repo, rec
}

func TestRequireSessionWithoutToken(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUser, "/login"},
		{KindAdmin, "/admin-login"},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			gate, _, rec := newGate(t)

			_, err := gate.RequireSession(context.Background(), tc.kind)
			if !errors.Is(err, ErrNoSession) {
				t.Fatalf("err = %v, want ErrNoSession", err)
			}
			if p := rec.Paths(); len(p) != 1 || p[0] != tc.want {
				t.Errorf("paths = %v, want [%s]", p, tc.want)
			}
			if len(rec.Notices()) != 0 {
				t.Error("absence of a session must not surface a notice")
			}
		})
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	gate, repo, rec := newGate(t)
	ctx := context.Background()

	if err := repo.Set(ctx, KindAdmin, "admin-tok"); err != nil {
		t.Fatal(err)
	}
	if tok, err := gate.RequireSession(ctx, KindAdmin); err != nil || tok != "admin-tok" {
		t.Fatalf("admin session = %q, %v", tok, err)
	}
	if _, err := gate.RequireSession(ctx, KindUser); !errors.Is(err, ErrNoSession) {
		t.Fatalf("user session should be absent, got %v", err)
	}
	if p := rec.Paths(); len(p) != 1 || p[0] != "/login" {
		t.Errorf("paths = %v", p)
	}
}

func TestRequireSessionUsesRequestNavigator(t *testing.T) {
	gate, _, rec := newGate(t)
	redirect := &ui.Redirect{}

	ctx := ui.WithNavigator(context.Background(), redirect)
	if _, err := gate.RequireSession(ctx, KindAdmin); !errors.Is(err, ErrNoSession) {
		t.Fatal(err)
	}
	if redirect.Target() != "/admin-login" {
		t.Errorf("target = %q", redirect.Target())
	}
	if len(rec.Paths()) != 0 {
		t.Error("fallback navigator should not be used")
	}
}

func TestLogout(t *testing.T) {
	gate, repo, rec := newGate(t)
	ctx := context.Background()
	repo.Set(ctx, KindUser, "tok")
	repo.Set(ctx, KindAdmin, "admin-tok")
	repo.SetDisplayName(ctx, "Asha")

	if err := gate.Logout(ctx, KindUser); err != nil {
		t.Fatal(err)
	}

	if tok, _ := repo.Get(ctx, KindUser); tok != "" {
		t.Error("user token not cleared")
	}
	if name, _ := repo.DisplayName(ctx); name != "" {
		t.Error("display name not cleared")
	}
	if tok, _ := repo.Get(ctx, KindAdmin); tok != "admin-tok" {
		t.Error("admin token must survive user logout")
	}
	last, _ := rec.Last()
	if last.Level != ui.LevelSuccess || last.Message != "Logged out successfully" {
		t.Errorf("notice = %+v", last)
	}
	if p := rec.Paths(); len(p) != 1 || p[0] != "/login" {
		t.Errorf("paths = %v", p)
	}

	if err := gate.Logout(ctx, KindAdmin); err != nil {
		t.Fatal(err)
	}
	if last, _ := rec.Last(); last.Message != "Logged out" {
		t.Errorf("admin notice = %q", last.Message)
	}
}

func TestLogoutRunsHooksOfItsKind(t *testing.T) {
	gate, _, _ := newGate(t)
	ctx := context.Background()
	var user, admin int
	gate.OnLogout(KindUser, func() { user++ })
	gate.OnLogout(KindAdmin, func() { admin++ })

	if err := gate.Logout(ctx, KindAdmin); err != nil {
		t.Fatal(err)
	}
	if user != 0 || admin != 1 {
		t.Errorf("hooks ran user=%d admin=%d", user, admin)
	}
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	repo := NewRepository(NewFileStorage(path))
	ctx := context.Background()

	if tok, err := repo.Get(ctx, KindUser); err != nil || tok != "" {
		t.Fatalf("missing file should read empty, got %q %v", tok, err)
	}
	if err := repo.Set(ctx, KindUser, "tok"); err != nil {
		t.Fatal(err)
	}

	// A fresh storage over the same file sees the value.
	reopened := NewRepository(NewFileStorage(path))
	if tok, _ := reopened.Get(ctx, KindUser); tok != "tok" {
		t.Errorf("reopened token = %q", tok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	if err := reopened.Clear(ctx, KindUser); err != nil {
		t.Fatal(err)
	}
	if tok, _ := repo.Get(ctx, KindUser); tok != "" {
		t.Error("token not cleared")
	}
}

func TestFileStorageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("{not json"), 0o600)

	_, err := NewRepository(NewFileStorage(path)).Get(context.Background(), KindUser)
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestInspect(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"name":  "Asha",
		"email": "asha@example.com",
		"exp":   now.Add(-time.Hour).Unix(),
	}).SignedString([]byte("any-key"))
	if err != nil {
		t.Fatal(err)
	}

	info, ok := Inspect(signed, now)
	if !ok {
		t.Fatal("expected JWT to decode")
	}
	if info.Subject != "u1" || info.Name != "Asha" || info.Email != "asha@example.com" {
		t.Errorf("info = %+v", info)
	}
	if !info.Expired || info.ExpiresAt == nil {
		t.Errorf("expected expired token, got %+v", info)
	}

	if _, ok := Inspect("opaque-token", now); ok {
		t.Error("opaque token should not decode")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("admin"); err != nil || k != KindAdmin {
		t.Errorf("ParseKind(admin) = %v, %v", k, err)
	}
	if _, err := ParseKind("root"); err == nil {
		t.Error("expected error")
	}
}
