package session

import (
	"context"
	"fmt"

	"github.com/eliteadvisers/portal/internal/config"
)

// Kind selects one of the two independent sessions.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// StorageKey is where the kind's token lives.
func (k Kind) StorageKey() string {
	if k == KindAdmin {
		return config.StorageKeyAdminToken
	}
	return config.StorageKeyUserToken
}

// LoginPath is the view an unauthenticated principal is sent to.
func (k Kind) LoginPath() string {
	if k == KindAdmin {
		return "/admin-login"
	}
	return "/login"
}

// HomePath is the landing view after login.
func (k Kind) HomePath() string {
	if k == KindAdmin {
		return "/admin-dashboard"
	}
	return "/home"
}

// ParseKind maps "user"/"admin" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindUser, KindAdmin:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown session kind %q", s)
}

// Repository stores session tokens per kind plus the cached display name.
// Tokens are opaque: nothing here inspects their format or expiry.
type Repository interface {
	// Get returns the token, or "" when none is stored.
	Get(ctx context.Context, kind Kind) (string, error)
	Set(ctx context.Context, kind Kind, token string) error
	Clear(ctx context.Context, kind Kind) error

	DisplayName(ctx context.Context) (string, error)
	SetDisplayName(ctx context.Context, name string) error
	ClearDisplayName(ctx context.Context) error
}

type repository struct {
	storage Storage
}

// NewRepository builds a Repository over any Storage.
func NewRepository(storage Storage) Repository {
	return &repository{storage: storage}
}

func (r *repository) Get(ctx context.Context, kind Kind) (string, error) {
	v, _, err := r.storage.Load(ctx, kind.StorageKey())
	return v, err
}

func (r *repository) Set(ctx context.Context, kind Kind, token string) error {
	return r.storage.Store(ctx, kind.StorageKey(), token)
}

func (r *repository) Clear(ctx context.Context, kind Kind) error {
	return r.storage.Delete(ctx, kind.StorageKey())
}

func (r *repository) DisplayName(ctx context.Context) (string, error) {
	v, _, err := r.storage.Load(ctx, config.StorageKeyDisplayName)
	return v, err
}

func (r *repository) SetDisplayName(ctx context.Context, name string) error {
	return r.storage.Store(ctx, config.StorageKeyDisplayName, name)
}

func (r *repository) ClearDisplayName(ctx context.Context) error {
	return r.storage.Delete(ctx, config.StorageKeyDisplayName)
}
