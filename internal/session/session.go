package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lms-client/internal/domain"
)

// Fixed keys in the local store, matching what the submission flow and the
// hint cache share the store with.
const (
	tokenKey = "token"
	userKey  = "user"
)

// Store is the persistent local key-value store the session lives in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AuthAPI is the authentication slice of the LMS API.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, domain.Viewer, error)
	Register(ctx context.Context, name, email, password string, role domain.Role) (string, domain.Viewer, error)
}

// Provider owns the signed-in viewer and their bearer token.
type Provider struct {
	api   AuthAPI
	store Store
}

func NewProvider(api AuthAPI, store Store) *Provider {
	return &Provider{api: api, store: store}
}

// Login exchanges credentials for a token and persists both token and user.
func (p *Provider) Login(ctx context.Context, email, password string) (domain.Viewer, error) {
	token, viewer, err := p.api.Login(ctx, email, password)
	if err != nil {
		return domain.Viewer{}, err
	}
	return viewer, p.persist(ctx, token, viewer)
}

// Register creates an account and signs it in.
func (p *Provider) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.Viewer, error) {
	token, viewer, err := p.api.Register(ctx, name, email, password, role)
	if err != nil {
		return domain.Viewer{}, err
	}
	return viewer, p.persist(ctx, token, viewer)
}

// Logout drops the stored token and user.
func (p *Provider) Logout(ctx context.Context) error {
	if err := p.store.Delete(ctx, tokenKey); err != nil {
		return err
	}
	return p.store.Delete(ctx, userKey)
}

// Current returns the stored viewer and token, or ErrUnauthenticated /
// ErrNoViewer when either half is missing.
func (p *Provider) Current(ctx context.Context) (domain.Viewer, string, error) {
	token, ok, err := p.store.Get(ctx, tokenKey)
	if err != nil {
		return domain.Viewer{}, "", fmt.Errorf("read token: %w", err)
	}
	if !ok || strings.TrimSpace(token) == "" {
		return domain.Viewer{}, "", domain.ErrUnauthenticated
	}

	raw, ok, err := p.store.Get(ctx, userKey)
	if err != nil {
		return domain.Viewer{}, "", fmt.Errorf("read user: %w", err)
	}
	if !ok || raw == "" {
		return domain.Viewer{}, "", domain.ErrNoViewer
	}
	var viewer domain.Viewer
	if err := json.Unmarshal([]byte(raw), &viewer); err != nil {
		return domain.Viewer{}, "", fmt.Errorf("decode stored user: %w", err)
	}
	viewer.Role = domain.ParseRole(string(viewer.Role))
	return viewer, token, nil
}

func (p *Provider) persist(ctx context.Context, token string, viewer domain.Viewer) error {
	if err := p.store.Set(ctx, tokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	data, err := json.Marshal(viewer)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := p.store.Set(ctx, userKey, string(data)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}
