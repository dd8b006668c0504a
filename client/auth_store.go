package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"taskboard/models"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single file readable only by the owner.
type FileTokenStore struct {
	Path string
}

func (s FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	return os.WriteFile(s.Path, []byte(token), 0600)
}

func (s FileTokenStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type AuthState struct {
	Token   string
	User    *models.UserSummary
	Loading bool
	Err     error
}

// AuthStore holds the signed-in user and keeps the API client's token in sync.
type AuthStore struct {
	notifier
	api    *APIClient
	tokens TokenStore

	mu    sync.RWMutex
	state AuthState
}

// NewAuthStore returns a signed-out store. tokens may be nil.
func NewAuthStore(api *APIClient, tokens TokenStore) *AuthStore {
	return &AuthStore{api: api, tokens: tokens}
}

func (s *AuthStore) Snapshot() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *AuthStore) Token() string {
	return s.Snapshot().Token
}

func (s *AuthStore) User() *models.UserSummary {
	return s.Snapshot().User
}

func (s *AuthStore) IsAuthenticated() bool {
	st := s.Snapshot()
	return st.Token != "" && st.User != nil
}

func (s *AuthStore) Register(ctx context.Context, name, email, password string) error {
	s.begin()
	resp, err := s.api.Register(ctx, models.RegisterRequest{Name: name, Email: email, Password: password})
	return s.finishAuth(resp, err)
}

func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	s.begin()
	resp, err := s.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	return s.finishAuth(resp, err)
}

// Restore signs in with a saved token. An empty token is read from the
// TokenStore. A token the server rejects is discarded.
func (s *AuthStore) Restore(ctx context.Context, token string) error {
	if token == "" && s.tokens != nil {
		saved, err := s.tokens.Load()
		if err != nil {
			return err
		}
		token = saved
	}
	if token == "" {
		return nil
	}

	s.begin()
	s.api.SetToken(token)
	user, err := s.api.Profile(ctx)
	if err != nil {
		_ = s.Logout()
		s.set(func(st *AuthState) { st.Err = err })
		return err
	}

	summary := user.Summary()
	s.set(func(st *AuthState) {
		st.Token = token
		st.User = &summary
		st.Loading = false
		st.Err = nil
	})
	return nil
}

// Logout forgets the session locally; tokens are not revoked server-side.
func (s *AuthStore) Logout() error {
	s.api.SetToken("")
	s.set(func(st *AuthState) { *st = AuthState{} })
	if s.tokens != nil {
		return s.tokens.Clear()
	}
	return nil
}

func (s *AuthStore) begin() {
	s.set(func(st *AuthState) {
		st.Loading = true
		st.Err = nil
	})
}

func (s *AuthStore) finishAuth(resp *models.AuthResponse, err error) error {
	if err != nil {
		s.set(func(st *AuthState) {
			st.Loading = false
			st.Err = err
		})
		return err
	}

	s.api.SetToken(resp.Token)
	user := resp.User
	s.set(func(st *AuthState) {
		st.Token = resp.Token
		st.User = &user
		st.Loading = false
		st.Err = nil
	})
	if s.tokens != nil {
		return s.tokens.Save(resp.Token)
	}
	return nil
}

func (s *AuthStore) set(mutate func(st *AuthState)) {
	s.mu.Lock()
	mutate(&s.state)
	s.mu.Unlock()
	s.notify()
}
