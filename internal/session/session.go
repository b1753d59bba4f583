// Package session holds the authenticated identity and gates API access.
// Token acquisition is delegated to an external identity provider; this
// package only restores, inspects, and disposes of the issued credential.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"mnemoniq/internal/apiclient"
)

// State is the session lifecycle state.
type State string

const (
	// StateLoading means credential restoration has not finished yet.
	// Protected views render a placeholder in this state instead of
	// redirecting, so a slow restore does not flash the login view.
	StateLoading       State = "loading"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

var ErrExpired = errors.New("credential expired")

// Identity describes the signed-in user as read from the credential claims.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Session owns the current identity. It is safe for concurrent use.
type Session struct {
	store *Store

	mu       sync.Mutex
	state    State
	identity Identity
	token    string
}

// New creates a session in StateLoading. Call Restore to settle it.
func New(store *Store) *Session {
	return &Session{store: store, state: StateLoading}
}

// Restore reads the stored credential and moves to Authenticated when a
// non-expired token exists, Anonymous otherwise.
func (s *Session) Restore() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Load()
	if err != nil || raw == "" {
		if err != nil {
			slog.Debug("no stored credential", "err", err)
		}
		s.state = StateAnonymous
		return s.state
	}
	identity, err := parseIdentity(raw)
	if err != nil {
		slog.Warn("stored credential unusable", "err", err)
		s.state = StateAnonymous
		return s.state
	}
	s.state = StateAuthenticated
	s.identity = identity
	s.token = raw
	return s.state
}

// SignIn accepts a bearer credential issued by the identity provider,
// persists it, and moves to Authenticated.
func (s *Session) SignIn(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("credential required")
	}
	identity, err := parseIdentity(raw)
	if err != nil {
		return err
	}
	if err := s.store.Save(raw); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.identity = identity
	s.token = raw
	return nil
}

// SignOut discards the credential and moves to Anonymous.
func (s *Session) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.identity = Identity{}
	s.token = ""
	return s.store.Delete()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the signed-in user; ok is false unless authenticated.
func (s *Session) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.state == StateAuthenticated
}

// Token implements apiclient.TokenSource. A request issued while the
// session is not authenticated fails before touching the network.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return "", &apiclient.AuthError{Reason: string(s.state)}
	}
	if !s.identity.ExpiresAt.IsZero() && time.Now().After(s.identity.ExpiresAt) {
		return "", &apiclient.AuthError{Reason: ErrExpired.Error()}
	}
	return s.token, nil
}

// parseIdentity extracts claims without verifying the signature: the API is
// the verifying party, the client merely needs subject, email, and expiry.
func parseIdentity(raw string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("parse credential: %w", err)
	}
	identity := Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		identity.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
		if time.Now().After(exp.Time) {
			return Identity{}, ErrExpired
		}
	}
	if identity.UserID == "" {
		return Identity{}, errors.New("credential subject missing")
	}
	return identity, nil
}
