package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"mnemoniq/internal/apiclient"
)

func signedToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub}
	if email != "" {
		claims["email"] = email
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestSession(t *testing.T) (*Session, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	return New(NewStore(path)), path
}

func TestRestoreWithoutCredentialIsAnonymous(t *testing.T) {
	s, _ := newTestSession(t)
	if s.State() != StateLoading {
		t.Fatalf("initial state = %v", s.State())
	}
	if got := s.Restore(); got != StateAnonymous {
		t.Fatalf("restore = %v", got)
	}
}

func TestRestoreValidCredential(t *testing.T) {
	s, path := newTestSession(t)
	token := signedToken(t, "user-1", "u@example.com", time.Now().Add(time.Hour))
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if got := s.Restore(); got != StateAuthenticated {
		t.Fatalf("restore = %v", got)
	}
	identity, ok := s.Identity()
	if !ok || identity.UserID != "user-1" || identity.Email != "u@example.com" {
		t.Fatalf("identity = %+v ok = %v", identity, ok)
	}
	got, err := s.Token(context.Background())
	if err != nil || got != token {
		t.Fatalf("token = %q err = %v", got, err)
	}
}

func TestRestoreExpiredCredentialIsAnonymous(t *testing.T) {
	s, path := newTestSession(t)
	token := signedToken(t, "user-1", "", time.Now().Add(-time.Minute))
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if got := s.Restore(); got != StateAnonymous {
		t.Fatalf("restore of expired token = %v", got)
	}
}

func TestSignInPersistsAndSignOutDeletes(t *testing.T) {
	s, path := newTestSession(t)
	s.Restore()
	token := signedToken(t, "user-2", "", time.Now().Add(time.Hour))
	if err := s.SignIn(token); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if s.State() != StateAuthenticated {
		t.Fatalf("state = %v", s.State())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("credential not persisted: %v", err)
	}
	if err := s.SignOut(); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if s.State() != StateAnonymous {
		t.Fatalf("state after sign out = %v", s.State())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("credential file should be gone, err = %v", err)
	}
}

func TestSignInRejectsGarbageAndExpired(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.SignIn("not-a-jwt"); err == nil {
		t.Fatalf("garbage credential should fail")
	}
	expired := signedToken(t, "user-1", "", time.Now().Add(-time.Hour))
	if err := s.SignIn(expired); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestTokenWhileNotAuthenticated(t *testing.T) {
	s, _ := newTestSession(t)
	for _, state := range []State{StateLoading, StateAnonymous} {
		if state == StateAnonymous {
			s.Restore()
		}
		_, err := s.Token(context.Background())
		var authErr *apiclient.AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("state %v: expected AuthError, got %v", state, err)
		}
	}
}
