package auth

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"bubble-defense/internal/progression"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) (*Auth, *progression.Store) {
	t.Helper()
	s, err := progression.OpenStore(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	a := New(s)
	a.SetCost(bcrypt.MinCost)
	return a, s
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	a, _ := newTestAuth(t)

	id, token, err := a.Register("pilot", "secret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	pid, name, err := a.ValidateToken(token)
	if err != nil || pid != id || name != "pilot" {
		t.Errorf("token should validate to %d/pilot, got %d/%s (%v)", id, pid, name, err)
	}

	lid, ltoken, err := a.Login("pilot", "secret", "1.2.3.4")
	if err != nil || lid != id {
		t.Fatalf("login failed: %v", err)
	}
	if pid, _, err := a.ValidateToken(ltoken); err != nil || pid != id {
		t.Errorf("login token should validate to %d, got %d (%v)", id, pid, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	a, _ := newTestAuth(t)

	if _, _, err := a.Register("x", "secret"); err == nil {
		t.Error("short username should be rejected")
	}
	if _, _, err := a.Register(strings.Repeat("y", MaxUsernameLen+1), "secret"); err == nil {
		t.Error("long username should be rejected")
	}
	if _, _, err := a.Register("pilot", "abc"); err == nil {
		t.Error("short password should be rejected")
	}
	if _, _, err := a.Register("Guest_1234", "secret"); err == nil {
		t.Error("guest prefix should be reserved")
	}
	if _, _, err := a.Register("pilot", "secret"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.Register(" pilot ", "other1"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a, s := newTestAuth(t)
	a.Register("pilot", "secret")
	s.CreateGuest("Guest_abcdef")

	if _, _, err := a.Login("pilot", "wrong", "ip"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := a.Login("nobody", "secret", "ip"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, _, err := a.Login("Guest_abcdef", "", "ip"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("guests cannot log in, got %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	a, _ := newTestAuth(t)
	a.Register("pilot", "secret")

	for i := 0; i < MaxLoginAttempts; i++ {
		a.Login("pilot", "wrong", "9.9.9.9")
	}
	if _, _, err := a.Login("pilot", "secret", "9.9.9.9"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if _, _, err := a.Login("pilot", "secret", "8.8.8.8"); err != nil {
		t.Errorf("other addresses should not be limited, got %v", err)
	}
}

func TestSecretPersists(t *testing.T) {
	a, s := newTestAuth(t)
	_, token, err := a.Register("pilot", "secret")
	if err != nil {
		t.Fatal(err)
	}

	b := New(s)
	if _, _, err := b.ValidateToken(token); err != nil {
		t.Errorf("a second Auth on the same store should accept the token, got %v", err)
	}
	other := New(nil)
	if _, _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("a different secret should reject the token, got %v", err)
	}
}

func TestGuestName(t *testing.T) {
	n := GuestName()
	if !strings.HasPrefix(n, GuestPrefix) || len(n) != len(GuestPrefix)+6 {
		t.Errorf("unexpected guest name %q", n)
	}
}
