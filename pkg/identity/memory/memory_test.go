package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rhuss/pforte/pkg/identity"
)

func seeded() *Store {
	s := New()
	s.AddAccount(identity.Account{
		ID:           "u1",
		Email:        "u1@example.com",
		Name:         "User One",
		PasswordHash: "$2a$10$secret",
		FailedLogins: 3,
		Active:       true,
	})
	s.AddKey(identity.APIKey{
		ID:          "k1",
		AccountID:   "u1",
		KeyHash:     "hash-1",
		Active:      true,
		Permissions: []string{"data:read"},
	})
	s.AddKey(identity.APIKey{
		ID:        "k2",
		AccountID: "u1",
		KeyHash:   "hash-2",
		Active:    false,
	})
	return s
}

func TestFindAccountByID(t *testing.T) {
	s := seeded()

	a, err := s.FindAccountByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Email != "u1@example.com" {
		t.Errorf("email = %q, want %q", a.Email, "u1@example.com")
	}

	// Projection excludes sensitive fields.
	if a.PasswordHash != "" {
		t.Error("projection leaked password hash")
	}
	if a.FailedLogins != 0 {
		t.Error("projection leaked lockout counter")
	}
}

func TestFindAccountByID_NotFound(t *testing.T) {
	s := seeded()

	_, err := s.FindAccountByID(context.Background(), "ghost")
	if !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFindActiveKeyByHash(t *testing.T) {
	s := seeded()

	key, account, err := s.FindActiveKeyByHash(context.Background(), "hash-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.ID != "k1" {
		t.Errorf("key ID = %q, want %q", key.ID, "k1")
	}
	if account.ID != "u1" {
		t.Errorf("account ID = %q, want %q", account.ID, "u1")
	}
	if account.PasswordHash != "" {
		t.Error("joined account leaked password hash")
	}
}

func TestFindActiveKeyByHash_InactiveTreatedAsAbsent(t *testing.T) {
	s := seeded()

	_, _, err := s.FindActiveKeyByHash(context.Background(), "hash-2")
	if !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for inactive key", err)
	}
}

func TestFindActiveKeyByHash_Unknown(t *testing.T) {
	s := seeded()

	_, _, err := s.FindActiveKeyByHash(context.Background(), "hash-none")
	if !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTouchKey(t *testing.T) {
	s := seeded()

	if ts := s.LastUsed("k1"); ts != nil {
		t.Fatal("expected nil last-used before touch")
	}

	before := time.Now()
	if err := s.TouchKey(context.Background(), "k1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ts := s.LastUsed("k1")
	if ts == nil {
		t.Fatal("last-used not set after touch")
	}
	if ts.Before(before) {
		t.Errorf("last-used %v predates the touch", ts)
	}
}

func TestTouchKey_Unknown(t *testing.T) {
	s := seeded()

	if err := s.TouchKey(context.Background(), "ghost"); !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
