package identity

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Email: "Viewer@Example.com", Password: "hunter22", DisplayName: "Viewer"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "viewer@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.TokenVersion != 1 {
		t.Fatalf("expected token version 1, got %d", user.TokenVersion)
	}

	authed, err := svc.Authenticate(ctx, Credentials{Email: "viewer@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Email: "viewer@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, Credentials{Email: "viewer@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, Credentials{Email: "nobody@example.com", Password: "hunter22"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Email: "not-an-email", Password: "hunter22"}); err == nil {
		t.Fatal("expected invalid email error")
	}
	if _, err := svc.Register(ctx, Credentials{Email: "viewer@example.com", Password: "short"}); err == nil {
		t.Fatal("expected short password error")
	}

	if _, err := svc.Register(ctx, Credentials{Email: "viewer@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, Credentials{Email: "viewer@example.com", Password: "hunter22"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestRegisterDefaultsDisplayName(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	user, err := svc.Register(context.Background(), Credentials{Email: "viewer@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.DisplayName != "viewer" {
		t.Fatalf("expected display name from email local part, got %q", user.DisplayName)
	}
}
