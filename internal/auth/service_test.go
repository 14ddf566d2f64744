package auth

import (
	"context"
	"testing"
	"time"

	"github.com/watchpay/watchpay/internal/config"
	"github.com/watchpay/watchpay/internal/identity"
)

func testConfig() config.Config {
	return config.Config{
		AppName:         "WatchPay",
		JWTSecret:       "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}
}

func registeredUser(t *testing.T, repo identity.Repository) identity.User {
	t.Helper()
	ids := identity.NewService(repo)
	user, err := ids.Register(context.Background(), identity.Credentials{Email: "viewer@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestLoginAndVerify(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registeredUser(t, repo)
	svc := NewService(testConfig(), repo)

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	uid, err := svc.VerifyAccess(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if uid != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, uid)
	}

	// Refresh tokens are signed with a different secret and must not pass as access tokens.
	if _, err := svc.VerifyAccess(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("expected refresh token to fail access verification")
	}
}

func TestRefresh(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registeredUser(t, repo)
	svc := NewService(testConfig(), repo)

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, expiresIn, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" || expiresIn != 60 {
		t.Fatalf("unexpected refresh result: %q %d", access, expiresIn)
	}
}

func TestLogoutInvalidatesTokens(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registeredUser(t, repo)
	svc := NewService(testConfig(), repo)
	ctx := context.Background()

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.VerifyAccess(ctx, pair.AccessToken); err != ErrInvalidToken {
		t.Fatalf("expected invalidated access token, got %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); err != ErrInvalidToken {
		t.Fatalf("expected invalidated refresh token, got %v", err)
	}
}
