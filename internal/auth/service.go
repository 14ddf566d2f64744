package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/watchpay/watchpay/internal/config"
	"github.com/watchpay/watchpay/internal/identity"
)

// ErrInvalidToken covers malformed, expired, or version-invalidated tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims issued for access and refresh tokens.
type Claims struct {
	TokenVersion int `json:"ver"`
	jwt.RegisteredClaims
}

// Service issues and verifies token pairs.
type Service struct {
	cfg  config.Config
	repo identity.Repository
}

// NewService builds an auth service.
func NewService(cfg config.Config, repo identity.Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

// TokenPair bundles the issued tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues an access/refresh token pair for an authenticated user.
func (s *Service) Login(user identity.User) (TokenPair, error) {
	access, err := s.sign(user.ID, user.TokenVersion, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(user.ID, user.TokenVersion, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Refresh verifies the refresh token and issues a new access token when the
// token version is still current.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := parse(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", 0, ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		return "", 0, ErrInvalidToken
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", 0, ErrInvalidToken
	}

	access, err := s.sign(user.ID, user.TokenVersion, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout bumps the user's token version so previously issued tokens stop
// validating.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
}

// VerifyAccess parses an access token and checks its version against the
// stored user, returning the user ID on success.
func (s *Service) VerifyAccess(ctx context.Context, token string) (string, error) {
	claims, err := parse(token, s.cfg.JWTSecret)
	if err != nil {
		return "", ErrInvalidToken
	}
	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil || user.TokenVersion != claims.TokenVersion {
		return "", ErrInvalidToken
	}
	return user.ID, nil
}

func (s *Service) sign(userID string, version int, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenVersion: version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.AppName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parse(token, secret string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
