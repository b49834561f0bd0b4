package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/production-manager/internal/model"
)

// Token kinds stored in the "typ" claim so an access token can never be
// replayed as a refresh token even if both secrets were ever equal.
const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Default lifetimes.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrMissingSecret is returned by NewTokenService when a signing secret is empty.
var ErrMissingSecret = errors.New("token signing secret is empty")

// Claims is the JWT body: the identity plus the registered claims.
type Claims struct {
	UserID uint64     `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	Kind   string     `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService signs and verifies access and refresh tokens.  Access and
// refresh tokens use different secrets.  It holds no mutable state and is
// safe for concurrent use.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// TokenConfig carries the secrets and lifetimes.  Zero TTLs fall back to
// 15 minutes and 7 days.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// NewTokenService validates cfg and builds a TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// AccessTTL is the lifetime of access tokens; the login cookie uses it as max-age.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// GenerateAccessToken signs a short-lived token for id.
func (s *TokenService) GenerateAccessToken(id model.Identity) (string, error) {
	return s.sign(id, kindAccess, s.accessSecret, s.accessTTL)
}

// GenerateRefreshToken signs a long-lived token for id with the refresh secret.
func (s *TokenService) GenerateRefreshToken(id model.Identity) (string, error) {
	return s.sign(id, kindRefresh, s.refreshSecret, s.refreshTTL)
}

// GenerateTokenPair issues both tokens for id.
func (s *TokenService) GenerateTokenPair(id model.Identity) (TokenPair, error) {
	access, err := s.GenerateAccessToken(id)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.GenerateRefreshToken(id)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccessToken checks signature, expiry and kind.  The boolean is false
// for any failure; callers treat that as "unauthenticated".
func (s *TokenService) VerifyAccessToken(raw string) (model.Identity, bool) {
	return s.verify(raw, kindAccess, s.accessSecret)
}

// VerifyRefreshToken is VerifyAccessToken for refresh tokens.
func (s *TokenService) VerifyRefreshToken(raw string) (model.Identity, bool) {
	return s.verify(raw, kindRefresh, s.refreshSecret)
}

func (s *TokenService) sign(id model.Identity, kind string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(raw string, kind string, secret []byte) (model.Identity, bool) {
	if raw == "" {
		return model.Identity{}, false
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return model.Identity{}, false
	}
	if claims.Kind != kind || !claims.Role.Valid() || claims.UserID == 0 {
		return model.Identity{}, false
	}
	return model.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, true
}
