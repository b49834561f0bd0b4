package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/production-manager/internal/model"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:  "access_secret_for_tests_with_plenty_of_length",
		RefreshSecret: "refresh_secret_for_tests_with_plenty_of_length",
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr bool
	}{
		{"both secrets", TokenConfig{AccessSecret: "a", RefreshSecret: "r"}, false},
		{"missing access", TokenConfig{RefreshSecret: "r"}, true},
		{"missing refresh", TokenConfig{AccessSecret: "a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewTokenService() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTokenService() unexpected error = %v", err)
			}
			if svc.AccessTTL() != DefaultAccessTTL {
				t.Errorf("AccessTTL() = %v, want %v", svc.AccessTTL(), DefaultAccessTTL)
			}
			if svc.refreshTTL != DefaultRefreshTTL {
				t.Errorf("refreshTTL = %v, want %v", svc.refreshTTL, DefaultRefreshTTL)
			}
		})
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	for _, role := range model.AllRoles() {
		t.Run(string(role), func(t *testing.T) {
			want := model.Identity{UserID: 42, Email: "ana@planta.mx", Role: role}
			tok, err := svc.GenerateAccessToken(want)
			if err != nil {
				t.Fatalf("GenerateAccessToken() error = %v", err)
			}
			got, ok := svc.VerifyAccessToken(tok)
			if !ok {
				t.Fatal("VerifyAccessToken() rejected a fresh token")
			}
			if got != want {
				t.Errorf("VerifyAccessToken() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestTokenPair_KindsAreNotInterchangeable(t *testing.T) {
	svc := newTestService(t)
	id := model.Identity{UserID: 7, Email: "op@planta.mx", Role: model.RoleOperario}
	pair, err := svc.GenerateTokenPair(id)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if got, ok := svc.VerifyRefreshToken(pair.RefreshToken); !ok || got != id {
		t.Errorf("VerifyRefreshToken() = %+v, %v", got, ok)
	}
	if _, ok := svc.VerifyAccessToken(pair.RefreshToken); ok {
		t.Error("refresh token accepted as access token")
	}
	if _, ok := svc.VerifyRefreshToken(pair.AccessToken); ok {
		t.Error("access token accepted as refresh token")
	}
}

func TestVerifyAccessToken_Rejects(t *testing.T) {
	svc := newTestService(t)
	id := model.Identity{UserID: 1, Email: "admin@planta.mx", Role: model.RoleAdmin}
	valid, err := svc.GenerateAccessToken(id)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	expired := func() string {
		old := newTestService(t)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := old.GenerateAccessToken(id)
		if err != nil {
			t.Fatalf("GenerateAccessToken() error = %v", err)
		}
		return tok
	}()

	otherSecret := func() string {
		other, _ := NewTokenService(TokenConfig{AccessSecret: "different", RefreshSecret: "different"})
		tok, _ := other.GenerateAccessToken(id)
		return tok
	}()

	badRole := func() string {
		claims := Claims{
			UserID: 1, Email: "x@planta.mx", Role: "root", Kind: kindAccess,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		}
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.accessSecret)
		return tok
	}()

	noneAlg := func() string {
		claims := Claims{
			UserID: 1, Email: "x@planta.mx", Role: model.RoleAdmin, Kind: kindAccess,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		}
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		return tok
	}()

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered payload", tampered},
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"unknown role", badRole},
		{"alg none", noneAlg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := svc.VerifyAccessToken(tt.token)
			if ok {
				t.Errorf("VerifyAccessToken() accepted %s token", tt.name)
			}
			if got != (model.Identity{}) {
				t.Errorf("VerifyAccessToken() returned identity %+v on failure", got)
			}
		})
	}
}
