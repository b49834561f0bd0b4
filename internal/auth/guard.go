package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/logging"
	"github.com/iliyamo/production-manager/internal/metrics"
	"github.com/iliyamo/production-manager/internal/model"
	"github.com/iliyamo/production-manager/internal/rbac"
)

// Cookie names.  CookieToken is the legacy fallback the guard checks
// first; CookieAuthToken is the one the login endpoint sets.
const (
	CookieToken     = "token"
	CookieAuthToken = "auth-token"
)

// TokenVerifier is the part of the token service the guard needs.
type TokenVerifier interface {
	VerifyAccessToken(raw string) (model.Identity, bool)
}

// Guard authenticates requests and checks permissions.  It is the only
// place a raw access token is turned into an identity: the routing
// middleware calls Resolve as well.
type Guard struct {
	tokens  TokenVerifier
	cookies []string
}

// NewGuard builds a Guard.  With no cookie names it falls back to the
// "token" cookie and then "auth-token".
func NewGuard(tokens TokenVerifier, cookieNames ...string) *Guard {
	if len(cookieNames) == 0 {
		cookieNames = []string{CookieToken, CookieAuthToken}
	}
	return &Guard{tokens: tokens, cookies: cookieNames}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.  It returns "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// TokenFromCookie returns the first non-empty cookie among the guard's names.
func (g *Guard) TokenFromCookie(r *http.Request) string {
	for _, name := range g.cookies {
		if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
			return ck.Value
		}
	}
	return ""
}

// Resolve verifies a raw token.  An empty token is MISSING_TOKEN; any
// verification failure is INVALID_TOKEN.
func (g *Guard) Resolve(raw string) (model.Identity, *AuthError) {
	if raw == "" {
		return model.Identity{}, ErrMissingToken()
	}
	id, ok := g.tokens.VerifyAccessToken(raw)
	if !ok {
		return model.Identity{}, ErrInvalidToken()
	}
	return id, nil
}

// AuthenticateRequest returns the caller's identity.  An identity already
// resolved by the routing middleware is reused; otherwise the bearer
// header is tried, then the cookies.
func (g *Guard) AuthenticateRequest(c echo.Context) (model.Identity, *AuthError) {
	if id, ok := IdentityFrom(c); ok {
		return id, nil
	}
	raw := BearerToken(c.Request())
	if raw == "" {
		raw = g.TokenFromCookie(c.Request())
	}
	id, aerr := g.Resolve(raw)
	if aerr != nil {
		metrics.RecordAuthFailure(string(aerr.Code), "guard")
		return model.Identity{}, aerr
	}
	WithIdentity(c, id)
	return id, nil
}

// CheckPermission returns nil when id holds perm, else an
// INSUFFICIENT_PERMISSIONS error naming perm.
func CheckPermission(id model.Identity, perm model.Permission) *AuthError {
	if rbac.HasPermission(id, perm) {
		return nil
	}
	return ErrInsufficientPermissions(perm)
}

// Require authenticates c and checks perm in one step.  Denials are logged
// with the missing permission.
func (g *Guard) Require(c echo.Context, perm model.Permission) (model.Identity, *AuthError) {
	id, aerr := g.AuthenticateRequest(c)
	if aerr != nil {
		return model.Identity{}, aerr
	}
	if aerr := CheckPermission(id, perm); aerr != nil {
		metrics.RecordPermissionDenied(string(id.Role), string(perm))
		logging.Ctx(c.Request().Context()).Warn().
			Uint64("user_id", id.UserID).
			Str("role", string(id.Role)).
			Str("permission", string(perm)).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("permission denied")
		return id, aerr
	}
	return id, nil
}

// Respond writes aerr as JSON.
func Respond(c echo.Context, aerr *AuthError) error {
	return c.JSON(aerr.StatusCode, aerr)
}
