package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/metrics"
)

// RouteMatcher decides which paths the routing layer protects.  Patterns
// are exact paths or a prefix ending in "/*", which also matches the bare
// prefix ("/api/*" matches "/api" and "/api/clientes").  Public patterns win
// over protected ones.
type RouteMatcher struct {
	Protected []string
	Public    []string
}

// DefaultRouteMatcher protects the dashboard UI and the whole API except
// the endpoints needed to obtain or drop a session.
func DefaultRouteMatcher() RouteMatcher {
	return RouteMatcher{
		Protected: []string{"/dashboard/*", "/api/*"},
		Public:    []string{"/login", "/api/auth/login", "/api/auth/refresh", "/api/auth/logout"},
	}
}

func matchPattern(pattern, path string) bool {
	if base, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == pattern
}

// IsPublic reports whether path is on the public allowlist.
func (m RouteMatcher) IsPublic(path string) bool {
	for _, p := range m.Public {
		if matchPattern(p, path) {
			return true
		}
	}
	return false
}

// IsProtected reports whether path requires a valid access token.
func (m RouteMatcher) IsProtected(path string) bool {
	if m.IsPublic(path) {
		return false
	}
	for _, p := range m.Protected {
		if matchPattern(p, path) {
			return true
		}
	}
	return false
}

// AuthConfig configures Authenticate.
type AuthConfig struct {
	Guard  *auth.Guard
	Routes RouteMatcher
	// CookieFallback lets this layer accept the session cookie when no
	// Authorization header is sent.  Off by default: only the per-route
	// guard reads cookies unless this is enabled.
	CookieFallback bool
	// LoginPath is where UI requests are redirected; defaults to "/login".
	LoginPath string
	// APIPrefix selects JSON rejections instead of redirects; defaults to "/api".
	APIPrefix string
}

// Authenticate returns the routing-layer middleware.  It runs before
// every request, lets public and unmatched paths through, and requires a
// valid bearer token on protected ones.  The decoded identity is stored in
// the echo context for the guard and forwarded as x-user-* request
// headers.  Rejections are a JSON 401 on API paths and a redirect to the
// login page elsewhere.
func Authenticate(cfg AuthConfig) echo.MiddlewareFunc {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			// identity headers are only ever set here
			req.Header.Del(auth.HeaderUserID)
			req.Header.Del(auth.HeaderUserEmail)
			req.Header.Del(auth.HeaderUserRole)

			path := req.URL.Path
			if !cfg.Routes.IsProtected(path) {
				return next(c)
			}

			raw := auth.BearerToken(req)
			if raw == "" && cfg.CookieFallback {
				raw = cfg.Guard.TokenFromCookie(req)
			}
			id, aerr := cfg.Guard.Resolve(raw)
			if aerr != nil {
				metrics.RecordAuthFailure(string(aerr.Code), "middleware")
				if matchPattern(cfg.APIPrefix+"/*", path) {
					return auth.Respond(c, aerr)
				}
				return c.Redirect(http.StatusFound, cfg.LoginPath+"?from="+url.QueryEscape(path))
			}

			req.Header.Set(auth.HeaderUserID, strconv.FormatUint(id.UserID, 10))
			req.Header.Set(auth.HeaderUserEmail, id.Email)
			req.Header.Set(auth.HeaderUserRole, string(id.Role))
			auth.WithIdentity(c, id)
			return next(c)
		}
	}
}
