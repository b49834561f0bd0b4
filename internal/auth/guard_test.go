package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/model"
)

// stubVerifier accepts exactly one token.
type stubVerifier struct {
	token string
	id    model.Identity
	calls int
}

func (s *stubVerifier) VerifyAccessToken(raw string) (model.Identity, bool) {
	s.calls++
	if raw == s.token {
		return s.id, true
	}
	return model.Identity{}, false
}

var operario = model.Identity{UserID: 3, Email: "op@example.com", Role: model.RoleOperario}

func newCtx(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if got := BearerToken(req); got != tt.want {
				t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestAuthenticateRequest(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		cookies  map[string]string
		wantCode Code
	}{
		{"no credentials", "", nil, CodeMissingToken},
		{"valid header", "Bearer good", nil, ""},
		{"invalid header", "Bearer bad", nil, CodeInvalidToken},
		{"token cookie", "", map[string]string{CookieToken: "good"}, ""},
		{"auth-token cookie", "", map[string]string{CookieAuthToken: "good"}, ""},
		{"token cookie wins", "", map[string]string{CookieToken: "bad", CookieAuthToken: "good"}, CodeInvalidToken},
		{"header wins over cookie", "Bearer bad", map[string]string{CookieToken: "good"}, CodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(&stubVerifier{token: "good", id: operario})
			req := httptest.NewRequest(http.MethodGet, "/api/clientes", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			for name, v := range tt.cookies {
				req.AddCookie(&http.Cookie{Name: name, Value: v})
			}
			c, _ := newCtx(req)

			id, aerr := g.AuthenticateRequest(c)
			if tt.wantCode == "" {
				if aerr != nil {
					t.Fatalf("unexpected error %v", aerr)
				}
				if id != operario {
					t.Errorf("identity = %+v", id)
				}
				return
			}
			if aerr == nil || aerr.Code != tt.wantCode {
				t.Fatalf("error = %v, want %s", aerr, tt.wantCode)
			}
			if aerr.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d", aerr.StatusCode)
			}
		})
	}
}

func TestAuthenticateRequest_ReusesContextIdentity(t *testing.T) {
	v := &stubVerifier{token: "good", id: operario}
	g := NewGuard(v)
	c, _ := newCtx(httptest.NewRequest(http.MethodGet, "/", nil))
	WithIdentity(c, operario)

	id, aerr := g.AuthenticateRequest(c)
	if aerr != nil || id != operario {
		t.Fatalf("got %+v, %v", id, aerr)
	}
	if v.calls != 0 {
		t.Errorf("token verified %d times, want 0", v.calls)
	}
}

func TestCheckPermission(t *testing.T) {
	if aerr := CheckPermission(operario, model.PermReadAll); aerr != nil {
		t.Fatalf("operario read:all denied: %v", aerr)
	}
	aerr := CheckPermission(operario, model.PermManageUsers)
	if aerr == nil {
		t.Fatal("operario manage:users allowed")
	}
	if aerr.StatusCode != http.StatusForbidden || aerr.Code != CodeInsufficientPermissions {
		t.Errorf("got %+v", aerr)
	}
	if !strings.Contains(aerr.Details, "manage:users") {
		t.Errorf("details %q do not name the permission", aerr.Details)
	}
}

func TestRequire(t *testing.T) {
	g := NewGuard(&stubVerifier{token: "good", id: operario})
	req := httptest.NewRequest(http.MethodDelete, "/api/usuarios/1", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	c, rec := newCtx(req)

	id, aerr := g.Require(c, model.PermManageUsers)
	if aerr == nil {
		t.Fatal("expected denial")
	}
	if id != operario {
		t.Errorf("identity = %+v", id)
	}
	if err := Respond(c, aerr); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"error":"Permisos insuficientes"`, `"statusCode":403`, `manage:users`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}

func TestErrorContract(t *testing.T) {
	tests := []struct {
		err    *AuthError
		status int
	}{
		{ErrMissingToken(), http.StatusUnauthorized},
		{ErrInvalidToken(), http.StatusUnauthorized},
		{ErrInsufficientPermissions(model.PermReadAll), http.StatusForbidden},
		{ErrUserNotFound(), http.StatusNotFound},
		{ErrUserExists(), http.StatusConflict},
		{ErrInvalidRole("jefe"), http.StatusBadRequest},
		{ErrInvalidCredentials(), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if tt.err.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode, tt.status)
			}
			if tt.err.Message == "" {
				t.Error("empty message")
			}
		})
	}
	if ErrMissingToken().Message != "Token no proporcionado" {
		t.Error("MISSING_TOKEN message changed")
	}
}
