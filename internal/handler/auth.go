package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/audit"
	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/config"
	"github.com/iliyamo/production-manager/internal/model"
	"github.com/iliyamo/production-manager/internal/rbac"
	"github.com/iliyamo/production-manager/internal/repository"
	"github.com/iliyamo/production-manager/internal/utils"
	"github.com/iliyamo/production-manager/internal/validation"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenIssuer
	Guard  *auth.Guard
	Audit  *audit.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenIssuer, g *auth.Guard, a *audit.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Guard: g, Audit: a}
}

type authResp struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"` // access token lifetime in seconds
}

type meResp struct {
	User        model.Identity     `json:"user"`
	Permissions []model.Permission `json:"permissions"`
}

// setSessionCookie stores the access token in the auth-token cookie with
// the same lifetime as the token.
func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieAuthToken,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Tokens.AccessTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) issue(c echo.Context, u model.User) error {
	pair, err := h.Tokens.GenerateTokenPair(u.Identity())
	if err != nil {
		return err
	}
	h.setSessionCookie(c, pair.AccessToken)
	return c.JSON(http.StatusOK, authResp{
		User:         toUserResponse(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(h.Tokens.AccessTTL().Seconds()),
	})
}

// Login: verify credentials, return a token pair and set the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	req, res, err := validation.Body[validation.LoginRequest](c, false)
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			utils.BurnPasswordCheck(req.Password)
			return auth.Respond(c, auth.ErrInvalidCredentials())
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) || !u.IsActive || !u.Role.Valid() {
		return auth.Respond(c, auth.ErrInvalidCredentials())
	}

	h.Audit.Record(c, u.Identity(), "Inicio de sesión")
	return h.issue(c, u)
}

// Refresh: exchange a refresh token for a new pair.  The user is reloaded
// so role changes take effect on the next refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	req, res, err := validation.Body[validation.RefreshRequest](c, false)
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}
	id, ok := h.Tokens.VerifyRefreshToken(req.RefreshToken)
	if !ok {
		return auth.Respond(c, auth.ErrInvalidToken())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return auth.Respond(c, auth.ErrUserNotFound())
		}
		return err
	}
	if !u.IsActive {
		return auth.Respond(c, auth.ErrUserNotFound())
	}
	return h.issue(c, u)
}

// Logout clears the session cookie.  Tokens are stateless, so an access
// token already handed out stays valid until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	if id, aerr := h.Guard.AuthenticateRequest(c); aerr == nil {
		h.Audit.Record(c, id, "Cierre de sesión")
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieAuthToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Sesión cerrada"})
}

// Me returns the caller's identity and effective permissions.
func (h *AuthHandler) Me(c echo.Context) error {
	id, aerr := h.Guard.AuthenticateRequest(c)
	if aerr != nil {
		return auth.Respond(c, aerr)
	}
	return c.JSON(http.StatusOK, meResp{User: id, Permissions: rbac.PermissionsFor(id.Role)})
}
