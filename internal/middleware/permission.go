package middleware // middleware provides shared request processing for handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/metrics"
	"github.com/iliyamo/production-manager/internal/model"
	"github.com/iliyamo/production-manager/internal/rbac"
)

// RequirePermission returns a middleware that authenticates the caller
// through the guard and requires every listed permission.  The first
// missing permission is reported in the 403 details.  With no permissions
// it only authenticates.
func RequirePermission(g *auth.Guard, perms ...model.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(perms) == 0 {
				if _, aerr := g.AuthenticateRequest(c); aerr != nil {
					return auth.Respond(c, aerr)
				}
				return next(c)
			}
			for _, p := range perms {
				if _, aerr := g.Require(c, p); aerr != nil {
					return auth.Respond(c, aerr)
				}
			}
			return next(c)
		}
	}
}

// RequireAnyPermission lets the request through when the caller holds at
// least one of perms.
func RequireAnyPermission(g *auth.Guard, perms ...model.Permission) echo.MiddlewareFunc {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	details := "Se requiere alguno de los permisos: " + strings.Join(names, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, aerr := g.AuthenticateRequest(c)
			if aerr != nil {
				return auth.Respond(c, aerr)
			}
			if !rbac.HasAnyPermission(id, perms) {
				metrics.RecordPermissionDenied(string(id.Role), strings.Join(names, "|"))
				return auth.Respond(c, auth.NewError(auth.CodeInsufficientPermissions, details))
			}
			return next(c)
		}
	}
}
