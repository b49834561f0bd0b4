package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/audit"
	"github.com/iliyamo/production-manager/internal/auth"
)

// AuditOperation records action for every request that completes with a
// 2xx status.  Mount it after the permission gate and before the response
// cache so cache hits are recorded too.  details may be nil.
func AuditOperation(l *audit.Logger, action string, details func(c echo.Context) []string) echo.MiddlewareFunc {
	if l == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if status := c.Response().Status; status < 200 || status > 299 {
				return nil
			}
			id, ok := auth.IdentityFrom(c)
			if !ok {
				return nil
			}
			var extra []string
			if details != nil {
				extra = details(c)
			}
			l.Record(c, id, action, extra...)
			return nil
		}
	}
}
