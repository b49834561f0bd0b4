package middleware

// identity.go holds helpers shared by the rate limiter and the response
// cache to key entries by caller.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/auth"
)

// userID returns the authenticated user's id as a string, or "guest" when
// the routing layer has not stored an identity.
func userID(c echo.Context) string {
	id, ok := auth.IdentityFrom(c)
	if !ok || id.UserID == 0 {
		return "guest"
	}
	return strconv.FormatUint(id.UserID, 10)
}

// userRole returns the authenticated role, or "guest".
func userRole(c echo.Context) string {
	id, ok := auth.IdentityFrom(c)
	if !ok || !id.Role.Valid() {
		return "guest"
	}
	return string(id.Role)
}
