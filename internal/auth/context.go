package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/model"
)

// identityKey is the echo.Context key under which the routing middleware
// stores the decoded identity.  Downstream code reads it through IdentityFrom
// instead of decoding the token again.
const identityKey = "auth.identity"

// Forwarded identity headers set by the routing middleware.
const (
	HeaderUserID    = "x-user-id"
	HeaderUserEmail = "x-user-email"
	HeaderUserRole  = "x-user-role"
)

// WithIdentity stores id on the request context.
func WithIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}
