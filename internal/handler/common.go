package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/model"
	"github.com/iliyamo/production-manager/internal/utils"
)

// dbTimeout bounds every repository call made by a handler.
const dbTimeout = 5 * time.Second

// UserStore is the part of repository.UserRepo the handlers use.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, role model.Role) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id uint64, role model.Role) error
	Delete(ctx context.Context, id uint64) error
}

// ClientStore is the part of repository.ClientRepo the handlers use.
type ClientStore interface {
	List(ctx context.Context, search string, limit, offset int) ([]*model.Client, int, error)
	GetByID(ctx context.Context, id uint64) (*model.Client, error)
	Create(ctx context.Context, c *model.Client) error
	Update(ctx context.Context, c *model.Client, ownerID uint64) error
	Delete(ctx context.Context, id uint64) error
}

// TokenIssuer is the part of utils.TokenService the auth handler uses.
type TokenIssuer interface {
	GenerateTokenPair(id model.Identity) (utils.TokenPair, error)
	VerifyRefreshToken(raw string) (model.Identity, bool)
	AccessTTL() time.Duration
}

// errorBody is the JSON shape of every non-auth error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorBody{Error: msg})
}

func notFound(c echo.Context, msg string) error { return jsonError(c, http.StatusNotFound, msg) }

func conflict(c echo.Context, msg string) error { return jsonError(c, http.StatusConflict, msg) }

// userResponse is the public view of a user; the password hash never
// leaves the repository layer through it.
type userResponse struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"nombre"`
	Email     string     `json:"email"`
	Role      model.Role `json:"rol"`
	IsActive  bool       `json:"activo"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
