package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/audit"
	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/config"
	"github.com/iliyamo/production-manager/internal/model"
	"github.com/iliyamo/production-manager/internal/repository"
	"github.com/iliyamo/production-manager/internal/utils"
	"github.com/iliyamo/production-manager/internal/validation"
)

// UserHandler serves /api/usuarios.  The route group is gated on
// manage:users, so every handler here runs with the guard's identity
// already in context.
type UserHandler struct {
	Cfg   config.Config
	Users UserStore
	Audit *audit.Logger
}

func NewUserHandler(cfg config.Config, u UserStore, a *audit.Logger) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Audit: a}
}

// caller returns the identity stored by the permission gate.
func caller(c echo.Context) model.Identity {
	id, _ := auth.IdentityFrom(c)
	return id
}

// List returns all users, optionally filtered by ?rol=.
func (h *UserHandler) List(c echo.Context) error {
	var q validation.UserListQuery
	res, err := validation.ValidateRequest(c, validation.Request{Query: &q})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return err
	}

	role, _ := model.ParseRole(q.Role)
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		if q.Role != "" && u.Role != role {
			continue
		}
		out = append(out, toUserResponse(u))
	}
	h.Audit.Record(c, caller(c), "Listar usuarios")
	return c.JSON(http.StatusOK, out)
}

// Create registers a new user with the given role.
func (h *UserHandler) Create(c echo.Context) error {
	req, res, err := validation.Body[validation.CreateUserRequest](c, true)
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return auth.Respond(c, auth.ErrInvalidRole(req.Role))
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return auth.Respond(c, auth.ErrUserExists())
		}
		return err
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	h.Audit.Record(c, caller(c), "Crear usuario", "id="+strconv.FormatUint(uid, 10), "rol="+string(role))
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// UpdateRole changes the role of /:id.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var params validation.IDParams
	var body validation.UpdateUserRoleRequest
	res, err := validation.ValidateRequest(c, validation.Request{Body: &body, Params: &params, Sanitize: true})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}
	role, ok := model.ParseRole(body.Role)
	if !ok {
		return auth.Respond(c, auth.ErrInvalidRole(body.Role))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, params.ID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return auth.Respond(c, auth.ErrUserNotFound())
		}
		return err
	}
	u, err := h.Users.GetByID(ctx, params.ID)
	if err != nil {
		return err
	}
	h.Audit.Record(c, caller(c), "Cambiar rol de usuario", "id="+strconv.FormatUint(params.ID, 10), "rol="+string(role))
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// Delete removes /:id.  Users cannot delete themselves.
func (h *UserHandler) Delete(c echo.Context) error {
	var params validation.IDParams
	res, err := validation.ValidateRequest(c, validation.Request{Params: &params})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}
	me := caller(c)
	if params.ID == me.UserID {
		return conflict(c, "No puede eliminar su propio usuario")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, params.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return auth.Respond(c, auth.ErrUserNotFound())
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "El usuario tiene registros asociados")
		}
		return err
	}
	h.Audit.Record(c, me, "Eliminar usuario", "id="+strconv.FormatUint(params.ID, 10))
	return c.NoContent(http.StatusNoContent)
}
