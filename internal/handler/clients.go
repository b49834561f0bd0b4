package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/audit"
	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/logging"
	"github.com/iliyamo/production-manager/internal/model"
	"github.com/iliyamo/production-manager/internal/rbac"
	"github.com/iliyamo/production-manager/internal/repository"
	"github.com/iliyamo/production-manager/internal/validation"
)

const msgClientNotFound = "Cliente no encontrado"

// ClientHandler serves /api/clientes.  Each handler runs the full
// pipeline itself: guard, validator, repository, audit.  Reads are the
// exception for the audit step: they can be answered from the response
// cache without reaching the handler, so the route records them with
// middleware.AuditOperation instead.
type ClientHandler struct {
	Clients ClientStore
	Guard   *auth.Guard
	Audit   *audit.Logger
	// Purge drops cached client listings after a write.  Optional.
	Purge func(ctx context.Context) error
}

func NewClientHandler(s ClientStore, g *auth.Guard, a *audit.Logger, purge func(ctx context.Context) error) *ClientHandler {
	return &ClientHandler{Clients: s, Guard: g, Audit: a, Purge: purge}
}

type clientPage struct {
	Data  []*model.Client `json:"data"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}

func (h *ClientHandler) purge(c echo.Context) {
	if h.Purge == nil {
		return
	}
	if err := h.Purge(context.WithoutCancel(c.Request().Context())); err != nil {
		logging.Ctx(c.Request().Context()).Warn().Err(err).Msg("client cache purge failed")
	}
}

// requireWrite admits callers with write:all, or with write:own in which
// case the returned owner id restricts updates to their own clients.
func (h *ClientHandler) requireWrite(c echo.Context) (model.Identity, uint64, *auth.AuthError) {
	id, aerr := h.Guard.AuthenticateRequest(c)
	if aerr != nil {
		return id, 0, aerr
	}
	switch {
	case rbac.HasPermission(id, model.PermWriteAll):
		return id, 0, nil
	case rbac.HasPermission(id, model.PermWriteOwn):
		return id, id.UserID, nil
	}
	_, aerr = h.Guard.Require(c, model.PermWriteAll)
	return id, 0, aerr
}

func toClient(req validation.ClientRequest) model.Client {
	c := model.Client{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if req.Contact != nil {
		c.ContactName = req.Contact.Name
		c.ContactEmail = req.Contact.Email
	}
	return c
}

// List returns one page of clients.  Query: page, limit, q.
func (h *ClientHandler) List(c echo.Context) error {
	_, aerr := h.Guard.Require(c, model.PermReadAll)
	if aerr != nil {
		return auth.Respond(c, aerr)
	}
	var q validation.ListQuery
	res, err := validation.ValidateRequest(c, validation.Request{Query: &q})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}
	q.Normalize()

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	clients, total, err := h.Clients.List(ctx, q.Q, q.Limit, q.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientPage{Data: clients, Page: q.Page, Limit: q.Limit, Total: total})
}

// Get returns /:id.
func (h *ClientHandler) Get(c echo.Context) error {
	_, aerr := h.Guard.Require(c, model.PermReadAll)
	if aerr != nil {
		return auth.Respond(c, aerr)
	}
	var params validation.IDParams
	res, err := validation.ValidateRequest(c, validation.Request{Params: &params})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	cl, err := h.Clients.GetByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return notFound(c, msgClientNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

// Create registers a client owned by the caller.
func (h *ClientHandler) Create(c echo.Context) error {
	id, _, aerr := h.requireWrite(c)
	if aerr != nil {
		return auth.Respond(c, aerr)
	}
	req, res, err := validation.Body[validation.ClientRequest](c, true)
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}

	cl := toClient(req)
	cl.CreatedBy = id.UserID

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Clients.Create(ctx, &cl); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "Ya existe un cliente con ese RFC")
		}
		return err
	}
	h.purge(c)
	h.Audit.Record(c, id, "Crear cliente", "id="+strconv.FormatUint(cl.ID, 10), "rfc="+cl.TaxID)
	return c.JSON(http.StatusCreated, cl)
}

// Update replaces the editable fields of /:id.
func (h *ClientHandler) Update(c echo.Context) error {
	id, owner, aerr := h.requireWrite(c)
	if aerr != nil {
		return auth.Respond(c, aerr)
	}
	var params validation.IDParams
	var body validation.ClientRequest
	res, err := validation.ValidateRequest(c, validation.Request{Body: &body, Params: &params, Sanitize: true})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}

	cl := toClient(body)
	cl.ID = params.ID

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Clients.Update(ctx, &cl, owner); err != nil {
		switch {
		case errors.Is(err, repository.ErrClientNotFound):
			return notFound(c, msgClientNotFound)
		case errors.Is(err, repository.ErrForbidden):
			return auth.Respond(c, auth.ErrInsufficientPermissions(model.PermWriteAll))
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "Ya existe un cliente con ese RFC")
		}
		return err
	}
	h.purge(c)
	h.Audit.Record(c, id, "Actualizar cliente", "id="+strconv.FormatUint(cl.ID, 10))
	return c.JSON(http.StatusOK, cl)
}

// Delete removes /:id.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, aerr := h.Guard.Require(c, model.PermDeleteAll)
	if aerr != nil {
		return auth.Respond(c, aerr)
	}
	var params validation.IDParams
	res, err := validation.ValidateRequest(c, validation.Request{Params: &params})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return validation.Respond(c, res)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Clients.Delete(ctx, params.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrClientNotFound):
			return notFound(c, msgClientNotFound)
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "El cliente tiene registros asociados")
		}
		return err
	}
	h.purge(c)
	h.Audit.Record(c, id, "Eliminar cliente", "id="+strconv.FormatUint(params.ID, 10))
	return c.NoContent(http.StatusNoContent)
}
