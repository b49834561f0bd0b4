package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/logging"
)

const msgInternal = "Error interno del servidor"

// spanishStatus replaces echo's default English messages.
var spanishStatus = map[int]string{
	http.StatusBadRequest:            "Solicitud inválida",
	http.StatusNotFound:              "Recurso no encontrado",
	http.StatusMethodNotAllowed:      "Método no permitido",
	http.StatusRequestEntityTooLarge: "Cuerpo de la solicitud demasiado grande",
	http.StatusUnsupportedMediaType:  "Tipo de contenido no soportado",
	http.StatusTooManyRequests:       "Demasiadas solicitudes, intente más tarde",
	http.StatusServiceUnavailable:    "Servicio no disponible",
}

// NewHTTPErrorHandler renders every error returned by a handler as JSON
// {error, details?}.  Unexpected errors become a 500 whose details are
// only included when devMode is set.
func NewHTTPErrorHandler(devMode bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var aerr *auth.AuthError
		if errors.As(err, &aerr) {
			_ = auth.Respond(c, aerr)
			return
		}

		status := http.StatusInternalServerError
		body := errorBody{Error: msgInternal}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body.Error = httpMessage(he)
			if devMode && he.Internal != nil {
				body.Details = he.Internal.Error()
			}
		} else if devMode {
			body.Details = err.Error()
		}

		if status >= http.StatusInternalServerError {
			req := c.Request()
			logging.Ctx(req.Context()).Error().Err(err).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logging.Ctx(c.Request().Context()).Warn().Err(err).Msg("write error response")
		}
	}
}

func httpMessage(he *echo.HTTPError) string {
	if he.Code >= http.StatusInternalServerError {
		return msgInternal
	}
	msg := fmt.Sprint(he.Message)
	if msg == "" || msg == http.StatusText(he.Code) {
		if es, ok := spanishStatus[he.Code]; ok {
			return es
		}
	}
	return msg
}
