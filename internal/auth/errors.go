// Package auth is the per-route authorization guard.  It resolves the
// caller's identity from the request and checks it against the static
// permission table.  Expected failures are returned as *AuthError values,
// never as Go errors or panics.
package auth

import (
	"net/http"

	"github.com/iliyamo/production-manager/internal/model"
)

// Code is the stable machine-readable reason of an AuthError.
type Code string

const (
	CodeMissingToken            Code = "MISSING_TOKEN"
	CodeInvalidToken            Code = "INVALID_TOKEN"
	CodeInsufficientPermissions Code = "INSUFFICIENT_PERMISSIONS"
	CodeUserNotFound            Code = "USER_NOT_FOUND"
	CodeUserAlreadyExists       Code = "USER_ALREADY_EXISTS"
	CodeInvalidRole             Code = "INVALID_ROLE"
	CodeInvalidCredentials      Code = "INVALID_CREDENTIALS"
)

// statusByCode is the code -> HTTP status contract.
var statusByCode = map[Code]int{
	CodeMissingToken:            http.StatusUnauthorized,
	CodeInvalidToken:            http.StatusUnauthorized,
	CodeInsufficientPermissions: http.StatusForbidden,
	CodeUserNotFound:            http.StatusNotFound,
	CodeUserAlreadyExists:       http.StatusConflict,
	CodeInvalidRole:             http.StatusBadRequest,
	CodeInvalidCredentials:      http.StatusUnauthorized,
}

var messageByCode = map[Code]string{
	CodeMissingToken:            "Token no proporcionado",
	CodeInvalidToken:            "Token inválido o expirado",
	CodeInsufficientPermissions: "Permisos insuficientes",
	CodeUserNotFound:            "Usuario no encontrado",
	CodeUserAlreadyExists:       "El usuario ya existe",
	CodeInvalidRole:             "Rol inválido",
	CodeInvalidCredentials:      "Credenciales inválidas",
}

// AuthError is a terminal, ready-to-render failure.
type AuthError struct {
	Message    string `json:"error"`
	Code       Code   `json:"code"`
	StatusCode int    `json:"statusCode"`
	Details    string `json:"details,omitempty"`
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return string(e.Code) + ": " + e.Message + " (" + e.Details + ")"
	}
	return string(e.Code) + ": " + e.Message
}

// StatusFor returns the HTTP status registered for code, or 500.
func StatusFor(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// NewError builds an AuthError with the standard message for code.
func NewError(code Code, details string) *AuthError {
	return &AuthError{
		Message:    messageByCode[code],
		Code:       code,
		StatusCode: StatusFor(code),
		Details:    details,
	}
}

func ErrMissingToken() *AuthError       { return NewError(CodeMissingToken, "") }
func ErrInvalidToken() *AuthError       { return NewError(CodeInvalidToken, "") }
func ErrUserNotFound() *AuthError       { return NewError(CodeUserNotFound, "") }
func ErrUserExists() *AuthError         { return NewError(CodeUserAlreadyExists, "") }
func ErrInvalidCredentials() *AuthError { return NewError(CodeInvalidCredentials, "") }

// ErrInvalidRole names the rejected value and the accepted ones.
func ErrInvalidRole(got string) *AuthError {
	return NewError(CodeInvalidRole, "Rol recibido: "+got+"; válidos: admin, gerente, operario")
}

// ErrInsufficientPermissions always carries the required permission.
func ErrInsufficientPermissions(required model.Permission) *AuthError {
	return NewError(CodeInsufficientPermissions, "Se requiere el permiso: "+string(required))
}
