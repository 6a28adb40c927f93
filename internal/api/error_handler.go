package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fieldserve/servicetrack/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
	// Detail carries the underlying error text for unexpected failures.
	// Only populated outside production.
	Detail string `json:"detail,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their canonical HTTP status and message.
//   - Logs unexpected errors and returns a generic 500; outside production
//     the underlying error text is included for debugging.
func NewHTTPErrorHandler(log zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c, production)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context, production bool) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	// Known domain errors → deterministic codes and messages.
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, errorResponse{Message: "Client not found"}
	case errors.Is(err, domain.ErrEquipmentNotFound):
		return http.StatusNotFound, errorResponse{Message: "Equipment not found"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Message: "User not found"}
	case errors.Is(err, domain.ErrManagerNotFound):
		return http.StatusNotFound, errorResponse{Message: "Manager not found"}
	case errors.Is(err, domain.ErrNoExpiringEquipment):
		return http.StatusNotFound, errorResponse{Message: "No soon-expiring equipment found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Message: "Access denied"}
	case errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest, errorResponse{Message: "Invalid action type"}
	case errors.Is(err, domain.ErrManagerRequired):
		return http.StatusBadRequest, errorResponse{Message: "Manager ID is required when supervisor creates client"}
	case errors.Is(err, domain.ErrNotAManager):
		return http.StatusBadRequest, errorResponse{Message: "Target user is not a manager"}
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, errorResponse{Message: "Invalid role"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Message: "User already exists"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	resp := errorResponse{Message: "Internal server error"}
	if !production {
		resp.Detail = err.Error()
	}
	return http.StatusInternalServerError, resp
}
