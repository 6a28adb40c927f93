package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldserve/servicetrack/internal/core/ports"
)

// actorFromContext extracts the identity injected by the Auth middleware and
// fast-fails before any service call: both the user id and role must be
// present, otherwise the token was structurally valid but unusable.
func actorFromContext(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{ID: userID, Role: role}, nil
}
