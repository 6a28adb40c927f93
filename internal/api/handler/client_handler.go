package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fieldserve/servicetrack/internal/api/metrics"
	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/ports"
)

// ClientHandler handles HTTP requests for client operations.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// List handles GET /clients.
//
// @Summary      List clients (supervisor: all, manager: own)
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   clientResponse
// @Failure      403  {object}  messageResponse
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	clients, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientListResponse(clients))
}

// Create handles POST /clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client details"
// @Success      201   {object}  clientResponse
// @Failure      400   {object}  messageResponse
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	input, err := toCreateInput(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.service.Create(c.Request().Context(), actor, input)
	if err != nil {
		return err
	}

	metrics.ClientsCreatedTotal.WithLabelValues(actor.Role).Inc()
	return c.JSON(http.StatusCreated, toClientResponse(client))
}

// SoonExpiring handles GET /clients/soon-expiring.
//
// @Summary      List own clients with equipment due in the next N months
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        months    query     int     false  "Look-ahead window in months (default 1)"
// @Param        notified  query     string  false  "Set to false to only include never-notified items"
// @Success      200       {array}   expiringClientResponse
// @Failure      404       {object}  messageResponse
// @Router       /clients/soon-expiring [get]
func (h *ClientHandler) SoonExpiring(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	months, _ := strconv.Atoi(c.QueryParam("months"))
	onlyNeverNotified := c.QueryParam("notified") == "false"

	items, err := h.service.SoonExpiring(c.Request().Context(), actor, months, onlyNeverNotified)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpiringResponse(items))
}

// Get handles GET /clients/:id.
//
// @Summary      Get one client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  clientResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	client, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Update handles PATCH /clients/:id.
//
// @Summary      Partially update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client id"
// @Param        body  body      updateClientRequest  true  "Fields to update"
// @Success      200   {object}  clientMessageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /clients/{id} [patch]
func (h *ClientHandler) Update(c echo.Context) error {
	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	input, err := toUpdateInput(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientMessageResponse{
		Message: "Client updated",
		Client:  toClientResponse(client),
	})
}

// Delete handles DELETE /clients/:id (hard delete, admin only).
//
// @Summary      Delete a client permanently
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Client deleted successfully"})
}

// SoftDelete handles DELETE /clients/:id/soft-delete (supervisor only).
//
// @Summary      Mark a client inactive
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /clients/{id}/soft-delete [delete]
func (h *ClientHandler) SoftDelete(c echo.Context) error {
	if err := h.service.SoftDelete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Client marked as inactive"})
}

// Assign handles PATCH /clients/:id/assign (supervisor only).
//
// @Summary      Reassign a client to another manager
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client id"
// @Param        body  body      assignClientRequest  true  "New manager"
// @Success      200   {object}  clientMessageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /clients/{id}/assign [patch]
func (h *ClientHandler) Assign(c echo.Context) error {
	var req assignClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.service.Assign(c.Request().Context(), c.Param("id"), req.NewManagerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientMessageResponse{
		Message: "Client reassigned successfully",
		Client:  toClientResponse(client),
	})
}

// ServiceAction handles PATCH /clients/:clientId/equipment/:equipmentId/service-action.
//
// @Summary      Run a notify/confirm service action on one equipment item
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        clientId     path      string                true  "Client id"
// @Param        equipmentId  path      string                true  "Equipment id"
// @Param        body         body      serviceActionRequest  true  "Action: notify or confirm"
// @Success      200          {object}  messageResponse
// @Failure      400          {object}  messageResponse
// @Failure      404          {object}  messageResponse
// @Router       /clients/{clientId}/equipment/{equipmentId}/service-action [patch]
func (h *ClientHandler) ServiceAction(c echo.Context) error {
	var req serviceActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	action := domain.ServiceAction(req.Action)
	err = h.service.ServiceAction(c.Request().Context(), actor, c.Param("clientId"), c.Param("equipmentId"), action)
	if err != nil {
		return err
	}

	metrics.ServiceActionsTotal.WithLabelValues(req.Action).Inc()
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Service %s action completed successfully", req.Action),
	})
}
