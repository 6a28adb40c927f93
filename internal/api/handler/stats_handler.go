package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fieldserve/servicetrack/internal/core/ports"
)

// detailWindowDefault is applied on both sides of now when a manager detail
// report is requested without an explicit window.
const detailWindowDefault = 30 * 24 * time.Hour

// StatsHandler handles the supervisor reporting endpoints.
type StatsHandler struct {
	service ports.StatsService
}

func NewStatsHandler(service ports.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

type totalClientsResponse struct {
	Total int64 `json:"total"`
}

type expiringResponse struct {
	ExpiringThisMonth int64 `json:"expiringThisMonth"`
	NotifiedThisMonth int64 `json:"notifiedThisMonth"`
}

type totalManagersResponse struct {
	TotalManagers int64 `json:"totalManagers"`
}

type managerSummaryResponse struct {
	ManagerID                  string `json:"managerId"`
	Name                       string `json:"name"`
	Email                      string `json:"email"`
	TotalClients               int    `json:"totalClients"`
	NotificationsSentLastMonth int    `json:"notificationsSentLastMonth"`
	ServicesDoneLastMonth      int    `json:"servicesDoneLastMonth"`
	ExpectedDueNextMonth       int    `json:"expectedDueNextMonth"`
}

type reportPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type managerDetailClientResponse struct {
	ClientID      string              `json:"clientId"`
	ContactPerson string              `json:"contactPerson"`
	Company       string              `json:"company,omitempty"`
	Equipment     []equipmentResponse `json:"equipment"`
}

type managerDetailsResponse struct {
	ManagerID         string                        `json:"managerId"`
	Name              string                        `json:"name"`
	Period            reportPeriod                  `json:"period"`
	NotificationsSent int                           `json:"notificationsSent"`
	ServicesCompleted int                           `json:"servicesCompleted"`
	ExpectedDue       int                           `json:"expectedDue"`
	Clients           []managerDetailClientResponse `json:"clients"`
}

// TotalClients handles GET /stats/total-clients.
//
// @Summary      Total client count
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  totalClientsResponse
// @Router       /stats/total-clients [get]
func (h *StatsHandler) TotalClients(c echo.Context) error {
	total, err := h.service.TotalClients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, totalClientsResponse{Total: total})
}

// Expiring handles GET /stats/expiring.
//
// @Summary      Clients with equipment due this month
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  expiringResponse
// @Router       /stats/expiring [get]
func (h *StatsHandler) Expiring(c echo.Context) error {
	stats, err := h.service.Expiring(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, expiringResponse{
		ExpiringThisMonth: stats.ExpiringThisMonth,
		NotifiedThisMonth: stats.NotifiedThisMonth,
	})
}

// TotalManagers handles GET /stats/total-managers.
//
// @Summary      Total manager count
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  totalManagersResponse
// @Router       /stats/total-managers [get]
func (h *StatsHandler) TotalManagers(c echo.Context) error {
	total, err := h.service.TotalManagers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, totalManagersResponse{TotalManagers: total})
}

// SummaryPerManager handles GET /stats/clients-summary-per-manager.
//
// @Summary      Per-manager client and service-activity summary
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  managerSummaryResponse
// @Router       /stats/clients-summary-per-manager [get]
func (h *StatsHandler) SummaryPerManager(c echo.Context) error {
	summaries, err := h.service.SummaryPerManager(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]managerSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, managerSummaryResponse{
			ManagerID:                  s.ManagerID,
			Name:                       s.Name,
			Email:                      s.Email,
			TotalClients:               s.TotalClients,
			NotificationsSentLastMonth: s.NotificationsSentLastMonth,
			ServicesDoneLastMonth:      s.ServicesDoneLastMonth,
			ExpectedDueNextMonth:       s.ExpectedDueNextMonth,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ManagerDetails handles GET /stats/manager/:id/details.
//
// @Summary      Windowed activity report for one manager
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Manager id"
// @Param        from  query     string  false  "Window start (YYYY-MM-DD, default now-30d)"
// @Param        to    query     string  false  "Window end (YYYY-MM-DD, default now+30d)"
// @Success      200   {object}  managerDetailsResponse
// @Failure      404   {object}  messageResponse
// @Router       /stats/manager/{id}/details [get]
func (h *StatsHandler) ManagerDetails(c echo.Context) error {
	now := time.Now()
	from := now.Add(-detailWindowDefault)
	to := now.Add(detailWindowDefault)

	if s := c.QueryParam("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		to = t
	}

	details, err := h.service.ManagerDetails(c.Request().Context(), c.Param("id"), from, to)
	if err != nil {
		return err
	}

	clients := make([]managerDetailClientResponse, 0, len(details.Clients))
	for _, client := range details.Clients {
		equipment := make([]equipmentResponse, 0, len(client.Equipment))
		for _, eq := range client.Equipment {
			equipment = append(equipment, toEquipmentResponse(eq))
		}
		clients = append(clients, managerDetailClientResponse{
			ClientID:      client.ClientID,
			ContactPerson: client.ContactPerson,
			Company:       client.CompanyName,
			Equipment:     equipment,
		})
	}

	return c.JSON(http.StatusOK, managerDetailsResponse{
		ManagerID:         details.ManagerID,
		Name:              details.Name,
		Period:            reportPeriod{From: details.From, To: details.To},
		NotificationsSent: details.NotificationsSent,
		ServicesCompleted: details.ServicesCompleted,
		ExpectedDue:       details.ExpectedDue,
		Clients:           clients,
	})
}
