package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/ports"
)

// stubClientService lets each test plug in just the method it exercises.
type stubClientService struct {
	listFn          func(ctx context.Context, actor ports.Actor) ([]*domain.Client, error)
	createFn        func(ctx context.Context, actor ports.Actor, in ports.CreateClientInput) (*domain.Client, error)
	getFn           func(ctx context.Context, actor ports.Actor, id string) (*domain.Client, error)
	updateFn        func(ctx context.Context, actor ports.Actor, id string, in ports.UpdateClientInput) (*domain.Client, error)
	deleteFn        func(ctx context.Context, id string) error
	softDeleteFn    func(ctx context.Context, id string) error
	assignFn        func(ctx context.Context, id, newManagerID string) (*domain.Client, error)
	serviceActionFn func(ctx context.Context, actor ports.Actor, clientID, equipmentID string, action domain.ServiceAction) error
	soonExpiringFn  func(ctx context.Context, actor ports.Actor, months int, onlyNeverNotified bool) ([]ports.ExpiringClient, error)
}

func (s *stubClientService) List(ctx context.Context, actor ports.Actor) ([]*domain.Client, error) {
	return s.listFn(ctx, actor)
}

func (s *stubClientService) Create(ctx context.Context, actor ports.Actor, in ports.CreateClientInput) (*domain.Client, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubClientService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.Client, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubClientService) Update(ctx context.Context, actor ports.Actor, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubClientService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubClientService) SoftDelete(ctx context.Context, id string) error {
	return s.softDeleteFn(ctx, id)
}

func (s *stubClientService) Assign(ctx context.Context, id, newManagerID string) (*domain.Client, error) {
	return s.assignFn(ctx, id, newManagerID)
}

func (s *stubClientService) ServiceAction(ctx context.Context, actor ports.Actor, clientID, equipmentID string, action domain.ServiceAction) error {
	return s.serviceActionFn(ctx, actor, clientID, equipmentID, action)
}

func (s *stubClientService) SoonExpiring(ctx context.Context, actor ports.Actor, months int, onlyNeverNotified bool) ([]ports.ExpiringClient, error) {
	return s.soonExpiringFn(ctx, actor, months, onlyNeverNotified)
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "m1")
	c.Set("role", domain.RoleManager)
	return c, rec
}

func TestClientHandler_Create(t *testing.T) {
	var gotInput ports.CreateClientInput
	svc := &stubClientService{
		createFn: func(_ context.Context, actor ports.Actor, in ports.CreateClientInput) (*domain.Client, error) {
			gotInput = in
			return &domain.Client{
				ID:            "c1",
				ManagerID:     actor.ID,
				ContactPerson: in.ContactPerson,
				ContactEmail:  in.ContactEmail,
				Active:        true,
				Equipment: []domain.Equipment{{
					ID:             "eq1",
					Model:          in.Equipment[0].Model,
					PurchaseDate:   in.Equipment[0].PurchaseDate,
					ServiceStatus:  domain.ServiceStatusNone,
					ServiceDueDate: in.Equipment[0].PurchaseDate.AddDate(1, 0, 0),
				}},
			}, nil
		},
	}
	h := NewClientHandler(svc)

	body := `{
		"clientContactPerson": "Ana",
		"contactEmail": "ana@acme.test",
		"equipment": [{"model": "CP-1", "purchaseDate": "2024-01-10"}]
	}`
	c, rec := newTestContext(http.MethodPost, "/clients", body)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !gotInput.Equipment[0].PurchaseDate.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("purchase date not parsed: %v", gotInput.Equipment[0].PurchaseDate)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["managerId"] != "m1" {
		t.Errorf("expected managerId m1, got %v", resp["managerId"])
	}
	equipment := resp["equipment"].([]any)
	item := equipment[0].(map[string]any)
	if item["serviceDueDate"] != "2025-01-10" {
		t.Errorf("expected due date 2025-01-10, got %v", item["serviceDueDate"])
	}
	if item["serviceStatus"] != "none" {
		t.Errorf("expected status none, got %v", item["serviceStatus"])
	}
}

func TestClientHandler_Create_ValidationFails(t *testing.T) {
	h := NewClientHandler(&stubClientService{})

	// Missing contact person and malformed email.
	body := `{"contactEmail": "not-an-email"}`
	c, _ := newTestContext(http.MethodPost, "/clients", body)

	err := h.Create(c)
	if err == nil {
		t.Fatal("expected validation error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestClientHandler_Create_BadDate(t *testing.T) {
	h := NewClientHandler(&stubClientService{})

	body := `{
		"clientContactPerson": "Ana",
		"contactEmail": "ana@acme.test",
		"equipment": [{"purchaseDate": "10/01/2024"}]
	}`
	c, _ := newTestContext(http.MethodPost, "/clients", body)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable date, got %v", err)
	}
}

func TestClientHandler_Get_PropagatesDomainErrors(t *testing.T) {
	svc := &stubClientService{
		getFn: func(_ context.Context, _ ports.Actor, _ string) (*domain.Client, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewClientHandler(svc)

	c, _ := newTestContext(http.MethodGet, "/clients/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")

	// Domain errors pass through untouched; the central error handler maps
	// them to their canonical status and message.
	if err := h.Get(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestClientHandler_Get_MissingClaims(t *testing.T) {
	h := NewClientHandler(&stubClientService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/clients/c1", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %v", err)
	}
}

func TestClientHandler_Update(t *testing.T) {
	var gotInput ports.UpdateClientInput
	svc := &stubClientService{
		updateFn: func(_ context.Context, _ ports.Actor, id string, in ports.UpdateClientInput) (*domain.Client, error) {
			gotInput = in
			return &domain.Client{ID: id, ManagerID: "m1", Notes: *in.Notes, Active: true}, nil
		},
	}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodPatch, "/clients/c1", `{"notes": "call first"}`)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotInput.Notes == nil || *gotInput.Notes != "call first" {
		t.Errorf("notes not bound: %v", gotInput.Notes)
	}
	if gotInput.ContactPerson != nil {
		t.Error("absent fields must stay nil")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "Client updated" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
}

func TestClientHandler_ServiceAction(t *testing.T) {
	var gotAction domain.ServiceAction
	svc := &stubClientService{
		serviceActionFn: func(_ context.Context, _ ports.Actor, clientID, equipmentID string, action domain.ServiceAction) error {
			gotAction = action
			return nil
		},
	}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodPatch, "/clients/c1/equipment/eq1/service-action", `{"action": "notify"}`)
	c.SetParamNames("clientId", "equipmentId")
	c.SetParamValues("c1", "eq1")

	if err := h.ServiceAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAction != domain.ActionNotify {
		t.Errorf("expected notify, got %s", gotAction)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "Service notify action completed successfully" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
}

func TestClientHandler_ServiceAction_InvalidAction(t *testing.T) {
	svc := &stubClientService{
		serviceActionFn: func(_ context.Context, _ ports.Actor, _, _ string, action domain.ServiceAction) error {
			return domain.ErrInvalidAction
		},
	}
	h := NewClientHandler(svc)

	c, _ := newTestContext(http.MethodPatch, "/clients/c1/equipment/eq1/service-action", `{"action": "explode"}`)
	c.SetParamNames("clientId", "equipmentId")
	c.SetParamValues("c1", "eq1")

	if err := h.ServiceAction(c); !errors.Is(err, domain.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestClientHandler_SoonExpiring_QueryParams(t *testing.T) {
	var gotMonths int
	var gotOnlyNeverNotified bool
	svc := &stubClientService{
		soonExpiringFn: func(_ context.Context, _ ports.Actor, months int, onlyNeverNotified bool) ([]ports.ExpiringClient, error) {
			gotMonths = months
			gotOnlyNeverNotified = onlyNeverNotified
			return []ports.ExpiringClient{{ClientID: "c1", ManagerID: "m1"}}, nil
		},
	}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/clients/soon-expiring?months=3&notified=false", "")

	if err := h.SoonExpiring(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotMonths != 3 {
		t.Errorf("months not parsed: %d", gotMonths)
	}
	if !gotOnlyNeverNotified {
		t.Error("notified=false must request never-notified items only")
	}
}

func TestClientHandler_Assign(t *testing.T) {
	svc := &stubClientService{
		assignFn: func(_ context.Context, id, newManagerID string) (*domain.Client, error) {
			return &domain.Client{ID: id, ManagerID: newManagerID, Active: true}, nil
		},
	}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodPatch, "/clients/c1/assign", `{"newManagerId": "m2"}`)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Assign(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	client := resp["client"].(map[string]any)
	if client["managerId"] != "m2" {
		t.Errorf("expected managerId m2, got %v", client["managerId"])
	}
}

func TestClientHandler_Assign_MissingManagerID(t *testing.T) {
	h := NewClientHandler(&stubClientService{})

	c, _ := newTestContext(http.MethodPatch, "/clients/c1/assign", `{}`)

	err := h.Assign(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
