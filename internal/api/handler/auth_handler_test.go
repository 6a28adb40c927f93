package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fieldserve/servicetrack/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password, role string) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	return s.registerFn(ctx, name, email, password, role)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(_ context.Context, name, email, _, role string) (*domain.User, error) {
			return &domain.User{ID: "u1", Name: name, Email: email, Role: domain.RoleManager}, nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"name": "Ana", "email": "ana@example.com", "password": "supersecret"}`
	c, rec := newTestContext(http.MethodPost, "/auth/register", body)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	user := resp["user"].(map[string]any)
	if user["email"] != "ana@example.com" || user["role"] != "manager" {
		t.Errorf("unexpected user: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password must never appear in the response")
	}
}

func TestAuthHandler_Register_ValidationFails(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	body := `{"name": "Ana", "email": "ana@example.com", "password": "short"}`
	c, _ := newTestContext(http.MethodPost, "/auth/register", body)

	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_DuplicatePropagates(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(_ context.Context, _, _, _, _ string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(svc)

	body := `{"name": "Ana", "email": "ana@example.com", "password": "supersecret"}`
	c, _ := newTestContext(http.MethodPost, "/auth/register", body)

	// ErrUserExists flows to the central handler, which answers 409.
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(_ context.Context, email, _ string) (string, *domain.User, error) {
			return "signed-token", &domain.User{ID: "u1", Email: email, Role: domain.RoleManager}, nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"email": "ana@example.com", "password": "supersecret"}`
	c, rec := newTestContext(http.MethodPost, "/auth/login", body)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] != "signed-token" {
		t.Errorf("token missing from response: %v", resp)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	// Unknown account and wrong password must be indistinguishable.
	for _, cause := range []error{domain.ErrUserNotFound, domain.ErrInvalidCredentials} {
		svc := &stubAuthService{
			loginFn: func(_ context.Context, _, _ string) (string, *domain.User, error) {
				return "", nil, cause
			},
		}
		h := NewAuthHandler(svc)

		body := `{"email": "ana@example.com", "password": "wrong"}`
		c, _ := newTestContext(http.MethodPost, "/auth/login", body)

		err := h.Login(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("cause %v: expected 401, got %v", cause, err)
		}
		if he.Message != "Invalid credentials" {
			t.Errorf("cause %v: unexpected message %v", cause, he.Message)
		}
	}
}
