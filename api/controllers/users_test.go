package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vhovsepyan/storefront-backend/api/middleware"
	"github.com/vhovsepyan/storefront-backend/internal/access"
	"github.com/vhovsepyan/storefront-backend/internal/users"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
)

type stubUsersService struct {
	user      *users.UserDTO
	list      *users.UserListResult
	actor     access.Actor
	err       error
	lastAge   int
	lastInput users.RegisterInput
	approved  *bool
	deleted   uuid.UUID
}

func (s *stubUsersService) Register(ctx context.Context, input users.RegisterInput) (*users.UserDTO, error) {
	s.lastInput = input
	return s.user, s.err
}

func (s *stubUsersService) CurrentUser(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s *stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, input users.UpdateProfileInput) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s *stubUsersService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	return s.err
}

func (s *stubUsersService) RequestSupplier(ctx context.Context, userID uuid.UUID, age int) (*users.UserDTO, error) {
	s.lastAge = age
	return s.user, s.err
}

func (s *stubUsersService) RegisterWorker(ctx context.Context, input users.RegisterInput) (*users.UserDTO, error) {
	s.lastInput = input
	return s.user, s.err
}

func (s *stubUsersService) ReviewWorker(ctx context.Context, targetID uuid.UUID, approve bool) (*users.UserDTO, error) {
	s.approved = &approve
	return s.user, s.err
}

func (s *stubUsersService) ListUsers(ctx context.Context, cursor string, limit int) (*users.UserListResult, error) {
	return s.list, s.err
}

func (s *stubUsersService) DeleteUser(ctx context.Context, targetID uuid.UUID) error {
	s.deleted = targetID
	return s.err
}

func (s *stubUsersService) LoadActor(ctx context.Context, userID uuid.UUID) (access.Actor, error) {
	return s.actor, s.err
}

func clientDTO() *users.UserDTO {
	return &users.UserDTO{
		ID:       uuid.New(),
		Username: "kara",
		Profile:  users.ProfileDTO{Role: enums.RoleClient, IsApproved: true},
	}
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestUserRegisterCreated(t *testing.T) {
	svc := &stubUsersService{user: clientDTO()}
	resp := postJSON(t, UserRegister(svc, nil), "/api/v1/users/register", `{"username":"kara","password":"Secret#123","first_name":"Kara"}`)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastInput.Username != "kara" || svc.lastInput.FirstName != "Kara" {
		t.Fatalf("unexpected input forwarded: %+v", svc.lastInput)
	}
}

func TestUserRegisterRejectsShortPassword(t *testing.T) {
	svc := &stubUsersService{user: clientDTO()}
	resp := postJSON(t, UserRegister(svc, nil), "/api/v1/users/register", `{"username":"kara","password":"short"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUserMeRequiresIdentity(t *testing.T) {
	svc := &stubUsersService{user: clientDTO()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	resp := httptest.NewRecorder()
	UserMe(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestUserMeReturnsProfile(t *testing.T) {
	dto := clientDTO()
	svc := &stubUsersService{user: dto}
	req := authedRequest(http.MethodGet, "/api/v1/users/me", "", dto.ID)
	resp := httptest.NewRecorder()
	UserMe(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Data.Username != "kara" {
		t.Fatalf("unexpected username %q", envelope.Data.Username)
	}
}

func TestUserRequestSupplierForwardsAge(t *testing.T) {
	dto := clientDTO()
	svc := &stubUsersService{user: dto}
	req := authedRequest(http.MethodPost, "/api/v1/users/request-supplier", `{"age":34}`, dto.ID)
	resp := httptest.NewRecorder()
	UserRequestSupplier(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastAge != 34 {
		t.Fatalf("expected age 34, got %d", svc.lastAge)
	}
}

func TestWorkerReviewActions(t *testing.T) {
	dto := clientDTO()
	target := uuid.New()

	r := chi.NewRouter()
	svc := &stubUsersService{user: dto}
	r.Post("/api/v1/users/workers/{userID}/approve", WorkerReview(svc, nil))

	t.Run("approve", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/workers/"+target.String()+"/approve", bytes.NewReader([]byte(`{"action":"approve"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
		if svc.approved == nil || !*svc.approved {
			t.Fatal("expected approve=true to reach the service")
		}
	})

	t.Run("reject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/workers/"+target.String()+"/approve", bytes.NewReader([]byte(`{"action":"reject"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
		if svc.approved == nil || *svc.approved {
			t.Fatal("expected approve=false to reach the service")
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/workers/"+target.String()+"/approve", bytes.NewReader([]byte(`{"action":"promote"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", resp.Code)
		}
	})

	t.Run("bad user id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/workers/not-a-uuid/approve", bytes.NewReader([]byte(`{"action":"approve"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", resp.Code)
		}
	})
}

func TestUserDeleteForwardsTarget(t *testing.T) {
	target := uuid.New()
	svc := &stubUsersService{}

	r := chi.NewRouter()
	r.Delete("/api/v1/users/{userID}", UserDelete(svc, nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+target.String(), nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.deleted != target {
		t.Fatalf("expected delete of %s, got %s", target, svc.deleted)
	}
}
