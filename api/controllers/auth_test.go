package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vhovsepyan/storefront-backend/internal/auth"
	pkgerrors "github.com/vhovsepyan/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	pair      *auth.TokenPair
	err       error
	loggedOut string
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	return s.pair, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = accessID
	return s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"}}
	resp := postJSON(t, AuthLogin(svc, nil), "/api/v1/auth/login", `{"username":"kara","password":"Secret#1"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data auth.TokenPair `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Data.AccessToken != "access" || envelope.Data.RefreshToken != "refresh" {
		t.Fatalf("unexpected token pair %+v", envelope.Data)
	}
}

func TestAuthLoginMissingPassword(t *testing.T) {
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "access"}}
	resp := postJSON(t, AuthLogin(svc, nil), "/api/v1/auth/login", `{"username":"kara"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	resp := postJSON(t, AuthLogin(svc, nil), "/api/v1/auth/login", `{"username":"kara","password":"wrong"}`)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestAuthRefreshRotatesPair(t *testing.T) {
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "next-access", RefreshToken: "next-refresh"}}
	resp := postJSON(t, AuthRefresh(svc, nil), "/api/v1/auth/refresh", `{"access_token":"old-access","refresh_token":"old-refresh"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	svc := &stubAuthService{}
	resp := postJSON(t, AuthLogout(svc, nil), "/api/v1/auth/logout", `{"access_id":"session-1"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.loggedOut != "session-1" {
		t.Fatalf("expected access id to reach the service, got %q", svc.loggedOut)
	}
}
