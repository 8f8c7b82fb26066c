package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vhovsepyan/storefront-backend/api/middleware"
	"github.com/vhovsepyan/storefront-backend/internal/access"
	"github.com/vhovsepyan/storefront-backend/internal/users"
	pkgerrors "github.com/vhovsepyan/storefront-backend/pkg/errors"
)

// requestActor resolves the authenticated principal's live role state.
func requestActor(r *http.Request, usersSvc users.Service) (access.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return access.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return access.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return usersSvc.LoadActor(r.Context(), userID)
}

// requestUserID parses the authenticated user id without a DB round trip.
func requestUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return userID, nil
}

// pathUUID parses a uuid path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	value, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name)
	}
	return value, nil
}
