package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RafaGarcia5/grocerease-api/api/middleware"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
)

// actorFromContext resolves the authenticated caller seeded by the auth
// middleware.
func actorFromContext(r *http.Request) (uuid.UUID, enums.Role, error) {
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, role, nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id")
	}
	return id, nil
}
