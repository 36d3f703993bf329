package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/internal/service"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
)

// UsersHandler covers the admin account-management endpoints. The router
// guards every method with authentication and an admin-role check; the
// finer rules about who may touch elevated-admin accounts live in the
// service and surface here as 403s.
type UsersHandler struct {
	UserService *service.UserService
}

func actorRole(r *http.Request) domain.Role {
	return domain.Role(httpx.RoleFromCtx(r.Context()))
}

// writeUserError maps the account-management error set to a response.
func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, api.ErrorCodeNotFound, "No such account")
	case errors.Is(err, service.ErrDuplicateAccount):
		writeError(w, http.StatusBadRequest, api.ErrorCodeConflict,
			"An account with this mobile or email already exists")
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, api.ErrorCodeInvalidRequest,
			"Role must be one of elevated-admin, admin, guest")
	case errors.Is(err, service.ErrProtectedAccount):
		writeError(w, http.StatusForbidden, api.ErrorCodeProtectedAccount,
			"Elevated-admin accounts cannot be deleted or demoted")
	case errors.Is(err, service.ErrForbiddenRole):
		writeError(w, http.StatusForbidden, api.ErrorCodeInsufficientRole,
			"Only an elevated-admin may perform this change")
	default:
		writeServerError(w)
	}
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeServerError(w)
		return
	}

	out := make([]api.UserResponse, len(users))
	for i, u := range users {
		out[i] = userResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, api.UsersResponse{Users: out})
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUserError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}

func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, req.Validate()) {
		return
	}

	user, err := h.UserService.Create(r.Context(), actorRole(r), service.CreateParams{
		Name:     strings.TrimSpace(req.Name),
		Mobile:   strings.TrimSpace(req.Mobile),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Verified: req.Verified,
	})
	if err != nil {
		writeUserError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userResponse(user))
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, req.Validate()) {
		return
	}

	user, err := h.UserService.UpdateDetails(
		r.Context(), actorRole(r), r.PathValue("id"),
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Email),
	)
	if err != nil {
		writeUserError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}

func (h *UsersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, req.Validate()) {
		return
	}

	user, err := h.UserService.UpdateRole(
		r.Context(), actorRole(r), r.PathValue("id"), domain.Role(req.Role),
	)
	if err != nil {
		writeUserError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), actorRole(r), r.PathValue("id")); err != nil {
		writeUserError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
