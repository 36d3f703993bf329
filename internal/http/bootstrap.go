package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sangrahhq/sangrah/internal/service"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
	"github.com/sangrahhq/sangrah/pkg/slogx"
)

// BootstrapHandler seeds the first elevated-admin account. The endpoint only
// works while the user table is empty, so it is safe to leave routed after
// setup; it simply refuses forever.
type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	var req api.BootstrapRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, req.Validate()) {
		return
	}

	user, err := h.BootstrapService.Bootstrap(
		r.Context(),
		r.Header.Get("X-Bootstrap-Token"),
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Mobile),
		strings.TrimSpace(req.Email),
		req.Password,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyBootstrapped):
			writeError(w, http.StatusUnauthorized, api.ErrorCodeUnauthorized,
				"System has already been bootstrapped")
		case errors.Is(err, service.ErrInvalidBootstrapToken):
			writeError(w, http.StatusUnauthorized, api.ErrorCodeUnauthorized,
				"Invalid bootstrap token")
		default:
			l.Error("bootstrap failed", "error", err)
			writeServerError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, userResponse(user))
}
