package http

import (
	"errors"
	"net/http"

	"github.com/sangrahhq/sangrah/internal/service"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
)

// MeHandler returns the account behind the presented token. Any authenticated
// role may call it.
type MeHandler struct {
	UserService *service.UserService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromCtx(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, api.ErrorCodeUnauthorized, "Missing authentication")
		return
	}

	user, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			// Token outlives the account; treat it as no longer valid.
			writeError(w, http.StatusUnauthorized, api.ErrorCodeUnauthorized, "Account no longer exists")
			return
		}
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}
