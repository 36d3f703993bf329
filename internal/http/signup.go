package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sangrahhq/sangrah/internal/service"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
)

// SignupHandler registers a new guest account and dispatches its first OTP.
// It never returns a token; the caller has to come back through verify-otp.
type SignupHandler struct {
	AuthService *service.AuthService
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, req.Validate()) {
		return
	}

	user, emailSent, err := h.AuthService.Signup(
		r.Context(),
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Mobile),
		strings.TrimSpace(req.Email),
		req.Password,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateAccount):
			writeError(w, http.StatusBadRequest, api.ErrorCodeConflict,
				"An account with this mobile or email already exists")
		default:
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.ChallengeResponse{
		Status:    "otp_sent",
		UserID:    user.ID,
		EmailSent: emailSent,
	})
}
