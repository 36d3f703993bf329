package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sangrahhq/sangrah/internal/service"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
)

// LoginHandler checks a password and dispatches a login OTP. Every login
// round-trips through OTP verification; a correct password alone never
// yields a token.
type LoginHandler struct {
	AuthService *service.AuthService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, req.Validate()) {
		return
	}

	emailSent, err := h.AuthService.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, api.ErrorCodeNotFound,
				"No account matches this email")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, api.ErrorCodeInvalidCredentials,
				"Incorrect password")
		default:
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.ChallengeResponse{
		Status:    "otp_sent",
		EmailSent: emailSent,
	})
}
