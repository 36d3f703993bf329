package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sangrahhq/sangrah/internal/service"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
	"github.com/sangrahhq/sangrah/pkg/jwtx"
)

// VerifyOTPHandler exchanges a live one-time code for a session token. This
// is the only place a token is ever minted.
type VerifyOTPHandler struct {
	AuthService *service.AuthService
	SessionTTL  time.Duration // zero means jwtx.DefaultSessionTTL
}

func (h *VerifyOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, req.Validate()) {
		return
	}

	token, user, err := h.AuthService.VerifyOTP(r.Context(), strings.TrimSpace(req.Mobile), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, api.ErrorCodeNotFound,
				"No account matches this mobile")
		case errors.Is(err, service.ErrInvalidOTP):
			writeError(w, http.StatusBadRequest, api.ErrorCodeInvalidOTP,
				"Invalid or expired OTP")
		default:
			writeServerError(w)
		}
		return
	}

	ttl := h.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, api.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(ttl.Seconds()),
		User:      userResponse(user),
	})
}
