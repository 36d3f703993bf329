package http

import (
	"encoding/json"
	"net/http"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
)

// decodeJSON reads a request body into dst, writing a 400 and returning false
// when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Error:            api.ErrorCodeInvalidRequest,
			ErrorDescription: "Request body must be valid JSON",
		})
		return false
	}
	return true
}

// validate runs a Validate()-style check, writing a 400 with field details
// and returning false when it fails.
func validate(w http.ResponseWriter, errs map[string]string) bool {
	if errs == nil {
		return true
	}
	httpx.WriteJSON(w, http.StatusBadRequest, api.ValidationErrorResponse{
		Code:    api.ErrorCodeInvalidRequest,
		Message: "validation failed for some fields",
		Details: errs,
	})
	return false
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	httpx.WriteJSON(w, status, api.ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

func writeServerError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, api.ErrorCodeServerError, "An internal error occurred")
}

// userResponse projects an account for the wire, never exposing the hash.
func userResponse(u domain.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Mobile:    u.Mobile,
		Email:     u.Email,
		Role:      string(u.Role),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
