package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole the caller must hold one of the provided roles. Roles are
// matched exactly against the role claim embedded at authentication time, so
// every protected route declares its required set at the routing layer instead
// of repeating the check inside handlers.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, role := range required {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := RoleFromCtx(r.Context())

			if _, ok := want[have]; ok {
				next.ServeHTTP(w, r)
				return
			}

			writeBearerRoleError(w, http.StatusForbidden, required...)
		})
	}
}

// RFC 6750-style error response for an insufficient role.
func writeBearerRoleError(w http.ResponseWriter, code int, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_role", role="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, code, map[string]string{
		"error":             "insufficient_role",
		"error_description": "Requires one of roles: " + strings.Join(required, ", "),
	})
}
