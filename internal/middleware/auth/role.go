package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// RoleAdmin passes every role check.
const RoleAdmin = "admin"

// RequireRole lets the request through only when the caller's role is one of
// roles. It must run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return RequireRoleFunc(func(*http.Request) []string { return roles })
}

// RequireRoleFunc is RequireRole with the allowed roles resolved per request,
// e.g. from a URL parameter. A nil result leaves the decision to the handler.
func RequireRoleFunc(allowed func(r *http.Request) []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := FromContext(r.Context())
			if err != nil {
				unauthorized(w, r)
				return
			}

			roles := allowed(r)
			if roles != nil && !HasRole(id, roles...) {
				forbidden(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HasRole compares roles case-insensitively.
func HasRole(id Identity, roles ...string) bool {
	if strings.EqualFold(id.Role, RoleAdmin) {
		return true
	}
	for _, role := range roles {
		if strings.EqualFold(id.Role, role) {
			return true
		}
	}
	return false
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusForbidden)
	render.JSON(w, r, map[string]string{"error": "forbidden"})
}
