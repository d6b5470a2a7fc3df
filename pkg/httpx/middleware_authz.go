package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// RequireAnyRole the caller's role claim must be one of roles.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(roles, RoleFromContext(r.Context())) {
				next.ServeHTTP(w, r)
				return
			}

			WriteError(w, http.StatusForbidden, "forbidden",
				"Only "+strings.Join(roles, " or ")+" accounts can perform this action")
		})
	}
}
