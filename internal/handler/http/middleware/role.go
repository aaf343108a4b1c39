package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/cmlabs-hris/hris-overtime-report/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleHR      = "hr"
)

// ReportRoles may read overtime reports.
var ReportRoles = []string{RoleOwner, RoleManager, RoleHR}

// RequireRole allows the request through when the token's role claim is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: requires one of %s", strings.Join(roles, ", ")))
				return
			}

			role, ok := claims["role"].(string)
			if !ok || !slices.Contains(roles, role) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: requires one of %s", strings.Join(roles, ", ")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
