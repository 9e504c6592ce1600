package rbac

import (
	"net/http"

	"github.com/meridian-erp/meridian/internal/platform/httpx"
	"github.com/meridian-erp/meridian/internal/shared"
)

// Require gates a route behind a permission. It assumes the auth middleware
// already placed a scope in the context.
func Require(svc *Service, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := shared.ScopeFromContext(r.Context())
			if scope.UserID == 0 {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			ok, err := svc.Allowed(r.Context(), scope.UserID, permission)
			if err != nil {
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !ok {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission "+permission)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
