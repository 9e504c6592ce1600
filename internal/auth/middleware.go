package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/meridian-erp/meridian/internal/platform/httpx"
	"github.com/meridian-erp/meridian/internal/shared"
)

type claimsKey struct{}

// ClaimsFromContext returns the verified claims stored by Middleware.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// Middleware authenticates the bearer token and installs the request scope.
// The fiscal year is chosen per request through the X-Fiscal-Year header;
// branch defaults to the token's but may be narrowed the same way.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			claims, err := tokens.Verify(r.Context(), raw)
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or revoked token")
				return
			}

			scope := shared.Scope{
				UserID:    claims.UserID,
				CompanyID: claims.CompanyID,
				BranchID:  claims.BranchID,
			}
			if v := r.Header.Get("X-Fiscal-Year"); v != "" {
				if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
					scope.FiscalYearID = &id
				}
			}
			if v := r.Header.Get("X-Branch"); v != "" {
				if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
					scope.BranchID = &id
				}
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = shared.ContextWithScope(ctx, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
