package auth

import (
	"net/http"
	"strings"

	"github.com/coloradoleasecheck/leasecheck/internal"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
)

// RequireAdmin gates the admin surface. It expects a Bearer access token and
// places the admin id on the request context.
func RequireAdmin(service AuthService, base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				base.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := service.ValidateAccessToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				base.HandleServiceError(w, err)
				return
			}

			ctx := internal.ContextWithAdminID(r.Context(), claims.AdminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
