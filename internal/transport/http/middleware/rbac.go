package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"leaveflow/internal/domain/auth"
	"leaveflow/internal/requestctx"
	"leaveflow/internal/transport/http/api"
)

// PermissionStore answers from the caller's current role, not the token.
type PermissionStore interface {
	HasPermission(ctx context.Context, userID string, permission auth.Permission) (bool, error)
}

func RequirePermission(permission auth.Permission, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.UserID, permission)
			if err != nil {
				requestctx.Logger(r.Context()).Error("permission check failed", zap.String("permission", permission.String()), zap.Error(err))
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", GetRequestID(r.Context()))
				return
			}
			if !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
