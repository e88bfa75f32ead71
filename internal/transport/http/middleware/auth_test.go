package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaveflow/internal/domain/auth"
)

func TestAuthMiddlewareSetsUser(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Name: "Nimal"}, time.Hour)
	require.NoError(t, err)

	var seen auth.UserContext
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		require.True(t, ok, "expected user in context")
		seen = user
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, auth.UserContext{UserID: "u1", Name: "Nimal"}, seen)
}

func TestAuthMiddlewareIgnoresBadTokens(t *testing.T) {
	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not-a-token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, ok := GetUser(r.Context())
				assert.False(t, ok)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
		})
	}
}

func TestRequireUser(t *testing.T) {
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1"})))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type stubPermissions struct {
	allowed map[string]bool
	err     error
}

func (s stubPermissions) HasPermission(_ context.Context, userID string, permission auth.Permission) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[userID+"|"+permission.String()], nil
}

func TestRequirePermission(t *testing.T) {
	store := stubPermissions{allowed: map[string]bool{"hod|leave:approve": true}}
	guard := RequirePermission(auth.PermLeaveApprove, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		user   string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "missing permission", user: "staff", status: http.StatusForbidden},
		{name: "granted", user: "hod", status: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.user != "" {
				req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: tc.user}))
			}
			rec := httptest.NewRecorder()
			guard.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequirePermissionStoreError(t *testing.T) {
	guard := RequirePermission(auth.PermLeaveApply, stubPermissions{err: errors.New("db down")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1"}))
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
