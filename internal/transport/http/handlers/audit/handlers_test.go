package audithandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaveflow/internal/domain/audit"
	"leaveflow/internal/domain/auth"
	"leaveflow/internal/transport/http/middleware"
)

type stubLister struct {
	filter audit.Filter
}

func (s *stubLister) List(_ context.Context, filter audit.Filter, _, _ int) ([]audit.Event, error) {
	s.filter = filter
	return []audit.Event{{ID: 7, ActorID: "u1", Action: "leave.approve", EntityType: "leave_application", EntityID: "a1", CreatedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}}, nil
}

type allowAdmin struct{}

func (allowAdmin) HasPermission(_ context.Context, userID string, perm auth.Permission) (bool, error) {
	return userID == "admin" && perm == auth.PermAdminAccess, nil
}

func serve(h *Handler, path, user string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: user}))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListEventsFiltersAndGates(t *testing.T) {
	lister := &stubLister{}
	h := NewHandler(lister, allowAdmin{})

	rec := serve(h, "/audit/events?entityId=a1&action=leave.approve", "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, audit.Filter{Action: "leave.approve", EntityID: "a1"}, lister.filter)

	rec = serve(h, "/audit/events", "staff")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportEventsWritesCSV(t *testing.T) {
	h := NewHandler(&stubLister{}, allowAdmin{})
	rec := serve(h, "/audit/events/export", "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "7,u1,leave.approve,leave_application,a1,,,2026-04-01T09:00:00Z", lines[1])
}
