package authhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leaveflow/internal/domain/auth"
	"leaveflow/internal/requestctx"
	"leaveflow/internal/transport/http/api"
	"leaveflow/internal/transport/http/middleware"
)

// Directory resolves the caller's profile and current role.
type Directory interface {
	Member(ctx context.Context, userID string) (auth.Member, error)
	RoleBinding(ctx context.Context, userID string) (auth.RoleBinding, error)
}

type Handler struct {
	Directory Directory
}

func NewHandler(directory Directory) *Handler {
	return &Handler{Directory: directory}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireUser).Get("/auth/me", h.HandleMe)
}

type meResponse struct {
	auth.Member
	Permissions map[string][]string `json:"permissions"`
}

// HandleMe returns the caller's directory entry with the permissions their
// role grants right now. Clients use it to decide which queues to show.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	member, err := h.Directory.Member(r.Context(), user.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	if err != nil {
		requestctx.Logger(r.Context()).Error("member lookup failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", reqID)
		return
	}
	binding, err := h.Directory.RoleBinding(r.Context(), user.UserID)
	if err != nil {
		requestctx.Logger(r.Context()).Error("role lookup failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", reqID)
		return
	}
	api.Success(w, meResponse{Member: member, Permissions: binding.Permissions.Raw()}, reqID)
}
