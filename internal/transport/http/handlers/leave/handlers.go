package leavehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leaveflow/internal/domain/audit"
	"leaveflow/internal/domain/auth"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/requestctx"
	"leaveflow/internal/transport/http/api"
	"leaveflow/internal/transport/http/middleware"
	"leaveflow/internal/transport/http/shared"
)

// Workflow is the part of leave.Service the HTTP layer drives.
type Workflow interface {
	Do(ctx context.Context, req leave.ActionRequest) (leave.Application, error)
	Cancel(ctx context.Context, applicationID, actorID string) (leave.Application, error)
	Submit(ctx context.Context, req leave.SubmitRequest) (leave.Application, error)
	Participants(ctx context.Context, requesterID string) (leave.Participants, error)
	PreviewSchedule(category string, start time.Time, leaveDays float64) (leave.Schedule, error)
	Get(ctx context.Context, id, viewerID string) (leave.Application, error)
	Queue(ctx context.Context, viewerID string, queue leave.Queue, limit, offset int) (leave.ListResult, error)
	Summary(ctx context.Context, year int, divisionID string) ([]leave.SummaryRow, error)
	OnLeave(ctx context.Context, day time.Time) ([]leave.Application, error)
	Balances(ctx context.Context, year int) ([]leave.Balance, error)
	SetBalance(ctx context.Context, balance leave.Balance) (leave.Balance, error)
}

type AuditLog interface {
	Record(ctx context.Context, entry audit.Entry) error
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service     Workflow
	Perms       middleware.PermissionStore
	Audit       AuditLog
	Idempotency *middleware.IdempotencyStore
	Now         func() time.Time
}

const submitEndpoint = "leave.submit"

// queuePermissions gates each work list.
var queuePermissions = map[leave.Queue]auth.Permission{
	leave.QueueMine:            auth.PermLeaveApply,
	leave.QueueActing:          auth.PermLeaveActing,
	leave.QueueRecommendations: auth.PermLeaveRecommend,
	leave.QueueApprovals:       auth.PermLeaveApprove,
}

func NewHandler(service Workflow, perms middleware.PermissionStore, auditLog AuditLog, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditLog, Idempotency: idem, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Post("/applications", h.handleSubmit)
		r.Get("/applications", h.handleQueue)
		r.Get("/applications/{applicationID}", h.handleGet)
		r.Post("/applications/{applicationID}/actions", h.handleAction)
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Post("/applications/{applicationID}/cancel", h.handleCancel)
		r.With(middleware.RequirePermission(auth.PermLeaveViewHistory, h.Perms)).Get("/applications/{applicationID}/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Get("/participants", h.handleParticipants)
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Get("/schedule", h.handleSchedule)
		r.With(middleware.RequirePermission(auth.PermLeaveViewSummary, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermLeaveViewSummary, h.Perms)).Get("/on-leave", h.handleOnLeave)
		r.With(middleware.RequirePermission(auth.PermLeaveManageBalance, h.Perms)).Get("/balances", h.handleListBalances)
		r.With(middleware.RequirePermission(auth.PermLeaveManageBalance, h.Perms)).Put("/balances/{userID}", h.handleSetBalance)
	})
}

type submitPayload struct {
	LeaveType       string  `json:"leaveType"`
	StartDate       string  `json:"startDate"`
	LeaveDays       float64 `json:"leaveDays"`
	Reason          string  `json:"reason"`
	ActingOfficerID string  `json:"actingOfficerId"`
	RecommenderID   string  `json:"recommenderId"`
	ApproverID      string  `json:"approverId"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	var payload submitPayload
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("leaveType", payload.LeaveType, "is required")
	v.Required("reason", payload.Reason, "is required")
	v.Required("actingOfficerId", payload.ActingOfficerID, "is required")
	v.Required("recommenderId", payload.RecommenderID, "is required")
	v.Required("approverId", payload.ApproverID, "is required")
	start, _ := v.Date("startDate", payload.StartDate)
	if !fixedHalfDay(payload.LeaveType) {
		v.HalfDays("leaveDays", payload.LeaveDays)
	}
	if v.Reject(w, reqID) {
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	hash := middleware.RequestHash(raw)
	stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, submitEndpoint, idemKey, hash)
	if errors.Is(err, middleware.ErrIdempotencyConflict) {
		api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), reqID)
		return
	}
	if err != nil {
		requestctx.Logger(r.Context()).Error("idempotency check failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "failed to check idempotency key", reqID)
		return
	}
	if found {
		w.Header().Set("Idempotent-Replay", "true")
		api.Created(w, stored, reqID)
		return
	}

	app, err := h.Service.Submit(r.Context(), leave.SubmitRequest{
		RequesterID:     user.UserID,
		Category:        payload.LeaveType,
		StartDate:       start,
		LeaveDays:       payload.LeaveDays,
		Reason:          payload.Reason,
		ActingOfficerID: payload.ActingOfficerID,
		RecommenderID:   payload.RecommenderID,
		ApproverID:      payload.ApproverID,
	})
	if err != nil {
		failLeave(w, r, err)
		return
	}

	if idemKey != "" {
		if body, err := json.Marshal(app); err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, submitEndpoint, idemKey, hash, body); err != nil {
				requestctx.Logger(r.Context()).Warn("idempotency save failed", zap.Error(err))
			}
		}
	}
	h.record(r, user.UserID, "leave.submit", leave.AuditEntityApplication, app.ID, nil, app)
	api.Created(w, app, reqID)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	queue, err := leave.ParseQueue(r.URL.Query().Get("queue"))
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "queue", Reason: err.Error()}})
		return
	}
	allowed, err := h.Perms.HasPermission(r.Context(), user.UserID, queuePermissions[queue])
	if err != nil {
		requestctx.Logger(r.Context()).Error("permission check failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", reqID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	out, err := h.Service.Queue(r.Context(), user.UserID, queue, page.Limit, page.Offset)
	if err != nil {
		failLeave(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(out.Total))
	api.Success(w, out, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	app, err := h.Service.Get(r.Context(), chi.URLParam(r, "applicationID"), user.UserID)
	if err != nil {
		failLeave(w, r, err)
		return
	}
	api.Success(w, app, middleware.GetRequestID(r.Context()))
}

type actionPayload struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

type actionResponse struct {
	Result      leave.Result      `json:"result"`
	Application leave.Application `json:"application"`
}

// handleAction only authenticates. Whether the caller may act is decided by
// the workflow against the locked record.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload actionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id := chi.URLParam(r, "applicationID")
	app, err := h.Service.Do(r.Context(), leave.ActionRequest{
		ApplicationID: id,
		Action:        payload.Action,
		ActorID:       user.UserID,
		Comment:       payload.Comment,
	})
	if err != nil {
		failLeave(w, r, err)
		return
	}
	h.record(r, user.UserID, leave.AuditAction(payload.Action), leave.AuditEntityApplication, id, payload, app)
	api.Success(w, actionResponse{
		Result:      leave.Result{Success: true, Status: app.Status},
		Application: app,
	}, reqID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "applicationID")
	app, err := h.Service.Cancel(r.Context(), id, user.UserID)
	if err != nil {
		failLeave(w, r, err)
		return
	}
	h.record(r, user.UserID, "leave.cancel", leave.AuditEntityApplication, id, nil, app)
	api.Success(w, app, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "applicationID")
	if _, err := h.Service.Get(r.Context(), id, user.UserID); err != nil {
		failLeave(w, r, err)
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	events, err := h.Audit.List(r.Context(), audit.Filter{EntityType: leave.AuditEntityApplication, EntityID: id}, page.Limit, page.Offset)
	if err != nil {
		requestctx.Logger(r.Context()).Error("history lookup failed", zap.String("application_id", id), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to load application history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleParticipants(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Service.Participants(r.Context(), user.UserID)
	if err != nil {
		failLeave(w, r, err)
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	v.Required("leaveType", q.Get("leaveType"), "is required")
	start, _ := v.Date("startDate", q.Get("startDate"))
	var days float64
	if !fixedHalfDay(q.Get("leaveType")) {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(q.Get("leaveDays")), 64)
		if err != nil {
			v.Add("leaveDays", "must be a number")
		}
		days = parsed
	}
	if v.Reject(w, reqID) {
		return
	}

	out, err := h.Service.PreviewSchedule(q.Get("leaveType"), start, days)
	if err != nil {
		failLeave(w, r, err)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	year, ok := h.parseYear(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Summary(r.Context(), year, strings.TrimSpace(r.URL.Query().Get("divisionId")))
	if err != nil {
		failLeave(w, r, err)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) handleOnLeave(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	day := h.Now().UTC()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		v := shared.NewValidator()
		parsed, ok := v.Date("date", raw)
		if !ok {
			v.Reject(w, reqID)
			return
		}
		day = parsed
	}
	out, err := h.Service.OnLeave(r.Context(), day)
	if err != nil {
		failLeave(w, r, err)
		return
	}
	api.Success(w, out, reqID)
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	year, ok := h.parseYear(w, r)
	if !ok {
		return
	}
	out, err := h.Service.Balances(r.Context(), year)
	if err != nil {
		failLeave(w, r, err)
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

type balancePayload struct {
	Year     int     `json:"year"`
	Casual   float64 `json:"casual"`
	Vocation float64 `json:"vocation"`
	Past     float64 `json:"past"`
}

func (h *Handler) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var payload balancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.NonNegative("casual", payload.Casual)
	v.NonNegative("vocation", payload.Vocation)
	v.NonNegative("past", payload.Past)
	if v.Reject(w, reqID) {
		return
	}

	userID := chi.URLParam(r, "userID")
	out, err := h.Service.SetBalance(r.Context(), leave.Balance{
		UserID:   userID,
		Year:     payload.Year,
		Casual:   payload.Casual,
		Vocation: payload.Vocation,
		Past:     payload.Past,
	})
	if err != nil {
		failLeave(w, r, err)
		return
	}
	h.record(r, user.UserID, "leave.balance.set", leave.AuditEntityBalance, userID+":"+strconv.Itoa(out.Year), nil, out)
	api.Success(w, out, reqID)
}

// fixedHalfDay reports whether the category sets its own day count, so a
// client-supplied leaveDays is neither required nor checked.
func fixedHalfDay(rawCategory string) bool {
	c, err := leave.ParseCategory(rawCategory)
	return err == nil && c.HalfDay()
}

// parseYear reads ?year=, defaulting to the current year.
func (h *Handler) parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return h.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2100 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "year", Reason: "must be a year between 2000 and 2100"}})
		return 0, false
	}
	return year, true
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		requestctx.Logger(r.Context()).Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}

func failLeave(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	kind := leave.KindOf(err)
	switch kind {
	case leave.KindValidation:
		issues := leave.IssuesOf(err)
		fields := make([]shared.ValidationIssue, 0, len(issues))
		for _, issue := range issues {
			fields = append(fields, shared.ValidationIssue{Field: issue.Field, Reason: issue.Message})
		}
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", err.Error(), map[string]any{"fields": fields}, reqID)
	case leave.KindNotFound:
		api.Fail(w, http.StatusNotFound, string(kind), err.Error(), reqID)
	case leave.KindUnauthorized:
		api.Fail(w, http.StatusForbidden, string(kind), err.Error(), reqID)
	case leave.KindInvalidTransition, leave.KindStorageConflict:
		api.Fail(w, http.StatusConflict, string(kind), err.Error(), reqID)
	default:
		requestctx.Logger(r.Context()).Error("leave request failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, string(leave.KindInternal), "internal error", reqID)
	}
}
