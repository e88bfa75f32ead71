package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"leaveflow/internal/domain/auth"
	"leaveflow/internal/platform/metrics"
)

type Service struct {
	Store     StoreAPI
	Directory Directory
	Log       *zap.Logger
	Metrics   *metrics.Collector
}

func NewService(store StoreAPI, directory Directory, log *zap.Logger, collector *metrics.Collector) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Directory: directory, Log: log, Metrics: collector}
}

// ApplyAction is the workflow boundary. It never returns an error: every
// failure is folded into the Result.
func (s *Service) ApplyAction(ctx context.Context, req ActionRequest) Result {
	app, err := s.Do(ctx, req)
	return resultOf(app.Status, err)
}

// Do runs one workflow action and returns the updated application.
func (s *Service) Do(ctx context.Context, req ActionRequest) (Application, error) {
	cmd, err := ParseAction(req.Action, req.Comment)
	if err != nil {
		return Application{}, s.finish(req.Action, req, err)
	}
	if strings.TrimSpace(req.ApplicationID) == "" {
		return Application{}, s.finish(cmd.Name(), req, &Error{Kind: KindNotFound, Message: ErrNotFound.Error(), Err: ErrNotFound})
	}
	if strings.TrimSpace(req.ActorID) == "" {
		return Application{}, s.finish(cmd.Name(), req, unauthorized("actor is required"))
	}

	app, err := s.Store.Transition(ctx, req.ApplicationID, func(ctx context.Context, app Application) (Transition, error) {
		actor, err := s.resolveActor(ctx, req.ActorID)
		if err != nil {
			return Transition{}, err
		}
		return Decide(app, actor, cmd)
	})
	if err != nil {
		return Application{}, s.finish(cmd.Name(), req, err)
	}
	s.finish(cmd.Name(), req, nil)
	return app, nil
}

// resolveActor reads the actor's role as it is right now. An actor with no
// directory entry simply has no escalation rights.
func (s *Service) resolveActor(ctx context.Context, actorID string) (Actor, error) {
	binding, err := s.Directory.RoleBinding(ctx, actorID)
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		return Actor{}, err
	}
	return Actor{ID: actorID, HeadOfDepartment: binding.IsHeadOfDepartment()}, nil
}

// Cancel withdraws a non-terminal application on behalf of its requester.
func (s *Service) Cancel(ctx context.Context, applicationID, actorID string) (Application, error) {
	req := ActionRequest{ApplicationID: applicationID, Action: "Cancel", ActorID: actorID}
	app, err := s.Store.Transition(ctx, applicationID, func(_ context.Context, app Application) (Transition, error) {
		return DecideCancel(app, actorID)
	})
	return app, s.finish("Cancel", req, err)
}

func (s *Service) finish(action string, req ActionRequest, err error) error {
	err = normalize(err)
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	s.Metrics.RecordTransition(outcome)

	fields := []zap.Field{
		zap.String("application_id", req.ApplicationID),
		zap.String("action", action),
		zap.String("actor_id", req.ActorID),
		zap.String("outcome", outcome),
	}
	switch {
	case err == nil:
		s.Log.Info("leave transition applied", fields...)
	case KindOf(err) == KindInternal:
		s.Log.Error("leave transition failed", append(fields, zap.Error(err))...)
	default:
		s.Log.Info("leave transition refused", append(fields, zap.String("reason", err.Error()))...)
	}
	return err
}

// normalize turns anything outside the taxonomy into an internal error that
// still carries the underlying message.
func normalize(err error) error {
	if err == nil || KindOf(err) != KindInternal {
		return err
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{Kind: KindInternal, Message: "unexpected storage error: " + err.Error(), Err: err}
}

// Submit creates an application in its initial status after deriving the
// schedule and checking every participant.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Application, error) {
	category, err := ParseCategory(req.Category)
	if err != nil {
		return Application{}, validationError(Issue{Field: "leaveType", Message: err.Error()})
	}
	schedule, err := ComputeSchedule(category, req.StartDate, req.LeaveDays)
	if err != nil {
		return Application{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return Application{}, validationError(Issue{Field: "reason", Message: "reason is required"})
	}

	requester, err := s.Directory.Member(ctx, req.RequesterID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return Application{}, validationError(Issue{Field: "userId", Message: "requester is not in the directory"})
	}
	if err != nil {
		return Application{}, normalize(err)
	}
	directory, err := s.Directory.Members(ctx)
	if err != nil {
		return Application{}, normalize(err)
	}
	participants := ResolveParticipants(requester, directory)
	if err := participants.Validate(req.ActingOfficerID, req.RecommenderID, req.ApproverID); err != nil {
		return Application{}, err
	}

	app, err := s.Store.Create(ctx, Application{
		UserID:            requester.ID,
		UserName:          requester.Name,
		Designation:       requester.Designation,
		DivisionID:        requester.DivisionID,
		Category:          schedule.Category,
		StartDate:         schedule.StartDate,
		StartTime:         schedule.StartTime,
		ResumeDate:        schedule.ResumeDate,
		ResumeTime:        schedule.ResumeTime,
		LeaveDays:         schedule.LeaveDays,
		Reason:            reason,
		ActingOfficerID:   req.ActingOfficerID,
		RecommenderID:     req.RecommenderID,
		ApproverID:        req.ApproverID,
		SubjectInChargeID: participants.SubjectInCharge.ID,
	})
	if err != nil {
		return Application{}, normalize(err)
	}
	s.Log.Info("leave application submitted",
		zap.String("application_id", app.ID),
		zap.String("user_id", app.UserID),
		zap.String("category", string(app.Category)),
		zap.Float64("leave_days", app.LeaveDays),
	)
	return app, nil
}

func (s *Service) Participants(ctx context.Context, requesterID string) (Participants, error) {
	requester, err := s.Directory.Member(ctx, requesterID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return Participants{}, validationError(Issue{Field: "userId", Message: "requester is not in the directory"})
	}
	if err != nil {
		return Participants{}, normalize(err)
	}
	directory, err := s.Directory.Members(ctx)
	if err != nil {
		return Participants{}, normalize(err)
	}
	return ResolveParticipants(requester, directory), nil
}

func (s *Service) PreviewSchedule(category string, start time.Time, leaveDays float64) (Schedule, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return Schedule{}, validationError(Issue{Field: "leaveType", Message: err.Error()})
	}
	return ComputeSchedule(c, start, leaveDays)
}

// Get returns an application to someone involved in it, a Head of
// Department, or a holder of the summary permission.
func (s *Service) Get(ctx context.Context, id, viewerID string) (Application, error) {
	app, err := s.Store.Get(ctx, id)
	if err != nil {
		return Application{}, normalize(err)
	}
	switch viewerID {
	case app.UserID, app.ActingOfficerID, app.RecommenderID, app.ApproverID, app.SubjectInChargeID:
		return app, nil
	}
	binding, err := s.Directory.RoleBinding(ctx, viewerID)
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		return Application{}, normalize(err)
	}
	if binding.IsHeadOfDepartment() || binding.Can(auth.PermLeaveViewSummary) {
		return app, nil
	}
	return Application{}, unauthorized("not permitted to view this application")
}

// Queue lists the applications waiting on viewerID in the given role.
func (s *Service) Queue(ctx context.Context, viewerID string, queue Queue, limit, offset int) (ListResult, error) {
	filter := ListFilter{Limit: limit, Offset: offset}
	switch queue {
	case QueueMine:
		filter.UserID = viewerID
	case QueueActing:
		filter.ActingOfficerID = viewerID
		filter.Statuses = []Status{StatusPendingActing}
	case QueueRecommendations:
		filter.RecommenderID = viewerID
		filter.Statuses = []Status{StatusPending, StatusActingRejected}
	case QueueApprovals:
		filter.Statuses = []Status{StatusRecommended}
		binding, err := s.Directory.RoleBinding(ctx, viewerID)
		if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
			return ListResult{}, normalize(err)
		}
		if !binding.IsHeadOfDepartment() {
			filter.ApproverID = viewerID
		}
	default:
		return ListResult{}, validationError(Issue{Field: "queue", Message: "unknown queue"})
	}
	out, err := s.Store.List(ctx, filter)
	return out, normalize(err)
}

// Summary reports entitlement against approved leave starting in year.
func (s *Service) Summary(ctx context.Context, year int, divisionID string) ([]SummaryRow, error) {
	members, err := s.Directory.Members(ctx)
	if err != nil {
		return nil, normalize(err)
	}
	balances, err := s.Store.ListBalances(ctx, year)
	if err != nil {
		return nil, normalize(err)
	}
	approved, err := s.Store.List(ctx, ListFilter{Statuses: []Status{StatusApproved}, StartYear: year})
	if err != nil {
		return nil, normalize(err)
	}
	return Summarize(members, balances, approved.Items, divisionID), nil
}

// OnLeave lists approved applications covering day.
func (s *Service) OnLeave(ctx context.Context, day time.Time) ([]Application, error) {
	approved, err := s.Store.List(ctx, ListFilter{Statuses: []Status{StatusApproved}, ActiveOn: day})
	if err != nil {
		return nil, normalize(err)
	}
	return OnLeave(approved.Items, day), nil
}

func (s *Service) Balances(ctx context.Context, year int) ([]Balance, error) {
	out, err := s.Store.ListBalances(ctx, year)
	return out, normalize(err)
}

// SetBalance replaces a member's yearly entitlement.
func (s *Service) SetBalance(ctx context.Context, b Balance) (Balance, error) {
	var issues []Issue
	if b.Year < 2000 || b.Year > 2100 {
		issues = append(issues, Issue{Field: "year", Message: "year is out of range"})
	}
	amounts := []struct {
		field string
		value float64
	}{{"casual", b.Casual}, {"vocation", b.Vocation}, {"past", b.Past}}
	for _, a := range amounts {
		if a.value < 0 {
			issues = append(issues, Issue{Field: a.field, Message: a.field + " must not be negative"})
		}
	}
	if len(issues) > 0 {
		return Balance{}, validationError(issues...)
	}

	member, err := s.Directory.Member(ctx, b.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return Balance{}, &Error{Kind: KindNotFound, Message: "user not found", Err: ErrNotFound}
	}
	if err != nil {
		return Balance{}, normalize(err)
	}
	b.UserName = member.Name

	out, err := s.Store.UpsertBalance(ctx, b)
	if err != nil {
		return Balance{}, normalize(err)
	}
	out.UserName = member.Name
	return out, nil
}
