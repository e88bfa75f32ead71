package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"leaveflow/internal/platform/querier"
)

const applicationColumns = `
    id, user_id, user_name, designation, division_id, category,
    start_date, start_time, resume_date, resume_time, leave_days::float8, reason,
    acting_officer_id, recommender_id, approver_id, subject_in_charge_id, status,
    COALESCE(acting_comment, ''), COALESCE(recommender_comment, ''), COALESCE(approver_comment, ''),
    created_at, updated_at
`

func scanApplication(row pgx.Row) (Application, error) {
	var app Application
	var category, status string
	err := row.Scan(
		&app.ID, &app.UserID, &app.UserName, &app.Designation, &app.DivisionID, &category,
		&app.StartDate, &app.StartTime, &app.ResumeDate, &app.ResumeTime, &app.LeaveDays, &app.Reason,
		&app.ActingOfficerID, &app.RecommenderID, &app.ApproverID, &app.SubjectInChargeID, &status,
		&app.Comments.Acting, &app.Comments.Recommender, &app.Comments.Approver,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	app.Category = Category(category)
	app.Status = Status(status)
	if !app.Status.Valid() {
		return Application{}, fmt.Errorf("application %s has unknown status %q", app.ID, status)
	}
	return app, nil
}

func (s *Store) Get(ctx context.Context, id string) (Application, error) {
	app, err := scanApplication(querier.From(ctx, s.DB).QueryRow(ctx, `
    SELECT `+applicationColumns+`
    FROM leave_applications
    WHERE id = $1
  `, id))
	return app, translateError(err)
}

// Create inserts app in its initial status. The id is generated here and the
// timestamps come from the database.
func (s *Store) Create(ctx context.Context, app Application) (Application, error) {
	app.ID = uuid.NewString()
	app.Status = StatusPendingActing
	err := querier.From(ctx, s.DB).QueryRow(ctx, `
    INSERT INTO leave_applications (
      id, user_id, user_name, designation, division_id, category,
      start_date, start_time, resume_date, resume_time, leave_days, reason,
      acting_officer_id, recommender_id, approver_id, subject_in_charge_id, status
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    RETURNING created_at, updated_at
  `, app.ID, app.UserID, app.UserName, app.Designation, app.DivisionID, string(app.Category),
		app.StartDate, app.StartTime, app.ResumeDate, app.ResumeTime, app.LeaveDays, app.Reason,
		app.ActingOfficerID, app.RecommenderID, app.ApproverID, app.SubjectInChargeID, string(app.Status),
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return Application{}, translateError(err)
	}
	return app, nil
}

// Transition locks the application row, lets decide inspect it, and writes
// the resulting change conditionally on the status that was read. Everything
// happens in one serializable transaction; nothing is written on error.
func (s *Store) Transition(ctx context.Context, id string, decide DecideFunc) (Application, error) {
	var out Application
	err := s.Tx.WithinSerializable(ctx, func(ctx context.Context) error {
		q := querier.From(ctx, s.DB)
		app, err := scanApplication(q.QueryRow(ctx, `
    SELECT `+applicationColumns+`
    FROM leave_applications
    WHERE id = $1
    FOR UPDATE
  `, id))
		if err != nil {
			return err
		}

		t, err := decide(ctx, app)
		if err != nil {
			return err
		}

		updatedAt, err := writeTransition(ctx, q, id, t)
		if err != nil {
			return err
		}
		out = t.Apply(app)
		out.UpdatedAt = updatedAt
		return nil
	})
	if err != nil {
		return Application{}, translateError(err)
	}
	return out, nil
}

func writeTransition(ctx context.Context, q querier.Querier, id string, t Transition) (time.Time, error) {
	set := "status = $1, updated_at = now()"
	args := []any{string(t.To), id, string(t.From)}
	if col := t.Writes().column(); col != "" {
		args = append(args, t.Comment)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}

	var updatedAt time.Time
	err := q.QueryRow(ctx, `
    UPDATE leave_applications
    SET `+set+`
    WHERE id = $2 AND status = $3
    RETURNING updated_at
  `, args...).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrStorageConflict
	}
	return updatedAt, err
}

func buildListWhere(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		where += fmt.Sprintf(clause, len(args))
	}
	if filter.UserID != "" {
		add(" AND user_id = $%d", filter.UserID)
	}
	if filter.ActingOfficerID != "" {
		add(" AND acting_officer_id = $%d", filter.ActingOfficerID)
	}
	if filter.RecommenderID != "" {
		add(" AND recommender_id = $%d", filter.RecommenderID)
	}
	if filter.ApproverID != "" {
		add(" AND approver_id = $%d", filter.ApproverID)
	}
	if filter.DivisionID != "" {
		add(" AND division_id = $%d", filter.DivisionID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		add(" AND status = ANY($%d)", statuses)
	}
	if filter.StartYear > 0 {
		add(" AND EXTRACT(YEAR FROM start_date) = $%d", filter.StartYear)
	}
	if !filter.ActiveOn.IsZero() {
		add(" AND start_date <= $%d", civilDate(filter.ActiveOn))
		where += fmt.Sprintf(" AND resume_date >= $%d", len(args))
	}
	return where, args
}

// List returns applications newest first. A zero Limit returns every match.
func (s *Store) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	q := querier.From(ctx, s.DB)
	where, args := buildListWhere(filter)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(1) FROM leave_applications"+where, args...).Scan(&total); err != nil {
		return ListResult{}, translateError(err)
	}

	query := "SELECT " + applicationColumns + " FROM leave_applications" + where + " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, translateError(err)
	}
	defer rows.Close()

	items := []Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, app)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, translateError(err)
	}
	return ListResult{Items: items, Total: total}, nil
}

func (s *Store) ListBalances(ctx context.Context, year int) ([]Balance, error) {
	rows, err := querier.From(ctx, s.DB).Query(ctx, `
    SELECT b.user_id, u.name, b.year, b.casual::float8, b.vocation::float8, b.past::float8, b.updated_at
    FROM leave_balances b
    JOIN users u ON u.id = b.user_id
    WHERE b.year = $1
    ORDER BY u.name
  `, year)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	out := []Balance{}
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.UserID, &b.UserName, &b.Year, &b.Casual, &b.Vocation, &b.Past, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpsertBalance(ctx context.Context, b Balance) (Balance, error) {
	err := querier.From(ctx, s.DB).QueryRow(ctx, `
    INSERT INTO leave_balances (user_id, year, casual, vocation, past)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (user_id, year)
    DO UPDATE SET casual = EXCLUDED.casual, vocation = EXCLUDED.vocation, past = EXCLUDED.past, updated_at = now()
    RETURNING updated_at
  `, b.UserID, b.Year, b.Casual, b.Vocation, b.Past).Scan(&b.UpdatedAt)
	if err != nil {
		return Balance{}, translateError(err)
	}
	return b, nil
}

// translateError maps driver errors onto the workflow taxonomy. Errors that
// already belong to it pass through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Message: ErrNotFound.Error(), Err: ErrNotFound}
	}
	if errors.Is(err, ErrStorageConflict) {
		return &Error{Kind: KindStorageConflict, Message: "application was modified concurrently; reload and try again", Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return &Error{Kind: KindStorageConflict, Message: "application was modified concurrently; reload and try again", Err: fmt.Errorf("%w: %s", ErrStorageConflict, pgErr.Message)}
		case "23503":
			return &Error{Kind: KindValidation, Message: "referenced user does not exist", Err: ErrValidation}
		case "23514":
			return &Error{Kind: KindValidation, Message: "record violates a constraint: " + pgErr.ConstraintName, Err: ErrValidation}
		}
	}
	return err
}
