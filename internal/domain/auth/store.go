package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"leaveflow/internal/platform/querier"
)

var ErrUserNotFound = errors.New("user not found")

// Store reads identities and role bindings. Every query goes through the
// transaction carried by ctx when there is one.
type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const memberColumns = `
    u.id, u.name, u.email, COALESCE(u.role_id, ''), COALESCE(r.name, ''),
    COALESCE(u.division_id, ''), u.staff_type, u.designation
`

// RoleBinding resolves the user's current role and permissions. A user with
// no role gets an empty binding rather than an error.
func (s *Store) RoleBinding(ctx context.Context, userID string) (RoleBinding, error) {
	var roleID, roleName string
	var raw map[string][]string
	err := querier.From(ctx, s.DB).QueryRow(ctx, `
    SELECT COALESCE(u.role_id, ''), COALESCE(r.name, ''), COALESCE(r.permissions, '{}'::jsonb)
    FROM users u
    LEFT JOIN roles r ON u.role_id = r.id
    WHERE u.id = $1
  `, userID).Scan(&roleID, &roleName, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return RoleBinding{}, ErrUserNotFound
	}
	if err != nil {
		return RoleBinding{}, err
	}
	// Stale catalog entries are dropped; the remaining grants still apply.
	perms, _ := ParsePermissions(raw)
	return RoleBinding{UserID: userID, RoleID: roleID, RoleName: roleName, Permissions: perms}, nil
}

func (s *Store) HasPermission(ctx context.Context, userID string, perm Permission) (bool, error) {
	binding, err := s.RoleBinding(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return binding.Can(perm), nil
}

func (s *Store) Member(ctx context.Context, userID string) (Member, error) {
	row := querier.From(ctx, s.DB).QueryRow(ctx, `
    SELECT `+memberColumns+`
    FROM users u
    LEFT JOIN roles r ON u.role_id = r.id
    WHERE u.id = $1
  `, userID)
	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, ErrUserNotFound
	}
	return m, err
}

// Members returns the whole directory ordered by name.
func (s *Store) Members(ctx context.Context) ([]Member, error) {
	rows, err := querier.From(ctx, s.DB).Query(ctx, `
    SELECT `+memberColumns+`
    FROM users u
    LEFT JOIN roles r ON u.role_id = r.id
    ORDER BY u.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	var staffType string
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.RoleID, &m.RoleName, &m.DivisionID, &staffType, &m.Designation); err != nil {
		return Member{}, err
	}
	m.StaffType = ParseStaffType(staffType)
	return m, nil
}
