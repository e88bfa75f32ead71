package db

import (
	"context"

	"github.com/google/uuid"

	"leaveflow/internal/domain/auth"
	"leaveflow/internal/platform/querier"
)

// Seed makes sure every organisational role exists. Existing roles keep
// whatever permissions an administrator has since assigned to them.
func Seed(ctx context.Context, q querier.Querier) error {
	for _, roleName := range auth.SeededRoles() {
		perms := auth.NewPermissionSet(auth.DefaultRolePermissions[roleName]...)
		if _, err := q.Exec(ctx, `
    INSERT INTO roles (id, name, permissions)
    VALUES ($1, $2, $3)
    ON CONFLICT (name) DO NOTHING
  `, uuid.NewString(), roleName, perms.Raw()); err != nil {
			return err
		}
	}
	return nil
}
