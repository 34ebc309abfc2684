package repository

import (
	"context"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetByID returns the role with its permission set, falling back to the
// built-in defaults when the roles table has no row for it.
func (r *RoleRepository) GetByID(ctx context.Context, id model.RoleID) (*model.Role, error) {
	query := `
		SELECT id, name, permissions
		FROM roles
		WHERE id = $1
	`

	var role model.Role
	var perms []string
	err := r.pool.QueryRow(ctx, query, id).Scan(&role.ID, &role.Name, &perms)

	if err != nil {
		if err == pgx.ErrNoRows {
			for _, def := range model.DefaultRoles() {
				if def.ID == id {
					return &def, nil
				}
			}
			return nil, nil
		}
		return nil, fmt.Errorf("get role by id: %w", err)
	}

	role.Permissions = make([]model.Permission, 0, len(perms))
	for _, p := range perms {
		role.Permissions = append(role.Permissions, model.Permission(p))
	}

	return &role, nil
}

// List returns all roles.
func (r *RoleRepository) List(ctx context.Context) ([]*model.Role, error) {
	query := `
		SELECT id, name, permissions
		FROM roles
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		var role model.Role
		var perms []string
		if err := rows.Scan(&role.ID, &role.Name, &perms); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		for _, p := range perms {
			role.Permissions = append(role.Permissions, model.Permission(p))
		}
		roles = append(roles, &role)
	}

	return roles, nil
}

// UpdatePermissions replaces a role's permission set.
func (r *RoleRepository) UpdatePermissions(ctx context.Context, id model.RoleID, perms []model.Permission) error {
	query := `
		UPDATE roles
		SET permissions = $2
		WHERE id = $1
	`

	raw := make([]string, 0, len(perms))
	for _, p := range perms {
		raw = append(raw, string(p))
	}

	result, err := r.pool.Exec(ctx, query, id, raw)
	if err != nil {
		return fmt.Errorf("update role permissions: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
