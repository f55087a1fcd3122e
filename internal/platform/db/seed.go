package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"campushr/internal/domain/auth"
	"campushr/internal/platform/config"
)

// Seed provisions the tenant, roles, permissions, approval chain, and the
// initial admin account. Every step is idempotent so restarts are safe.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool, tenantID)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if err := ensureApprovalChain(ctx, pool, tenantID); err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, tenantID, roleIDs[auth.RoleAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool, tenantID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for _, roleName := range auth.AllRoles {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE tenant_id = $1 AND name = $2", tenantID, roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}

		err = pool.QueryRow(ctx, "INSERT INTO roles (tenant_id, name) VALUES ($1, $2) RETURNING id", tenantID, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	for roleName, perms := range auth.RolePermissions {
		roleID, ok := roleIDs[roleName]
		if !ok {
			continue
		}
		for _, perm := range perms {
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, perm)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureApprovalChain(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM approval_chain_roles WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	chain := []string{auth.RoleManager, auth.RoleCEO}
	for i, role := range chain {
		if _, err := pool.Exec(ctx, "INSERT INTO approval_chain_roles (tenant_id, step_index, role_name) VALUES ($1, $2, $3)", tenantID, i, role); err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, tenantID, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, full_name, password_hash, role_id)
    VALUES ($1, $2, 'Administrator', $3, $4)
    RETURNING id
  `, tenantID, email, hash, roleID).Scan(&id)
}
