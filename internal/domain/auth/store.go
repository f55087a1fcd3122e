package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoUser = errors.New("user not found")

type Credentials struct {
	UserID       string
	TenantID     string
	RoleID       string
	RoleName     string
	StaffID      string
	FullName     string
	PasswordHash string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) UserByEmail(ctx context.Context, email string) (Credentials, error) {
	var creds Credentials
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.tenant_id, u.role_id, r.name, COALESCE(u.staff_id::text, ''), u.full_name, u.password_hash
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.email = $1 AND u.active
  `, email).Scan(&creds.UserID, &creds.TenantID, &creds.RoleID, &creds.RoleName, &creds.StaffID, &creds.FullName, &creds.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrNoUser
	}
	if err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// HasPermission consults the role_permissions table seeded from
// RolePermissions at startup.
func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM role_permissions
      WHERE role_id = $1 AND permission = $2
    )
  `, roleID, permission).Scan(&exists)
	return exists, err
}
