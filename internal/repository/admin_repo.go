package repository

import (
	"context"
	"errors"
	"fmt"

	"carmeet/internal/model"

	"github.com/jackc/pgx/v5"
)

// AdminRepository defines operations for admin data
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
	FindBySessionToken(ctx context.Context, token string) (*model.Admin, error)
	UpdateSessionToken(ctx context.Context, id int, token string) error
	Upsert(ctx context.Context, admin *model.Admin) error
}

type adminRepository struct {
	db DB
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db DB) AdminRepository {
	return &adminRepository{db: db}
}

// FindByUsername retrieves an admin by username
func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	admin := &model.Admin{}
	sql := `SELECT id, username, password_hash, session_token FROM admins WHERE username = $1`
	err := r.db.QueryRow(ctx, sql, username).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.SessionToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error here, the service layer handles it
		}
		return nil, fmt.Errorf("failed to find admin by username: %w", err)
	}
	return admin, nil
}

// FindBySessionToken retrieves the admin holding the given session token
func (r *adminRepository) FindBySessionToken(ctx context.Context, token string) (*model.Admin, error) {
	admin := &model.Admin{}
	sql := `SELECT id, username, password_hash, session_token FROM admins WHERE session_token = $1`
	err := r.db.QueryRow(ctx, sql, token).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.SessionToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No admin holds this token
		}
		return nil, fmt.Errorf("failed to find admin by session token: %w", err)
	}
	return admin, nil
}

// UpdateSessionToken stores a new session token for the admin, replacing
// whatever token was there before.
func (r *adminRepository) UpdateSessionToken(ctx context.Context, id int, token string) error {
	sql := `UPDATE admins SET session_token = $1 WHERE id = $2`
	cmdTag, err := r.db.Exec(ctx, sql, token, id)
	if err != nil {
		return fmt.Errorf("failed to update session token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("admin not found for session token update")
	}
	return nil
}

// Upsert creates an admin or updates its password hash if the username
// already exists. Used by the provisioning command, not the server.
func (r *adminRepository) Upsert(ctx context.Context, admin *model.Admin) error {
	sql := `INSERT INTO admins (username, password_hash)
            VALUES ($1, $2)
            ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
            RETURNING id`
	err := r.db.QueryRow(ctx, sql, admin.Username, admin.PasswordHash).Scan(&admin.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	return nil
}
