package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cicli-volante/internal/domain"
)

var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminAlreadyExists = errors.New("admin with this username already exists")
)

// AdminRepository defines the interface for back-office account access
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
	FindByID(ctx context.Context, id int64) (*domain.AdminUser, error)
}

type adminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new instance of AdminRepository
func NewAdminRepository(db *sql.DB) AdminRepository {
	return &adminRepository{db: db}
}

// Create inserts a new admin. PasswordHash must already be hashed.
func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	if admin.Role == "" {
		admin.Role = domain.AdminRoleManager
	}

	query := `
		INSERT INTO admin_users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, admin.Username, admin.PasswordHash, admin.Role).
		Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "admin_users_username_key") {
			return ErrAdminAlreadyExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// FindByUsername retrieves an admin by username
func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM admin_users
		WHERE username = $1
	`
	return r.findOne(ctx, query, username)
}

// FindByID retrieves an admin by id
func (r *adminRepository) FindByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM admin_users
		WHERE id = $1
	`
	return r.findOne(ctx, query, id)
}

func (r *adminRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.AdminUser, error) {
	admin := &domain.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.Role,
		&admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	return admin, nil
}
