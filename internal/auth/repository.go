package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookmarks/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation    = "23505"
	usersEmailConstraint = "users_email_key"
)

// Repository persists user credentials. Implementations must reject a second
// user with the same email with ErrEmailExists.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// PostgresRepository stores users in the users table
type PostgresRepository struct {
	db database.Service
}

// NewPostgresRepository creates a new users repository
func NewPostgresRepository(db database.Service) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// Create inserts a user; uniqueness is enforced by the users_email_key constraint.
func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, password_hash, created_at, updated_at
	`

	var created User
	err := r.db.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
		Scan(&created.ID, &created.Email, &created.PasswordHash, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation, usersEmailConstraint) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &created, nil
}

// GetByEmail retrieves a user by email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by id
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	// A malformed uuid can never match a row.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// isPgError reports whether err is a PostgreSQL error with the given code and
// constraint name.
func isPgError(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != code {
		return false
	}
	return pgErr.ConstraintName == constraint
}
