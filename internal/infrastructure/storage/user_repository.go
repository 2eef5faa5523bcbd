package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

const userColumns = "id, email, username, password_hash, is_active, created_at, updated_at"

// UserRepository persists API principals in Postgres.
type UserRepository struct {
	db DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository wires a database handle.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	query, args, err := builder.
		Insert("users").
		Columns("id", "email", "username", "password_hash", "is_active", "created_at", "updated_at").
		Values(user.ID, user.Email, user.Username, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByUsername loads one user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail loads one user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (domain.User, error) {
	query, args, err := builder.
		Select(userColumns).
		From("users").
		Where(fmt.Sprintf("%s = ?", column), value).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build select: %w", err)
	}

	var user domain.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}
