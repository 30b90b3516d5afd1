package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"storefront/internal/models"

	"github.com/google/uuid"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password, role, created_at, updated_at`

func scanUser(s scanner, u *models.User) error {
	return s.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx,
		query, user.Username, user.Email, user.Password, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return ErrDuplicate
		}
		log.Printf("Error creating user: %v", err)
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.userBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) userBy(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := scanUser(r.db.QueryRowContext(ctx, query, arg), &user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	return &user, nil
}

// ExistsByEmailOrUsername reports whether either identifier is already taken.
func (r *UserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email, username).Scan(&exists)
	return exists, err
}
