package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (name, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", u.Email), zap.Error(err))
		return err
	}
	r.logger.Info("User created", zap.Int("user_id", u.ID))
	return nil
}

// FindByEmail returns (nil, nil) when no user has the email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns (nil, nil) when the user does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`

	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
