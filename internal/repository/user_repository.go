package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Upsert inserts the user or refreshes identity fields on conflict.
	Upsert(ctx context.Context, user *domain.User) error
	// Delete removes the user and, via the schema's cascade, every trigger
	// they own.
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

// Upsert creates or updates the user record keyed by Telegram id.
func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (id, first_name, username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    username   = EXCLUDED.username,
		    updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.FirstName, user.Username, now); err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert user", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// Delete removes the user row; triggers cascade at the schema level.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		if r.log != nil {
			r.log.Error("failed to delete user", slog.Int64("user_id", id), slog.Any("error", err))
		}
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}
