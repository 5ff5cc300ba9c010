package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

// TriggerRepository defines persistence operations for geofence triggers.
// Every read and mutation is scoped by owner id so one user can never touch
// another user's zones.
type TriggerRepository interface {
	// Add persists the trigger and returns it with the generated id.
	Add(ctx context.Context, trigger *domain.Trigger) (*domain.Trigger, error)
	// ListByOwner returns the owner's triggers ordered by name, then id.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Trigger, error)
	// Delete removes one trigger; it reports false when the owner does not
	// own a trigger with that id.
	Delete(ctx context.Context, ownerID, triggerID int64) (bool, error)
	// DeleteAllByOwner removes every trigger owned by the user.
	DeleteAllByOwner(ctx context.Context, ownerID int64) error
	// EvaluateForOwner returns, for each of the owner's triggers, the
	// persisted last state together with whether the point lies inside the
	// zone. The containment predicate runs in SQL next to the fetch so raw
	// geometry never crosses into the core.
	EvaluateForOwner(ctx context.Context, ownerID int64, point domain.Point) ([]domain.TriggerEvaluation, error)
	// SetState records the new last observed state for one trigger,
	// scoped to the owner.
	SetState(ctx context.Context, ownerID, triggerID int64, state domain.TriggerState) error
}

type triggerRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewTriggerRepository creates a new SQL-backed trigger repository.
func NewTriggerRepository(db *sql.DB, log *slog.Logger) TriggerRepository {
	return &triggerRepository{
		db:  db,
		log: log,
	}
}

func (r *triggerRepository) Add(ctx context.Context, trigger *domain.Trigger) (*domain.Trigger, error) {
	const query = `
		INSERT INTO triggers (owner_id, name, lat, lon, radius_m, last_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	created := *trigger
	if created.LastState == "" {
		created.LastState = domain.StateOutside
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		created.OwnerID,
		created.Name,
		created.Center.Lat,
		created.Center.Lon,
		created.RadiusMeters,
		created.LastState,
		created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to insert trigger", slog.Int64("owner_id", trigger.OwnerID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("insert trigger: %w", err)
	}

	return &created, nil
}

func (r *triggerRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Trigger, error) {
	const query = `
		SELECT id, owner_id, name, lat, lon, radius_m, last_state, created_at
		FROM triggers
		WHERE owner_id = $1
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list triggers", slog.Int64("owner_id", ownerID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("list triggers: %w", err)
	}
	defer rows.Close()

	var triggers []domain.Trigger
	for rows.Next() {
		var t domain.Trigger
		if err := rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.Name,
			&t.Center.Lat,
			&t.Center.Lon,
			&t.RadiusMeters,
			&t.LastState,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		triggers = append(triggers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triggers: %w", err)
	}

	return triggers, nil
}

func (r *triggerRepository) Delete(ctx context.Context, ownerID, triggerID int64) (bool, error) {
	const query = `DELETE FROM triggers WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, triggerID, ownerID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to delete trigger",
				slog.Int64("owner_id", ownerID),
				slog.Int64("trigger_id", triggerID),
				slog.Any("error", err),
			)
		}
		return false, fmt.Errorf("delete trigger: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete trigger rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *triggerRepository) DeleteAllByOwner(ctx context.Context, ownerID int64) error {
	const query = `DELETE FROM triggers WHERE owner_id = $1`

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		if r.log != nil {
			r.log.Error("failed to delete owner triggers", slog.Int64("owner_id", ownerID), slog.Any("error", err))
		}
		return fmt.Errorf("delete owner triggers: %w", err)
	}

	return nil
}

func (r *triggerRepository) EvaluateForOwner(ctx context.Context, ownerID int64, point domain.Point) ([]domain.TriggerEvaluation, error) {
	const query = `
		SELECT id, name, radius_m, last_state,
		       earth_distance(ll_to_earth(lat, lon), ll_to_earth($2, $3)) <= radius_m AS inside
		FROM triggers
		WHERE owner_id = $1
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, point.Lat, point.Lon)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to evaluate triggers", slog.Int64("owner_id", ownerID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("evaluate triggers: %w", err)
	}
	defer rows.Close()

	var evaluations []domain.TriggerEvaluation
	for rows.Next() {
		var ev domain.TriggerEvaluation
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.RadiusMeters, &ev.LastState, &ev.Inside); err != nil {
			return nil, fmt.Errorf("scan trigger evaluation: %w", err)
		}
		evaluations = append(evaluations, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trigger evaluations: %w", err)
	}

	return evaluations, nil
}

func (r *triggerRepository) SetState(ctx context.Context, ownerID, triggerID int64, state domain.TriggerState) error {
	const query = `UPDATE triggers SET last_state = $1 WHERE id = $2 AND owner_id = $3`

	res, err := r.db.ExecContext(ctx, query, state, triggerID, ownerID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to set trigger state",
				slog.Int64("owner_id", ownerID),
				slog.Int64("trigger_id", triggerID),
				slog.Any("error", err),
			)
		}
		return fmt.Errorf("set trigger state: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set trigger state rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
