package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Activity is one audit event. Append-only.
type Activity struct {
	ID          string                 `json:"id"`
	ActorID     *string                `json:"actorId,omitempty"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entityType"`
	EntityID    string                 `json:"entityId"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// ActivityRepository interface
type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*Activity, error)
	FindByActor(ctx context.Context, actorID string, limit int) ([]*Activity, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error)
}

type pgActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &pgActivityRepository{pool: pool}
}

func (r *pgActivityRepository) Create(ctx context.Context, activity *Activity) error {
	if activity.Metadata == nil {
		activity.Metadata = map[string]interface{}{}
	}
	query := `
		INSERT INTO activities (actor_id, action, entity_type, entity_id, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		activity.ActorID, activity.Action, activity.EntityType, activity.EntityID,
		activity.Description, activity.Metadata,
	).Scan(&activity.ID, &activity.CreatedAt)
}

func (r *pgActivityRepository) FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*Activity, error) {
	query := `
		SELECT id, actor_id, action, entity_type, entity_id, description, metadata, created_at
		FROM activities WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		activity := &Activity{}
		if err := rows.Scan(
			&activity.ID, &activity.ActorID, &activity.Action, &activity.EntityType,
			&activity.EntityID, &activity.Description, &activity.Metadata, &activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

func (r *pgActivityRepository) FindByActor(ctx context.Context, actorID string, limit int) ([]*Activity, error) {
	query := `
		SELECT id, actor_id, action, entity_type, entity_id, description, metadata, created_at
		FROM activities WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		activity := &Activity{}
		if err := rows.Scan(
			&activity.ID, &activity.ActorID, &activity.Action, &activity.EntityType,
			&activity.EntityID, &activity.Description, &activity.Metadata, &activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

func (r *pgActivityRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
