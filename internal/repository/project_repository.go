package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkline-studio/inkline-backend/internal/phases"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// Project model
type Project struct {
	ID                string    `json:"id"`
	ClientID          string    `json:"clientId"`
	Name              string    `json:"name"`
	Description       *string   `json:"description,omitempty"`
	CurrentPhaseKey   string    `json:"currentPhaseKey"`
	CurrentPhaseIndex int       `json:"currentPhaseIndex"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ProjectPhase tracks one phase of one project through the pipeline.
type ProjectPhase struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	PhaseKey    string     `json:"phaseKey"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ProjectRepository interface
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindByClientID(ctx context.Context, clientID string) ([]*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	FindPhases(ctx context.Context, projectID string) ([]*ProjectPhase, error)

	// AdvancePhase moves the project from fromKey to toKey atomically. The
	// current-phase columns are compare-and-swapped against fromKey, the old
	// tracking row is marked completed and the new one in_progress, all in
	// one transaction. Returns false without mutating anything when another
	// caller already advanced the project.
	AdvancePhase(ctx context.Context, projectID, fromKey, toKey string, toIndex int) (bool, error)
}

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

// Create inserts the project at the first phase and seeds one tracking row
// per catalog phase, the first in_progress and the rest pending.
func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	first := phases.First()
	project.CurrentPhaseKey = first.Key
	project.CurrentPhaseIndex = first.OrderIndex

	query := `
		INSERT INTO projects (client_id, name, description, current_phase_key, current_phase_index)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRow(ctx, query,
		project.ClientID, project.Name, project.Description,
		project.CurrentPhaseKey, project.CurrentPhaseIndex,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return err
	}

	for _, p := range phases.All() {
		status := types.PhasePending
		var startedAt *time.Time
		if p.Key == first.Key {
			status = types.PhaseInProgress
			now := time.Now()
			startedAt = &now
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO project_phases (project_id, phase_key, status, started_at)
			VALUES ($1, $2, $3, $4)`,
			project.ID, p.Key, status, startedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `
		SELECT id, client_id, name, description, current_phase_key, current_phase_index, created_at, updated_at
		FROM projects WHERE id = $1
	`
	project := &Project{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID, &project.ClientID, &project.Name, &project.Description,
		&project.CurrentPhaseKey, &project.CurrentPhaseIndex,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *pgProjectRepository) FindByClientID(ctx context.Context, clientID string) ([]*Project, error) {
	query := `
		SELECT id, client_id, name, description, current_phase_key, current_phase_index, created_at, updated_at
		FROM projects WHERE client_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *pgProjectRepository) List(ctx context.Context) ([]*Project, error) {
	query := `
		SELECT id, client_id, name, description, current_phase_key, current_phase_index, created_at, updated_at
		FROM projects ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func scanProjects(rows pgx.Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		project := &Project{}
		if err := rows.Scan(
			&project.ID, &project.ClientID, &project.Name, &project.Description,
			&project.CurrentPhaseKey, &project.CurrentPhaseIndex,
			&project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.ID, project.Name, project.Description,
	).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) FindPhases(ctx context.Context, projectID string) ([]*ProjectPhase, error) {
	query := `
		SELECT pp.id, pp.project_id, pp.phase_key, pp.status, pp.started_at, pp.completed_at
		FROM project_phases pp
		WHERE pp.project_id = $1
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byKey := make(map[string]*ProjectPhase)
	for rows.Next() {
		pp := &ProjectPhase{}
		if err := rows.Scan(
			&pp.ID, &pp.ProjectID, &pp.PhaseKey, &pp.Status, &pp.StartedAt, &pp.CompletedAt,
		); err != nil {
			return nil, err
		}
		byKey[pp.PhaseKey] = pp
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Return in catalog order, not insertion order.
	var out []*ProjectPhase
	for _, p := range phases.All() {
		if pp, ok := byKey[p.Key]; ok {
			out = append(out, pp)
		}
	}
	return out, nil
}

func (r *pgProjectRepository) AdvancePhase(ctx context.Context, projectID, fromKey, toKey string, toIndex int) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// CAS on the current phase: a concurrent advance that already moved the
	// project leaves fromKey stale and matches zero rows.
	tag, err := tx.Exec(ctx, `
		UPDATE projects SET current_phase_key = $3, current_phase_index = $4, updated_at = NOW()
		WHERE id = $1 AND current_phase_key = $2`,
		projectID, fromKey, toKey, toIndex,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE project_phases SET status = $3, completed_at = NOW()
		WHERE project_id = $1 AND phase_key = $2`,
		projectID, fromKey, types.PhaseCompleted,
	); err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE project_phases SET status = $3, started_at = NOW()
		WHERE project_id = $1 AND phase_key = $2`,
		projectID, toKey, types.PhaseInProgress,
	); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
