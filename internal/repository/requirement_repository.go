package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Requirement model
type Requirement struct {
	ID          string `json:"id"`
	PhaseKey    string `json:"phaseKey"`
	Type        string `json:"type"`
	Text        string `json:"text"`
	IsMandatory bool   `json:"isMandatory"`
	SortOrder   int    `json:"sortOrder"`
}

// ProjectRequirementStatus model. Rows are created lazily on the first
// completion toggle and never deleted.
type ProjectRequirementStatus struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId"`
	RequirementID string     `json:"requirementId"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CompletedBy   *string    `json:"completedBy,omitempty"`
}

// RequirementWithStatus is a requirement left-joined against a project's
// status row; Completed is false when no row exists.
type RequirementWithStatus struct {
	Requirement
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CompletedBy *string    `json:"completedBy,omitempty"`
}

// RequirementRepository interface
type RequirementRepository interface {
	Create(ctx context.Context, req *Requirement) error
	FindByID(ctx context.Context, id string) (*Requirement, error)
	FindByPhase(ctx context.Context, phaseKey string) ([]*Requirement, error)
	FindByPhaseAndType(ctx context.Context, phaseKey, reqType string) ([]*Requirement, error)
	Update(ctx context.Context, req *Requirement) error
	Delete(ctx context.Context, id string) error

	// UpsertStatus creates or replaces the status row for (projectID,
	// requirementID). Timestamps and actor are cleared when completed flips
	// to false.
	UpsertStatus(ctx context.Context, projectID, requirementID string, completed bool, actorID string) (*ProjectRequirementStatus, error)

	// FindWithStatuses returns a phase's requirements left-joined against the
	// project's status rows, in sort order.
	FindWithStatuses(ctx context.Context, projectID, phaseKey string) ([]*RequirementWithStatus, error)

	// UpsertStatusAndFetch performs the status write and reads back the
	// gate-phase snapshot inside one transaction, so the gate never evaluates
	// against state older than the write it was triggered by.
	UpsertStatusAndFetch(ctx context.Context, projectID, requirementID string, completed bool, actorID, gatePhaseKey string) (*ProjectRequirementStatus, []*RequirementWithStatus, error)
}

type pgRequirementRepository struct {
	pool *pgxpool.Pool
}

func NewRequirementRepository(pool *pgxpool.Pool) RequirementRepository {
	return &pgRequirementRepository{pool: pool}
}

func (r *pgRequirementRepository) Create(ctx context.Context, req *Requirement) error {
	query := `
		INSERT INTO requirements (phase_key, type, text, is_mandatory, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		req.PhaseKey, req.Type, req.Text, req.IsMandatory, req.SortOrder,
	).Scan(&req.ID)
}

func (r *pgRequirementRepository) FindByID(ctx context.Context, id string) (*Requirement, error) {
	query := `
		SELECT id, phase_key, type, text, is_mandatory, sort_order
		FROM requirements WHERE id = $1
	`
	req := &Requirement{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.PhaseKey, &req.Type, &req.Text, &req.IsMandatory, &req.SortOrder,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *pgRequirementRepository) FindByPhase(ctx context.Context, phaseKey string) ([]*Requirement, error) {
	query := `
		SELECT id, phase_key, type, text, is_mandatory, sort_order
		FROM requirements WHERE phase_key = $1 ORDER BY sort_order ASC
	`
	rows, err := r.pool.Query(ctx, query, phaseKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequirements(rows)
}

func (r *pgRequirementRepository) FindByPhaseAndType(ctx context.Context, phaseKey, reqType string) ([]*Requirement, error) {
	query := `
		SELECT id, phase_key, type, text, is_mandatory, sort_order
		FROM requirements WHERE phase_key = $1 AND type = $2 ORDER BY sort_order ASC
	`
	rows, err := r.pool.Query(ctx, query, phaseKey, reqType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequirements(rows)
}

func scanRequirements(rows pgx.Rows) ([]*Requirement, error) {
	var reqs []*Requirement
	for rows.Next() {
		req := &Requirement{}
		if err := rows.Scan(
			&req.ID, &req.PhaseKey, &req.Type, &req.Text, &req.IsMandatory, &req.SortOrder,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *pgRequirementRepository) Update(ctx context.Context, req *Requirement) error {
	query := `
		UPDATE requirements SET type = $2, text = $3, is_mandatory = $4, sort_order = $5
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		req.ID, req.Type, req.Text, req.IsMandatory, req.SortOrder,
	)
	return err
}

func (r *pgRequirementRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM requirements WHERE id = $1`, id)
	return err
}

func (r *pgRequirementRepository) UpsertStatus(ctx context.Context, projectID, requirementID string, completed bool, actorID string) (*ProjectRequirementStatus, error) {
	query := `
		INSERT INTO project_requirement_statuses (project_id, requirement_id, completed, completed_at, completed_by)
		VALUES ($1, $2, $3,
			CASE WHEN $3 THEN NOW() ELSE NULL END,
			CASE WHEN $3 THEN $4::uuid ELSE NULL END)
		ON CONFLICT (project_id, requirement_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			completed_by = EXCLUDED.completed_by
		RETURNING id, project_id, requirement_id, completed, completed_at, completed_by
	`
	status := &ProjectRequirementStatus{}
	err := r.pool.QueryRow(ctx, query, projectID, requirementID, completed, actorID).Scan(
		&status.ID, &status.ProjectID, &status.RequirementID,
		&status.Completed, &status.CompletedAt, &status.CompletedBy,
	)
	if err != nil {
		return nil, err
	}
	return status, nil
}

const withStatusQuery = `
	SELECT r.id, r.phase_key, r.type, r.text, r.is_mandatory, r.sort_order,
		COALESCE(s.completed, FALSE), s.completed_at, s.completed_by
	FROM requirements r
	LEFT JOIN project_requirement_statuses s
		ON s.requirement_id = r.id AND s.project_id = $1
	WHERE r.phase_key = $2
	ORDER BY r.sort_order ASC
`

func (r *pgRequirementRepository) FindWithStatuses(ctx context.Context, projectID, phaseKey string) ([]*RequirementWithStatus, error) {
	rows, err := r.pool.Query(ctx, withStatusQuery, projectID, phaseKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithStatuses(rows)
}

func scanWithStatuses(rows pgx.Rows) ([]*RequirementWithStatus, error) {
	var out []*RequirementWithStatus
	for rows.Next() {
		rs := &RequirementWithStatus{}
		if err := rows.Scan(
			&rs.ID, &rs.PhaseKey, &rs.Type, &rs.Text, &rs.IsMandatory, &rs.SortOrder,
			&rs.Completed, &rs.CompletedAt, &rs.CompletedBy,
		); err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (r *pgRequirementRepository) UpsertStatusAndFetch(ctx context.Context, projectID, requirementID string, completed bool, actorID, gatePhaseKey string) (*ProjectRequirementStatus, []*RequirementWithStatus, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO project_requirement_statuses (project_id, requirement_id, completed, completed_at, completed_by)
		VALUES ($1, $2, $3,
			CASE WHEN $3 THEN NOW() ELSE NULL END,
			CASE WHEN $3 THEN $4::uuid ELSE NULL END)
		ON CONFLICT (project_id, requirement_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			completed_by = EXCLUDED.completed_by
		RETURNING id, project_id, requirement_id, completed, completed_at, completed_by
	`
	status := &ProjectRequirementStatus{}
	if err := tx.QueryRow(ctx, upsert, projectID, requirementID, completed, actorID).Scan(
		&status.ID, &status.ProjectID, &status.RequirementID,
		&status.Completed, &status.CompletedAt, &status.CompletedBy,
	); err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, withStatusQuery, projectID, gatePhaseKey)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := scanWithStatuses(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return status, snapshot, nil
}
