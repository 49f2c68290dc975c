package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChecklistItemState is the persisted state of one proof checklist item.
type ChecklistItemState struct {
	Checked bool   `json:"checked"`
	Note    string `json:"note,omitempty"`
}

// ValidationResult is the outcome of validating one file against one
// service's standard.
type ValidationResult struct {
	Passed   bool     `json:"passed"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// ValidationResults maps fileID -> serviceCode -> result.
type ValidationResults map[string]map[string]ValidationResult

// ProofSession model
type ProofSession struct {
	ID                string                        `json:"id"`
	ProjectID         string                        `json:"projectId"`
	PhaseKey          string                        `json:"phaseKey"`
	Services          []string                      `json:"services"`
	ChecklistState    map[string]ChecklistItemState `json:"checklistState"`
	ValidationResults ValidationResults             `json:"validationResults"`
	Status            string                        `json:"status"`
	CreatedBy         *string                       `json:"createdBy,omitempty"`
	CreatedAt         time.Time                     `json:"createdAt"`
	UpdatedAt         time.Time                     `json:"updatedAt"`
}

// ProofUpdate is the enumerated set of mutable proof fields; nil means
// "leave unchanged".
type ProofUpdate struct {
	ChecklistState    map[string]ChecklistItemState
	ValidationResults ValidationResults
	Status            *string
}

// ProofRepository interface
type ProofRepository interface {
	Create(ctx context.Context, proof *ProofSession) error
	FindByID(ctx context.Context, id string) (*ProofSession, error)
	FindCurrentByProject(ctx context.Context, projectID string) (*ProofSession, error)
	FindByProject(ctx context.Context, projectID string) ([]*ProofSession, error)
	Update(ctx context.Context, id string, update *ProofUpdate) (*ProofSession, error)

	// SetChecklistItem overwrites a single checklist entry in place.
	SetChecklistItem(ctx context.Context, proofID, itemID string, state ChecklistItemState) error

	// FindStaleCreated returns sessions still in created state older than the
	// cutoff, for the scheduler's digest.
	FindStaleCreated(ctx context.Context, cutoff time.Time) ([]*ProofSession, error)
}

type pgProofRepository struct {
	pool *pgxpool.Pool
}

func NewProofRepository(pool *pgxpool.Pool) ProofRepository {
	return &pgProofRepository{pool: pool}
}

const proofColumns = `id, project_id, phase_key, services, checklist_state, validation_results, status, created_by, created_at, updated_at`

func scanProof(row pgx.Row) (*ProofSession, error) {
	proof := &ProofSession{}
	var checklist, results []byte
	err := row.Scan(
		&proof.ID, &proof.ProjectID, &proof.PhaseKey, &proof.Services,
		&checklist, &results, &proof.Status, &proof.CreatedBy,
		&proof.CreatedAt, &proof.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(checklist, &proof.ChecklistState); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(results, &proof.ValidationResults); err != nil {
		return nil, err
	}
	return proof, nil
}

func (r *pgProofRepository) Create(ctx context.Context, proof *ProofSession) error {
	if proof.ChecklistState == nil {
		proof.ChecklistState = map[string]ChecklistItemState{}
	}
	if proof.ValidationResults == nil {
		proof.ValidationResults = ValidationResults{}
	}
	checklist, err := json.Marshal(proof.ChecklistState)
	if err != nil {
		return err
	}
	results, err := json.Marshal(proof.ValidationResults)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO proof_sessions (project_id, phase_key, services, checklist_state, validation_results, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		proof.ProjectID, proof.PhaseKey, proof.Services,
		checklist, results, proof.Status, proof.CreatedBy,
	).Scan(&proof.ID, &proof.CreatedAt, &proof.UpdatedAt)
}

func (r *pgProofRepository) FindByID(ctx context.Context, id string) (*ProofSession, error) {
	query := `SELECT ` + proofColumns + ` FROM proof_sessions WHERE id = $1`
	proof, err := scanProof(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return proof, nil
}

func (r *pgProofRepository) FindCurrentByProject(ctx context.Context, projectID string) (*ProofSession, error) {
	query := `
		SELECT ` + proofColumns + `
		FROM proof_sessions WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	proof, err := scanProof(r.pool.QueryRow(ctx, query, projectID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return proof, nil
}

func (r *pgProofRepository) FindByProject(ctx context.Context, projectID string) ([]*ProofSession, error) {
	query := `
		SELECT ` + proofColumns + `
		FROM proof_sessions WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proofs []*ProofSession
	for rows.Next() {
		proof, err := scanProof(rows)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, proof)
	}
	return proofs, rows.Err()
}

// Update applies whichever fields the caller supplied and returns the fresh
// row. Merge is by replacement: a supplied map replaces the stored one.
func (r *pgProofRepository) Update(ctx context.Context, id string, update *ProofUpdate) (*ProofSession, error) {
	var checklist, results []byte
	var err error
	if update.ChecklistState != nil {
		if checklist, err = json.Marshal(update.ChecklistState); err != nil {
			return nil, err
		}
	}
	if update.ValidationResults != nil {
		if results, err = json.Marshal(update.ValidationResults); err != nil {
			return nil, err
		}
	}

	query := `
		UPDATE proof_sessions SET
			checklist_state = COALESCE($2, checklist_state),
			validation_results = COALESCE($3, validation_results),
			status = COALESCE($4, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + proofColumns
	proof, err := scanProof(r.pool.QueryRow(ctx, query, id, checklist, results, update.Status))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return proof, nil
}

func (r *pgProofRepository) SetChecklistItem(ctx context.Context, proofID, itemID string, state ChecklistItemState) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return err
	}
	query := `
		UPDATE proof_sessions SET
			checklist_state = jsonb_set(checklist_state, ARRAY[$2], $3::jsonb, true),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err = r.pool.Exec(ctx, query, proofID, itemID, encoded)
	return err
}

func (r *pgProofRepository) FindStaleCreated(ctx context.Context, cutoff time.Time) ([]*ProofSession, error) {
	query := `
		SELECT ` + proofColumns + `
		FROM proof_sessions WHERE status = 'created' AND created_at < $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proofs []*ProofSession
	for rows.Next() {
		proof, err := scanProof(rows)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, proof)
	}
	return proofs, rows.Err()
}
