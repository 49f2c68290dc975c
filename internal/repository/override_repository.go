package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkline-studio/inkline-backend/internal/types"
)

// OverrideRequest model
type OverrideRequest struct {
	ID          string     `json:"id"`
	ProofID     string     `json:"proofId"`
	ItemID      string     `json:"itemId"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	RequestedBy *string    `json:"requestedBy,omitempty"`
	ReviewedBy  *string    `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// OverrideRepository interface
type OverrideRepository interface {
	Create(ctx context.Context, override *OverrideRequest) error
	FindByID(ctx context.Context, id string) (*OverrideRequest, error)
	FindByProof(ctx context.Context, proofID string) ([]*OverrideRequest, error)
	FindPending(ctx context.Context) ([]*OverrideRequest, error)

	// Approve marks the override approved and forces the referenced checklist
	// item to checked with an override note, in one transaction. The override
	// row is locked first so two reviewers cannot both resolve it.
	Approve(ctx context.Context, overrideID, reviewerID string) (*OverrideRequest, error)

	// Reject resolves the override without touching the checklist.
	Reject(ctx context.Context, overrideID, reviewerID string) (*OverrideRequest, error)
}

type pgOverrideRepository struct {
	pool *pgxpool.Pool
}

func NewOverrideRepository(pool *pgxpool.Pool) OverrideRepository {
	return &pgOverrideRepository{pool: pool}
}

const overrideColumns = `id, proof_id, item_id, reason, status, requested_by, reviewed_by, reviewed_at, created_at`

func scanOverride(row pgx.Row) (*OverrideRequest, error) {
	o := &OverrideRequest{}
	err := row.Scan(
		&o.ID, &o.ProofID, &o.ItemID, &o.Reason, &o.Status,
		&o.RequestedBy, &o.ReviewedBy, &o.ReviewedAt, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOverrideRepository) Create(ctx context.Context, override *OverrideRequest) error {
	query := `
		INSERT INTO override_requests (proof_id, item_id, reason, status, requested_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		override.ProofID, override.ItemID, override.Reason, override.Status, override.RequestedBy,
	).Scan(&override.ID, &override.CreatedAt)
}

func (r *pgOverrideRepository) FindByID(ctx context.Context, id string) (*OverrideRequest, error) {
	query := `SELECT ` + overrideColumns + ` FROM override_requests WHERE id = $1`
	o, err := scanOverride(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOverrideRepository) FindByProof(ctx context.Context, proofID string) ([]*OverrideRequest, error) {
	query := `SELECT ` + overrideColumns + ` FROM override_requests WHERE proof_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, proofID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOverrides(rows)
}

func (r *pgOverrideRepository) FindPending(ctx context.Context) ([]*OverrideRequest, error) {
	query := `SELECT ` + overrideColumns + ` FROM override_requests WHERE status = 'pending' ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOverrides(rows)
}

func scanOverrides(rows pgx.Rows) ([]*OverrideRequest, error) {
	var overrides []*OverrideRequest
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *pgOverrideRepository) Approve(ctx context.Context, overrideID, reviewerID string) (*OverrideRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lockQuery := `SELECT ` + overrideColumns + ` FROM override_requests WHERE id = $1 FOR UPDATE`
	o, err := scanOverride(tx.QueryRow(ctx, lockQuery, overrideID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Status != types.OverridePending {
		// Already resolved; surface the row as-is.
		return o, tx.Commit(ctx)
	}

	if err := tx.QueryRow(ctx, `
		UPDATE override_requests SET status = $2, reviewed_by = $3, reviewed_at = NOW()
		WHERE id = $1
		RETURNING status, reviewed_by, reviewed_at`,
		overrideID, types.OverrideApproved, reviewerID,
	).Scan(&o.Status, &o.ReviewedBy, &o.ReviewedAt); err != nil {
		return nil, err
	}

	// Invariant: an approved override implies the checklist item is checked
	// with an override annotation.
	state, err := json.Marshal(ChecklistItemState{
		Checked: true,
		Note:    "Override approved: " + o.Reason,
	})
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE proof_sessions SET
			checklist_state = jsonb_set(checklist_state, ARRAY[$2], $3::jsonb, true),
			updated_at = NOW()
		WHERE id = $1`,
		o.ProofID, o.ItemID, state,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *pgOverrideRepository) Reject(ctx context.Context, overrideID, reviewerID string) (*OverrideRequest, error) {
	query := `
		UPDATE override_requests SET status = $2, reviewed_by = $3, reviewed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + overrideColumns
	o, err := scanOverride(r.pool.QueryRow(ctx, query, overrideID, types.OverrideRejected, reviewerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}
