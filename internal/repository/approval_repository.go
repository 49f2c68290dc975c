package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ErrProofNotReady is returned by Finalize when the session is not in the
// ready state at the moment the row lock is taken.
var ErrProofNotReady = errors.New("proof not ready for approval")

// ProofApproval model. Rows are append-only.
type ProofApproval struct {
	ID            string    `json:"id"`
	ProofID       string    `json:"proofId"`
	ApproverID    *string   `json:"approverId,omitempty"`
	ApproverName  string    `json:"approverName"`
	ApproverEmail string    `json:"approverEmail"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes,omitempty"`
	SignatureData *string   `json:"signatureData,omitempty"`
	IPAddress     *string   `json:"ipAddress,omitempty"`
	UserAgent     *string   `json:"userAgent,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ApprovalRepository interface
type ApprovalRepository interface {
	// Finalize inserts the approval row and moves the session to its final
	// status in one transaction. The proof row is locked first; a session not
	// in ready state fails with ErrProofNotReady, so of two concurrent
	// submissions exactly one wins.
	Finalize(ctx context.Context, approval *ProofApproval) error

	FindByID(ctx context.Context, id string) (*ProofApproval, error)
	FindByProof(ctx context.Context, proofID string) ([]*ProofApproval, error)
}

type pgApprovalRepository struct {
	pool *pgxpool.Pool
}

func NewApprovalRepository(pool *pgxpool.Pool) ApprovalRepository {
	return &pgApprovalRepository{pool: pool}
}

const approvalColumns = `id, proof_id, approver_id, approver_name, approver_email, status, notes, signature_data, ip_address, user_agent, created_at`

func scanApproval(row pgx.Row) (*ProofApproval, error) {
	a := &ProofApproval{}
	err := row.Scan(
		&a.ID, &a.ProofID, &a.ApproverID, &a.ApproverName, &a.ApproverEmail,
		&a.Status, &a.Notes, &a.SignatureData, &a.IPAddress, &a.UserAgent, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgApprovalRepository) Finalize(ctx context.Context, approval *ProofApproval) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM proof_sessions WHERE id = $1 FOR UPDATE`,
		approval.ProofID,
	).Scan(&status)
	if err == pgx.ErrNoRows {
		return pgx.ErrNoRows
	}
	if err != nil {
		return err
	}
	if status != types.ProofReady {
		return ErrProofNotReady
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO proof_approvals (proof_id, approver_id, approver_name, approver_email, status, notes, signature_data, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		approval.ProofID, approval.ApproverID, approval.ApproverName, approval.ApproverEmail,
		approval.Status, approval.Notes, approval.SignatureData, approval.IPAddress, approval.UserAgent,
	).Scan(&approval.ID, &approval.CreatedAt); err != nil {
		return err
	}

	finalStatus := types.ProofApproved
	if approval.Status == types.DecisionRejected {
		finalStatus = types.ProofRejected
	}
	if _, err := tx.Exec(ctx,
		`UPDATE proof_sessions SET status = $2, updated_at = NOW() WHERE id = $1`,
		approval.ProofID, finalStatus,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgApprovalRepository) FindByID(ctx context.Context, id string) (*ProofApproval, error) {
	query := `SELECT ` + approvalColumns + ` FROM proof_approvals WHERE id = $1`
	a, err := scanApproval(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgApprovalRepository) FindByProof(ctx context.Context, proofID string) ([]*ProofApproval, error) {
	query := `SELECT ` + approvalColumns + ` FROM proof_approvals WHERE proof_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, proofID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []*ProofApproval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}
