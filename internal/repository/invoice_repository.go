package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Invoice model
type Invoice struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	DueDate   *time.Time      `json:"dueDate,omitempty"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// InvoiceRepository interface
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id string) (*Invoice, error)
	FindByProject(ctx context.Context, projectID string) ([]*Invoice, error)
	UpdateStatus(ctx context.Context, id, status string) error

	// MarkPaid flips a sent invoice to paid; returns false when the invoice
	// was already paid or void.
	MarkPaid(ctx context.Context, id string) (bool, error)

	// AllPaid reports whether the project has at least one invoice and none
	// outstanding.
	AllPaid(ctx context.Context, projectID string) (bool, error)
}

type pgInvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &pgInvoiceRepository{pool: pool}
}

const invoiceColumns = `id, project_id, amount, status, due_date, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	inv := &Invoice{}
	err := row.Scan(
		&inv.ID, &inv.ProjectID, &inv.Amount, &inv.Status,
		&inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *pgInvoiceRepository) Create(ctx context.Context, invoice *Invoice) error {
	query := `
		INSERT INTO invoices (project_id, amount, status, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		invoice.ProjectID, invoice.Amount, invoice.Status, invoice.DueDate,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
}

func (r *pgInvoiceRepository) FindByID(ctx context.Context, id string) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *pgInvoiceRepository) FindByProject(ctx context.Context, projectID string) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE project_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *pgInvoiceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *pgInvoiceRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET status = 'paid', paid_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ('draft', 'sent')`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgInvoiceRepository) AllPaid(ctx context.Context, projectID string) (bool, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'paid')
		FROM invoices WHERE project_id = $1 AND status <> 'void'
	`
	var total, paid int
	if err := r.pool.QueryRow(ctx, query, projectID).Scan(&total, &paid); err != nil {
		return false, err
	}
	return total > 0 && total == paid, nil
}
