package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client model
type Client struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"userId,omitempty"`
	CompanyName  string    `json:"companyName"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ClientRepository interface
type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id string) (*Client, error)
	FindByUserID(ctx context.Context, userID string) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	Update(ctx context.Context, client *Client) error
}

type pgClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &pgClientRepository{pool: pool}
}

func (r *pgClientRepository) Create(ctx context.Context, client *Client) error {
	query := `
		INSERT INTO clients (user_id, company_name, contact_name, contact_email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		client.UserID, client.CompanyName, client.ContactName, client.ContactEmail, client.Phone,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

func (r *pgClientRepository) FindByID(ctx context.Context, id string) (*Client, error) {
	query := `
		SELECT id, user_id, company_name, contact_name, contact_email, phone, created_at, updated_at
		FROM clients WHERE id = $1
	`
	client := &Client{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.UserID, &client.CompanyName, &client.ContactName,
		&client.ContactEmail, &client.Phone, &client.CreatedAt, &client.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *pgClientRepository) FindByUserID(ctx context.Context, userID string) (*Client, error) {
	query := `
		SELECT id, user_id, company_name, contact_name, contact_email, phone, created_at, updated_at
		FROM clients WHERE user_id = $1
	`
	client := &Client{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&client.ID, &client.UserID, &client.CompanyName, &client.ContactName,
		&client.ContactEmail, &client.Phone, &client.CreatedAt, &client.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *pgClientRepository) List(ctx context.Context) ([]*Client, error) {
	query := `
		SELECT id, user_id, company_name, contact_name, contact_email, phone, created_at, updated_at
		FROM clients ORDER BY company_name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		client := &Client{}
		if err := rows.Scan(
			&client.ID, &client.UserID, &client.CompanyName, &client.ContactName,
			&client.ContactEmail, &client.Phone, &client.CreatedAt, &client.UpdatedAt,
		); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *pgClientRepository) Update(ctx context.Context, client *Client) error {
	query := `
		UPDATE clients SET
			company_name = $2, contact_name = $3, contact_email = $4, phone = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		client.ID, client.CompanyName, client.ContactName, client.ContactEmail, client.Phone,
	).Scan(&client.UpdatedAt)
}
