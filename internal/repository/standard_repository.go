package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ValidationStandard is the per-service technical acceptance catalog entry.
type ValidationStandard struct {
	ServiceCode        string    `json:"serviceCode"`
	AllowedFormats     []string  `json:"allowedFormats"`
	MaxFileSizeMb      float64   `json:"maxFileSizeMb"`
	MinDpi             float64   `json:"minDpi"`
	RequiredColorModes []string  `json:"requiredColorModes"`
	RequiresBleed      bool      `json:"requiresBleed"`
	MinBleedInches     float64   `json:"minBleedInches"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// StandardRepository interface
type StandardRepository interface {
	FindByCode(ctx context.Context, serviceCode string) (*ValidationStandard, error)
	List(ctx context.Context) ([]*ValidationStandard, error)
	Upsert(ctx context.Context, standard *ValidationStandard) error
}

type pgStandardRepository struct {
	pool *pgxpool.Pool
}

func NewStandardRepository(pool *pgxpool.Pool) StandardRepository {
	return &pgStandardRepository{pool: pool}
}

const standardColumns = `service_code, allowed_formats, max_file_size_mb, min_dpi, required_color_modes, requires_bleed, min_bleed_inches, updated_at`

func scanStandard(row pgx.Row) (*ValidationStandard, error) {
	s := &ValidationStandard{}
	err := row.Scan(
		&s.ServiceCode, &s.AllowedFormats, &s.MaxFileSizeMb, &s.MinDpi,
		&s.RequiredColorModes, &s.RequiresBleed, &s.MinBleedInches, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgStandardRepository) FindByCode(ctx context.Context, serviceCode string) (*ValidationStandard, error) {
	query := `SELECT ` + standardColumns + ` FROM validation_standards WHERE service_code = $1`
	s, err := scanStandard(r.pool.QueryRow(ctx, query, serviceCode))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgStandardRepository) List(ctx context.Context) ([]*ValidationStandard, error) {
	query := `SELECT ` + standardColumns + ` FROM validation_standards ORDER BY service_code ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standards []*ValidationStandard
	for rows.Next() {
		s, err := scanStandard(rows)
		if err != nil {
			return nil, err
		}
		standards = append(standards, s)
	}
	return standards, rows.Err()
}

func (r *pgStandardRepository) Upsert(ctx context.Context, standard *ValidationStandard) error {
	query := `
		INSERT INTO validation_standards (service_code, allowed_formats, max_file_size_mb, min_dpi, required_color_modes, requires_bleed, min_bleed_inches)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (service_code) DO UPDATE SET
			allowed_formats = EXCLUDED.allowed_formats,
			max_file_size_mb = EXCLUDED.max_file_size_mb,
			min_dpi = EXCLUDED.min_dpi,
			required_color_modes = EXCLUDED.required_color_modes,
			requires_bleed = EXCLUDED.requires_bleed,
			min_bleed_inches = EXCLUDED.min_bleed_inches,
			updated_at = NOW()
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		standard.ServiceCode, standard.AllowedFormats, standard.MaxFileSizeMb, standard.MinDpi,
		standard.RequiredColorModes, standard.RequiresBleed, standard.MinBleedInches,
	).Scan(&standard.UpdatedAt)
}
