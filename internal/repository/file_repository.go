package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectFile is the metadata record for one stored upload.
type ProjectFile struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storagePath"`
	SizeBytes   int64     `json:"sizeBytes"`
	Status      string    `json:"status"`
	UploadedBy  *string   `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FileTechnicalSpec holds the extracted technical properties of a file.
// Superseded in full on every re-validation.
type FileTechnicalSpec struct {
	FileID             string    `json:"fileId"`
	WidthPixels        int       `json:"widthPixels"`
	HeightPixels       int       `json:"heightPixels"`
	DpiHorizontal      float64   `json:"dpiHorizontal"`
	DpiVertical        float64   `json:"dpiVertical"`
	ColorMode          string    `json:"colorMode"`
	BitDepth           int       `json:"bitDepth"`
	IsPrintReady       bool      `json:"isPrintReady"`
	ValidationErrors   []string  `json:"validationErrors"`
	ValidationWarnings []string  `json:"validationWarnings"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FileRepository interface
type FileRepository interface {
	Create(ctx context.Context, file *ProjectFile) error
	FindByID(ctx context.Context, id string) (*ProjectFile, error)
	FindActiveByProject(ctx context.Context, projectID string) ([]*ProjectFile, error)
	Archive(ctx context.Context, id string) error

	UpsertSpec(ctx context.Context, spec *FileTechnicalSpec) error
	FindSpec(ctx context.Context, fileID string) (*FileTechnicalSpec, error)
}

type pgFileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &pgFileRepository{pool: pool}
}

func (r *pgFileRepository) Create(ctx context.Context, file *ProjectFile) error {
	query := `
		INSERT INTO project_files (project_id, filename, storage_path, size_bytes, status, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		file.ProjectID, file.Filename, file.StoragePath, file.SizeBytes, file.Status, file.UploadedBy,
	).Scan(&file.ID, &file.CreatedAt)
}

func (r *pgFileRepository) FindByID(ctx context.Context, id string) (*ProjectFile, error) {
	query := `
		SELECT id, project_id, filename, storage_path, size_bytes, status, uploaded_by, created_at
		FROM project_files WHERE id = $1
	`
	file := &ProjectFile{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&file.ID, &file.ProjectID, &file.Filename, &file.StoragePath,
		&file.SizeBytes, &file.Status, &file.UploadedBy, &file.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *pgFileRepository) FindActiveByProject(ctx context.Context, projectID string) ([]*ProjectFile, error) {
	query := `
		SELECT id, project_id, filename, storage_path, size_bytes, status, uploaded_by, created_at
		FROM project_files WHERE project_id = $1 AND status = 'active'
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*ProjectFile
	for rows.Next() {
		file := &ProjectFile{}
		if err := rows.Scan(
			&file.ID, &file.ProjectID, &file.Filename, &file.StoragePath,
			&file.SizeBytes, &file.Status, &file.UploadedBy, &file.CreatedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (r *pgFileRepository) Archive(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE project_files SET status = 'archived' WHERE id = $1`, id)
	return err
}

func (r *pgFileRepository) UpsertSpec(ctx context.Context, spec *FileTechnicalSpec) error {
	errs, err := json.Marshal(orEmpty(spec.ValidationErrors))
	if err != nil {
		return err
	}
	warns, err := json.Marshal(orEmpty(spec.ValidationWarnings))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO file_technical_specs (file_id, width_pixels, height_pixels, dpi_horizontal, dpi_vertical, color_mode, bit_depth, is_print_ready, validation_errors, validation_warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (file_id) DO UPDATE SET
			width_pixels = EXCLUDED.width_pixels,
			height_pixels = EXCLUDED.height_pixels,
			dpi_horizontal = EXCLUDED.dpi_horizontal,
			dpi_vertical = EXCLUDED.dpi_vertical,
			color_mode = EXCLUDED.color_mode,
			bit_depth = EXCLUDED.bit_depth,
			is_print_ready = EXCLUDED.is_print_ready,
			validation_errors = EXCLUDED.validation_errors,
			validation_warnings = EXCLUDED.validation_warnings,
			updated_at = NOW()
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		spec.FileID, spec.WidthPixels, spec.HeightPixels, spec.DpiHorizontal, spec.DpiVertical,
		spec.ColorMode, spec.BitDepth, spec.IsPrintReady, errs, warns,
	).Scan(&spec.UpdatedAt)
}

func (r *pgFileRepository) FindSpec(ctx context.Context, fileID string) (*FileTechnicalSpec, error) {
	query := `
		SELECT file_id, width_pixels, height_pixels, dpi_horizontal, dpi_vertical, color_mode, bit_depth, is_print_ready, validation_errors, validation_warnings, updated_at
		FROM file_technical_specs WHERE file_id = $1
	`
	spec := &FileTechnicalSpec{}
	var errs, warns []byte
	err := r.pool.QueryRow(ctx, query, fileID).Scan(
		&spec.FileID, &spec.WidthPixels, &spec.HeightPixels,
		&spec.DpiHorizontal, &spec.DpiVertical, &spec.ColorMode, &spec.BitDepth,
		&spec.IsPrintReady, &errs, &warns, &spec.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(errs, &spec.ValidationErrors); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(warns, &spec.ValidationWarnings); err != nil {
		return nil, err
	}
	return spec, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
