package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/inkline-studio/inkline-backend/internal/imagemeta"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/storage"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Validation Service (file validation engine)
// ============================================

const defaultDpi = 72.0

var rasterExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"tiff": true,
	"tif":  true,
}

type ValidationService interface {
	// Validate checks one file against one service's standard. Validation
	// failures are reported inside the result; the error return is reserved
	// for unreachable standards or storage.
	Validate(ctx context.Context, file *repository.ProjectFile, serviceCode string) (*repository.ValidationResult, error)

	// ValidateSession validates every active project file against every
	// service on the proof and persists the aggregate in one update. No
	// transaction is held across the per-file loop.
	ValidateSession(ctx context.Context, proofID string) (repository.ValidationResults, error)
}

type validationService struct {
	fileRepo    repository.FileRepository
	proofRepo   repository.ProofRepository
	standardSvc StandardService
	store       storage.Store
}

func NewValidationService(
	fileRepo repository.FileRepository,
	proofRepo repository.ProofRepository,
	standardSvc StandardService,
	store storage.Store,
) ValidationService {
	return &validationService{
		fileRepo:    fileRepo,
		proofRepo:   proofRepo,
		standardSvc: standardSvc,
		store:       store,
	}
}

func fileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func colorModeFromChannels(channels int) string {
	switch channels {
	case 1:
		return types.ColorGrayscale
	case 3:
		return types.ColorRGB
	case 4:
		return types.ColorCMYK
	default:
		return ""
	}
}

func (s *validationService) Validate(ctx context.Context, file *repository.ProjectFile, serviceCode string) (*repository.ValidationResult, error) {
	standard, err := s.standardSvc.Get(ctx, serviceCode)
	if err != nil {
		return nil, err
	}
	// Missing configuration never blocks work.
	if standard == nil {
		return &repository.ValidationResult{
			Passed:   true,
			Issues:   []string{},
			Warnings: []string{fmt.Sprintf("No validation standard configured for service %s", serviceCode)},
		}, nil
	}

	issues := []string{}
	warnings := []string{}

	ext := fileExtension(file.Filename)
	if !containsFold(standard.AllowedFormats, ext) {
		issues = append(issues, fmt.Sprintf("Format %q is not allowed for %s (allowed: %s)",
			ext, serviceCode, strings.Join(standard.AllowedFormats, ", ")))
	}

	sizeMb := float64(file.SizeBytes) / (1024 * 1024)
	if sizeMb > standard.MaxFileSizeMb {
		issues = append(issues, fmt.Sprintf("File size %.1f MB exceeds maximum %.1f MB", sizeMb, standard.MaxFileSizeMb))
	}

	if rasterExtensions[ext] {
		rasterIssues, rasterWarnings, err := s.validateRaster(ctx, file, standard)
		if err != nil {
			return nil, err
		}
		issues = append(issues, rasterIssues...)
		warnings = append(warnings, rasterWarnings...)
	}

	return &repository.ValidationResult{
		Passed:   len(issues) == 0,
		Issues:   issues,
		Warnings: warnings,
	}, nil
}

// validateRaster extracts the file's technical properties and checks them
// against the standard. Extraction failure downgrades to a warning and leaves
// the technical-spec record untouched.
func (s *validationService) validateRaster(ctx context.Context, file *repository.ProjectFile, standard *repository.ValidationStandard) ([]string, []string, error) {
	issues := []string{}
	warnings := []string{}

	data, err := s.store.Read(file.StoragePath)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("Could not fully validate %s: file unreadable", file.Filename))
		return issues, warnings, nil
	}

	info, err := imagemeta.Extract(data)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("Could not fully validate %s: metadata extraction failed", file.Filename))
		return issues, warnings, nil
	}

	dpiH := info.DPIHorizontal
	dpiV := info.DPIVertical
	if dpiH <= 0 {
		dpiH = defaultDpi
	}
	if dpiV <= 0 {
		dpiV = defaultDpi
	}
	dpi := dpiH
	if dpiV < dpi {
		dpi = dpiV
	}

	if dpi < standard.MinDpi {
		issues = append(issues, fmt.Sprintf("Resolution %.0f DPI below minimum %.0f DPI", dpi, standard.MinDpi))
	}

	colorMode := colorModeFromChannels(info.Channels)
	if len(standard.RequiredColorModes) > 0 && !containsFold(standard.RequiredColorModes, colorMode) {
		warnings = append(warnings, fmt.Sprintf("Color mode %s is not among required modes (%s)",
			colorMode, strings.Join(standard.RequiredColorModes, ", ")))
	}

	// Bleed is never positively detected from raster metadata, so a standard
	// that requires it always flags the file.
	if standard.RequiresBleed {
		issues = append(issues, fmt.Sprintf("Required bleed of %.3f in not detected", standard.MinBleedInches))
	}

	spec := &repository.FileTechnicalSpec{
		FileID:             file.ID,
		WidthPixels:        info.WidthPixels,
		HeightPixels:       info.HeightPixels,
		DpiHorizontal:      dpiH,
		DpiVertical:        dpiV,
		ColorMode:          colorMode,
		BitDepth:           info.BitDepth,
		IsPrintReady:       len(issues) == 0,
		ValidationErrors:   issues,
		ValidationWarnings: warnings,
	}
	if err := s.fileRepo.UpsertSpec(ctx, spec); err != nil {
		return nil, nil, err
	}

	return issues, warnings, nil
}

func (s *validationService) ValidateSession(ctx context.Context, proofID string) (repository.ValidationResults, error) {
	proof, err := s.proofRepo.FindByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, ErrNotFound
	}

	files, err := s.fileRepo.FindActiveByProject(ctx, proof.ProjectID)
	if err != nil {
		return nil, err
	}

	// Compute the full cross-product first, persist once at the end.
	results := repository.ValidationResults{}
	for _, file := range files {
		perService := map[string]repository.ValidationResult{}
		for _, serviceCode := range proof.Services {
			result, err := s.Validate(ctx, file, serviceCode)
			if err != nil {
				return nil, err
			}
			perService[serviceCode] = *result
		}
		results[file.ID] = perService
	}

	if _, err := s.proofRepo.Update(ctx, proofID, &repository.ProofUpdate{ValidationResults: results}); err != nil {
		return nil, err
	}
	log.Printf("🔍 [Validation] Validated %d file(s) across %d service(s) for proof %s",
		len(files), len(proof.Services), proofID)
	return results, nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
