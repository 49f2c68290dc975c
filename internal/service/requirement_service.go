package service

import (
	"context"

	"github.com/inkline-studio/inkline-backend/internal/phases"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Requirement Service (the phase gate)
// ============================================

// ToggleResult is what a completion toggle reports back: the fresh status row
// and whether the project's current phase now has every mandatory
// requirement complete.
type ToggleResult struct {
	Status               *repository.ProjectRequirementStatus `json:"status"`
	AllMandatoryComplete bool                                 `json:"allMandatoryComplete"`
	CurrentPhaseKey      string                               `json:"currentPhaseKey"`
}

type RequirementService interface {
	ListForProject(ctx context.Context, projectID, phaseKey string) ([]*repository.RequirementWithStatus, error)

	// AllMandatoryComplete reports whether every mandatory requirement of
	// phaseKey has a completed status row for the project. Pure read.
	AllMandatoryComplete(ctx context.Context, projectID, phaseKey string) (bool, error)

	// SetRequirementStatus toggles one requirement for a project. The write
	// and the gate evaluation happen in one transaction; the returned gate
	// result is for the project's current phase.
	SetRequirementStatus(ctx context.Context, projectID, requirementID string, completed bool, actorID, role string) (*ToggleResult, error)

	// Catalog administration
	CreateRequirement(ctx context.Context, req *repository.Requirement, role string) error
	UpdateRequirement(ctx context.Context, req *repository.Requirement, role string) error
	DeleteRequirement(ctx context.Context, id, role string) error
}

type requirementService struct {
	requirementRepo repository.RequirementRepository
	projectRepo     repository.ProjectRepository
	clientRepo      repository.ClientRepository
	activitySvc     ActivityService
}

func NewRequirementService(
	requirementRepo repository.RequirementRepository,
	projectRepo repository.ProjectRepository,
	clientRepo repository.ClientRepository,
	activitySvc ActivityService,
) RequirementService {
	return &requirementService{
		requirementRepo: requirementRepo,
		projectRepo:     projectRepo,
		clientRepo:      clientRepo,
		activitySvc:     activitySvc,
	}
}

// allMandatory is the single gate reduction: every mandatory requirement
// must carry a completed row. Missing rows arrive as Completed=false from
// the left join.
func allMandatory(snapshot []*repository.RequirementWithStatus) bool {
	for _, rs := range snapshot {
		if rs.IsMandatory && !rs.Completed {
			return false
		}
	}
	return true
}

func (s *requirementService) ListForProject(ctx context.Context, projectID, phaseKey string) ([]*repository.RequirementWithStatus, error) {
	if _, ok := phases.Get(phaseKey); !ok {
		return nil, ErrNotFound
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return s.requirementRepo.FindWithStatuses(ctx, projectID, phaseKey)
}

func (s *requirementService) AllMandatoryComplete(ctx context.Context, projectID, phaseKey string) (bool, error) {
	if _, ok := phases.Get(phaseKey); !ok {
		return false, ErrNotFound
	}
	snapshot, err := s.requirementRepo.FindWithStatuses(ctx, projectID, phaseKey)
	if err != nil {
		return false, err
	}
	return allMandatory(snapshot), nil
}

func (s *requirementService) SetRequirementStatus(ctx context.Context, projectID, requirementID string, completed bool, actorID, role string) (*ToggleResult, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if err := authorizeProject(ctx, s.clientRepo, project, actorID, role); err != nil {
		return nil, err
	}

	requirement, err := s.requirementRepo.FindByID(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if requirement == nil {
		return nil, ErrNotFound
	}

	status, snapshot, err := s.requirementRepo.UpsertStatusAndFetch(
		ctx, projectID, requirementID, completed, actorID, project.CurrentPhaseKey,
	)
	if err != nil {
		return nil, err
	}

	s.activitySvc.Emit(ctx, actorID, ActionRequirementToggled, EntityRequirement, requirementID,
		requirement.Text,
		map[string]interface{}{
			"projectId": projectID,
			"phaseKey":  requirement.PhaseKey,
			"completed": completed,
		})

	return &ToggleResult{
		Status:               status,
		AllMandatoryComplete: allMandatory(snapshot),
		CurrentPhaseKey:      project.CurrentPhaseKey,
	}, nil
}

func (s *requirementService) CreateRequirement(ctx context.Context, req *repository.Requirement, role string) error {
	if role != types.RoleAdmin {
		return ErrForbidden
	}
	if _, ok := phases.Get(req.PhaseKey); !ok {
		return ErrInvalidInput
	}
	return s.requirementRepo.Create(ctx, req)
}

func (s *requirementService) UpdateRequirement(ctx context.Context, req *repository.Requirement, role string) error {
	if role != types.RoleAdmin {
		return ErrForbidden
	}
	existing, err := s.requirementRepo.FindByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.requirementRepo.Update(ctx, req)
}

func (s *requirementService) DeleteRequirement(ctx context.Context, id, role string) error {
	if role != types.RoleAdmin {
		return ErrForbidden
	}
	existing, err := s.requirementRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.requirementRepo.Delete(ctx, id)
}
