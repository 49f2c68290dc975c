package service

import (
	"context"

	"github.com/inkline-studio/inkline-backend/internal/notification"
	"github.com/inkline-studio/inkline-backend/internal/phases"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Proof Service (proof session manager)
// ============================================

type ProofService interface {
	Create(ctx context.Context, projectID, phaseKey string, services []string, actorID, role string) (*repository.ProofSession, error)

	// Update applies whichever fields the caller supplied, by replacement.
	Update(ctx context.Context, proofID string, update *repository.ProofUpdate, actorID, role string) (*repository.ProofSession, error)

	Get(ctx context.Context, proofID, actorID, role string) (*repository.ProofSession, error)
	ListByProject(ctx context.Context, projectID, actorID, role string) ([]*repository.ProofSession, error)
	Current(ctx context.Context, projectID, actorID, role string) (*repository.ProofSession, error)

	// ValidateSession runs the validation engine over the proof after the
	// caller's access is checked.
	ValidateSession(ctx context.Context, proofID, actorID, role string) (repository.ValidationResults, error)

	// RequestOverride records an override request for a checklist item. Admin
	// requesters are auto-approved in the same operation, which forces the
	// item to checked with an override note.
	RequestOverride(ctx context.Context, proofID, itemID, reason, actorID, role string) (*repository.OverrideRequest, error)

	// ReviewOverride resolves a pending override. Admin only.
	ReviewOverride(ctx context.Context, overrideID string, approve bool, actorID, role string) (*repository.OverrideRequest, error)

	ListOverrides(ctx context.Context, proofID, actorID, role string) ([]*repository.OverrideRequest, error)
	ListPendingOverrides(ctx context.Context, role string) ([]*repository.OverrideRequest, error)
}

type proofService struct {
	proofRepo     repository.ProofRepository
	overrideRepo  repository.OverrideRepository
	projectRepo   repository.ProjectRepository
	clientRepo    repository.ClientRepository
	validationSvc ValidationService
	activitySvc   ActivityService
	notifSvc      *notification.Service
}

func NewProofService(
	proofRepo repository.ProofRepository,
	overrideRepo repository.OverrideRepository,
	projectRepo repository.ProjectRepository,
	clientRepo repository.ClientRepository,
	validationSvc ValidationService,
	activitySvc ActivityService,
	notifSvc *notification.Service,
) ProofService {
	return &proofService{
		proofRepo:     proofRepo,
		overrideRepo:  overrideRepo,
		projectRepo:   projectRepo,
		clientRepo:    clientRepo,
		validationSvc: validationSvc,
		activitySvc:   activitySvc,
		notifSvc:      notifSvc,
	}
}

// authorizedProject loads a project and checks the actor may touch it.
func (s *proofService) authorizedProject(ctx context.Context, projectID, actorID, role string) (*repository.Project, error) {
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
	return project, nil
}

// authorizedProof loads a proof and checks access through its project.
func (s *proofService) authorizedProof(ctx context.Context, proofID, actorID, role string) (*repository.ProofSession, error) {
	proof, err := s.proofRepo.FindByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, ErrNotFound
	}
	if _, err := s.authorizedProject(ctx, proof.ProjectID, actorID, role); err != nil {
		return nil, err
	}
	return proof, nil
}

func (s *proofService) Create(ctx context.Context, projectID, phaseKey string, services []string, actorID, role string) (*repository.ProofSession, error) {
	if _, ok := phases.Get(phaseKey); !ok {
		return nil, ErrInvalidInput
	}
	if len(services) == 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.authorizedProject(ctx, projectID, actorID, role); err != nil {
		return nil, err
	}

	proof := &repository.ProofSession{
		ProjectID: projectID,
		PhaseKey:  phaseKey,
		Services:  services,
		Status:    types.ProofCreated,
	}
	if actorID != "" {
		proof.CreatedBy = &actorID
	}
	if err := s.proofRepo.Create(ctx, proof); err != nil {
		return nil, err
	}

	s.activitySvc.Emit(ctx, actorID, ActionProofCreated, EntityProof, proof.ID,
		"Proof session started",
		map[string]interface{}{
			"projectId": projectID,
			"phaseKey":  phaseKey,
			"services":  services,
		})
	return proof, nil
}

func (s *proofService) Update(ctx context.Context, proofID string, update *repository.ProofUpdate, actorID, role string) (*repository.ProofSession, error) {
	proof, err := s.authorizedProof(ctx, proofID, actorID, role)
	if err != nil {
		return nil, err
	}

	// The status field moves only through its forward machine: ready from
	// created, and the terminal states only via the approval ledger.
	if update.Status != nil {
		if *update.Status != types.ProofReady || proof.Status != types.ProofCreated {
			return nil, ErrInvalidState
		}
	}

	updated, err := s.proofRepo.Update(ctx, proofID, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.activitySvc.Emit(ctx, actorID, ActionProofUpdated, EntityProof, proofID,
		"Proof session updated",
		map[string]interface{}{"projectId": proof.ProjectID})
	return updated, nil
}

func (s *proofService) Get(ctx context.Context, proofID, actorID, role string) (*repository.ProofSession, error) {
	return s.authorizedProof(ctx, proofID, actorID, role)
}

func (s *proofService) ListByProject(ctx context.Context, projectID, actorID, role string) ([]*repository.ProofSession, error) {
	if _, err := s.authorizedProject(ctx, projectID, actorID, role); err != nil {
		return nil, err
	}
	return s.proofRepo.FindByProject(ctx, projectID)
}

func (s *proofService) Current(ctx context.Context, projectID, actorID, role string) (*repository.ProofSession, error) {
	if _, err := s.authorizedProject(ctx, projectID, actorID, role); err != nil {
		return nil, err
	}
	proof, err := s.proofRepo.FindCurrentByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, ErrNotFound
	}
	return proof, nil
}

func (s *proofService) ValidateSession(ctx context.Context, proofID, actorID, role string) (repository.ValidationResults, error) {
	proof, err := s.authorizedProof(ctx, proofID, actorID, role)
	if err != nil {
		return nil, err
	}

	results, err := s.validationSvc.ValidateSession(ctx, proofID)
	if err != nil {
		return nil, err
	}

	s.activitySvc.Emit(ctx, actorID, ActionProofValidated, EntityProof, proofID,
		"Proof files validated",
		map[string]interface{}{
			"projectId": proof.ProjectID,
			"fileCount": len(results),
		})
	return results, nil
}

func (s *proofService) RequestOverride(ctx context.Context, proofID, itemID, reason, actorID, role string) (*repository.OverrideRequest, error) {
	if itemID == "" || reason == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.authorizedProof(ctx, proofID, actorID, role); err != nil {
		return nil, err
	}

	override := &repository.OverrideRequest{
		ProofID: proofID,
		ItemID:  itemID,
		Reason:  reason,
		Status:  types.OverridePending,
	}
	if actorID != "" {
		override.RequestedBy = &actorID
	}
	if err := s.overrideRepo.Create(ctx, override); err != nil {
		return nil, err
	}

	s.activitySvc.Emit(ctx, actorID, ActionOverrideRequested, EntityOverride, override.ID,
		reason,
		map[string]interface{}{"proofId": proofID, "itemId": itemID})

	if role == types.RoleAdmin {
		// Admin requests resolve in the same operation.
		approved, err := s.overrideRepo.Approve(ctx, override.ID, actorID)
		if err != nil {
			return nil, err
		}
		s.activitySvc.Emit(ctx, actorID, ActionOverrideApproved, EntityOverride, override.ID,
			"Override auto-approved",
			map[string]interface{}{"proofId": proofID, "itemId": itemID})
		return approved, nil
	}

	s.notifSvc.SendOverrideRequested(ctx, override.ID, proofID, itemID, reason)
	return override, nil
}

func (s *proofService) ReviewOverride(ctx context.Context, overrideID string, approve bool, actorID, role string) (*repository.OverrideRequest, error) {
	if role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	existing, err := s.overrideRepo.FindByID(ctx, overrideID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if existing.Status != types.OverridePending {
		return nil, ErrInvalidState
	}

	var resolved *repository.OverrideRequest
	if approve {
		resolved, err = s.overrideRepo.Approve(ctx, overrideID, actorID)
	} else {
		resolved, err = s.overrideRepo.Reject(ctx, overrideID, actorID)
	}
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		// Lost the race with another reviewer.
		return nil, ErrInvalidState
	}

	action := ActionOverrideApproved
	if !approve {
		action = ActionOverrideRejected
	}
	s.activitySvc.Emit(ctx, actorID, action, EntityOverride, overrideID,
		resolved.Reason,
		map[string]interface{}{"proofId": resolved.ProofID, "itemId": resolved.ItemID})

	if resolved.RequestedBy != nil {
		s.notifSvc.SendOverrideResolved(ctx, *resolved.RequestedBy, overrideID, resolved.ItemID, resolved.Status)
	}
	return resolved, nil
}

func (s *proofService) ListOverrides(ctx context.Context, proofID, actorID, role string) ([]*repository.OverrideRequest, error) {
	if _, err := s.authorizedProof(ctx, proofID, actorID, role); err != nil {
		return nil, err
	}
	return s.overrideRepo.FindByProof(ctx, proofID)
}

func (s *proofService) ListPendingOverrides(ctx context.Context, role string) ([]*repository.OverrideRequest, error) {
	if role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.overrideRepo.FindPending(ctx)
}
