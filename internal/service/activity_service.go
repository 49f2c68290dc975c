package service

import (
	"context"
	"log"

	"github.com/inkline-studio/inkline-backend/internal/repository"
)

// Audit actions
const (
	ActionRequirementToggled = "requirement_toggled"
	ActionPhaseAdvanced      = "phase_advanced"
	ActionProofCreated       = "proof_created"
	ActionProofUpdated       = "proof_updated"
	ActionProofValidated     = "proof_validated"
	ActionOverrideRequested  = "override_requested"
	ActionOverrideApproved   = "override_approved"
	ActionOverrideRejected   = "override_rejected"
	ActionApprovalSubmitted  = "approval_submitted"
	ActionApprovalRejected   = "approval_rejected"
	ActionProjectCreated     = "project_created"
	ActionInvoicePaid        = "invoice_paid"
)

// Audit entity types
const (
	EntityProject     = "project"
	EntityRequirement = "requirement"
	EntityProof       = "proof"
	EntityOverride    = "override"
	EntityApproval    = "approval"
	EntityInvoice     = "invoice"
)

type ActivityService interface {
	// Emit records an audit event. Fire-and-forget: a failing sink is logged
	// and never propagates to the triggering operation.
	Emit(ctx context.Context, actorID, action, entityType, entityID, description string, metadata map[string]interface{})

	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*repository.Activity, error)
	ListByActor(ctx context.Context, actorID string, limit int) ([]*repository.Activity, error)
}

type activityService struct {
	activityRepo repository.ActivityRepository
}

func NewActivityService(activityRepo repository.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

func (s *activityService) Emit(ctx context.Context, actorID, action, entityType, entityID, description string, metadata map[string]interface{}) {
	activity := &repository.Activity{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Metadata:    metadata,
	}
	if actorID != "" {
		activity.ActorID = &actorID
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		log.Printf("⚠️ [Audit] Failed to record %s on %s/%s: %v", action, entityType, entityID, err)
	}
}

func (s *activityService) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*repository.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.activityRepo.FindByEntity(ctx, entityType, entityID, limit)
}

func (s *activityService) ListByActor(ctx context.Context, actorID string, limit int) ([]*repository.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.activityRepo.FindByActor(ctx, actorID, limit)
}
