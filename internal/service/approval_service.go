package service

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/inkline-studio/inkline-backend/internal/email"
	"github.com/inkline-studio/inkline-backend/internal/notification"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/socket"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Approval Service (the approval ledger)
// ============================================

// ApprovalInput carries everything a digital sign-off records: the decision,
// free-text notes, an opaque signature reference, and request provenance.
type ApprovalInput struct {
	Decision      string
	Notes         string
	SignatureData string
	IPAddress     string
	UserAgent     string
}

type ApprovalService interface {
	// SubmitApproval finalizes a ready proof. A session not in ready state
	// fails with ErrInvalidState; of two concurrent submissions exactly one
	// wins.
	SubmitApproval(ctx context.Context, proofID string, input *ApprovalInput, actorID, role string) (*repository.ProofApproval, error)

	Get(ctx context.Context, approvalID, actorID, role string) (*repository.ProofApproval, error)
	ListByProof(ctx context.Context, proofID, actorID, role string) ([]*repository.ProofApproval, error)
}

type approvalService struct {
	approvalRepo repository.ApprovalRepository
	proofRepo    repository.ProofRepository
	projectRepo  repository.ProjectRepository
	clientRepo   repository.ClientRepository
	userRepo     repository.UserRepository
	activitySvc  ActivityService
	notifSvc     *notification.Service
	emailSvc     *email.Service
	broadcaster  *socket.Broadcaster
}

func NewApprovalService(
	approvalRepo repository.ApprovalRepository,
	proofRepo repository.ProofRepository,
	projectRepo repository.ProjectRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	activitySvc ActivityService,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		proofRepo:    proofRepo,
		projectRepo:  projectRepo,
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		activitySvc:  activitySvc,
		notifSvc:     notifSvc,
		emailSvc:     emailSvc,
		broadcaster:  broadcaster,
	}
}

func (s *approvalService) loadAuthorized(ctx context.Context, proofID, actorID, role string) (*repository.ProofSession, *repository.Project, error) {
	proof, err := s.proofRepo.FindByID(ctx, proofID)
	if err != nil {
		return nil, nil, err
	}
	if proof == nil {
		return nil, nil, ErrNotFound
	}
	project, err := s.projectRepo.FindByID(ctx, proof.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, ErrNotFound
	}
	if err := authorizeProject(ctx, s.clientRepo, project, actorID, role); err != nil {
		return nil, nil, err
	}
	return proof, project, nil
}

func (s *approvalService) SubmitApproval(ctx context.Context, proofID string, input *ApprovalInput, actorID, role string) (*repository.ProofApproval, error) {
	if input.Decision != types.DecisionApproved && input.Decision != types.DecisionRejected {
		return nil, ErrInvalidInput
	}

	proof, project, err := s.loadAuthorized(ctx, proofID, actorID, role)
	if err != nil {
		return nil, err
	}

	approver, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, ErrForbidden
	}

	approval := &repository.ProofApproval{
		ProofID:       proofID,
		ApproverID:    &approver.ID,
		ApproverName:  approver.Name,
		ApproverEmail: approver.Email,
		Status:        input.Decision,
	}
	if input.Notes != "" {
		approval.Notes = &input.Notes
	}
	if input.SignatureData != "" {
		approval.SignatureData = &input.SignatureData
	}
	if input.IPAddress != "" {
		approval.IPAddress = &input.IPAddress
	}
	if input.UserAgent != "" {
		approval.UserAgent = &input.UserAgent
	}

	if err := s.approvalRepo.Finalize(ctx, approval); err != nil {
		if errors.Is(err, repository.ErrProofNotReady) {
			return nil, ErrInvalidState
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	action := ActionApprovalSubmitted
	if input.Decision == types.DecisionRejected {
		action = ActionApprovalRejected
	}
	s.activitySvc.Emit(ctx, actorID, action, EntityApproval, approval.ID,
		"Proof "+input.Decision+" by "+approver.Name,
		map[string]interface{}{
			"proofId":   proofID,
			"projectId": project.ID,
			"decision":  input.Decision,
		})

	s.notifSvc.SendProofDecision(ctx, proofID, project.ID, project.Name, input.Decision)

	if s.broadcaster != nil && proof.CreatedBy != nil {
		s.broadcaster.SendProofStatus(*proof.CreatedBy, map[string]interface{}{
			"proofId":   proofID,
			"projectId": project.ID,
			"decision":  input.Decision,
		})
	}

	if s.emailSvc != nil && input.Decision == types.DecisionApproved {
		if err := s.emailSvc.SendApprovalReceipt(approver.Email, approver.Name, project.Name); err != nil {
			log.Printf("⚠️ [Approval] Failed to send receipt email: %v", err)
		}
	}

	return approval, nil
}

func (s *approvalService) Get(ctx context.Context, approvalID, actorID, role string) (*repository.ProofApproval, error) {
	approval, err := s.approvalRepo.FindByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if approval == nil {
		return nil, ErrNotFound
	}
	if _, _, err := s.loadAuthorized(ctx, approval.ProofID, actorID, role); err != nil {
		return nil, err
	}
	return approval, nil
}

func (s *approvalService) ListByProof(ctx context.Context, proofID, actorID, role string) ([]*repository.ProofApproval, error) {
	if _, _, err := s.loadAuthorized(ctx, proofID, actorID, role); err != nil {
		return nil, err
	}
	return s.approvalRepo.FindByProof(ctx, proofID)
}
