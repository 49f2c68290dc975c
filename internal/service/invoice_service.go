package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Invoice Service
// ============================================

type InvoiceService interface {
	Create(ctx context.Context, projectID string, amount decimal.Decimal, dueDate *time.Time, role string) (*repository.Invoice, error)
	Send(ctx context.Context, invoiceID, role string) error
	Void(ctx context.Context, invoiceID, role string) error
	ListByProject(ctx context.Context, projectID string) ([]*repository.Invoice, error)

	// MarkPaid settles one invoice. When it was the last outstanding invoice,
	// the project's payment requirements are completed, which may in turn
	// advance the phase.
	MarkPaid(ctx context.Context, invoiceID, actorID, role string) (*repository.Invoice, error)
}

type invoiceService struct {
	invoiceRepo     repository.InvoiceRepository
	projectRepo     repository.ProjectRepository
	requirementRepo repository.RequirementRepository
	requirementSvc  RequirementService
	phaseSvc        PhaseService
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	projectRepo repository.ProjectRepository,
	requirementRepo repository.RequirementRepository,
	requirementSvc RequirementService,
	phaseSvc PhaseService,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:     invoiceRepo,
		projectRepo:     projectRepo,
		requirementRepo: requirementRepo,
		requirementSvc:  requirementSvc,
		phaseSvc:        phaseSvc,
	}
}

func (s *invoiceService) Create(ctx context.Context, projectID string, amount decimal.Decimal, dueDate *time.Time, role string) (*repository.Invoice, error) {
	if role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidInput
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}

	invoice := &repository.Invoice{
		ProjectID: projectID,
		Amount:    amount,
		Status:    types.InvoiceDraft,
		DueDate:   dueDate,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) Send(ctx context.Context, invoiceID, role string) error {
	return s.transition(ctx, invoiceID, role, types.InvoiceDraft, types.InvoiceSent)
}

func (s *invoiceService) Void(ctx context.Context, invoiceID, role string) error {
	if role != types.RoleAdmin {
		return ErrForbidden
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return ErrNotFound
	}
	if invoice.Status == types.InvoicePaid {
		return ErrInvalidState
	}
	return s.invoiceRepo.UpdateStatus(ctx, invoiceID, types.InvoiceVoid)
}

func (s *invoiceService) transition(ctx context.Context, invoiceID, role, from, to string) error {
	if role != types.RoleAdmin {
		return ErrForbidden
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return ErrNotFound
	}
	if invoice.Status != from {
		return ErrInvalidState
	}
	return s.invoiceRepo.UpdateStatus(ctx, invoiceID, to)
}

func (s *invoiceService) ListByProject(ctx context.Context, projectID string) ([]*repository.Invoice, error) {
	return s.invoiceRepo.FindByProject(ctx, projectID)
}

func (s *invoiceService) MarkPaid(ctx context.Context, invoiceID, actorID, role string) (*repository.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrNotFound
	}

	paid, err := s.invoiceRepo.MarkPaid(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrInvalidState
	}

	allPaid, err := s.invoiceRepo.AllPaid(ctx, invoice.ProjectID)
	if err != nil {
		return nil, err
	}
	if allPaid {
		s.completePaymentRequirements(ctx, invoice.ProjectID, actorID, role)
	}

	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

// completePaymentRequirements marks the current phase's payment-type
// requirements complete and lets the phase engine take it from there.
// Best-effort: the invoice is already settled, so failures only log.
func (s *invoiceService) completePaymentRequirements(ctx context.Context, projectID, actorID, role string) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil || project == nil {
		if err != nil {
			log.Printf("⚠️ [Invoice] Failed to load project %s: %v", projectID, err)
		}
		return
	}

	requirements, err := s.requirementRepo.FindByPhaseAndType(ctx, project.CurrentPhaseKey, types.ReqPayment)
	if err != nil {
		log.Printf("⚠️ [Invoice] Failed to load payment requirements: %v", err)
		return
	}

	var anyToggled bool
	for _, req := range requirements {
		if _, err := s.requirementSvc.SetRequirementStatus(ctx, projectID, req.ID, true, actorID, role); err != nil {
			log.Printf("⚠️ [Invoice] Failed to complete requirement %s: %v", req.ID, err)
			continue
		}
		anyToggled = true
	}

	if anyToggled {
		if _, err := s.phaseSvc.MaybeAdvance(ctx, projectID); err != nil {
			log.Printf("⚠️ [Invoice] Phase advance check failed for project %s: %v", projectID, err)
		}
	}
}
