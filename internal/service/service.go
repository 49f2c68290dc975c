package service

import (
	"context"
	"errors"

	"github.com/inkline-studio/inkline-backend/internal/config"
	"github.com/inkline-studio/inkline-backend/internal/db"
	"github.com/inkline-studio/inkline-backend/internal/email"
	"github.com/inkline-studio/inkline-backend/internal/notification"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/socket"
	"github.com/inkline-studio/inkline-backend/internal/storage"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrInvalidState marks a state-machine precondition violation: approving
	// a proof that is not ready, advancing past the terminal phase, paying a
	// settled invoice.
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	Client       ClientService
	Project      ProjectService
	Requirement  RequirementService
	Phase        PhaseService
	Validation   ValidationService
	Proof        ProofService
	Approval     ApprovalService
	Invoice      InvoiceService
	Standard     StandardService
	Notification NotificationService
	Activity     ActivityService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Redis       *db.RedisDB
	Store       storage.Store
}

func NewServices(deps *ServiceDeps) *Services {
	activitySvc := NewActivityService(deps.Repos.ActivityRepo)

	requirementSvc := NewRequirementService(
		deps.Repos.RequirementRepo,
		deps.Repos.ProjectRepo,
		deps.Repos.ClientRepo,
		activitySvc,
	)

	phaseSvc := NewPhaseService(
		deps.Repos.ProjectRepo,
		deps.Repos.ClientRepo,
		requirementSvc,
		activitySvc,
		deps.NotifSvc,
		deps.EmailSvc,
		deps.Config.AutoAdvance,
	)

	standardSvc := NewStandardService(deps.Repos.StandardRepo, deps.Redis)

	validationSvc := NewValidationService(
		deps.Repos.FileRepo,
		deps.Repos.ProofRepo,
		standardSvc,
		deps.Store,
	)

	proofSvc := NewProofService(
		deps.Repos.ProofRepo,
		deps.Repos.OverrideRepo,
		deps.Repos.ProjectRepo,
		deps.Repos.ClientRepo,
		validationSvc,
		activitySvc,
		deps.NotifSvc,
	)

	approvalSvc := NewApprovalService(
		deps.Repos.ApprovalRepo,
		deps.Repos.ProofRepo,
		deps.Repos.ProjectRepo,
		deps.Repos.ClientRepo,
		deps.Repos.UserRepo,
		activitySvc,
		deps.NotifSvc,
		deps.EmailSvc,
		deps.Broadcaster,
	)

	return &Services{
		Auth:         NewAuthService(deps.Config, deps.Repos.UserRepo, deps.Redis),
		Client:       NewClientService(deps.Repos.ClientRepo),
		Project:      NewProjectService(deps.Repos.ProjectRepo, deps.Repos.ClientRepo, deps.Repos.FileRepo, activitySvc),
		Requirement:  requirementSvc,
		Phase:        phaseSvc,
		Validation:   validationSvc,
		Proof:        proofSvc,
		Approval:     approvalSvc,
		Invoice:      NewInvoiceService(deps.Repos.InvoiceRepo, deps.Repos.ProjectRepo, deps.Repos.RequirementRepo, requirementSvc, phaseSvc),
		Standard:     standardSvc,
		Notification: NewNotificationService(deps.Repos.NotificationRepo),
		Activity:     activitySvc,
		Broadcaster:  deps.Broadcaster,
	}
}

// authorizeProject grants admins unconditionally and clients only when they
// own the project. Used by every project-scoped operation before any
// mutation.
func authorizeProject(ctx context.Context, clientRepo repository.ClientRepository, project *repository.Project, actorID, role string) error {
	if role == types.RoleAdmin {
		return nil
	}
	client, err := clientRepo.FindByID(ctx, project.ClientID)
	if err != nil {
		return err
	}
	if client == nil || client.UserID == nil || *client.UserID != actorID {
		return ErrForbidden
	}
	return nil
}
