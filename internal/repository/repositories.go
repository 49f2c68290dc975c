package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	UserRepo         UserRepository
	ClientRepo       ClientRepository
	ProjectRepo      ProjectRepository
	RequirementRepo  RequirementRepository
	ProofRepo        ProofRepository
	OverrideRepo     OverrideRepository
	ApprovalRepo     ApprovalRepository
	StandardRepo     StandardRepository
	FileRepo         FileRepository
	InvoiceRepo      InvoiceRepository
	NotificationRepo NotificationRepository
	ActivityRepo     ActivityRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		ClientRepo:       NewClientRepository(pool),
		ProjectRepo:      NewProjectRepository(pool),
		RequirementRepo:  NewRequirementRepository(pool),
		ProofRepo:        NewProofRepository(pool),
		OverrideRepo:     NewOverrideRepository(pool),
		ApprovalRepo:     NewApprovalRepository(pool),
		StandardRepo:     NewStandardRepository(pool),
		FileRepo:         NewFileRepository(pool),
		InvoiceRepo:      NewInvoiceRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),
		ActivityRepo:     NewActivityRepository(pool),
	}
}
