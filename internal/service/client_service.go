package service

import (
	"context"

	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Client Service
// ============================================

type ClientService interface {
	Create(ctx context.Context, client *repository.Client, role string) error
	Get(ctx context.Context, id, actorID, role string) (*repository.Client, error)
	GetByUser(ctx context.Context, userID string) (*repository.Client, error)
	List(ctx context.Context, role string) ([]*repository.Client, error)
	Update(ctx context.Context, client *repository.Client, actorID, role string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) Create(ctx context.Context, client *repository.Client, role string) error {
	if role != types.RoleAdmin {
		return ErrForbidden
	}
	if client.CompanyName == "" || client.ContactEmail == "" {
		return ErrInvalidInput
	}
	return s.clientRepo.Create(ctx, client)
}

func (s *clientService) Get(ctx context.Context, id, actorID, role string) (*repository.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNotFound
	}
	if role != types.RoleAdmin && (client.UserID == nil || *client.UserID != actorID) {
		return nil, ErrForbidden
	}
	return client, nil
}

func (s *clientService) GetByUser(ctx context.Context, userID string) (*repository.Client, error) {
	client, err := s.clientRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNotFound
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context, role string) ([]*repository.Client, error) {
	if role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.clientRepo.List(ctx)
}

func (s *clientService) Update(ctx context.Context, client *repository.Client, actorID, role string) error {
	existing, err := s.clientRepo.FindByID(ctx, client.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if role != types.RoleAdmin && (existing.UserID == nil || *existing.UserID != actorID) {
		return ErrForbidden
	}
	return s.clientRepo.Update(ctx, client)
}
