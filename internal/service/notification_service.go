package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/inkline-studio/inkline-backend/internal/repository"
)

// ============================================
// Notification Service (inbox reads)
// ============================================

type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]*repository.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) List(ctx context.Context, userID string, limit int) ([]*repository.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notificationRepo.FindByUser(ctx, userID, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	err := s.notificationRepo.MarkRead(ctx, id, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	return s.notificationRepo.Delete(ctx, id, userID)
}
