package service

import (
	"context"
	"log"
	"time"

	"github.com/inkline-studio/inkline-backend/internal/db"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Standard Service (validation standards catalog)
// ============================================

const standardCacheTTL = 10 * time.Minute

type StandardService interface {
	// Get returns the standard for a service code, or nil when none is
	// configured. Cached in Redis when available.
	Get(ctx context.Context, serviceCode string) (*repository.ValidationStandard, error)

	List(ctx context.Context) ([]*repository.ValidationStandard, error)
	Upsert(ctx context.Context, standard *repository.ValidationStandard, role string) error
}

type standardService struct {
	standardRepo repository.StandardRepository
	redis        *db.RedisDB
}

func NewStandardService(standardRepo repository.StandardRepository, redis *db.RedisDB) StandardService {
	return &standardService{standardRepo: standardRepo, redis: redis}
}

func (s *standardService) Get(ctx context.Context, serviceCode string) (*repository.ValidationStandard, error) {
	if s.redis != nil {
		var cached repository.ValidationStandard
		if err := s.redis.GetStandard(ctx, serviceCode, &cached); err == nil {
			return &cached, nil
		}
	}

	standard, err := s.standardRepo.FindByCode(ctx, serviceCode)
	if err != nil {
		return nil, err
	}
	if standard == nil {
		return nil, nil
	}

	if s.redis != nil {
		if err := s.redis.SetStandard(ctx, serviceCode, standard, standardCacheTTL); err != nil {
			log.Printf("⚠️ [Standards] Failed to cache %s: %v", serviceCode, err)
		}
	}
	return standard, nil
}

func (s *standardService) List(ctx context.Context) ([]*repository.ValidationStandard, error) {
	return s.standardRepo.List(ctx)
}

func (s *standardService) Upsert(ctx context.Context, standard *repository.ValidationStandard, role string) error {
	if role != types.RoleAdmin {
		return ErrForbidden
	}
	if standard.ServiceCode == "" {
		return ErrInvalidInput
	}
	if err := s.standardRepo.Upsert(ctx, standard); err != nil {
		return err
	}
	if s.redis != nil {
		if err := s.redis.InvalidateStandard(ctx, standard.ServiceCode); err != nil {
			log.Printf("⚠️ [Standards] Failed to invalidate cache for %s: %v", standard.ServiceCode, err)
		}
	}
	return nil
}
