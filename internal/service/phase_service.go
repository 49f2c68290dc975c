package service

import (
	"context"
	"log"
	"sync"

	"github.com/inkline-studio/inkline-backend/internal/email"
	"github.com/inkline-studio/inkline-backend/internal/notification"
	"github.com/inkline-studio/inkline-backend/internal/phases"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Phase Service (the transition engine)
// ============================================

// AdvanceResult reports one MaybeAdvance invocation. Ready is true whenever
// the gate passes, even when no transition ran (terminal phase, auto-advance
// disabled, or a concurrent winner), so callers can offer a manual advance.
type AdvanceResult struct {
	Advanced  bool    `json:"advanced"`
	Ready     bool    `json:"ready"`
	FromPhase string  `json:"fromPhase"`
	ToPhase   *string `json:"toPhase,omitempty"`
}

type PhaseService interface {
	// MaybeAdvance runs the gated transition when auto-advance is enabled.
	// With auto-advance off it only reports readiness.
	MaybeAdvance(ctx context.Context, projectID string) (*AdvanceResult, error)

	// AdvanceManually is the admin action behind the same single transition
	// implementation; it ignores the auto-advance flag but honors the gate
	// and the terminal phase.
	AdvanceManually(ctx context.Context, projectID, actorID, role string) (*AdvanceResult, error)
}

type phaseService struct {
	projectRepo    repository.ProjectRepository
	clientRepo     repository.ClientRepository
	requirementSvc RequirementService
	activitySvc    ActivityService
	notifSvc       *notification.Service
	emailSvc       *email.Service
	autoAdvance    bool

	// One lock per project id serializes concurrent advancement attempts in
	// this process; the repository CAS covers other writers.
	locks sync.Map
}

func NewPhaseService(
	projectRepo repository.ProjectRepository,
	clientRepo repository.ClientRepository,
	requirementSvc RequirementService,
	activitySvc ActivityService,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	autoAdvance bool,
) PhaseService {
	return &phaseService{
		projectRepo:    projectRepo,
		clientRepo:     clientRepo,
		requirementSvc: requirementSvc,
		activitySvc:    activitySvc,
		notifSvc:       notifSvc,
		emailSvc:       emailSvc,
		autoAdvance:    autoAdvance,
	}
}

func (s *phaseService) lockProject(projectID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(projectID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *phaseService) MaybeAdvance(ctx context.Context, projectID string) (*AdvanceResult, error) {
	return s.advance(ctx, projectID, "", s.autoAdvance)
}

func (s *phaseService) AdvanceManually(ctx context.Context, projectID, actorID, role string) (*AdvanceResult, error) {
	if role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.advance(ctx, projectID, actorID, true)
}

// advance is the single transition implementation. execute=false turns it
// into a readiness probe.
func (s *phaseService) advance(ctx context.Context, projectID, actorID string, execute bool) (*AdvanceResult, error) {
	mu := s.lockProject(projectID)
	mu.Lock()
	defer mu.Unlock()

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}

	result := &AdvanceResult{FromPhase: project.CurrentPhaseKey}

	complete, err := s.requirementSvc.AllMandatoryComplete(ctx, projectID, project.CurrentPhaseKey)
	if err != nil {
		return nil, err
	}
	if !complete {
		return result, nil
	}
	if phases.Last(project.CurrentPhaseKey) {
		return result, nil
	}

	result.Ready = true
	if !execute {
		return result, nil
	}

	next, ok := phases.Next(project.CurrentPhaseKey)
	if !ok {
		return result, nil
	}

	advanced, err := s.projectRepo.AdvancePhase(ctx, projectID, project.CurrentPhaseKey, next.Key, next.OrderIndex)
	if err != nil {
		return nil, err
	}
	if !advanced {
		// A concurrent caller won the CAS; this invocation is a no-op.
		return result, nil
	}

	result.Advanced = true
	result.ToPhase = &next.Key

	s.activitySvc.Emit(ctx, actorID, ActionPhaseAdvanced, EntityProject, projectID,
		"Project advanced from "+project.CurrentPhaseKey+" to "+next.Key,
		map[string]interface{}{
			"fromPhase": project.CurrentPhaseKey,
			"toPhase":   next.Key,
		})

	s.notifyAdvanced(ctx, project, next.Key)

	return result, nil
}

// notifyAdvanced fans the transition out to the owning client. Best-effort:
// failures are logged and never abort the committed transition.
func (s *phaseService) notifyAdvanced(ctx context.Context, project *repository.Project, toPhase string) {
	client, err := s.clientRepo.FindByID(ctx, project.ClientID)
	if err != nil || client == nil {
		if err != nil {
			log.Printf("⚠️ [Phase] Failed to load client for notification: %v", err)
		}
		return
	}

	if client.UserID != nil && s.notifSvc != nil {
		s.notifSvc.SendPhaseAdvanced(ctx, *client.UserID, project.ID, project.Name, project.CurrentPhaseKey, toPhase)
	}
	if s.emailSvc != nil {
		from, _ := phases.Get(project.CurrentPhaseKey)
		to, _ := phases.Get(toPhase)
		if err := s.emailSvc.SendPhaseAdvanced(client.ContactEmail, client.ContactName, project.Name, from.Name, to.Name); err != nil {
			log.Printf("⚠️ [Phase] Failed to send phase email: %v", err)
		}
	}
}
