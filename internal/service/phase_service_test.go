package service

import (
	"context"
	"errors"
	"testing"

	"github.com/inkline-studio/inkline-backend/internal/notification"
	"github.com/inkline-studio/inkline-backend/internal/phases"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

type phaseFixture struct {
	reqRepo    *mockRequirementRepository
	projRepo   *mockProjectRepository
	clientRepo *mockClientRepository
	notifRepo  *mockNotificationRepository
	activity   *mockActivityRepository
	svc        PhaseService
}

func newPhaseFixture(autoAdvance bool) *phaseFixture {
	f := &phaseFixture{
		reqRepo:    newMockRequirementRepository(),
		projRepo:   newMockProjectRepository(),
		clientRepo: newMockClientRepository(),
		notifRepo:  newMockNotificationRepository(),
		activity:   newMockActivityRepository(),
	}
	activitySvc := NewActivityService(f.activity)
	requirementSvc := NewRequirementService(f.reqRepo, f.projRepo, f.clientRepo, activitySvc)
	notifSvc := notification.NewService(f.notifRepo, newMockUserRepository())
	f.svc = NewPhaseService(f.projRepo, f.clientRepo, requirementSvc, activitySvc, notifSvc, nil, autoAdvance)
	return f
}

func TestMaybeAdvance_GateClosedNoOp(t *testing.T) {
	f := newPhaseFixture(true)
	seedProject(f.projRepo, f.clientRepo, phases.Onboarding)
	f.reqRepo.snapshot = []*repository.RequirementWithStatus{reqWithStatus("req-1", true, false)}

	result, err := f.svc.MaybeAdvance(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ready || result.Advanced {
		t.Errorf("expected neither ready nor advanced, got %+v", result)
	}
	if f.projRepo.advanceCalls != 0 {
		t.Error("expected no phase write while the gate is closed")
	}
}

func TestMaybeAdvance_SingleStep(t *testing.T) {
	f := newPhaseFixture(true)
	seedProject(f.projRepo, f.clientRepo, phases.Onboarding)
	f.reqRepo.snapshot = nil // empty phase, gate open

	result, err := f.svc.MaybeAdvance(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Advanced || !result.Ready {
		t.Fatalf("expected an executed transition, got %+v", result)
	}
	if result.FromPhase != phases.Onboarding {
		t.Errorf("expected fromPhase %s, got %s", phases.Onboarding, result.FromPhase)
	}
	if result.ToPhase == nil || *result.ToPhase != phases.Ideation {
		t.Errorf("expected single step to %s, got %v", phases.Ideation, result.ToPhase)
	}
	if got := f.projRepo.projects["proj-1"].CurrentPhaseKey; got != phases.Ideation {
		t.Errorf("expected project stored at %s, got %s", phases.Ideation, got)
	}
	if !f.activity.hasAction(ActionPhaseAdvanced) {
		t.Error("expected a phase_advanced audit event")
	}
	if len(f.notifRepo.notifications) == 0 {
		t.Error("expected the owning client to be notified")
	}
}

func TestMaybeAdvance_AutoAdvanceOffReportsReady(t *testing.T) {
	f := newPhaseFixture(false)
	seedProject(f.projRepo, f.clientRepo, phases.Onboarding)
	f.reqRepo.snapshot = nil

	result, err := f.svc.MaybeAdvance(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Ready {
		t.Error("expected readiness reported with auto-advance off")
	}
	if result.Advanced {
		t.Error("expected no transition with auto-advance off")
	}
	if f.projRepo.advanceCalls != 0 {
		t.Error("expected no phase write with auto-advance off")
	}
}

func TestMaybeAdvance_TerminalPhaseNoOp(t *testing.T) {
	f := newPhaseFixture(true)
	seedProject(f.projRepo, f.clientRepo, phases.Launch)
	f.reqRepo.snapshot = nil

	result, err := f.svc.MaybeAdvance(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ready || result.Advanced {
		t.Errorf("expected terminal phase to stay put, got %+v", result)
	}
	if f.projRepo.advanceCalls != 0 {
		t.Error("expected no phase write at the terminal phase")
	}
}

func TestMaybeAdvance_ConcurrentWinnerNoOp(t *testing.T) {
	f := newPhaseFixture(true)
	seedProject(f.projRepo, f.clientRepo, phases.Design)
	f.reqRepo.snapshot = nil
	f.projRepo.advanceOK = false // another writer already moved the project

	result, err := f.svc.MaybeAdvance(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Ready {
		t.Error("expected readiness even when losing the race")
	}
	if result.Advanced {
		t.Error("expected the losing caller to report no transition")
	}
	if f.activity.hasAction(ActionPhaseAdvanced) {
		t.Error("expected no audit event from the losing caller")
	}
}

func TestMaybeAdvance_ProjectNotFound(t *testing.T) {
	f := newPhaseFixture(true)

	_, err := f.svc.MaybeAdvance(context.Background(), "proj-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAdvanceManually_AdminOnly(t *testing.T) {
	f := newPhaseFixture(false)
	seedProject(f.projRepo, f.clientRepo, phases.Onboarding)
	f.reqRepo.snapshot = nil

	if _, err := f.svc.AdvanceManually(context.Background(), "proj-1", "user-client", types.RoleClient); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for client, got %v", err)
	}

	result, err := f.svc.AdvanceManually(context.Background(), "proj-1", "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Advanced {
		t.Error("expected manual advance to execute even with auto-advance off")
	}
}

func TestAdvanceManually_GateStillBinds(t *testing.T) {
	f := newPhaseFixture(true)
	seedProject(f.projRepo, f.clientRepo, phases.Review)
	f.reqRepo.snapshot = []*repository.RequirementWithStatus{reqWithStatus("req-1", true, false)}

	result, err := f.svc.AdvanceManually(context.Background(), "proj-1", "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ready || result.Advanced {
		t.Error("expected manual advance to honor the gate")
	}
	if f.projRepo.advanceCalls != 0 {
		t.Error("expected no phase write past a closed gate")
	}
}
