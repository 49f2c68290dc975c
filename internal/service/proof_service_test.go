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

type proofFixture struct {
	proofRepo    *mockProofRepository
	overrideRepo *mockOverrideRepository
	projRepo     *mockProjectRepository
	clientRepo   *mockClientRepository
	notifRepo    *mockNotificationRepository
	activity     *mockActivityRepository
	svc          ProofService
}

func newProofFixture() *proofFixture {
	f := &proofFixture{
		proofRepo:  newMockProofRepository(),
		projRepo:   newMockProjectRepository(),
		clientRepo: newMockClientRepository(),
		notifRepo:  newMockNotificationRepository(),
		activity:   newMockActivityRepository(),
	}
	f.overrideRepo = newMockOverrideRepository(f.proofRepo)

	userRepo := newMockUserRepository()
	userRepo.users["user-admin"] = &repository.User{
		ID: "user-admin", Email: "nina@inkline.example", Name: "Nina Okafor", Role: types.RoleAdmin,
	}
	notifSvc := notification.NewService(f.notifRepo, userRepo)

	activitySvc := NewActivityService(f.activity)
	standardSvc := NewStandardService(newMockStandardRepository(), nil)
	validationSvc := NewValidationService(newMockFileRepository(), f.proofRepo, standardSvc, newMockStore())
	f.svc = NewProofService(f.proofRepo, f.overrideRepo, f.projRepo, f.clientRepo, validationSvc, activitySvc, notifSvc)
	return f
}

func (f *proofFixture) seedProof(status string) *repository.ProofSession {
	seedProject(f.projRepo, f.clientRepo, phases.Review)
	proof := &repository.ProofSession{
		ID:        "proof-1",
		ProjectID: "proj-1",
		PhaseKey:  phases.Review,
		Services:  []string{"PRINT"},
		Status:    status,
		CreatedBy: strPtr("user-client"),
	}
	f.proofRepo.proofs[proof.ID] = proof
	return proof
}

func TestCreateProof_Defaults(t *testing.T) {
	f := newProofFixture()
	seedProject(f.projRepo, f.clientRepo, phases.Review)

	proof, err := f.svc.Create(context.Background(), "proj-1", phases.Review, []string{"PRINT", "WEB"}, "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proof.Status != types.ProofCreated {
		t.Errorf("expected new proof in created state, got %s", proof.Status)
	}
	if !f.activity.hasAction(ActionProofCreated) {
		t.Error("expected a proof_created audit event")
	}
}

func TestCreateProof_RequiresServices(t *testing.T) {
	f := newProofFixture()
	seedProject(f.projRepo, f.clientRepo, phases.Review)

	if _, err := f.svc.Create(context.Background(), "proj-1", phases.Review, nil, "user-admin", types.RoleAdmin); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty services, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), "proj-1", "BOGUS", []string{"PRINT"}, "user-admin", types.RoleAdmin); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown phase, got %v", err)
	}
}

func TestUpdateProof_CreatedToReady(t *testing.T) {
	f := newProofFixture()
	f.seedProof(types.ProofCreated)

	ready := types.ProofReady
	updated, err := f.svc.Update(context.Background(), "proof-1", &repository.ProofUpdate{Status: &ready}, "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != types.ProofReady {
		t.Errorf("expected ready, got %s", updated.Status)
	}
}

func TestUpdateProof_ForwardOnlyStatus(t *testing.T) {
	f := newProofFixture()

	cases := []struct {
		name    string
		current string
		target  string
	}{
		{"ready back to created", types.ProofReady, types.ProofCreated},
		{"created straight to approved", types.ProofCreated, types.ProofApproved},
		{"approved back to ready", types.ProofApproved, types.ProofReady},
		{"rejected back to ready", types.ProofRejected, types.ProofReady},
	}
	for _, tc := range cases {
		proof := f.seedProof(tc.current)
		target := tc.target
		_, err := f.svc.Update(context.Background(), proof.ID, &repository.ProofUpdate{Status: &target}, "user-admin", types.RoleAdmin)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s: expected ErrInvalidState, got %v", tc.name, err)
		}
	}
}

func TestUpdateProof_ChecklistWithoutStatus(t *testing.T) {
	f := newProofFixture()
	f.seedProof(types.ProofApproved)

	// Non-status fields stay editable whatever the session state.
	updated, err := f.svc.Update(context.Background(), "proof-1", &repository.ProofUpdate{
		ChecklistState: map[string]repository.ChecklistItemState{
			"colors-verified": {Checked: true, Note: "Checked against brand palette"},
		},
	}, "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.ChecklistState["colors-verified"].Checked {
		t.Error("expected checklist item replaced")
	}
}

func TestCurrentProof_NoneActive(t *testing.T) {
	f := newProofFixture()
	seedProject(f.projRepo, f.clientRepo, phases.Review)

	_, err := f.svc.Current(context.Background(), "proj-1", "user-admin", types.RoleAdmin)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound with no sessions, got %v", err)
	}
}

func TestProofAccess_ForeignClientForbidden(t *testing.T) {
	f := newProofFixture()
	f.seedProof(types.ProofCreated)

	_, err := f.svc.Get(context.Background(), "proof-1", "user-other", types.RoleClient)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestRequestOverride_AdminAutoApproved(t *testing.T) {
	f := newProofFixture()
	proof := f.seedProof(types.ProofCreated)

	override, err := f.svc.RequestOverride(context.Background(), proof.ID, "low-res-accepted", "Client signed off on web-only use", "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if override.Status != types.OverrideApproved {
		t.Errorf("expected admin request auto-approved, got %s", override.Status)
	}

	item := f.proofRepo.proofs[proof.ID].ChecklistState["low-res-accepted"]
	if !item.Checked {
		t.Error("expected approval to force the checklist item checked")
	}
	if item.Note != "Override approved: Client signed off on web-only use" {
		t.Errorf("unexpected override note %q", item.Note)
	}
	if !f.activity.hasAction(ActionOverrideApproved) {
		t.Error("expected an override_approved audit event")
	}
}

func TestRequestOverride_ClientStaysPending(t *testing.T) {
	f := newProofFixture()
	proof := f.seedProof(types.ProofCreated)

	override, err := f.svc.RequestOverride(context.Background(), proof.ID, "bleed-waived", "Digital-only deliverable", "user-client", types.RoleClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if override.Status != types.OverridePending {
		t.Errorf("expected client request pending, got %s", override.Status)
	}
	if _, ok := f.proofRepo.proofs[proof.ID].ChecklistState["bleed-waived"]; ok {
		t.Error("expected checklist untouched while pending")
	}
	// Admins get notified of the pending request.
	if len(f.notifRepo.notifications) == 0 {
		t.Error("expected an admin notification for the pending override")
	}
}

func TestRequestOverride_RequiresReason(t *testing.T) {
	f := newProofFixture()
	proof := f.seedProof(types.ProofCreated)

	if _, err := f.svc.RequestOverride(context.Background(), proof.ID, "item-1", "", "user-admin", types.RoleAdmin); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty reason, got %v", err)
	}
}

func TestReviewOverride_ApproveForcesChecklist(t *testing.T) {
	f := newProofFixture()
	proof := f.seedProof(types.ProofCreated)

	override, err := f.svc.RequestOverride(context.Background(), proof.ID, "dpi-waived", "Approved at 150 DPI for banners", "user-client", types.RoleClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := f.svc.ReviewOverride(context.Background(), override.ID, true, "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != types.OverrideApproved {
		t.Errorf("expected approved, got %s", resolved.Status)
	}
	if !f.proofRepo.proofs[proof.ID].ChecklistState["dpi-waived"].Checked {
		t.Error("expected checklist item forced checked on approval")
	}
}

func TestReviewOverride_RejectLeavesChecklist(t *testing.T) {
	f := newProofFixture()
	proof := f.seedProof(types.ProofCreated)

	override, _ := f.svc.RequestOverride(context.Background(), proof.ID, "size-waived", "Oversize asset", "user-client", types.RoleClient)

	resolved, err := f.svc.ReviewOverride(context.Background(), override.ID, false, "user-admin", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != types.OverrideRejected {
		t.Errorf("expected rejected, got %s", resolved.Status)
	}
	if _, ok := f.proofRepo.proofs[proof.ID].ChecklistState["size-waived"]; ok {
		t.Error("expected checklist untouched on rejection")
	}
}

func TestReviewOverride_AdminOnly(t *testing.T) {
	f := newProofFixture()
	proof := f.seedProof(types.ProofCreated)
	override, _ := f.svc.RequestOverride(context.Background(), proof.ID, "item", "reason", "user-client", types.RoleClient)

	if _, err := f.svc.ReviewOverride(context.Background(), override.ID, true, "user-client", types.RoleClient); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestReviewOverride_AlreadyResolved(t *testing.T) {
	f := newProofFixture()
	proof := f.seedProof(types.ProofCreated)
	override, _ := f.svc.RequestOverride(context.Background(), proof.ID, "item", "reason", "user-client", types.RoleClient)

	if _, err := f.svc.ReviewOverride(context.Background(), override.ID, true, "user-admin", types.RoleAdmin); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if _, err := f.svc.ReviewOverride(context.Background(), override.ID, false, "user-admin", types.RoleAdmin); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on second review, got %v", err)
	}
}

func TestListPendingOverrides_AdminOnly(t *testing.T) {
	f := newProofFixture()

	if _, err := f.svc.ListPendingOverrides(context.Background(), types.RoleClient); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
