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

type approvalFixture struct {
	approvalRepo *mockApprovalRepository
	proofRepo    *mockProofRepository
	projRepo     *mockProjectRepository
	clientRepo   *mockClientRepository
	userRepo     *mockUserRepository
	notifRepo    *mockNotificationRepository
	activity     *mockActivityRepository
	svc          ApprovalService
}

func newApprovalFixture() *approvalFixture {
	f := &approvalFixture{
		proofRepo:  newMockProofRepository(),
		projRepo:   newMockProjectRepository(),
		clientRepo: newMockClientRepository(),
		userRepo:   newMockUserRepository(),
		notifRepo:  newMockNotificationRepository(),
		activity:   newMockActivityRepository(),
	}
	f.approvalRepo = newMockApprovalRepository(f.proofRepo)
	f.userRepo.users["user-admin"] = &repository.User{
		ID: "user-admin", Email: "nina@inkline.example", Name: "Nina Okafor", Role: types.RoleAdmin,
	}
	f.userRepo.users["user-client"] = &repository.User{
		ID: "user-client", Email: "tomas@brightleaf.example", Name: "Tomas Herrera", Role: types.RoleClient,
	}
	notifSvc := notification.NewService(f.notifRepo, f.userRepo)
	activitySvc := NewActivityService(f.activity)
	f.svc = NewApprovalService(f.approvalRepo, f.proofRepo, f.projRepo, f.clientRepo, f.userRepo, activitySvc, notifSvc, nil, nil)
	return f
}

func (f *approvalFixture) seedReadyProof() *repository.ProofSession {
	seedProject(f.projRepo, f.clientRepo, phases.SignOff)
	proof := &repository.ProofSession{
		ID:        "proof-1",
		ProjectID: "proj-1",
		PhaseKey:  phases.SignOff,
		Services:  []string{"PRINT"},
		Status:    types.ProofReady,
		CreatedBy: strPtr("user-client"),
	}
	f.proofRepo.proofs[proof.ID] = proof
	return proof
}

func TestSubmitApproval_ApprovedFinalizesSession(t *testing.T) {
	f := newApprovalFixture()
	proof := f.seedReadyProof()

	input := &ApprovalInput{
		Decision:      types.DecisionApproved,
		Notes:         "Looks great, ship it",
		SignatureData: "data:image/png;base64,c2ln",
		IPAddress:     "203.0.113.7",
		UserAgent:     "Mozilla/5.0",
	}
	approval, err := f.svc.SubmitApproval(context.Background(), proof.ID, input, "user-client", types.RoleClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approval.Status != types.DecisionApproved {
		t.Errorf("expected approved, got %s", approval.Status)
	}
	if approval.ApproverName != "Tomas Herrera" || approval.ApproverEmail != "tomas@brightleaf.example" {
		t.Errorf("expected approver identity snapshotted, got %s <%s>", approval.ApproverName, approval.ApproverEmail)
	}
	if approval.IPAddress == nil || *approval.IPAddress != "203.0.113.7" {
		t.Error("expected request provenance recorded")
	}
	if f.proofRepo.proofs[proof.ID].Status != types.ProofApproved {
		t.Errorf("expected session finalized approved, got %s", f.proofRepo.proofs[proof.ID].Status)
	}
	if !f.activity.hasAction(ActionApprovalSubmitted) {
		t.Error("expected an approval_submitted audit event")
	}
	if len(f.notifRepo.notifications) == 0 {
		t.Error("expected admins notified of the decision")
	}
}

func TestSubmitApproval_RejectedFinalizesSession(t *testing.T) {
	f := newApprovalFixture()
	proof := f.seedReadyProof()

	approval, err := f.svc.SubmitApproval(context.Background(), proof.ID,
		&ApprovalInput{Decision: types.DecisionRejected, Notes: "Colors are off"}, "user-client", types.RoleClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approval.Status != types.DecisionRejected {
		t.Errorf("expected rejected, got %s", approval.Status)
	}
	if f.proofRepo.proofs[proof.ID].Status != types.ProofRejected {
		t.Errorf("expected session finalized rejected, got %s", f.proofRepo.proofs[proof.ID].Status)
	}
	if !f.activity.hasAction(ActionApprovalRejected) {
		t.Error("expected an approval_rejected audit event")
	}
}

func TestSubmitApproval_InvalidDecision(t *testing.T) {
	f := newApprovalFixture()
	proof := f.seedReadyProof()

	_, err := f.svc.SubmitApproval(context.Background(), proof.ID,
		&ApprovalInput{Decision: "maybe"}, "user-client", types.RoleClient)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitApproval_NotReadyConflicts(t *testing.T) {
	f := newApprovalFixture()
	proof := f.seedReadyProof()
	proof.Status = types.ProofCreated
	f.approvalRepo.finalizeErr = repository.ErrProofNotReady

	_, err := f.svc.SubmitApproval(context.Background(), proof.ID,
		&ApprovalInput{Decision: types.DecisionApproved}, "user-client", types.RoleClient)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSubmitApproval_SecondSubmissionLoses(t *testing.T) {
	f := newApprovalFixture()
	proof := f.seedReadyProof()

	if _, err := f.svc.SubmitApproval(context.Background(), proof.ID,
		&ApprovalInput{Decision: types.DecisionApproved}, "user-client", types.RoleClient); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	// The row lock sees a finalized session on the second attempt.
	f.approvalRepo.finalizeErr = repository.ErrProofNotReady
	_, err := f.svc.SubmitApproval(context.Background(), proof.ID,
		&ApprovalInput{Decision: types.DecisionRejected}, "user-admin", types.RoleAdmin)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected the losing submission to conflict, got %v", err)
	}
	if len(f.approvalRepo.approvals) != 1 {
		t.Errorf("expected exactly one approval row, got %d", len(f.approvalRepo.approvals))
	}
}

func TestSubmitApproval_ForeignClientForbidden(t *testing.T) {
	f := newApprovalFixture()
	proof := f.seedReadyProof()
	f.userRepo.users["user-other"] = &repository.User{
		ID: "user-other", Email: "other@example.com", Name: "Someone Else", Role: types.RoleClient,
	}

	_, err := f.svc.SubmitApproval(context.Background(), proof.ID,
		&ApprovalInput{Decision: types.DecisionApproved}, "user-other", types.RoleClient)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestGetApproval_ChecksProjectAccess(t *testing.T) {
	f := newApprovalFixture()
	proof := f.seedReadyProof()
	f.approvalRepo.approvals["approval-1"] = &repository.ProofApproval{
		ID: "approval-1", ProofID: proof.ID, Status: types.DecisionApproved,
	}

	if _, err := f.svc.Get(context.Background(), "approval-1", "user-client", types.RoleClient); err != nil {
		t.Errorf("expected owning client to read the approval, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), "approval-1", "user-other", types.RoleClient); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign client, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), "approval-missing", "user-admin", types.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
