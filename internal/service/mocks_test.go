package service

import (
	"context"
	"time"

	"github.com/inkline-studio/inkline-backend/internal/repository"
)

// ============================================
// Mock Repositories
// ============================================

func strPtr(s string) *string { return &s }

// mockProjectRepository implements repository.ProjectRepository for testing.
type mockProjectRepository struct {
	projects     map[string]*repository.Project
	findErr      error
	advanceErr   error
	advanceOK    bool
	advanceCalls int
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{
		projects:  make(map[string]*repository.Project),
		advanceOK: true,
	}
}

func (m *mockProjectRepository) Create(ctx context.Context, project *repository.Project) error {
	if project.ID == "" {
		project.ID = "proj-new"
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) FindByID(ctx context.Context, id string) (*repository.Project, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.projects[id], nil
}

func (m *mockProjectRepository) FindByClientID(ctx context.Context, clientID string) ([]*repository.Project, error) {
	var out []*repository.Project
	for _, p := range m.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjectRepository) List(ctx context.Context) ([]*repository.Project, error) {
	var out []*repository.Project
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProjectRepository) Update(ctx context.Context, project *repository.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) FindPhases(ctx context.Context, projectID string) ([]*repository.ProjectPhase, error) {
	return nil, nil
}

func (m *mockProjectRepository) AdvancePhase(ctx context.Context, projectID, fromKey, toKey string, toIndex int) (bool, error) {
	m.advanceCalls++
	if m.advanceErr != nil {
		return false, m.advanceErr
	}
	if !m.advanceOK {
		return false, nil
	}
	if p, ok := m.projects[projectID]; ok {
		p.CurrentPhaseKey = toKey
		p.CurrentPhaseIndex = toIndex
	}
	return true, nil
}

// mockClientRepository implements repository.ClientRepository for testing.
type mockClientRepository struct {
	clients map[string]*repository.Client
}

func newMockClientRepository() *mockClientRepository {
	return &mockClientRepository{clients: make(map[string]*repository.Client)}
}

func (m *mockClientRepository) Create(ctx context.Context, client *repository.Client) error {
	if client.ID == "" {
		client.ID = "client-new"
	}
	m.clients[client.ID] = client
	return nil
}

func (m *mockClientRepository) FindByID(ctx context.Context, id string) (*repository.Client, error) {
	return m.clients[id], nil
}

func (m *mockClientRepository) FindByUserID(ctx context.Context, userID string) (*repository.Client, error) {
	for _, c := range m.clients {
		if c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClientRepository) List(ctx context.Context) ([]*repository.Client, error) {
	var out []*repository.Client
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockClientRepository) Update(ctx context.Context, client *repository.Client) error {
	m.clients[client.ID] = client
	return nil
}

// mockRequirementRepository implements repository.RequirementRepository.
// FindWithStatuses and UpsertStatusAndFetch serve the snapshot field, which
// tests arrange to represent the gate-phase state after the write.
type mockRequirementRepository struct {
	requirements map[string]*repository.Requirement
	snapshot     []*repository.RequirementWithStatus
	upsertErr    error
	upsertCalls  int
	lastGateKey  string
}

func newMockRequirementRepository() *mockRequirementRepository {
	return &mockRequirementRepository{requirements: make(map[string]*repository.Requirement)}
}

func (m *mockRequirementRepository) Create(ctx context.Context, req *repository.Requirement) error {
	if req.ID == "" {
		req.ID = "req-new"
	}
	m.requirements[req.ID] = req
	return nil
}

func (m *mockRequirementRepository) FindByID(ctx context.Context, id string) (*repository.Requirement, error) {
	return m.requirements[id], nil
}

func (m *mockRequirementRepository) FindByPhase(ctx context.Context, phaseKey string) ([]*repository.Requirement, error) {
	var out []*repository.Requirement
	for _, r := range m.requirements {
		if r.PhaseKey == phaseKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRequirementRepository) FindByPhaseAndType(ctx context.Context, phaseKey, reqType string) ([]*repository.Requirement, error) {
	var out []*repository.Requirement
	for _, r := range m.requirements {
		if r.PhaseKey == phaseKey && r.Type == reqType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRequirementRepository) Update(ctx context.Context, req *repository.Requirement) error {
	m.requirements[req.ID] = req
	return nil
}

func (m *mockRequirementRepository) Delete(ctx context.Context, id string) error {
	delete(m.requirements, id)
	return nil
}

func (m *mockRequirementRepository) UpsertStatus(ctx context.Context, projectID, requirementID string, completed bool, actorID string) (*repository.ProjectRequirementStatus, error) {
	return &repository.ProjectRequirementStatus{
		ProjectID:     projectID,
		RequirementID: requirementID,
		Completed:     completed,
	}, nil
}

func (m *mockRequirementRepository) FindWithStatuses(ctx context.Context, projectID, phaseKey string) ([]*repository.RequirementWithStatus, error) {
	return m.snapshot, nil
}

func (m *mockRequirementRepository) UpsertStatusAndFetch(ctx context.Context, projectID, requirementID string, completed bool, actorID, gatePhaseKey string) (*repository.ProjectRequirementStatus, []*repository.RequirementWithStatus, error) {
	if m.upsertErr != nil {
		return nil, nil, m.upsertErr
	}
	m.upsertCalls++
	m.lastGateKey = gatePhaseKey
	status := &repository.ProjectRequirementStatus{
		ID:            "status-1",
		ProjectID:     projectID,
		RequirementID: requirementID,
		Completed:     completed,
	}
	if completed {
		status.CompletedBy = &actorID
	}
	return status, m.snapshot, nil
}

// mockProofRepository implements repository.ProofRepository.
type mockProofRepository struct {
	proofs      map[string]*repository.ProofSession
	stale       []*repository.ProofSession
	updateCalls int
	lastUpdate  *repository.ProofUpdate
}

func newMockProofRepository() *mockProofRepository {
	return &mockProofRepository{proofs: make(map[string]*repository.ProofSession)}
}

func (m *mockProofRepository) Create(ctx context.Context, proof *repository.ProofSession) error {
	if proof.ID == "" {
		proof.ID = "proof-new"
	}
	m.proofs[proof.ID] = proof
	return nil
}

func (m *mockProofRepository) FindByID(ctx context.Context, id string) (*repository.ProofSession, error) {
	return m.proofs[id], nil
}

func (m *mockProofRepository) FindCurrentByProject(ctx context.Context, projectID string) (*repository.ProofSession, error) {
	var latest *repository.ProofSession
	for _, p := range m.proofs {
		if p.ProjectID == projectID && (latest == nil || p.CreatedAt.After(latest.CreatedAt)) {
			latest = p
		}
	}
	return latest, nil
}

func (m *mockProofRepository) FindByProject(ctx context.Context, projectID string) ([]*repository.ProofSession, error) {
	var out []*repository.ProofSession
	for _, p := range m.proofs {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProofRepository) Update(ctx context.Context, id string, update *repository.ProofUpdate) (*repository.ProofSession, error) {
	m.updateCalls++
	m.lastUpdate = update
	proof, ok := m.proofs[id]
	if !ok {
		return nil, nil
	}
	if update.ChecklistState != nil {
		proof.ChecklistState = update.ChecklistState
	}
	if update.ValidationResults != nil {
		proof.ValidationResults = update.ValidationResults
	}
	if update.Status != nil {
		proof.Status = *update.Status
	}
	return proof, nil
}

func (m *mockProofRepository) SetChecklistItem(ctx context.Context, proofID, itemID string, state repository.ChecklistItemState) error {
	proof, ok := m.proofs[proofID]
	if !ok {
		return nil
	}
	if proof.ChecklistState == nil {
		proof.ChecklistState = map[string]repository.ChecklistItemState{}
	}
	proof.ChecklistState[itemID] = state
	return nil
}

func (m *mockProofRepository) FindStaleCreated(ctx context.Context, cutoff time.Time) ([]*repository.ProofSession, error) {
	return m.stale, nil
}

// mockOverrideRepository implements repository.OverrideRepository. Approve
// mirrors the production transaction by forcing the checklist item on the
// linked proof repo when one is attached.
type mockOverrideRepository struct {
	overrides  map[string]*repository.OverrideRequest
	proofRepo  *mockProofRepository
	resolveNil bool
}

func newMockOverrideRepository(proofRepo *mockProofRepository) *mockOverrideRepository {
	return &mockOverrideRepository{
		overrides: make(map[string]*repository.OverrideRequest),
		proofRepo: proofRepo,
	}
}

func (m *mockOverrideRepository) Create(ctx context.Context, override *repository.OverrideRequest) error {
	if override.ID == "" {
		override.ID = "override-new"
	}
	m.overrides[override.ID] = override
	return nil
}

func (m *mockOverrideRepository) FindByID(ctx context.Context, id string) (*repository.OverrideRequest, error) {
	return m.overrides[id], nil
}

func (m *mockOverrideRepository) FindByProof(ctx context.Context, proofID string) ([]*repository.OverrideRequest, error) {
	var out []*repository.OverrideRequest
	for _, o := range m.overrides {
		if o.ProofID == proofID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOverrideRepository) FindPending(ctx context.Context) ([]*repository.OverrideRequest, error) {
	var out []*repository.OverrideRequest
	for _, o := range m.overrides {
		if o.Status == "pending" {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOverrideRepository) Approve(ctx context.Context, overrideID, reviewerID string) (*repository.OverrideRequest, error) {
	if m.resolveNil {
		return nil, nil
	}
	o, ok := m.overrides[overrideID]
	if !ok {
		return nil, nil
	}
	o.Status = "approved"
	o.ReviewedBy = &reviewerID
	if m.proofRepo != nil {
		m.proofRepo.SetChecklistItem(ctx, o.ProofID, o.ItemID, repository.ChecklistItemState{
			Checked: true,
			Note:    "Override approved: " + o.Reason,
		})
	}
	return o, nil
}

func (m *mockOverrideRepository) Reject(ctx context.Context, overrideID, reviewerID string) (*repository.OverrideRequest, error) {
	if m.resolveNil {
		return nil, nil
	}
	o, ok := m.overrides[overrideID]
	if !ok {
		return nil, nil
	}
	o.Status = "rejected"
	o.ReviewedBy = &reviewerID
	return o, nil
}

// mockApprovalRepository implements repository.ApprovalRepository.
type mockApprovalRepository struct {
	approvals   map[string]*repository.ProofApproval
	finalizeErr error
	proofRepo   *mockProofRepository
}

func newMockApprovalRepository(proofRepo *mockProofRepository) *mockApprovalRepository {
	return &mockApprovalRepository{
		approvals: make(map[string]*repository.ProofApproval),
		proofRepo: proofRepo,
	}
}

func (m *mockApprovalRepository) Finalize(ctx context.Context, approval *repository.ProofApproval) error {
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	if approval.ID == "" {
		approval.ID = "approval-new"
	}
	m.approvals[approval.ID] = approval
	if m.proofRepo != nil {
		if proof, ok := m.proofRepo.proofs[approval.ProofID]; ok {
			proof.Status = approval.Status
		}
	}
	return nil
}

func (m *mockApprovalRepository) FindByID(ctx context.Context, id string) (*repository.ProofApproval, error) {
	return m.approvals[id], nil
}

func (m *mockApprovalRepository) FindByProof(ctx context.Context, proofID string) ([]*repository.ProofApproval, error) {
	var out []*repository.ProofApproval
	for _, a := range m.approvals {
		if a.ProofID == proofID {
			out = append(out, a)
		}
	}
	return out, nil
}

// mockFileRepository implements repository.FileRepository.
type mockFileRepository struct {
	files map[string]*repository.ProjectFile
	specs map[string]*repository.FileTechnicalSpec
}

func newMockFileRepository() *mockFileRepository {
	return &mockFileRepository{
		files: make(map[string]*repository.ProjectFile),
		specs: make(map[string]*repository.FileTechnicalSpec),
	}
}

func (m *mockFileRepository) Create(ctx context.Context, file *repository.ProjectFile) error {
	if file.ID == "" {
		file.ID = "file-new"
	}
	m.files[file.ID] = file
	return nil
}

func (m *mockFileRepository) FindByID(ctx context.Context, id string) (*repository.ProjectFile, error) {
	return m.files[id], nil
}

func (m *mockFileRepository) FindActiveByProject(ctx context.Context, projectID string) ([]*repository.ProjectFile, error) {
	var out []*repository.ProjectFile
	for _, f := range m.files {
		if f.ProjectID == projectID && f.Status == "active" {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFileRepository) Archive(ctx context.Context, id string) error {
	if f, ok := m.files[id]; ok {
		f.Status = "archived"
	}
	return nil
}

func (m *mockFileRepository) UpsertSpec(ctx context.Context, spec *repository.FileTechnicalSpec) error {
	m.specs[spec.FileID] = spec
	return nil
}

func (m *mockFileRepository) FindSpec(ctx context.Context, fileID string) (*repository.FileTechnicalSpec, error) {
	return m.specs[fileID], nil
}

// mockStandardRepository implements repository.StandardRepository.
type mockStandardRepository struct {
	standards map[string]*repository.ValidationStandard
}

func newMockStandardRepository() *mockStandardRepository {
	return &mockStandardRepository{standards: make(map[string]*repository.ValidationStandard)}
}

func (m *mockStandardRepository) FindByCode(ctx context.Context, serviceCode string) (*repository.ValidationStandard, error) {
	return m.standards[serviceCode], nil
}

func (m *mockStandardRepository) List(ctx context.Context) ([]*repository.ValidationStandard, error) {
	var out []*repository.ValidationStandard
	for _, s := range m.standards {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStandardRepository) Upsert(ctx context.Context, standard *repository.ValidationStandard) error {
	m.standards[standard.ServiceCode] = standard
	return nil
}

// mockUserRepository implements repository.UserRepository.
type mockUserRepository struct {
	users map[string]*repository.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*repository.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *repository.User) error {
	if user.ID == "" {
		user.ID = "user-new"
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*repository.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) FindByRole(ctx context.Context, role string) ([]*repository.User, error) {
	var out []*repository.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *repository.User) error {
	m.users[user.ID] = user
	return nil
}

// mockActivityRepository implements repository.ActivityRepository and records
// every emitted audit event.
type mockActivityRepository struct {
	activities []*repository.Activity
}

func newMockActivityRepository() *mockActivityRepository {
	return &mockActivityRepository{}
}

func (m *mockActivityRepository) Create(ctx context.Context, activity *repository.Activity) error {
	m.activities = append(m.activities, activity)
	return nil
}

func (m *mockActivityRepository) FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*repository.Activity, error) {
	var out []*repository.Activity
	for _, a := range m.activities {
		if a.EntityType == entityType && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActivityRepository) FindByActor(ctx context.Context, actorID string, limit int) ([]*repository.Activity, error) {
	var out []*repository.Activity
	for _, a := range m.activities {
		if a.ActorID != nil && *a.ActorID == actorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActivityRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

func (m *mockActivityRepository) hasAction(action string) bool {
	for _, a := range m.activities {
		if a.Action == action {
			return true
		}
	}
	return false
}

// mockNotificationRepository implements repository.NotificationRepository.
type mockNotificationRepository struct {
	notifications []*repository.Notification
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{}
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *repository.Notification) error {
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepository) FindByUser(ctx context.Context, userID string, limit int) ([]*repository.Notification, error) {
	var out []*repository.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func (m *mockNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	return nil
}

// mockInvoiceRepository implements repository.InvoiceRepository.
type mockInvoiceRepository struct {
	invoices      map[string]*repository.Invoice
	markPaidOK    bool
	allPaidResult bool
}

func newMockInvoiceRepository() *mockInvoiceRepository {
	return &mockInvoiceRepository{
		invoices:   make(map[string]*repository.Invoice),
		markPaidOK: true,
	}
}

func (m *mockInvoiceRepository) Create(ctx context.Context, invoice *repository.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = "invoice-new"
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockInvoiceRepository) FindByID(ctx context.Context, id string) (*repository.Invoice, error) {
	return m.invoices[id], nil
}

func (m *mockInvoiceRepository) FindByProject(ctx context.Context, projectID string) ([]*repository.Invoice, error) {
	var out []*repository.Invoice
	for _, inv := range m.invoices {
		if inv.ProjectID == projectID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockInvoiceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if inv, ok := m.invoices[id]; ok {
		inv.Status = status
	}
	return nil
}

func (m *mockInvoiceRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	if !m.markPaidOK {
		return false, nil
	}
	if inv, ok := m.invoices[id]; ok {
		inv.Status = "paid"
		now := time.Now()
		inv.PaidAt = &now
	}
	return true, nil
}

func (m *mockInvoiceRepository) AllPaid(ctx context.Context, projectID string) (bool, error) {
	return m.allPaidResult, nil
}

// mockStore implements storage.Store over an in-memory map.
type mockStore struct {
	blobs map[string][]byte
}

func newMockStore() *mockStore {
	return &mockStore{blobs: make(map[string][]byte)}
}

func (m *mockStore) Read(storagePath string) ([]byte, error) {
	if data, ok := m.blobs[storagePath]; ok {
		return data, nil
	}
	return nil, &notFoundErr{storagePath}
}

func (m *mockStore) Size(storagePath string) (int64, error) {
	if data, ok := m.blobs[storagePath]; ok {
		return int64(len(data)), nil
	}
	return 0, &notFoundErr{storagePath}
}

type notFoundErr struct{ path string }

func (e *notFoundErr) Error() string { return "no such blob: " + e.path }
