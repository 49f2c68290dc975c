package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/socket"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// Notification types
const (
	TypeProofApproved     = "PROOF_APPROVED"
	TypeProofRejected     = "PROOF_REJECTED"
	TypePhaseAdvanced     = "PHASE_ADVANCED"
	TypeOverrideRequested = "OVERRIDE_REQUESTED"
	TypeOverrideResolved  = "OVERRIDE_RESOLVED"
	TypeOverrideDigest    = "OVERRIDE_DIGEST"
	TypeProofStale        = "PROOF_STALE"
)

// Service persists notifications and pushes them over the websocket. Every
// send is best-effort: failures are logged and swallowed so they can never
// fail the operation that triggered them.
type Service struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	broadcaster      *socket.Broadcaster
}

func NewService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

func (s *Service) send(ctx context.Context, n *repository.Notification) {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.Printf("⚠️ [Notify] Failed to persist %s for user %s: %v", n.Type, n.UserID, err)
		return
	}
	if s.broadcaster != nil {
		s.broadcaster.SendNotification(n.UserID, n)
	}
}

// sendToAdmins fans one notification out to every admin user.
func (s *Service) sendToAdmins(ctx context.Context, build func(userID string) *repository.Notification) {
	admins, err := s.userRepo.FindByRole(ctx, types.RoleAdmin)
	if err != nil {
		log.Printf("⚠️ [Notify] Failed to list admins: %v", err)
		return
	}
	for _, admin := range admins {
		s.send(ctx, build(admin.ID))
	}
}

// SendProofDecision notifies all admins of a proof approval. Rejections are
// delivered to admins as well so a re-proof can be scheduled.
func (s *Service) SendProofDecision(ctx context.Context, proofID, projectID, projectName, decision string) {
	notifType := TypeProofApproved
	title := "Proof Approved"
	message := fmt.Sprintf("Proof for %s was approved by the client", projectName)
	if decision == types.DecisionRejected {
		notifType = TypeProofRejected
		title = "Proof Rejected"
		message = fmt.Sprintf("Proof for %s was rejected by the client", projectName)
	}
	s.sendToAdmins(ctx, func(userID string) *repository.Notification {
		return &repository.Notification{
			UserID:  userID,
			Type:    notifType,
			Title:   title,
			Message: message,
			Data: map[string]interface{}{
				"proofId":   proofID,
				"projectId": projectID,
				"action":    "view_proof",
			},
		}
	})
}

// SendPhaseAdvanced notifies the owning client's user that the project moved
// to a new phase.
func (s *Service) SendPhaseAdvanced(ctx context.Context, userID, projectID, projectName, fromPhase, toPhase string) {
	if userID == "" {
		return
	}
	n := &repository.Notification{
		UserID:  userID,
		Type:    TypePhaseAdvanced,
		Title:   "Project Phase Updated",
		Message: fmt.Sprintf("%s moved from %s to %s", projectName, fromPhase, toPhase),
		Data: map[string]interface{}{
			"projectId": projectID,
			"fromPhase": fromPhase,
			"toPhase":   toPhase,
			"action":    "view_project",
		},
	}
	s.send(ctx, n)
	if s.broadcaster != nil {
		s.broadcaster.SendPhaseAdvanced(userID, n.Data)
	}
}

// SendOverrideRequested tells admins a non-admin asked for a checklist
// override.
func (s *Service) SendOverrideRequested(ctx context.Context, overrideID, proofID, itemID, reason string) {
	s.sendToAdmins(ctx, func(userID string) *repository.Notification {
		return &repository.Notification{
			UserID:  userID,
			Type:    TypeOverrideRequested,
			Title:   "Override Requested",
			Message: fmt.Sprintf("Checklist item %q needs an override review: %s", itemID, reason),
			Data: map[string]interface{}{
				"overrideId": overrideID,
				"proofId":    proofID,
				"itemId":     itemID,
				"action":     "review_override",
			},
		}
	})
}

// SendOverrideResolved tells the requester how their override came out.
func (s *Service) SendOverrideResolved(ctx context.Context, requesterID, overrideID, itemID, status string) {
	if requesterID == "" {
		return
	}
	s.send(ctx, &repository.Notification{
		UserID:  requesterID,
		Type:    TypeOverrideResolved,
		Title:   "Override " + status,
		Message: fmt.Sprintf("Your override request for item %q was %s", itemID, status),
		Data: map[string]interface{}{
			"overrideId": overrideID,
			"itemId":     itemID,
			"status":     status,
		},
	})
}

// SendOverrideDigest delivers the scheduler's pending-override summary to
// admins.
func (s *Service) SendOverrideDigest(ctx context.Context, pendingCount int) {
	if pendingCount == 0 {
		return
	}
	s.sendToAdmins(ctx, func(userID string) *repository.Notification {
		return &repository.Notification{
			UserID:  userID,
			Type:    TypeOverrideDigest,
			Title:   "Pending Overrides",
			Message: fmt.Sprintf("%d override request(s) are waiting for review", pendingCount),
			Data: map[string]interface{}{
				"pendingCount": pendingCount,
				"action":       "review_overrides",
			},
		}
	})
}

// SendProofStale flags a proof that never left the created state.
func (s *Service) SendProofStale(ctx context.Context, proofID, projectID string) {
	s.sendToAdmins(ctx, func(userID string) *repository.Notification {
		return &repository.Notification{
			UserID:  userID,
			Type:    TypeProofStale,
			Title:   "Proof Session Stalled",
			Message: "A proof session has been sitting in created state for over a week",
			Data: map[string]interface{}{
				"proofId":   proofID,
				"projectId": projectID,
				"action":    "view_proof",
			},
		}
	})
}
