package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/inkline-studio/inkline-backend/internal/notification"
	"github.com/inkline-studio/inkline-backend/internal/repository"
)

const staleProofAge = 7 * 24 * time.Hour

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron         *cron.Cron
	notifSvc     *notification.Service
	overrideRepo repository.OverrideRepository
	proofRepo    repository.ProofRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(notifSvc *notification.Service, overrideRepo repository.OverrideRepository, proofRepo repository.ProofRepository) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		notifSvc:     notifSvc,
		overrideRepo: overrideRepo,
		proofRepo:    proofRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 9 AM - pending override digest for admins
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running pending override digest...")
		s.sendOverrideDigest()
	})

	// Run every day at 9 AM - flag proofs stuck in created state
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running stale proof check...")
		s.checkStaleProofs()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// sendOverrideDigest counts unresolved override requests and notifies admins
func (s *Scheduler) sendOverrideDigest() {
	ctx := context.Background()

	pending, err := s.overrideRepo.FindPending(ctx)
	if err != nil {
		log.Printf("[Cron] Error listing pending overrides: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	s.notifSvc.SendOverrideDigest(ctx, len(pending))
	log.Printf("[Cron] Sent override digest (%d pending)", len(pending))
}

// checkStaleProofs flags proof sessions that never left the created state
func (s *Scheduler) checkStaleProofs() {
	ctx := context.Background()

	cutoff := time.Now().Add(-staleProofAge)
	stale, err := s.proofRepo.FindStaleCreated(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Error finding stale proofs: %v", err)
		return
	}

	for _, proof := range stale {
		s.notifSvc.SendProofStale(ctx, proof.ID, proof.ProjectID)
		log.Printf("[Cron] Flagged stale proof %s (created %s)", proof.ID, proof.CreatedAt.Format(time.RFC3339))
	}
}

// ManualTrigger allows manual triggering of scheduled checks (for testing)
func (s *Scheduler) ManualTrigger(checkType string) {
	switch checkType {
	case "override_digest":
		s.sendOverrideDigest()
	case "stale_proofs":
		s.checkStaleProofs()
	case "all":
		s.sendOverrideDigest()
		s.checkStaleProofs()
	}
}
