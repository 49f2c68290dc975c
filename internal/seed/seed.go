// internal/seed/seed.go
package seed

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkline-studio/inkline-backend/internal/phases"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	existing, _ := repos.UserRepo.FindByEmail(ctx, "nina.okafor@inkline.studio")
	if existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial data...")

	// ============================================
	// USERS
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	nina := &repository.User{
		Email:    "nina.okafor@inkline.studio",
		Password: string(password),
		Name:     "Nina Okafor",
		Role:     types.RoleAdmin,
	}
	repos.UserRepo.Create(ctx, nina)

	tomas := &repository.User{
		Email:    "tomas@brightleaf.coffee",
		Password: string(password),
		Name:     "Tomas Herrera",
		Role:     types.RoleClient,
	}
	repos.UserRepo.Create(ctx, tomas)

	log.Printf("✅ Created 2 users: Nina (admin), Tomas (client)")

	// ============================================
	// CLIENT + PROJECT
	// ============================================
	brightleaf := &repository.Client{
		UserID:       &tomas.ID,
		CompanyName:  "Brightleaf Coffee Roasters",
		ContactName:  "Tomas Herrera",
		ContactEmail: "tomas@brightleaf.coffee",
	}
	repos.ClientRepo.Create(ctx, brightleaf)

	rebrand := &repository.Project{
		ClientID: brightleaf.ID,
		Name:     "Brightleaf Rebrand",
	}
	desc := "Full identity refresh: logo system, packaging, and web presence"
	rebrand.Description = &desc
	repos.ProjectRepo.Create(ctx, rebrand)

	log.Printf("✅ Created client %s with project %s", brightleaf.CompanyName, rebrand.Name)

	// ============================================
	// REQUIREMENT CATALOG (per phase)
	// ============================================
	catalog := map[string][]struct {
		reqType   string
		text      string
		mandatory bool
	}{
		phases.Onboarding: {
			{types.ReqForm, "Complete the creative brief questionnaire", true},
			{types.ReqAgreement, "Sign the engagement agreement", true},
			{types.ReqPayment, "Pay the project deposit", true},
		},
		phases.Ideation: {
			{types.ReqReview, "Review the mood boards", true},
			{types.ReqFeedback, "Provide direction feedback", true},
		},
		phases.Design: {
			{types.ReqReview, "Review first design round", true},
			{types.ReqFeedback, "Consolidate revision notes", false},
		},
		phases.Review: {
			{types.ReqApproval, "Approve the final proof", true},
		},
		phases.Production: {
			{types.ReqCheck, "Confirm production specifications", true},
			{types.ReqMonitor, "Monitor production run", false},
		},
		phases.Payment: {
			{types.ReqPayment, "Settle the final invoice", true},
		},
		phases.SignOff: {
			{types.ReqConfirm, "Confirm receipt of deliverables", true},
			{types.ReqDownload, "Download the asset package", false},
		},
		phases.Launch: {
			{types.ReqLaunch, "Confirm go-live", true},
		},
	}

	total := 0
	for _, p := range phases.All() {
		for i, entry := range catalog[p.Key] {
			repos.RequirementRepo.Create(ctx, &repository.Requirement{
				PhaseKey:    p.Key,
				Type:        entry.reqType,
				Text:        entry.text,
				IsMandatory: entry.mandatory,
				SortOrder:   i + 1,
			})
			total++
		}
	}
	log.Printf("✅ Created %d requirements across %d phases", total, len(phases.All()))

	// ============================================
	// VALIDATION STANDARDS
	// ============================================
	standards := []*repository.ValidationStandard{
		{
			ServiceCode:        "PRINT",
			AllowedFormats:     []string{"pdf", "tiff", "tif", "png"},
			MaxFileSizeMb:      250,
			MinDpi:             300,
			RequiredColorModes: []string{types.ColorCMYK},
			RequiresBleed:      true,
			MinBleedInches:     0.125,
		},
		{
			ServiceCode:        "WEB",
			AllowedFormats:     []string{"png", "jpg", "jpeg", "svg"},
			MaxFileSizeMb:      25,
			MinDpi:             72,
			RequiredColorModes: []string{types.ColorRGB},
		},
		{
			ServiceCode:        "MERCH",
			AllowedFormats:     []string{"png", "tiff", "tif"},
			MaxFileSizeMb:      100,
			MinDpi:             150,
			RequiredColorModes: []string{types.ColorCMYK, types.ColorRGB},
		},
	}
	for _, s := range standards {
		repos.StandardRepo.Upsert(ctx, s)
	}
	log.Printf("✅ Created %d validation standards", len(standards))

	log.Println("[Seed] 🌱 Done")
}
