package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/inkline-studio/inkline-backend/internal/repository"
)

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin client"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================
// Client DTOs
// ============================================

type CreateClientRequest struct {
	UserID       *string `json:"userId"`
	CompanyName  string  `json:"companyName" binding:"required"`
	ContactName  string  `json:"contactName" binding:"required"`
	ContactEmail string  `json:"contactEmail" binding:"required,email"`
	Phone        *string `json:"phone"`
}

type UpdateClientRequest struct {
	CompanyName  string  `json:"companyName" binding:"required"`
	ContactName  string  `json:"contactName" binding:"required"`
	ContactEmail string  `json:"contactEmail" binding:"required,email"`
	Phone        *string `json:"phone"`
}

// ============================================
// Project DTOs
// ============================================

type CreateProjectRequest struct {
	ClientID    string `json:"clientId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ============================================
// Requirement DTOs
// ============================================

type CreateRequirementRequest struct {
	PhaseKey    string `json:"phaseKey" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Text        string `json:"text" binding:"required"`
	IsMandatory bool   `json:"isMandatory"`
	SortOrder   int    `json:"sortOrder"`
}

type UpdateRequirementRequest struct {
	Type        string `json:"type" binding:"required"`
	Text        string `json:"text" binding:"required"`
	IsMandatory bool   `json:"isMandatory"`
	SortOrder   int    `json:"sortOrder"`
}

type ToggleRequirementRequest struct {
	Completed bool `json:"completed"`
}

// ============================================
// Proof DTOs
// ============================================

type CreateProofRequest struct {
	PhaseKey string   `json:"phaseKey" binding:"required"`
	Services []string `json:"services" binding:"required,min=1"`
}

type UpdateProofRequest struct {
	ChecklistState    map[string]repository.ChecklistItemState `json:"checklistState"`
	ValidationResults repository.ValidationResults             `json:"validationResults"`
	Status            *string                                  `json:"status" binding:"omitempty,oneof=ready"`
}

type OverrideRequestBody struct {
	ItemID string `json:"itemId" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type ReviewOverrideRequest struct {
	Approve bool `json:"approve"`
}

type SubmitApprovalRequest struct {
	Decision      string `json:"decision" binding:"required,oneof=approved rejected"`
	Notes         string `json:"notes"`
	SignatureData string `json:"signatureData"`
}

// ============================================
// Standard DTOs
// ============================================

type UpsertStandardRequest struct {
	AllowedFormats     []string `json:"allowedFormats" binding:"required,min=1"`
	MaxFileSizeMb      float64  `json:"maxFileSizeMb" binding:"required,gt=0"`
	MinDpi             float64  `json:"minDpi" binding:"gte=0"`
	RequiredColorModes []string `json:"requiredColorModes"`
	RequiresBleed      bool     `json:"requiresBleed"`
	MinBleedInches     float64  `json:"minBleedInches" binding:"gte=0"`
}

// ============================================
// Invoice DTOs
// ============================================

type CreateInvoiceRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	DueDate *time.Time      `json:"dueDate"`
}
