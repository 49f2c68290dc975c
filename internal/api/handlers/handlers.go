package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkline-studio/inkline-backend/internal/config"
	"github.com/inkline-studio/inkline-backend/internal/models"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	Client       *ClientHandler
	Project      *ProjectHandler
	Requirement  *RequirementHandler
	Proof        *ProofHandler
	Approval     *ApprovalHandler
	Standard     *StandardHandler
	Invoice      *InvoiceHandler
	Notification *NotificationHandler
	Activity     *ActivityHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		Client:       &ClientHandler{clientService: services.Client},
		Project:      &ProjectHandler{projectService: services.Project, storageDir: cfg.StorageDir},
		Requirement:  &RequirementHandler{requirementService: services.Requirement, phaseService: services.Phase},
		Proof:        &ProofHandler{proofService: services.Proof},
		Approval:     &ApprovalHandler{approvalService: services.Approval},
		Standard:     &StandardHandler{standardService: services.Standard},
		Invoice:      &InvoiceHandler{invoiceService: services.Invoice},
		Notification: &NotificationHandler{notificationService: services.Notification},
		Activity:     &ActivityHandler{activityService: services.Activity},
	}
}

// respondError maps service sentinel errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
