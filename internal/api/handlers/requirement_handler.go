package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkline-studio/inkline-backend/internal/api/middleware"
	"github.com/inkline-studio/inkline-backend/internal/models"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/service"
)

// ============================================
// Requirement Handler
// ============================================

type RequirementHandler struct {
	requirementService service.RequirementService
	phaseService       service.PhaseService
}

// ListForProject returns a phase's requirements with the project's statuses.
func (h *RequirementHandler) ListForProject(c *gin.Context) {
	requirements, err := h.requirementService.ListForProject(
		c.Request.Context(), c.Param("id"), c.Param("phaseKey"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requirements)
}

// Toggle flips one requirement's completion and, when the gate opens, lets
// the phase engine advance the project.
func (h *RequirementHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.ToggleRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectID := c.Param("id")
	result, err := h.requirementService.SetRequirementStatus(
		c.Request.Context(), projectID, c.Param("reqId"), req.Completed, userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var advance *service.AdvanceResult
	if result.AllMandatoryComplete {
		advance, err = h.phaseService.MaybeAdvance(c.Request.Context(), projectID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":               result.Status,
		"allMandatoryComplete": result.AllMandatoryComplete,
		"advance":              advance,
	})
}

// Advance is the manual admin trigger for the same transition the gate runs.
func (h *RequirementHandler) Advance(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	result, err := h.phaseService.AdvanceManually(c.Request.Context(), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RequirementHandler) Create(c *gin.Context) {
	var req models.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirement := &repository.Requirement{
		PhaseKey:    req.PhaseKey,
		Type:        req.Type,
		Text:        req.Text,
		IsMandatory: req.IsMandatory,
		SortOrder:   req.SortOrder,
	}
	if err := h.requirementService.CreateRequirement(c.Request.Context(), requirement, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, requirement)
}

func (h *RequirementHandler) Update(c *gin.Context) {
	var req models.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirement := &repository.Requirement{
		ID:          c.Param("reqId"),
		Type:        req.Type,
		Text:        req.Text,
		IsMandatory: req.IsMandatory,
		SortOrder:   req.SortOrder,
	}
	if err := h.requirementService.UpdateRequirement(c.Request.Context(), requirement, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requirement)
}

func (h *RequirementHandler) Delete(c *gin.Context) {
	if err := h.requirementService.DeleteRequirement(c.Request.Context(), c.Param("reqId"), middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Requirement deleted"})
}
