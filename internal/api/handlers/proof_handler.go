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
// Proof Handler
// ============================================

type ProofHandler struct {
	proofService service.ProofService
}

func (h *ProofHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proof, err := h.proofService.Create(
		c.Request.Context(), c.Param("id"), req.PhaseKey, req.Services, userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proof)
}

func (h *ProofHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	proof, err := h.proofService.Get(c.Request.Context(), c.Param("proofId"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proof)
}

func (h *ProofHandler) ListByProject(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	proofs, err := h.proofService.ListByProject(c.Request.Context(), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proofs)
}

// Current returns the most recent proof session for a project.
func (h *ProofHandler) Current(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	proof, err := h.proofService.Current(c.Request.Context(), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proof)
}

func (h *ProofHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := &repository.ProofUpdate{
		ChecklistState:    req.ChecklistState,
		ValidationResults: req.ValidationResults,
		Status:            req.Status,
	}
	proof, err := h.proofService.Update(c.Request.Context(), c.Param("proofId"), update, userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proof)
}

// Validate runs the validation engine over all active files and services.
func (h *ProofHandler) Validate(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	results, err := h.proofService.ValidateSession(c.Request.Context(), c.Param("proofId"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *ProofHandler) RequestOverride(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.OverrideRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	override, err := h.proofService.RequestOverride(
		c.Request.Context(), c.Param("proofId"), req.ItemID, req.Reason, userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, override)
}

func (h *ProofHandler) ReviewOverride(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.ReviewOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	override, err := h.proofService.ReviewOverride(
		c.Request.Context(), c.Param("overrideId"), req.Approve, userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, override)
}

func (h *ProofHandler) ListOverrides(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	overrides, err := h.proofService.ListOverrides(c.Request.Context(), c.Param("proofId"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overrides)
}

func (h *ProofHandler) ListPendingOverrides(c *gin.Context) {
	overrides, err := h.proofService.ListPendingOverrides(c.Request.Context(), middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overrides)
}
