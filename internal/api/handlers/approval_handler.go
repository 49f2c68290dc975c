package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkline-studio/inkline-backend/internal/api/middleware"
	"github.com/inkline-studio/inkline-backend/internal/models"
	"github.com/inkline-studio/inkline-backend/internal/service"
)

// ============================================
// Approval Handler
// ============================================

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

// Submit records a digital sign-off against a ready proof. Request provenance
// is captured from the connection for non-repudiation.
func (h *ApprovalHandler) Submit(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.SubmitApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &service.ApprovalInput{
		Decision:      req.Decision,
		Notes:         req.Notes,
		SignatureData: req.SignatureData,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	}
	approval, err := h.approvalService.SubmitApproval(c.Request.Context(), c.Param("proofId"), input, userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, approval)
}

func (h *ApprovalHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	approval, err := h.approvalService.Get(c.Request.Context(), c.Param("approvalId"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, approval)
}

func (h *ApprovalHandler) ListByProof(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	approvals, err := h.approvalService.ListByProof(c.Request.Context(), c.Param("proofId"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, approvals)
}
