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
// Standard Handler
// ============================================

type StandardHandler struct {
	standardService service.StandardService
}

func (h *StandardHandler) List(c *gin.Context) {
	standards, err := h.standardService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, standards)
}

func (h *StandardHandler) Get(c *gin.Context) {
	standard, err := h.standardService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	if standard == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Standard not found"})
		return
	}

	c.JSON(http.StatusOK, standard)
}

func (h *StandardHandler) Upsert(c *gin.Context) {
	var req models.UpsertStandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	standard := &repository.ValidationStandard{
		ServiceCode:        c.Param("code"),
		AllowedFormats:     req.AllowedFormats,
		MaxFileSizeMb:      req.MaxFileSizeMb,
		MinDpi:             req.MinDpi,
		RequiredColorModes: req.RequiredColorModes,
		RequiresBleed:      req.RequiresBleed,
		MinBleedInches:     req.MinBleedInches,
	}
	if err := h.standardService.Upsert(c.Request.Context(), standard, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, standard)
}
