package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkline-studio/inkline-backend/internal/api/middleware"
	"github.com/inkline-studio/inkline-backend/internal/service"
)

// ============================================
// Activity Handler
// ============================================

type ActivityHandler struct {
	activityService service.ActivityService
}

// ListByEntity returns the audit trail for one entity, newest first.
func (h *ActivityHandler) ListByEntity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	activities, err := h.activityService.ListByEntity(
		c.Request.Context(), c.Param("entityType"), c.Param("entityId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *ActivityHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	activities, err := h.activityService.ListByActor(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}
