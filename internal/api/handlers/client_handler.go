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
// Client Handler
// ============================================

type ClientHandler struct {
	clientService service.ClientService
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := &repository.Client{
		UserID:       req.UserID,
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	}
	if err := h.clientService.Create(c.Request.Context(), client, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// GetMine returns the client record linked to the authenticated user.
func (h *ClientHandler) GetMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context(), middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := &repository.Client{
		ID:           c.Param("id"),
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	}
	if err := h.clientService.Update(c.Request.Context(), client, userID, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}
