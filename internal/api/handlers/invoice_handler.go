package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkline-studio/inkline-backend/internal/api/middleware"
	"github.com/inkline-studio/inkline-backend/internal/models"
	"github.com/inkline-studio/inkline-backend/internal/service"
)

// ============================================
// Invoice Handler
// ============================================

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), c.Param("id"), req.Amount, req.DueDate, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) ListByProject(c *gin.Context) {
	invoices, err := h.invoiceService.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Send(c *gin.Context) {
	if err := h.invoiceService.Send(c.Request.Context(), c.Param("invoiceId"), middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice sent"})
}

func (h *InvoiceHandler) Void(c *gin.Context) {
	if err := h.invoiceService.Void(c.Request.Context(), c.Param("invoiceId"), middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice voided"})
}

// MarkPaid settles an invoice; paying the last one completes the project's
// payment requirements.
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.MarkPaid(c.Request.Context(), c.Param("invoiceId"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}
