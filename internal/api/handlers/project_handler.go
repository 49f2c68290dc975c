package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkline-studio/inkline-backend/internal/api/middleware"
	"github.com/inkline-studio/inkline-backend/internal/models"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/service"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	projectService service.ProjectService
	storageDir     string
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req.ClientID, req.Name, req.Description, userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := &repository.Project{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.projectService.Update(c.Request.Context(), project, userID, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Phases returns the per-phase tracking records in pipeline order.
func (h *ProjectHandler) Phases(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	phases, err := h.projectService.Phases(c.Request.Context(), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, phases)
}

// UploadFile stores a multipart upload under the project and records it.
func (h *ProjectHandler) UploadFile(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	projectID := c.Param("id")

	upload, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	// Uploads get a fresh name so a re-upload never clobbers history.
	storagePath := filepath.Join(projectID, uuid.NewString()+filepath.Ext(upload.Filename))
	if err := c.SaveUploadedFile(upload, filepath.Join(h.storageDir, storagePath)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	file := &repository.ProjectFile{
		ProjectID:   projectID,
		Filename:    upload.Filename,
		StoragePath: storagePath,
		SizeBytes:   upload.Size,
	}
	if err := h.projectService.AttachFile(c.Request.Context(), file, userID, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (h *ProjectHandler) ListFiles(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	files, err := h.projectService.ListFiles(c.Request.Context(), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

func (h *ProjectHandler) ArchiveFile(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.projectService.ArchiveFile(c.Request.Context(), c.Param("fileId"), userID, middleware.GetRole(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File archived"})
}

func (h *ProjectHandler) FileSpec(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	spec, err := h.projectService.FileSpec(c.Request.Context(), c.Param("fileId"), userID, middleware.GetRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, spec)
}
