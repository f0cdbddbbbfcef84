package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oscardel13/calorie-tracker/services"
)

type BackupController struct {
	Svc *services.BackupService
}

func NewBackupController(svc *services.BackupService) *BackupController {
	return &BackupController{Svc: svc}
}

// GET /backup/export downloads the caller's own data as one JSON document.
func (h *BackupController) Export(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	snap, err := h.Svc.ExportUser(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="caltrack-backup.json"`)
	c.JSON(http.StatusOK, snap)
}

// POST /backup/import restores only the caller's entry of the document.
func (h *BackupController) Import(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var snap services.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.ImportUser(c.Request.Context(), user, snap); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *BackupController) UploadToS3(c *gin.Context) {
	loc, err := h.Svc.UploadToS3(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": loc})
}
