package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/draftkeeper/backend/internal/drafts"
	"github.com/draftkeeper/backend/internal/errs"
	"github.com/draftkeeper/backend/internal/models"
	syncsvc "github.com/draftkeeper/backend/internal/sync"
	"github.com/draftkeeper/backend/pkg/logger"
	"github.com/draftkeeper/backend/pkg/middleware"
)

// DriveSyncer is the slice of the sync service the draft routes need.
type DriveSyncer interface {
	SaveDraftToDrive(ctx context.Context, draftID, ownerID int64) (*models.Draft, error)
	ListDriveDrafts(ctx context.Context, ownerID int64) ([]*syncsvc.RemoteDraft, error)
}

// CreateDraftRequest is the payload for POST /drafts.
type CreateDraftRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateDraftRequest carries a partial update. Absent fields keep their
// stored values.
type UpdateDraftRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// DraftsHandler holds dependencies
type DraftsHandler struct {
	repo   drafts.Repository
	syncer DriveSyncer
}

func NewDraftsHandler(repo drafts.Repository, syncer DriveSyncer) *DraftsHandler {
	return &DraftsHandler{repo: repo, syncer: syncer}
}

// Register routes under /drafts
func (h *DraftsHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/drafts")
	d.GET("", h.List)
	d.POST("", h.Create)
	d.GET("/google-drive", h.ListFromDrive)
	d.GET("/:id", h.Get)
	d.PUT("/:id", h.Update)
	d.DELETE("/:id", h.Delete)
	d.POST("/:id/save-to-drive", h.SaveToDrive)
}

// requireUser rejects callers whose profile has not been persisted yet. Draft
// rows need a local owner id, so an ephemeral identity cannot touch them.
func requireUser(c *gin.Context) (*models.User, bool) {
	ident, ok := middleware.Identity(c)
	if !ok || !ident.Persisted() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User profile not synchronized"})
		return nil, false
	}
	return ident.User, true
}

func parseDraftID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft ID"})
		return 0, false
	}
	return id, true
}

func writeDraftError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
	case errors.Is(err, errs.ErrPartialSync):
		logger.Errorf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Draft was uploaded but could not be marked as synced"})
	default:
		logger.Errorf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// List returns the caller's drafts, most recently updated first.
func (h *DraftsHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context(), user.ID)
	if err != nil {
		writeDraftError(c, err, "Failed to fetch drafts")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DraftsHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateDraftRequest
	// a missing body is an empty draft, not a client error
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := h.repo.Create(c.Request.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		writeDraftError(c, err, "Failed to create draft")
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *DraftsHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseDraftID(c)
	if !ok {
		return
	}
	draft, err := h.repo.Get(c.Request.Context(), id, user.ID)
	if err != nil {
		writeDraftError(c, err, "Failed to fetch draft")
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DraftsHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseDraftID(c)
	if !ok {
		return
	}
	var req UpdateDraftRequest
	// a missing body means "no fields provided": the update still runs so
	// updatedAt advances
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := h.repo.Update(c.Request.Context(), id, user.ID, drafts.Update{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeDraftError(c, err, "Failed to update draft")
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DraftsHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseDraftID(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id, user.ID); err != nil {
		writeDraftError(c, err, "Failed to delete draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft deleted successfully"})
}

// SaveToDrive uploads the draft as a Google Doc into the caller's Drive
// folder and records the resulting file id locally.
func (h *DraftsHandler) SaveToDrive(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseDraftID(c)
	if !ok {
		return
	}
	draft, err := h.syncer.SaveDraftToDrive(c.Request.Context(), id, user.ID)
	if err != nil {
		writeDraftError(c, err, "Failed to save draft to Google Drive")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Draft saved to Google Drive",
		"draft":   draft,
	})
}

// ListFromDrive lists the documents currently in the caller's Drive folder.
func (h *DraftsHandler) ListFromDrive(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	docs, err := h.syncer.ListDriveDrafts(c.Request.Context(), user.ID)
	if err != nil {
		writeDraftError(c, err, "Failed to fetch drafts from Google Drive")
		return
	}
	c.JSON(http.StatusOK, docs)
}
