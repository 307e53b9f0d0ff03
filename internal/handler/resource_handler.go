package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/internal/notify"
	"studyhub/internal/repository"
)

// ResourceHandler records shared study material. File bytes are stored
// elsewhere; this service keeps the metadata and announces the share.
type ResourceHandler struct {
	resources *repository.ResourceRepository
	groups    *repository.GroupRepository
	notifier  *notify.Notifier
	logger    *zap.Logger
}

func NewResourceHandler(
	resources *repository.ResourceRepository,
	groups *repository.GroupRepository,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *ResourceHandler {
	return &ResourceHandler{resources: resources, groups: groups, notifier: notifier, logger: logger}
}

type shareResourceRequest struct {
	GroupID   int    `json:"group_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	PathOrURL string `json:"path_or_url" binding:"required"`
}

func (h *ResourceHandler) ShareURL(c *gin.Context) {
	h.share(c, model.ResourceTypeURL)
}

func (h *ResourceHandler) ShareFile(c *gin.Context) {
	h.share(c, model.ResourceTypeFile)
}

func (h *ResourceHandler) share(c *gin.Context, resourceType string) {
	var req shareResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("user_id")
	isMember, err := h.groups.IsMember(c.Request.Context(), req.GroupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return
	}

	res := &model.Resource{
		GroupID:    req.GroupID,
		UploadedBy: userID,
		Title:      req.Title,
		Type:       resourceType,
		PathOrURL:  req.PathOrURL,
		UploadedAt: time.Now(),
	}

	id, err := h.resources.Insert(c.Request.Context(), res)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record resource"})
		return
	}
	res.ID = id

	h.notifier.Publish(notify.NewResourceShared(time.Now(), res.GroupID, res.Title, res.Type))

	c.JSON(http.StatusCreated, gin.H{"resource": res})
}

func (h *ResourceHandler) ListByGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Query("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group_id"})
		return
	}

	resources, err := h.resources.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}
