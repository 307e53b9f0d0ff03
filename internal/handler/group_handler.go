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

type GroupHandler struct {
	groups   *repository.GroupRepository
	users    *repository.UserRepository
	notifier *notify.Notifier
	logger   *zap.Logger
}

func NewGroupHandler(
	groups *repository.GroupRepository,
	users *repository.UserRepository,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *GroupHandler {
	return &GroupHandler{groups: groups, users: users, notifier: notifier, logger: logger}
}

type createGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("user_id")
	group := &model.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}

	id, err := h.groups.Insert(c.Request.Context(), group)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}
	group.ID = id

	if err := h.groups.AddMember(c.Request.Context(), id, userID, model.RoleOwner); err != nil {
		h.logger.Error("Failed to add group owner",
			zap.Int("group_id", id),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
	}

	h.notifier.Publish(notify.NewGroupCreated(time.Now(), group.ID, group.Name))

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.ListByUser(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *GroupHandler) Join(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.groups.FindByID(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	userID := c.GetInt("user_id")
	if err := h.groups.AddMember(c.Request.Context(), groupID, userID, model.RoleMember); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join group"})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		h.logger.Warn("Joined user lookup failed", zap.Int("user_id", userID), zap.Error(err))
	} else {
		h.notifier.Publish(notify.NewMemberJoined(time.Now(), groupID, userID, user.Name))
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *GroupHandler) Members(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	members, err := h.groups.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}
