package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/internal/repository"
)

type ChatHandler struct {
	chat   *repository.ChatRepository
	groups *repository.GroupRepository
	logger *zap.Logger
}

func NewChatHandler(
	chat *repository.ChatRepository,
	groups *repository.GroupRepository,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{chat: chat, groups: groups, logger: logger}
}

type postMessageRequest struct {
	GroupID int    `json:"group_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *ChatHandler) Post(c *gin.Context) {
	var req postMessageRequest
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

	msg := &model.ChatMessage{
		GroupID:  req.GroupID,
		SenderID: userID,
		Content:  req.Content,
		SentAt:   time.Now(),
	}

	id, err := h.chat.Insert(c.Request.Context(), msg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	msg.ID = id

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *ChatHandler) ListByGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Query("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group_id"})
		return
	}

	isMember, err := h.groups.IsMember(c.Request.Context(), groupID, c.GetInt("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	messages, err := h.chat.ListByGroup(c.Request.Context(), groupID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
