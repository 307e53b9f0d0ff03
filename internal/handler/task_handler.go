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

type TaskHandler struct {
	tasks    *repository.TaskRepository
	groups   *repository.GroupRepository
	notifier *notify.Notifier
	logger   *zap.Logger
}

func NewTaskHandler(
	tasks *repository.TaskRepository,
	groups *repository.GroupRepository,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{tasks: tasks, groups: groups, notifier: notifier, logger: logger}
}

type createTaskRequest struct {
	GroupID     int        `json:"group_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Reminders   string     `json:"reminders"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("user_id")
	if ok := h.requireMembership(c, req.GroupID, userID); !ok {
		return
	}

	task := &model.Task{
		GroupID:     req.GroupID,
		CreatedBy:   userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusOpen,
		Deadline:    req.Deadline,
		Reminders:   req.Reminders,
		CreatedAt:   time.Now(),
	}

	id, err := h.tasks.Insert(c.Request.Context(), task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}
	task.ID = id

	// Immediate, non-deduped event; scanner events come later.
	h.notifier.Publish(notify.NewTaskCreated(time.Now(), task.GroupID, task.ID, task.Title))

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *TaskHandler) ListByGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Query("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group_id"})
		return
	}

	if ok := h.requireMembership(c, groupID, c.GetInt("user_id")); !ok {
		return
	}

	tasks, err := h.tasks.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case model.TaskStatusOpen, model.TaskStatusInProgress, model.TaskStatusDone:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	task, err := h.tasks.FindByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if ok := h.requireMembership(c, task.GroupID, c.GetInt("user_id")); !ok {
		return
	}

	if err := h.tasks.UpdateStatus(c.Request.Context(), taskID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}
	task.Status = req.Status

	h.notifier.Publish(notify.TaskStatusChanged(time.Now(), task.GroupID, task.ID, task.Title, req.Status))

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := h.tasks.FindByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if ok := h.requireMembership(c, task.GroupID, c.GetInt("user_id")); !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireMembership writes the error response itself and reports
// whether the request may proceed.
func (h *TaskHandler) requireMembership(c *gin.Context, groupID, userID int) bool {
	isMember, err := h.groups.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		h.logger.Error("Membership check failed",
			zap.Int("group_id", groupID),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return false
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return false
	}
	return true
}
