package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ceitask/taskboard/internal/application"
	"github.com/ceitask/taskboard/internal/domain/entity"
	"github.com/ceitask/taskboard/internal/interface/middleware"
	"github.com/ceitask/taskboard/pkg/response"
	"github.com/ceitask/taskboard/pkg/validation"
)

// TaskService is the slice of the application layer the task handler needs.
type TaskService interface {
	List(ctx context.Context, username string) ([]*entity.Task, error)
	Create(ctx context.Context, username, text string, deadline *time.Time, status string) (*entity.Task, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, username, q string, size int) ([]map[string]any, error)
}

type TaskHandler struct {
	Svc    TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

// List GET /api/todos/:username
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.Svc.List(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.Logger.WithError(err).Error("list tasks failed")
		response.Err(c, http.StatusInternalServerError, "could not load tasks", nil)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type createTaskRequest struct {
	Username string `json:"username" binding:"required"`
	Task     string `json:"task" binding:"required"`
	Deadline string `json:"deadline"`
	Status   string `json:"status" binding:"omitempty,taskstatus"`
}

// deadline layouts accepted from clients; datetime-local inputs omit seconds
// and zone.
var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseDeadline(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unrecognized deadline format")
}

// Create POST /api/todos
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", map[string]string{"deadline": err.Error()})
		return
	}

	// Create addresses the owner through the body, not the path, so the auth
	// middleware cannot compare it. When a token username is present it must
	// match the body username.
	if as := c.GetString(middleware.CtxUsernameKey); as != "" && as != req.Username {
		response.Err(c, http.StatusForbidden, "username mismatch", nil)
		return
	}

	t, err := h.Svc.Create(c.Request.Context(), req.Username, req.Task, deadline, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmptyTask):
			response.Err(c, http.StatusBadRequest, "task must not be empty", nil)
		case errors.Is(err, application.ErrInvalidStatus):
			response.Err(c, http.StatusBadRequest, "invalid status", nil)
		default:
			h.Logger.WithError(err).Error("create task failed")
			response.Err(c, http.StatusInternalServerError, "could not create task", nil)
		}
		return
	}
	c.JSON(http.StatusCreated, t)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,taskstatus"`
}

// UpdateStatus PUT /api/todos/:id
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, application.ErrInvalidStatus) {
			response.Err(c, http.StatusBadRequest, "invalid status", nil)
			return
		}
		h.Logger.WithError(err).Error("update task status failed")
		response.Err(c, http.StatusInternalServerError, "could not update task", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete DELETE /api/todos/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.Logger.WithError(err).Error("delete task failed")
		response.Err(c, http.StatusInternalServerError, "could not delete task", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Search GET /api/todos/:username/search?q=
func (h *TaskHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), c.Param("username"), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("task search failed")
		response.Err(c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	c.JSON(http.StatusOK, hits)
}
