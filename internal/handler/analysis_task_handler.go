package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/service"
	"github.com/jengzang/cotraj-backend-go/pkg/response"
)

// AnalysisTaskHandler handles HTTP requests for analysis tasks
type AnalysisTaskHandler struct {
	service *service.AnalysisTaskService
}

// NewAnalysisTaskHandler creates a new analysis task handler
func NewAnalysisTaskHandler(service *service.AnalysisTaskService) *AnalysisTaskHandler {
	return &AnalysisTaskHandler{service: service}
}

// createTaskRequest is the POST body for launching an analysis
type createTaskRequest struct {
	SkillName string                 `json:"skillName" binding:"required"`
	Params    *models.AnalysisParams `json:"params"`
}

// CreateTask handles POST /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid task payload", err)
		return
	}

	task, err := h.service.CreateTask(req.SkillName, req.Params)
	if err != nil {
		response.BadRequest(c, "Failed to create task", err)
		return
	}

	response.Success(c, task)
}

// GetTask handles GET /api/v1/analysis/tasks/:id
func (h *AnalysisTaskHandler) GetTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID", err)
		return
	}

	task, err := h.service.GetTask(id)
	if err != nil {
		response.InternalError(c, "Failed to get task", err)
		return
	}
	if task == nil {
		response.NotFound(c, "Task not found")
		return
	}

	response.Success(c, task)
}

// ListTasks handles GET /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) ListTasks(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tasks, err := h.service.ListTasks(status, limit, offset)
	if err != nil {
		response.InternalError(c, "Failed to list tasks", err)
		return
	}

	response.Success(c, gin.H{
		"data":  tasks,
		"total": len(tasks),
	})
}
