package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/service"
	"github.com/jengzang/cotraj-backend-go/internal/trajectory"
	"github.com/jengzang/cotraj-backend-go/pkg/response"
)

// TrackHandler handles HTTP requests for trajectories
type TrackHandler struct {
	service *service.TrackService
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(service *service.TrackService) *TrackHandler {
	return &TrackHandler{service: service}
}

// ListTrajectories handles GET /api/v1/trajectories
func (h *TrackHandler) ListTrajectories(c *gin.Context) {
	summaries, err := h.service.ListTrajectories()
	if err != nil {
		response.InternalError(c, "Failed to list trajectories", err)
		return
	}

	response.Success(c, gin.H{
		"data":  summaries,
		"total": len(summaries),
	})
}

// UploadTrajectory handles POST /api/v1/trajectories
func (h *TrackHandler) UploadTrajectory(c *gin.Context) {
	var t models.Trajectory
	if err := c.ShouldBindJSON(&t); err != nil {
		response.BadRequest(c, "Invalid trajectory payload", err)
		return
	}

	normalized, err := h.service.UploadTrajectory(t)
	if err != nil {
		response.BadRequest(c, "Failed to store trajectory", err)
		return
	}

	response.Success(c, gin.H{
		"id":           normalized.ID,
		"measurements": len(normalized.Measurements),
	})
}

// GetTrajectory handles GET /api/v1/trajectories/:id
func (h *TrackHandler) GetTrajectory(c *gin.Context) {
	id, ok := trajectoryID(c)
	if !ok {
		return
	}

	var filter models.TrajectoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}
	// The box filter is active only when at least one corner is given.
	filter.HasBox = c.Query("minLat") != "" || c.Query("maxLat") != "" ||
		c.Query("minLon") != "" || c.Query("maxLon") != ""

	matched := c.Query("matched") == "true"

	t, err := h.service.GetTrajectory(id, matched, filter)
	if err != nil {
		if errors.Is(err, trajectory.ErrInvalidDate) {
			response.BadRequest(c, "Invalid date parameter", err)
			return
		}
		response.InternalError(c, "Failed to get trajectory", err)
		return
	}

	if len(t.Measurements) == 0 {
		response.NotFound(c, "Trajectory not found or empty after filtering")
		return
	}

	response.Success(c, t)
}

// SplitTrajectory handles GET /api/v1/trajectories/:id/days
func (h *TrackHandler) SplitTrajectory(c *gin.Context) {
	id, ok := trajectoryID(c)
	if !ok {
		return
	}

	days, err := h.service.SplitTrajectoryByDate(id)
	if err != nil {
		response.InternalError(c, "Failed to split trajectory", err)
		return
	}

	type daySlice struct {
		DayStart   int64             `json:"dayStart"`
		Trajectory models.Trajectory `json:"trajectory"`
	}
	result := make([]daySlice, 0, len(days))
	for _, d := range days {
		result = append(result, daySlice{DayStart: d.DayStart, Trajectory: d.Trajectory})
	}

	response.Success(c, gin.H{
		"data":  result,
		"total": len(result),
	})
}

// trajectoryID parses the :id path parameter, replying 400 on failure
func trajectoryID(c *gin.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid trajectory ID", err)
		return 0, false
	}
	return int32(id), true
}
