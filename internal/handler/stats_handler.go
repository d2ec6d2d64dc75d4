package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/cotraj-backend-go/internal/config"
	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/service"
	"github.com/jengzang/cotraj-backend-go/pkg/response"
)

// StatsHandler handles HTTP requests for pattern extraction and statistics
type StatsHandler struct {
	service *service.StatsService
	cfg     *config.Config
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *service.StatsService, cfg *config.Config) *StatsHandler {
	return &StatsHandler{service: service, cfg: cfg}
}

// GetJumpchain handles GET /api/v1/trajectories/:id/jumpchain
func (h *StatsHandler) GetJumpchain(c *gin.Context) {
	id, ok := trajectoryID(c)
	if !ok {
		return
	}

	tau := h.cfg.DefaultTimeResolution
	if v := c.Query("tau"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			response.BadRequest(c, "Invalid tau parameter", err)
			return
		}
		tau = n
	}

	delta := h.cfg.DefaultSpatialResolution
	if v := c.Query("delta"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			response.BadRequest(c, "Invalid delta parameter", err)
			return
		}
		delta = f
	}

	result, err := h.service.TrajectoryJumpchain(id, tau, delta)
	if err != nil {
		response.InternalError(c, "Failed to compute jump chain", err)
		return
	}

	response.Success(c, result)
}

// GetTransitionStats handles GET /api/v1/stats/transitions
func (h *StatsHandler) GetTransitionStats(c *gin.Context) {
	var filter models.TransitionStatFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	stats, total, err := h.service.GetTransitionStats(&filter)
	if err != nil {
		response.InternalError(c, "Failed to get transition statistics", err)
		return
	}

	// filter now holds the effective paging values
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       stats,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

// GetPartitionIndex handles GET /api/v1/stats/partitions
func (h *StatsHandler) GetPartitionIndex(c *gin.Context) {
	entries, err := h.service.GetPartitionIndex()
	if err != nil {
		response.InternalError(c, "Failed to get partition index", err)
		return
	}

	response.Success(c, gin.H{
		"data":  entries,
		"total": len(entries),
	})
}
