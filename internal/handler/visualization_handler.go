package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/cotraj-backend-go/internal/service"
	"github.com/jengzang/cotraj-backend-go/pkg/response"
)

// VisualizationHandler handles HTTP requests for trajectory exports
type VisualizationHandler struct {
	service *service.VisualizationService
}

// NewVisualizationHandler creates a new visualization handler
func NewVisualizationHandler(service *service.VisualizationService) *VisualizationHandler {
	return &VisualizationHandler{service: service}
}

// ExportTrajectory handles GET /api/v1/trajectories/:id/export
// format=json (default) returns coordinates plus summary geometry;
// format=text returns one "lon lat" pair per line.
func (h *VisualizationHandler) ExportTrajectory(c *gin.Context) {
	id, ok := trajectoryID(c)
	if !ok {
		return
	}

	matched := c.Query("matched") == "true"

	if c.Query("format") == "text" {
		text, err := h.service.ExportTrajectoryText(id, matched)
		if err != nil {
			response.InternalError(c, "Failed to export trajectory", err)
			return
		}
		c.String(http.StatusOK, text)
		return
	}

	export, err := h.service.ExportTrajectory(id, matched)
	if err != nil {
		response.InternalError(c, "Failed to export trajectory", err)
		return
	}

	response.Success(c, export)
}
