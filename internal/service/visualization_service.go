package service

import (
	"fmt"
	"strings"

	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
	"github.com/jengzang/cotraj-backend-go/internal/spatial"
)

// VisualizationService exports trajectories for downstream plotting tools
type VisualizationService struct {
	repo *repository.TrackRepository
}

// NewVisualizationService creates a new visualization service
func NewVisualizationService(repo *repository.TrackRepository) *VisualizationService {
	return &VisualizationService{repo: repo}
}

// Export is one trajectory prepared for visualization: ordered (lon, lat)
// pairs plus summary geometry
type Export struct {
	ID           int32        `json:"id"`
	Coordinates  [][2]float64 `json:"coordinates"` // [lon, lat]
	PathLengthM  float64      `json:"pathLengthM"`
	MinLat       float64      `json:"minLat"`
	MinLon       float64      `json:"minLon"`
	MaxLat       float64      `json:"maxLat"`
	MaxLon       float64      `json:"maxLon"`
	Measurements int          `json:"measurements"`
}

// ExportTrajectory converts a stored trajectory into visualization form
func (s *VisualizationService) ExportTrajectory(id int32, matched bool) (*Export, error) {
	t, err := s.repo.GetTrajectory(id, matched)
	if err != nil {
		return nil, err
	}

	positions := make([]models.Position, 0, len(t.Measurements))
	coordinates := make([][2]float64, 0, len(t.Measurements))
	for _, m := range t.Measurements {
		positions = append(positions, m.Position)
		coordinates = append(coordinates, [2]float64{m.Position.Lon, m.Position.Lat})
	}

	minLat, minLon, maxLat, maxLon := spatial.BoundingBox(positions)

	return &Export{
		ID:           t.ID,
		Coordinates:  coordinates,
		PathLengthM:  spatial.PathLength(positions),
		MinLat:       minLat,
		MinLon:       minLon,
		MaxLat:       maxLat,
		MaxLon:       maxLon,
		Measurements: len(t.Measurements),
	}, nil
}

// ExportTrajectoryText renders a trajectory as plain text, one "lon lat"
// pair per line, one trajectory per document
func (s *VisualizationService) ExportTrajectoryText(id int32, matched bool) (string, error) {
	export, err := s.ExportTrajectory(id, matched)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, c := range export.Coordinates {
		fmt.Fprintf(&b, "%g %g\n", c[0], c[1])
	}

	return b.String(), nil
}
