package spatial

import (
	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// BoundingBox calculates the bounding box of a set of positions.
// Returns (minLat, minLon, maxLat, maxLon).
func BoundingBox(positions []models.Position) (float64, float64, float64, float64) {
	if len(positions) == 0 {
		return 0, 0, 0, 0
	}

	minLat, maxLat := positions[0].Lat, positions[0].Lat
	minLon, maxLon := positions[0].Lon, positions[0].Lon

	for _, p := range positions[1:] {
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
		if p.Lon < minLon {
			minLon = p.Lon
		}
		if p.Lon > maxLon {
			maxLon = p.Lon
		}
	}

	return minLat, minLon, maxLat, maxLon
}

// PathLength calculates the total length of a path (sequence of positions) in meters
func PathLength(positions []models.Position) float64 {
	if len(positions) < 2 {
		return 0
	}

	var totalDist float64
	for i := 1; i < len(positions); i++ {
		totalDist += Distance(positions[i-1], positions[i])
	}

	return totalDist
}
