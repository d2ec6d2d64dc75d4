package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Distance calculates the great-circle distance between two positions in meters
func Distance(a, b models.Position) float64 {
	return HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// CellDistance calculates the great-circle distance in meters between the
// representative corners of two grid cells at resolution delta
func CellDistance(a, b models.SpatialPartition, delta float64) float64 {
	return Distance(UnpartitionSpatial(a, delta), UnpartitionSpatial(b, delta))
}
