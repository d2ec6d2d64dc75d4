package spatial

import (
	"errors"
	"math"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// ErrInvalidResolution is returned when a spatial or temporal resolution is <= 0
var ErrInvalidResolution = errors.New("resolution must be positive")

// PartitionSpatial maps a position onto its grid cell at resolution delta
// (cell side length in degrees). Cells are half-open:
// [cellX*delta, (cellX+1)*delta) x [cellY*delta, (cellY+1)*delta).
func PartitionSpatial(p models.Position, delta float64) (models.SpatialPartition, error) {
	if delta <= 0 {
		return models.SpatialPartition{}, ErrInvalidResolution
	}
	return models.SpatialPartition{
		CellX: int64(math.Floor(p.Lon / delta)),
		CellY: int64(math.Floor(p.Lat / delta)),
	}, nil
}

// UnpartitionSpatial reconstructs a representative position for a grid cell:
// the cell's lower-left corner. Partitioning the result at the same delta
// yields the cell back, for any delta > 0.
func UnpartitionSpatial(c models.SpatialPartition, delta float64) models.Position {
	return models.Position{
		Lat: float64(c.CellY) * delta,
		Lon: float64(c.CellX) * delta,
	}
}

// PartitionTime maps a timestamp onto its bucket start time at resolution tau
// (seconds): floor(t/tau)*tau.
func PartitionTime(t int64, tau int64) (int64, error) {
	if tau <= 0 {
		return 0, ErrInvalidResolution
	}
	bucket := t / tau
	// Go truncates toward zero; floor division for negative times
	if t%tau != 0 && t < 0 {
		bucket--
	}
	return bucket * tau, nil
}

// InBox reports whether p lies within the closed rectangle formed by the two
// corner positions. Corners may be given in any order; each axis is
// normalized independently.
func InBox(p, corner1, corner2 models.Position) bool {
	minLat := math.Min(corner1.Lat, corner2.Lat)
	maxLat := math.Max(corner1.Lat, corner2.Lat)
	minLon := math.Min(corner1.Lon, corner2.Lon)
	maxLon := math.Max(corner1.Lon, corner2.Lon)

	return p.Lat >= minLat && p.Lat <= maxLat &&
		p.Lon >= minLon && p.Lon <= maxLon
}
