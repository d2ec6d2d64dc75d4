package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

func TestPartitionSpatial(t *testing.T) {
	cell, err := PartitionSpatial(models.Position{Lat: 5.5, Lon: 3.2}, 1.0)
	require.NoError(t, err)
	assert.Equal(t, models.SpatialPartition{CellX: 3, CellY: 5}, cell)

	// Negative coordinates floor downward
	cell, err = PartitionSpatial(models.Position{Lat: -0.5, Lon: -3.2}, 1.0)
	require.NoError(t, err)
	assert.Equal(t, models.SpatialPartition{CellX: -4, CellY: -1}, cell)
}

func TestPartitionSpatialInvalidResolution(t *testing.T) {
	_, err := PartitionSpatial(models.Position{Lat: 1, Lon: 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = PartitionSpatial(models.Position{Lat: 1, Lon: 1}, -0.5)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestPartitionSpatialRoundTrip(t *testing.T) {
	deltas := []float64{0.001, 0.05, 1.0, 2.5}
	positions := []models.Position{
		{Lat: 0, Lon: 0},
		{Lat: 59.33, Lon: 18.07},
		{Lat: -33.86, Lon: 151.21},
		{Lat: 89.9, Lon: -179.9},
		{Lat: -0.0001, Lon: 0.0001},
	}

	for _, delta := range deltas {
		for _, p := range positions {
			cell, err := PartitionSpatial(p, delta)
			require.NoError(t, err)

			corner := UnpartitionSpatial(cell, delta)
			again, err := PartitionSpatial(corner, delta)
			require.NoError(t, err)

			assert.Equal(t, cell, again, "round trip failed for %+v at delta %g", p, delta)
		}
	}
}

func TestUnpartitionSpatialIsLowerLeftCorner(t *testing.T) {
	p := UnpartitionSpatial(models.SpatialPartition{CellX: 3, CellY: -2}, 0.5)
	assert.Equal(t, models.Position{Lat: -1.0, Lon: 1.5}, p)
}

func TestPartitionTime(t *testing.T) {
	bucket, err := PartitionTime(125, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(120), bucket)

	// Exact bucket boundary
	bucket, err = PartitionTime(120, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(120), bucket)

	// Pre-epoch timestamps floor downward, not toward zero
	bucket, err = PartitionTime(-1, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(-60), bucket)

	_, err = PartitionTime(100, 0)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestInBox(t *testing.T) {
	c1 := models.Position{Lat: 0, Lon: 0}
	c2 := models.Position{Lat: 10, Lon: 10}

	assert.True(t, InBox(models.Position{Lat: 5, Lon: 5}, c1, c2))
	assert.False(t, InBox(models.Position{Lat: 15, Lon: 15}, c1, c2))

	// Closed rectangle: boundary is inside
	assert.True(t, InBox(models.Position{Lat: 0, Lon: 10}, c1, c2))

	// Corners may be given in either order
	assert.True(t, InBox(models.Position{Lat: 5, Lon: 5}, c2, c1))
	assert.True(t, InBox(models.Position{Lat: 5, Lon: 5},
		models.Position{Lat: 10, Lon: 0}, models.Position{Lat: 0, Lon: 10}))
}
