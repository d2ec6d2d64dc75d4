package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

var (
	cellA = models.SpatialPartition{CellX: 0, CellY: 0}
	cellB = models.SpatialPartition{CellX: 1, CellY: 0}
	cellC = models.SpatialPartition{CellX: 0, CellY: 1}
)

func TestJumpchainCollapsesConsecutiveDuplicates(t *testing.T) {
	// The collapse compares against the previous original element, so a cell
	// revisited after leaving is kept.
	got := Jumpchain([]models.SpatialPartition{cellA, cellA, cellB, cellA})
	assert.Equal(t, []models.SpatialPartition{cellA, cellB, cellA}, got)
}

func TestJumpchainEdgeCases(t *testing.T) {
	assert.Empty(t, Jumpchain(nil))
	assert.Empty(t, Jumpchain([]models.SpatialPartition{}))
	assert.Equal(t, []models.SpatialPartition{cellA}, Jumpchain([]models.SpatialPartition{cellA}))
	assert.Equal(t, []models.SpatialPartition{cellA}, Jumpchain([]models.SpatialPartition{cellA, cellA, cellA}))
}

func TestJumpchainTimesFirstArrivalRule(t *testing.T) {
	// Stay at A across three samples, then move: the dwell is measured from
	// the first arrival at A, not the latest sample.
	partitions := []models.MeasurementPartition{
		{Time: 0, Location: cellA},
		{Time: 10, Location: cellA},
		{Time: 25, Location: cellA},
		{Time: 40, Location: cellB},
		{Time: 70, Location: cellC},
	}

	assert.Equal(t, []int64{40, 30}, JumpchainTimes(partitions))
}

func TestJumpchainTimesShortInputs(t *testing.T) {
	assert.Empty(t, JumpchainTimes(nil))
	assert.Empty(t, JumpchainTimes([]models.MeasurementPartition{{Time: 0, Location: cellA}}))

	// No moves at all
	assert.Empty(t, JumpchainTimes([]models.MeasurementPartition{
		{Time: 0, Location: cellA},
		{Time: 50, Location: cellA},
	}))
}

func TestTransitionsAgreeWithJumpchainTimes(t *testing.T) {
	partitions := []models.MeasurementPartition{
		{Time: 0, Location: cellA},
		{Time: 5, Location: cellA},
		{Time: 20, Location: cellB},
		{Time: 30, Location: cellB},
		{Time: 45, Location: cellA},
		{Time: 60, Location: cellC},
	}

	times := JumpchainTimes(partitions)
	transitions := Transitions(partitions)

	require.Len(t, transitions, len(times))
	for i, tr := range transitions {
		assert.Equal(t, times[i], tr.Dwell, "dwell mismatch at index %d", i)
	}

	assert.Equal(t, []models.Transition{
		{From: cellA, To: cellB, Dwell: 20},
		{From: cellB, To: cellA, Dwell: 25},
		{From: cellA, To: cellC, Dwell: 15},
	}, transitions)
}

func TestScenarioTwoCellMove(t *testing.T) {
	// Trajectory id=1 with fixes (t=0,(0,0)), (t=10,(0,0)), (t=20,(1,1))
	// at tau=1, delta=1: two cells, one move, dwell 20.
	partitions := []models.MeasurementPartition{
		{Time: 0, Location: cellA},
		{Time: 10, Location: cellA},
		{Time: 20, Location: models.SpatialPartition{CellX: 1, CellY: 1}},
	}

	assert.Equal(t, []models.SpatialPartition{
		cellA,
		{CellX: 1, CellY: 1},
	}, Jumpchain(Locations(models.TrajectoryPartition{ID: 1, Partitions: partitions})))

	assert.Equal(t, []int64{20}, JumpchainTimes(partitions))

	assert.Equal(t, []models.Transition{
		{From: cellA, To: models.SpatialPartition{CellX: 1, CellY: 1}, Dwell: 20},
	}, Transitions(partitions))
}
