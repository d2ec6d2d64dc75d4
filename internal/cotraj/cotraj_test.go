package cotraj

import (
	"context"
	"errors"
	"sync/atomic"
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

func walk(id int32, steps ...models.MeasurementPartition) models.TrajectoryPartition {
	return models.TrajectoryPartition{ID: id, Partitions: steps}
}

func step(time int64, cell models.SpatialPartition) models.MeasurementPartition {
	return models.MeasurementPartition{Time: time, Location: cell}
}

func testPopulation() []models.TrajectoryPartition {
	return []models.TrajectoryPartition{
		walk(1, step(0, cellA), step(10, cellB), step(30, cellA)),
		walk(2, step(0, cellA), step(20, cellB)),
		walk(3, step(0, cellB), step(5, cellB), step(40, cellC)),
		walk(4, step(100, cellA), step(130, cellB), step(160, cellC)),
	}
}

func TestTransitionStatistics(t *testing.T) {
	stats := TransitionStatistics(testPopulation())

	byKey := make(map[models.TransitionKey]models.TransitionStatistic)
	for _, s := range stats {
		byKey[models.TransitionKey{From: s.From, To: s.To}] = s
	}

	ab := byKey[models.TransitionKey{From: cellA, To: cellB}]
	assert.Equal(t, int64(3), ab.Count)
	assert.InDelta(t, (10.0+20.0+30.0)/3.0, ab.MeanDwell, 1e-9)

	ba := byKey[models.TransitionKey{From: cellB, To: cellA}]
	assert.Equal(t, int64(1), ba.Count)
	assert.InDelta(t, 20.0, ba.MeanDwell, 1e-9)

	bc := byKey[models.TransitionKey{From: cellB, To: cellC}]
	assert.Equal(t, int64(2), bc.Count)
	assert.InDelta(t, (40.0+30.0)/2.0, bc.MeanDwell, 1e-9)
}

func TestTransitionStatisticsMergeIsOrderIndependent(t *testing.T) {
	population := testPopulation()
	full := TransitionStatistics(population)

	// Every 2-way split, merged in both orders, must match the full result
	for cut := 0; cut <= len(population); cut++ {
		left := NewTransitionAccumulator()
		for _, tp := range population[:cut] {
			left.AddTrajectory(tp)
		}
		right := NewTransitionAccumulator()
		for _, tp := range population[cut:] {
			right.AddTrajectory(tp)
		}

		leftFirst := NewTransitionAccumulator()
		leftFirst.Merge(left)
		leftFirst.Merge(right)
		assert.Equal(t, full, leftFirst.Finalize(), "split at %d (left merge first)", cut)

		rightFirst := NewTransitionAccumulator()
		rightFirst.Merge(right)
		rightFirst.Merge(left)
		assert.Equal(t, full, rightFirst.Finalize(), "split at %d (right merge first)", cut)
	}
}

func TestTransitionStatisticsParallelMatchesSerial(t *testing.T) {
	population := testPopulation()
	serial := TransitionStatistics(population)

	for _, workers := range []int{1, 2, 3, 8} {
		parallel, err := TransitionStatisticsParallel(context.Background(), population, workers)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers=%d", workers)
	}
}

func TestEnumeratePartitions(t *testing.T) {
	// Three distinct cells across the population, visited repeatedly
	population := []models.TrajectoryPartition{
		walk(1, step(0, cellA), step(10, cellB)),
		walk(2, step(0, cellB), step(10, cellC), step(20, cellA)),
	}

	index := EnumeratePartitions(population)
	require.Len(t, index, 3)

	// Dense bijection: ids cover [0, n) with no collisions
	seen := make(map[int64]bool)
	for _, id := range index {
		assert.GreaterOrEqual(t, id, int64(0))
		assert.Less(t, id, int64(3))
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestEnumeratePartitionsEmptyPopulation(t *testing.T) {
	assert.Empty(t, EnumeratePartitions(nil))
}

type countingMatcher struct {
	calls         atomic.Int64
	failFirstTime int64
}

func (m *countingMatcher) Match(ctx context.Context, measurements []models.Measurement) ([]models.Position, error) {
	m.calls.Add(1)
	if len(measurements) > 0 && measurements[0].Time == m.failFirstTime {
		return nil, errors.New("matcher rejected trajectory")
	}
	positions := make([]models.Position, len(measurements))
	for i, meas := range measurements {
		positions[i] = meas.Position
	}
	return positions, nil
}

func TestMapMatchAll(t *testing.T) {
	// Encode the trajectory id into the first measurement time so the
	// matcher can fail exactly one trajectory.
	population := make([]models.Trajectory, 0, 5)
	for id := int32(1); id <= 5; id++ {
		population = append(population, models.Trajectory{
			ID: id,
			Measurements: []models.Measurement{
				{Time: int64(id), Position: models.Position{Lat: float64(id), Lon: 0}},
				{Time: int64(id) + 100, Position: models.Position{Lat: float64(id), Lon: 1}},
			},
		})
	}

	matcher := &countingMatcher{failFirstTime: 3}
	matched := MapMatchAll(context.Background(), matcher, population, 2)

	require.Len(t, matched, 5)
	assert.Equal(t, int64(5), matcher.calls.Load())

	for i, m := range matched {
		assert.Equal(t, population[i].ID, m.ID)
		if m.ID == 3 {
			// One bad trajectory degrades to empty, never fails the batch
			assert.Empty(t, m.Measurements)
			continue
		}
		require.Len(t, m.Measurements, 2)
		// Synthetic times replace the originals
		assert.Equal(t, int64(0), m.Measurements[0].Time)
		assert.Equal(t, int64(1), m.Measurements[1].Time)
	}
}
