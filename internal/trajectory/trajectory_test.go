package trajectory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

func measurement(time int64, lat, lon float64) models.Measurement {
	return models.Measurement{Time: time, Position: models.Position{Lat: lat, Lon: lon}}
}

func TestNormalize(t *testing.T) {
	traj := models.Trajectory{ID: 1, Measurements: []models.Measurement{
		measurement(30, 3, 3),
		measurement(10, 1, 1),
		measurement(20, 2, 2),
	}}

	sorted := Normalize(traj)
	assert.Equal(t, []int64{10, 20, 30}, times(sorted))

	// Input untouched
	assert.Equal(t, int64(30), traj.Measurements[0].Time)

	// Idempotent
	assert.True(t, Normalize(sorted).Equal(sorted))
}

func TestNormalizeStableOnTies(t *testing.T) {
	traj := models.Trajectory{ID: 1, Measurements: []models.Measurement{
		measurement(10, 1, 1),
		measurement(5, 2, 2),
		measurement(5, 3, 3),
	}}

	sorted := Normalize(traj)
	require.Len(t, sorted.Measurements, 3)
	// Equal timestamps keep their original relative order
	assert.Equal(t, 2.0, sorted.Measurements[0].Position.Lat)
	assert.Equal(t, 3.0, sorted.Measurements[1].Position.Lat)
}

func TestPartitionPreservesLengthAndOrder(t *testing.T) {
	traj := models.Trajectory{ID: 7, Measurements: []models.Measurement{
		measurement(0, 0, 0),
		measurement(10, 0, 0),
		measurement(20, 1, 1),
	}}

	tp, err := Partition(traj, 1, 1.0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), tp.ID)
	require.Len(t, tp.Partitions, 3)
	assert.Equal(t, models.SpatialPartition{CellX: 0, CellY: 0}, tp.Partitions[0].Location)
	assert.Equal(t, models.SpatialPartition{CellX: 0, CellY: 0}, tp.Partitions[1].Location)
	assert.Equal(t, models.SpatialPartition{CellX: 1, CellY: 1}, tp.Partitions[2].Location)
}

func TestPartitionInvalidResolution(t *testing.T) {
	traj := models.Trajectory{ID: 1, Measurements: []models.Measurement{measurement(0, 0, 0)}}

	_, err := Partition(traj, 0, 1.0)
	assert.Error(t, err)

	_, err = Partition(traj, 60, -1)
	assert.Error(t, err)
}

func TestUnpartition(t *testing.T) {
	tp := models.TrajectoryPartition{ID: 3, Partitions: []models.MeasurementPartition{
		{Time: 0, Location: models.SpatialPartition{CellX: 0, CellY: 0}},
		{Time: 60, Location: models.SpatialPartition{CellX: 2, CellY: -1}},
	}}

	traj := Unpartition(tp, 0.5)
	assert.Equal(t, int32(3), traj.ID)
	require.Len(t, traj.Measurements, 2)

	// Bucket starts become the times; cells map to their lower-left corner
	assert.Equal(t, []int64{0, 60}, times(traj))
	assert.Equal(t, models.Position{Lat: -0.5, Lon: 1.0}, traj.Measurements[1].Position)
}

func TestPartitionUnpartitionRoundTrip(t *testing.T) {
	traj := models.Trajectory{ID: 11, Measurements: []models.Measurement{
		measurement(0, 59.334, 18.071),
		measurement(61, 59.338, 18.082),
		measurement(150, -33.86, 151.21),
		measurement(-30, -33.87, 151.20),
	}}

	for _, delta := range []float64{1.0, 0.1, 0.001} {
		tp, err := Partition(traj, 60, delta)
		require.NoError(t, err)

		// Re-partitioning the reconstruction is the identity on partitions
		again, err := Partition(Unpartition(tp, delta), 60, delta)
		require.NoError(t, err)
		assert.Equal(t, tp, again, "delta=%g", delta)
	}
}

func TestPartitionDistinct(t *testing.T) {
	// Times 0, 10, 20 fall in bucket 0 at tau=30; 40 in bucket 30
	traj := models.Trajectory{ID: 1, Measurements: []models.Measurement{
		measurement(0, 0, 0),
		measurement(10, 1, 1),
		measurement(20, 2, 2),
		measurement(40, 3, 3),
	}}

	tp, err := PartitionDistinct(traj, 30, 1.0)
	require.NoError(t, err)
	require.Len(t, tp.Partitions, 2)

	// First of each bucket wins
	assert.Equal(t, int64(0), tp.Partitions[0].Time)
	assert.Equal(t, models.SpatialPartition{CellX: 0, CellY: 0}, tp.Partitions[0].Location)
	assert.Equal(t, int64(30), tp.Partitions[1].Time)
}

func TestPartitionDistinctIsStreaming(t *testing.T) {
	// The same bucket reappearing non-adjacently is kept: this collapse is a
	// one-pass walk, not a global dedup. Buckets here are 0, 30, 0 after an
	// unsorted input — only adjacent equals collapse.
	traj := models.Trajectory{ID: 1, Measurements: []models.Measurement{
		measurement(0, 0, 0),
		measurement(5, 1, 1),
		measurement(40, 2, 2),
		measurement(10, 3, 3),
	}}

	tp, err := PartitionDistinct(traj, 30, 1.0)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 30, 0}, partitionTimes(tp))
}

func TestFilterDate(t *testing.T) {
	// 2024-03-05 UTC spans [1709596800, 1709683200)
	traj := models.Trajectory{ID: 1, Measurements: []models.Measurement{
		measurement(1709596799, 1, 1), // day before
		measurement(1709596800, 2, 2), // midnight, kept
		measurement(1709640000, 3, 3), // midday, kept
		measurement(1709683200, 4, 4), // next midnight
	}}

	filtered, err := FilterDate(traj, "2024-03-05")
	require.NoError(t, err)
	require.Len(t, filtered.Measurements, 2)
	assert.Equal(t, 2.0, filtered.Measurements[0].Position.Lat)
	assert.Equal(t, 3.0, filtered.Measurements[1].Position.Lat)
}

func TestFilterDateInvalid(t *testing.T) {
	traj := models.Trajectory{ID: 1}

	_, err := FilterDate(traj, "05/03/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = FilterDate(traj, "not-a-date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestFilterBox(t *testing.T) {
	traj := models.Trajectory{ID: 1, Measurements: []models.Measurement{
		measurement(0, 5, 5),
		measurement(10, 15, 15),
	}}

	filtered := FilterBox(traj,
		models.Position{Lat: 0, Lon: 0},
		models.Position{Lat: 10, Lon: 10},
	)

	require.Len(t, filtered.Measurements, 1)
	assert.Equal(t, 5.0, filtered.Measurements[0].Position.Lat)
}

func TestSplitByDate(t *testing.T) {
	traj := models.Trajectory{ID: 9, Measurements: []models.Measurement{
		measurement(100, 1, 1),
		measurement(86400+50, 2, 2),
		measurement(200, 3, 3),
		measurement(86400+60, 4, 4),
	}}

	days := SplitByDate(traj)
	require.Len(t, days, 2)

	assert.Equal(t, int64(0), days[0].DayStart)
	assert.Equal(t, int32(9), days[0].Trajectory.ID)
	assert.Equal(t, []int64{100, 200}, times(days[0].Trajectory))

	assert.Equal(t, int64(86400), days[1].DayStart)
	assert.Equal(t, []int64{86400 + 50, 86400 + 60}, times(days[1].Trajectory))
}

type stubMatcher struct {
	positions []models.Position
	err       error
}

func (m *stubMatcher) Match(ctx context.Context, measurements []models.Measurement) ([]models.Position, error) {
	return m.positions, m.err
}

func TestMapMatchSyntheticTimes(t *testing.T) {
	matcher := &stubMatcher{positions: []models.Position{
		{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3},
	}}

	traj := models.Trajectory{ID: 4, Measurements: []models.Measurement{measurement(1000, 0, 0)}}
	matched := MapMatch(context.Background(), matcher, traj)

	assert.Equal(t, int32(4), matched.ID)
	assert.Equal(t, []int64{0, 1, 2}, times(matched))
	assert.Equal(t, 2.0, matched.Measurements[1].Position.Lat)
}

func TestMapMatchFailureYieldsEmptyTrajectory(t *testing.T) {
	matcher := &stubMatcher{err: errors.New("no match found")}

	traj := models.Trajectory{ID: 4, Measurements: []models.Measurement{measurement(1000, 0, 0)}}
	matched := MapMatch(context.Background(), matcher, traj)

	assert.Equal(t, int32(4), matched.ID)
	assert.Empty(t, matched.Measurements)
}

func times(t models.Trajectory) []int64 {
	out := make([]int64, 0, len(t.Measurements))
	for _, m := range t.Measurements {
		out = append(out, m.Time)
	}
	return out
}

func partitionTimes(tp models.TrajectoryPartition) []int64 {
	out := make([]int64, 0, len(tp.Partitions))
	for _, p := range tp.Partitions {
		out = append(out, p.Time)
	}
	return out
}
