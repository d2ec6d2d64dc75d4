package trajectory

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/spatial"
)

const secondsPerDay = 86400

// ErrInvalidDate is returned when a date string cannot be parsed as yyyy-MM-dd
var ErrInvalidDate = errors.New("invalid date, expected yyyy-MM-dd")

// Normalize returns a copy of the trajectory sorted ascending by time.
// The sort is stable: measurements with equal timestamps keep their original
// relative order, so Normalize(Normalize(t)) == Normalize(t).
func Normalize(t models.Trajectory) models.Trajectory {
	measurements := make([]models.Measurement, len(t.Measurements))
	copy(measurements, t.Measurements)

	sort.SliceStable(measurements, func(i, j int) bool {
		return measurements[i].Time < measurements[j].Time
	})

	return models.Trajectory{ID: t.ID, Measurements: measurements}
}

// Partition discretizes every measurement at temporal resolution tau (seconds)
// and spatial resolution delta (degrees). Length and order are preserved;
// consecutive duplicates are not collapsed.
func Partition(t models.Trajectory, tau int64, delta float64) (models.TrajectoryPartition, error) {
	partitions := make([]models.MeasurementPartition, 0, len(t.Measurements))

	for _, m := range t.Measurements {
		bucket, err := spatial.PartitionTime(m.Time, tau)
		if err != nil {
			return models.TrajectoryPartition{}, fmt.Errorf("failed to partition time %d: %w", m.Time, err)
		}
		cell, err := spatial.PartitionSpatial(m.Position, delta)
		if err != nil {
			return models.TrajectoryPartition{}, fmt.Errorf("failed to partition position: %w", err)
		}
		partitions = append(partitions, models.MeasurementPartition{Time: bucket, Location: cell})
	}

	return models.TrajectoryPartition{ID: t.ID, Partitions: partitions}, nil
}

// Unpartition reconstructs a concrete trajectory from a partitioned one.
// Bucket start times are already seconds and become the measurement times;
// each cell maps to its lower-left corner. Partitioning the result at the
// same resolutions yields the partition back.
func Unpartition(tp models.TrajectoryPartition, delta float64) models.Trajectory {
	measurements := make([]models.Measurement, 0, len(tp.Partitions))
	for _, p := range tp.Partitions {
		measurements = append(measurements, models.Measurement{
			Time:     p.Time,
			Position: spatial.UnpartitionSpatial(p.Location, delta),
		})
	}

	return models.Trajectory{ID: tp.ID, Measurements: measurements}
}

// PartitionDistinct discretizes like Partition but collapses adjacent
// measurements that land in the same time bucket, keeping the first.
// This is a streaming one-pass collapse over the already time-sorted input,
// not a global dedup: the same bucket reappearing later is kept.
func PartitionDistinct(t models.Trajectory, tau int64, delta float64) (models.TrajectoryPartition, error) {
	partitioned, err := Partition(t, tau, delta)
	if err != nil {
		return models.TrajectoryPartition{}, err
	}

	var collapsed []models.MeasurementPartition
	for i, p := range partitioned.Partitions {
		if i > 0 && p.Time == partitioned.Partitions[i-1].Time {
			continue
		}
		collapsed = append(collapsed, p)
	}

	return models.TrajectoryPartition{ID: t.ID, Partitions: collapsed}, nil
}

// DayStart parses a yyyy-MM-dd date string and returns midnight UTC of that
// day as Unix seconds
func DayStart(date string) (int64, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day.Unix(), nil
}

// FilterDate keeps measurements whose time falls within the given UTC
// calendar day, i.e. [dayStart, dayStart+86400)
func FilterDate(t models.Trajectory, date string) (models.Trajectory, error) {
	dayStart, err := DayStart(date)
	if err != nil {
		return models.Trajectory{}, err
	}

	var kept []models.Measurement
	for _, m := range t.Measurements {
		if m.Time >= dayStart && m.Time < dayStart+secondsPerDay {
			kept = append(kept, m)
		}
	}

	return models.Trajectory{ID: t.ID, Measurements: kept}, nil
}

// FilterBox keeps measurements whose position lies in the closed rectangle
// formed by the two corners (given in any order)
func FilterBox(t models.Trajectory, corner1, corner2 models.Position) models.Trajectory {
	var kept []models.Measurement
	for _, m := range t.Measurements {
		if spatial.InBox(m.Position, corner1, corner2) {
			kept = append(kept, m)
		}
	}

	return models.Trajectory{ID: t.ID, Measurements: kept}
}

// DayTrajectory is one calendar day's slice of a trajectory
type DayTrajectory struct {
	DayStart   int64
	Trajectory models.Trajectory
}

// SplitByDate groups measurements by UTC calendar day (time - time mod 86400),
// one sub-trajectory per distinct day, each keeping the original id and its
// measurements in original order. Output is sorted by day start.
func SplitByDate(t models.Trajectory) []DayTrajectory {
	byDay := make(map[int64][]models.Measurement)
	for _, m := range t.Measurements {
		dayStart := m.Time - mod(m.Time, secondsPerDay)
		byDay[dayStart] = append(byDay[dayStart], m)
	}

	days := make([]int64, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	result := make([]DayTrajectory, 0, len(days))
	for _, day := range days {
		result = append(result, DayTrajectory{
			DayStart:   day,
			Trajectory: models.Trajectory{ID: t.ID, Measurements: byDay[day]},
		})
	}

	return result
}

// mod is the non-negative remainder, so pre-1970 timestamps still bucket to
// the start of their own day
func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
