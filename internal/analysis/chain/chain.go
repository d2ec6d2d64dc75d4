// Package chain extracts movement patterns from a single partitioned,
// time-sorted trajectory: the jump chain of distinct visited cells, the
// dwell time at each cell, and the (from, to, dwell) transitions.
//
// All three walks are single-pass, order-preserving, and look only at a
// pairwise window, so they produce identical output for identical sorted
// input regardless of where they run.
package chain

import (
	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// Jumpchain collapses consecutive duplicate cells: the first element is
// always emitted, then each element that differs from the immediately
// preceding original element. The comparison is against the previous input
// element, not the last emitted one, so [A,A,B,A] collapses to [A,B,A].
func Jumpchain(locations []models.SpatialPartition) []models.SpatialPartition {
	if len(locations) == 0 {
		return nil
	}

	result := []models.SpatialPartition{locations[0]}
	for i := 1; i < len(locations); i++ {
		if locations[i] != locations[i-1] {
			result = append(result, locations[i])
		}
	}

	return result
}

// dwellWalk is the shared state machine behind JumpchainTimes and
// Transitions. It has two states: "tracking the current location since its
// first-arrival bucket" and "just observed a move". While the location is
// unchanged the reference measurement is NOT advanced, so dwell accumulates
// against the first arrival, not the most recent sample. On a move it emits
// the elapsed bucket time and re-anchors at the arriving measurement.
func dwellWalk(partitions []models.MeasurementPartition, emit func(from, to models.SpatialPartition, dwell int64)) {
	if len(partitions) < 2 {
		return
	}

	// Tracking state: where the entity is and the bucket it first arrived in.
	current := partitions[0]

	for _, next := range partitions[1:] {
		if next.Location == current.Location {
			// Still at the same cell; keep the first-arrival anchor.
			continue
		}
		emit(current.Location, next.Location, next.Time-current.Time)
		current = next
	}
}

// JumpchainTimes returns the time spent at each visited cell before moving
// on, one duration per location change, measured between bucket start times.
// Fewer than two inputs yield an empty result.
func JumpchainTimes(partitions []models.MeasurementPartition) []int64 {
	var times []int64
	dwellWalk(partitions, func(_, _ models.SpatialPartition, dwell int64) {
		times = append(times, dwell)
	})
	return times
}

// Transitions returns every observed move as (from, to, dwell). The dwell
// values agree element-for-element with JumpchainTimes on the same input —
// both are the same walk.
func Transitions(partitions []models.MeasurementPartition) []models.Transition {
	var transitions []models.Transition
	dwellWalk(partitions, func(from, to models.SpatialPartition, dwell int64) {
		transitions = append(transitions, models.Transition{From: from, To: to, Dwell: dwell})
	})
	return transitions
}

// Locations projects a partitioned trajectory onto its cell sequence
func Locations(tp models.TrajectoryPartition) []models.SpatialPartition {
	locations := make([]models.SpatialPartition, 0, len(tp.Partitions))
	for _, p := range tp.Partitions {
		locations = append(locations, p.Location)
	}
	return locations
}
