// Package cotraj aggregates per-trajectory pattern extraction across a
// population of trajectories ("co-trajectory" statistics). The population is
// an unordered collection already grouped by trajectory id; every aggregate
// here is built from an associative, commutative merge of partial results,
// so shards can be processed by any number of workers and combined in any
// order.
package cotraj

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/cotraj-backend-go/internal/analysis/chain"
	"github.com/jengzang/cotraj-backend-go/internal/mapmatch"
	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/trajectory"
)

// TransitionAccumulator is the mergeable partial result behind transition
// statistics: per (from, to) pair, the observation count and the dwell sum.
// Add and Merge commute and associate; Finalize divides at the end.
type TransitionAccumulator struct {
	groups map[models.TransitionKey]*transitionGroup
}

type transitionGroup struct {
	count    int64
	dwellSum int64
}

// NewTransitionAccumulator creates an empty accumulator
func NewTransitionAccumulator() *TransitionAccumulator {
	return &TransitionAccumulator{groups: make(map[models.TransitionKey]*transitionGroup)}
}

// Add folds one observed transition into the accumulator
func (a *TransitionAccumulator) Add(t models.Transition) {
	key := models.TransitionKey{From: t.From, To: t.To}
	g, ok := a.groups[key]
	if !ok {
		g = &transitionGroup{}
		a.groups[key] = g
	}
	g.count++
	g.dwellSum += t.Dwell
}

// AddTrajectory extracts and folds in all transitions of one partitioned trajectory
func (a *TransitionAccumulator) AddTrajectory(tp models.TrajectoryPartition) {
	for _, t := range chain.Transitions(tp.Partitions) {
		a.Add(t)
	}
}

// Merge folds another accumulator into this one
func (a *TransitionAccumulator) Merge(other *TransitionAccumulator) {
	for key, g := range other.groups {
		mine, ok := a.groups[key]
		if !ok {
			a.groups[key] = &transitionGroup{count: g.count, dwellSum: g.dwellSum}
			continue
		}
		mine.count += g.count
		mine.dwellSum += g.dwellSum
	}
}

// Finalize emits one statistic per (from, to) group, sorted by cell
// coordinates so repeated runs produce identical output
func (a *TransitionAccumulator) Finalize() []models.TransitionStatistic {
	stats := make([]models.TransitionStatistic, 0, len(a.groups))
	for key, g := range a.groups {
		stats = append(stats, models.TransitionStatistic{
			From:      key.From,
			To:        key.To,
			Count:     g.count,
			MeanDwell: float64(g.dwellSum) / float64(g.count),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return lessKey(stats[i], stats[j])
	})

	return stats
}

func lessKey(a, b models.TransitionStatistic) bool {
	if a.From.CellY != b.From.CellY {
		return a.From.CellY < b.From.CellY
	}
	if a.From.CellX != b.From.CellX {
		return a.From.CellX < b.From.CellX
	}
	if a.To.CellY != b.To.CellY {
		return a.To.CellY < b.To.CellY
	}
	return a.To.CellX < b.To.CellX
}

// TransitionStatistics computes population-level transition statistics over
// an already partitioned population: per (from, to) cell pair, the number of
// observed moves and the arithmetic mean dwell time before the move.
func TransitionStatistics(population []models.TrajectoryPartition) []models.TransitionStatistic {
	acc := NewTransitionAccumulator()
	for _, tp := range population {
		acc.AddTrajectory(tp)
	}
	return acc.Finalize()
}

// TransitionStatisticsParallel shards the population across workers, runs an
// accumulator per shard, and merges the partials. The merge order is
// irrelevant by construction, so the result equals the serial computation.
func TransitionStatisticsParallel(ctx context.Context, population []models.TrajectoryPartition, workers int) ([]models.TransitionStatistic, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(population) {
		workers = len(population)
	}
	if workers <= 1 {
		return TransitionStatistics(population), nil
	}

	partials := make([]*TransitionAccumulator, workers)
	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			acc := NewTransitionAccumulator()
			for i := w; i < len(population); i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				acc.AddTrajectory(population[i])
			}
			partials[w] = acc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewTransitionAccumulator()
	for _, p := range partials {
		merged.Merge(p)
	}

	return merged.Finalize(), nil
}

// EnumeratePartitions collects the set of distinct grid cells visited
// anywhere in the population and assigns dense integer ids: a total
// bijection over exactly the observed set, no gaps, no collisions. Ids are
// assigned in sorted (cellY, cellX) order so repeated runs over the same
// population agree; nothing downstream may rely on that order.
func EnumeratePartitions(population []models.TrajectoryPartition) map[models.SpatialPartition]int64 {
	seen := make(map[models.SpatialPartition]struct{})
	for _, tp := range population {
		for _, p := range tp.Partitions {
			seen[p.Location] = struct{}{}
		}
	}

	cells := make([]models.SpatialPartition, 0, len(seen))
	for cell := range seen {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].CellY != cells[j].CellY {
			return cells[i].CellY < cells[j].CellY
		}
		return cells[i].CellX < cells[j].CellX
	})

	index := make(map[models.SpatialPartition]int64, len(cells))
	for i, cell := range cells {
		index[cell] = int64(i)
	}

	return index
}

// MapMatchAll map-matches every trajectory in the population concurrently.
// Trajectories share no state, so the only coordination is the worker bound.
// A matcher failure degrades that one trajectory to an empty result (see
// trajectory.MapMatch); it never fails the batch.
func MapMatchAll(ctx context.Context, matcher mapmatch.Matcher, population []models.Trajectory, workers int) []models.Trajectory {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	matched := make([]models.Trajectory, len(population))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, t := range population {
		i, t := i, t
		g.Go(func() error {
			matched[i] = trajectory.MapMatch(ctx, matcher, t)
			return nil
		})
	}

	// Workers only ever return nil; MapMatch is total.
	_ = g.Wait()

	return matched
}
