package mobility

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jengzang/cotraj-backend-go/internal/analysis"
	"github.com/jengzang/cotraj-backend-go/internal/cotraj"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
)

// PartitionIndexAnalyzer builds the global partition index: a dense integer
// numbering of every distinct grid cell visited anywhere in the population
type PartitionIndexAnalyzer struct {
	*analysis.BaseAnalyzer
	deps   analysis.Deps
	tracks *repository.TrackRepository
	stats  *repository.StatsRepository
}

// NewPartitionIndexAnalyzer creates a new partition index analyzer
func NewPartitionIndexAnalyzer(db *sql.DB, deps analysis.Deps) analysis.Analyzer {
	return &PartitionIndexAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(db, "partition_index"),
		deps:         deps,
		tracks:       repository.NewTrackRepository(db),
		stats:        repository.NewStatsRepository(db),
	}
}

// Analyze enumerates all distinct visited cells and persists the bijection
func (a *PartitionIndexAnalyzer) Analyze(ctx context.Context, taskID int64) error {
	log.Printf("[PartitionIndexAnalyzer] Starting analysis (task_id=%d)", taskID)

	if err := a.MarkTaskAsRunning(taskID); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	params, err := taskParams(a.BaseAnalyzer, taskID, a.deps)
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return err
	}

	population, err := a.tracks.GetPopulation()
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to load population: %w", err)
	}

	if err := a.UpdateTaskProgress(taskID, 0, len(population), 0); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	partitioned, err := partitionPopulation(population, params)
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return err
	}

	index := cotraj.EnumeratePartitions(partitioned)

	if err := a.stats.ReplacePartitionIndex(taskID, index); err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to persist partition index: %w", err)
	}

	if err := a.UpdateTaskProgress(taskID, len(population), len(population), 0); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"trajectories":      len(population),
		"distinctCells":     len(index),
		"spatialResolution": params.SpatialResolution,
	})

	if err := a.MarkTaskAsCompleted(taskID, string(summary)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[PartitionIndexAnalyzer] Analysis completed: %d distinct cells", len(index))
	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer("partition_index", NewPartitionIndexAnalyzer)
}
