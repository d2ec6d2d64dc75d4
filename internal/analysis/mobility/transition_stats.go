package mobility

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jengzang/cotraj-backend-go/internal/analysis"
	"github.com/jengzang/cotraj-backend-go/internal/cotraj"
	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
	"github.com/jengzang/cotraj-backend-go/internal/trajectory"
)

// TransitionStatsAnalyzer computes population-level transition statistics:
// for every (from, to) grid cell pair, how often the move was observed and
// the mean dwell time before it
type TransitionStatsAnalyzer struct {
	*analysis.BaseAnalyzer
	deps   analysis.Deps
	tracks *repository.TrackRepository
	stats  *repository.StatsRepository
}

// NewTransitionStatsAnalyzer creates a new transition statistics analyzer
func NewTransitionStatsAnalyzer(db *sql.DB, deps analysis.Deps) analysis.Analyzer {
	return &TransitionStatsAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(db, "transition_stats"),
		deps:         deps,
		tracks:       repository.NewTrackRepository(db),
		stats:        repository.NewStatsRepository(db),
	}
}

// Analyze performs transition statistics analysis over the whole population
func (a *TransitionStatsAnalyzer) Analyze(ctx context.Context, taskID int64) error {
	log.Printf("[TransitionStatsAnalyzer] Starting analysis (task_id=%d)", taskID)

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

	stats, err := cotraj.TransitionStatisticsParallel(ctx, partitioned, a.deps.Workers)
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to compute transition statistics: %w", err)
	}

	if err := a.stats.ReplaceTransitionStats(taskID, stats); err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to persist transition statistics: %w", err)
	}

	if err := a.UpdateTaskProgress(taskID, len(population), len(population), 0); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"trajectories":      len(population),
		"transitionGroups":  len(stats),
		"timeResolution":    params.TimeResolution,
		"spatialResolution": params.SpatialResolution,
	})

	if err := a.MarkTaskAsCompleted(taskID, string(summary)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[TransitionStatsAnalyzer] Analysis completed: %d transition groups from %d trajectories", len(stats), len(population))
	return nil
}

// taskParams merges the task's params JSON with the configured defaults
func taskParams(base *analysis.BaseAnalyzer, taskID int64, deps analysis.Deps) (models.AnalysisParams, error) {
	params := models.AnalysisParams{
		TimeResolution:    deps.TimeResolution,
		SpatialResolution: deps.SpatialResolution,
	}

	raw, err := base.GetTaskParams(taskID)
	if err != nil {
		return params, fmt.Errorf("failed to load task params: %w", err)
	}
	if raw == "" {
		return params, nil
	}

	var override models.AnalysisParams
	if err := json.Unmarshal([]byte(raw), &override); err != nil {
		return params, fmt.Errorf("failed to parse task params: %w", err)
	}
	if override.TimeResolution > 0 {
		params.TimeResolution = override.TimeResolution
	}
	if override.SpatialResolution > 0 {
		params.SpatialResolution = override.SpatialResolution
	}

	return params, nil
}

// partitionPopulation normalizes and discretizes every trajectory
func partitionPopulation(population []models.Trajectory, params models.AnalysisParams) ([]models.TrajectoryPartition, error) {
	partitioned := make([]models.TrajectoryPartition, 0, len(population))
	for _, t := range population {
		tp, err := trajectory.Partition(trajectory.Normalize(t), params.TimeResolution, params.SpatialResolution)
		if err != nil {
			return nil, fmt.Errorf("failed to partition trajectory %d: %w", t.ID, err)
		}
		partitioned = append(partitioned, tp)
	}
	return partitioned, nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer("transition_stats", NewTransitionStatsAnalyzer)
}
