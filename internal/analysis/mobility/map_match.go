package mobility

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jengzang/cotraj-backend-go/internal/analysis"
	"github.com/jengzang/cotraj-backend-go/internal/cotraj"
	"github.com/jengzang/cotraj-backend-go/internal/mapmatch"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
)

// MapMatchAnalyzer snaps every trajectory in the population onto the road
// network via the external matcher and stores the matched paths alongside
// the raw measurements
type MapMatchAnalyzer struct {
	*analysis.BaseAnalyzer
	deps    analysis.Deps
	tracks  *repository.TrackRepository
	matcher mapmatch.Matcher
}

// NewMapMatchAnalyzer creates a new map-match analyzer
func NewMapMatchAnalyzer(db *sql.DB, deps analysis.Deps) analysis.Analyzer {
	return &MapMatchAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(db, "map_match"),
		deps:         deps,
		tracks:       repository.NewTrackRepository(db),
		matcher:      mapmatch.NewClient(deps.MapMatchURL),
	}
}

// Analyze map-matches the whole population. Trajectories the matcher rejects
// come back empty and are counted as failed items, but never fail the task.
func (a *MapMatchAnalyzer) Analyze(ctx context.Context, taskID int64) error {
	log.Printf("[MapMatchAnalyzer] Starting analysis (task_id=%d)", taskID)

	if err := a.MarkTaskAsRunning(taskID); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	population, err := a.tracks.GetPopulation()
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to load population: %w", err)
	}

	if err := a.UpdateTaskProgress(taskID, 0, len(population), 0); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	matched := cotraj.MapMatchAll(ctx, a.matcher, population, a.deps.Workers)

	failed := 0
	for _, t := range matched {
		if len(t.Measurements) == 0 {
			failed++
		}
		if err := a.tracks.SaveTrajectory(t, true); err != nil {
			a.MarkTaskAsFailed(taskID, err.Error())
			return fmt.Errorf("failed to persist matched trajectory %d: %w", t.ID, err)
		}
	}

	if err := a.UpdateTaskProgress(taskID, len(population), len(population), failed); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"trajectories": len(population),
		"unmatched":    failed,
	})

	if err := a.MarkTaskAsCompleted(taskID, string(summary)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[MapMatchAnalyzer] Analysis completed: %d trajectories, %d unmatched", len(population), failed)
	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer("map_match", NewMapMatchAnalyzer)
}
