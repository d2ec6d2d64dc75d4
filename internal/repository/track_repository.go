package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// TrackRepository handles database operations for trajectory measurements
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// GetTrajectory retrieves one trajectory's measurements ordered by time.
// matched selects between raw uploads and map-matched rows.
func (r *TrackRepository) GetTrajectory(id int32, matched bool) (models.Trajectory, error) {
	query := `
		SELECT time, latitude, longitude
		FROM measurements
		WHERE trajectory_id = ? AND matched = ?
		ORDER BY time, id
	`

	rows, err := r.db.Query(query, id, boolToInt(matched))
	if err != nil {
		return models.Trajectory{}, fmt.Errorf("failed to query trajectory %d: %w", id, err)
	}
	defer rows.Close()

	t := models.Trajectory{ID: id}
	for rows.Next() {
		var m models.Measurement
		if err := rows.Scan(&m.Time, &m.Position.Lat, &m.Position.Lon); err != nil {
			return models.Trajectory{}, fmt.Errorf("failed to scan measurement: %w", err)
		}
		t.Measurements = append(t.Measurements, m)
	}

	return t, rows.Err()
}

// GetPopulation retrieves all raw trajectories grouped by id, each ordered by time
func (r *TrackRepository) GetPopulation() ([]models.Trajectory, error) {
	query := `
		SELECT trajectory_id, time, latitude, longitude
		FROM measurements
		WHERE matched = 0
		ORDER BY trajectory_id, time, id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query population: %w", err)
	}
	defer rows.Close()

	var population []models.Trajectory
	var current *models.Trajectory

	for rows.Next() {
		var id int32
		var m models.Measurement
		if err := rows.Scan(&id, &m.Time, &m.Position.Lat, &m.Position.Lon); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}

		if current == nil || current.ID != id {
			population = append(population, models.Trajectory{ID: id})
			current = &population[len(population)-1]
		}
		current.Measurements = append(current.Measurements, m)
	}

	return population, rows.Err()
}

// SaveTrajectory inserts a trajectory's measurements, replacing any previous
// rows for the same id and matched flag
func (r *TrackRepository) SaveTrajectory(t models.Trajectory, matched bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM measurements WHERE trajectory_id = ? AND matched = ?", t.ID, boolToInt(matched)); err != nil {
		return fmt.Errorf("failed to clear trajectory %d: %w", t.ID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO measurements (trajectory_id, time, latitude, longitude, matched)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range t.Measurements {
		if _, err := stmt.Exec(t.ID, m.Time, m.Position.Lat, m.Position.Lon, boolToInt(matched)); err != nil {
			return fmt.Errorf("failed to insert measurement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListTrajectories returns one summary row per stored trajectory id
func (r *TrackRepository) ListTrajectories() ([]models.TrajectorySummary, error) {
	query := `
		SELECT trajectory_id,
		       COUNT(*),
		       MIN(time),
		       MAX(time),
		       MAX(matched)
		FROM measurements
		GROUP BY trajectory_id
		ORDER BY trajectory_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list trajectories: %w", err)
	}
	defer rows.Close()

	var summaries []models.TrajectorySummary
	for rows.Next() {
		var s models.TrajectorySummary
		var matched int
		if err := rows.Scan(&s.ID, &s.Measurements, &s.FirstTime, &s.LastTime, &matched); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		s.Matched = matched != 0
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
