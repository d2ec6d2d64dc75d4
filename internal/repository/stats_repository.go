package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// StatsRepository handles database operations for population-level statistics
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// ReplaceTransitionStats replaces all stored transition statistics with the
// output of one analysis task
func (r *StatsRepository) ReplaceTransitionStats(taskID int64, stats []models.TransitionStatistic) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM transition_stats"); err != nil {
		return fmt.Errorf("failed to clear transition stats: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO transition_stats (
			task_id, from_cell_x, from_cell_y, to_cell_x, to_cell_y, count, mean_dwell
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err := stmt.Exec(taskID, s.From.CellX, s.From.CellY, s.To.CellX, s.To.CellY, s.Count, s.MeanDwell)
		if err != nil {
			return fmt.Errorf("failed to insert transition stat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetTransitionStats retrieves stored transition statistics with filtering
// and pagination. The filter must already be normalized.
func (r *StatsRepository) GetTransitionStats(filter models.TransitionStatFilter) ([]models.TransitionStatistic, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.MinCount > 0 {
		conditions = append(conditions, "count >= ?")
		args = append(args, filter.MinCount)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM transition_stats"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transition stats: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := `
		SELECT from_cell_x, from_cell_y, to_cell_x, to_cell_y, count, mean_dwell
		FROM transition_stats` + where + `
		ORDER BY count DESC, from_cell_y, from_cell_x, to_cell_y, to_cell_x
		LIMIT ? OFFSET ?
	`
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transition stats: %w", err)
	}
	defer rows.Close()

	var stats []models.TransitionStatistic
	for rows.Next() {
		var s models.TransitionStatistic
		if err := rows.Scan(&s.From.CellX, &s.From.CellY, &s.To.CellX, &s.To.CellY, &s.Count, &s.MeanDwell); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transition stat: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, total, rows.Err()
}

// ReplacePartitionIndex replaces the stored global partition index with the
// output of one analysis task
func (r *StatsRepository) ReplacePartitionIndex(taskID int64, index map[models.SpatialPartition]int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM partition_index"); err != nil {
		return fmt.Errorf("failed to clear partition index: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO partition_index (task_id, cell_index, cell_x, cell_y)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for cell, idx := range index {
		if _, err := stmt.Exec(taskID, idx, cell.CellX, cell.CellY); err != nil {
			return fmt.Errorf("failed to insert partition index entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetPartitionIndex retrieves the stored global partition index ordered by dense id
func (r *StatsRepository) GetPartitionIndex() ([]models.PartitionIndexEntry, error) {
	query := `
		SELECT cell_index, cell_x, cell_y
		FROM partition_index
		ORDER BY cell_index
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition index: %w", err)
	}
	defer rows.Close()

	var entries []models.PartitionIndexEntry
	for rows.Next() {
		var e models.PartitionIndexEntry
		if err := rows.Scan(&e.Index, &e.Cell.CellX, &e.Cell.CellY); err != nil {
			return nil, fmt.Errorf("failed to scan partition index entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
