package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/cotraj-backend-go/internal/models"
)

// AnalysisTaskRepository handles database operations for analysis tasks
type AnalysisTaskRepository struct {
	db *sql.DB
}

// NewAnalysisTaskRepository creates a new analysis task repository
func NewAnalysisTaskRepository(db *sql.DB) *AnalysisTaskRepository {
	return &AnalysisTaskRepository{db: db}
}

// Create inserts a new pending task and fills in its id
func (r *AnalysisTaskRepository) Create(task *models.AnalysisTask) error {
	query := `
		INSERT INTO analysis_tasks (skill_name, status, params_json)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, task.SkillName, models.TaskStatusPending, task.ParamsJSON)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get task id: %w", err)
	}

	task.ID = id
	task.Status = models.TaskStatusPending
	return nil
}

// GetByID retrieves a task by id; returns nil when not found
func (r *AnalysisTaskRepository) GetByID(id int64) (*models.AnalysisTask, error) {
	query := `
		SELECT id, skill_name, status, params_json, progress_percent,
		       total_items, processed_items, failed_items,
		       COALESCE(result_summary, ''), COALESCE(error_message, ''),
		       created_at, started_at, completed_at
		FROM analysis_tasks
		WHERE id = ?
	`

	var task models.AnalysisTask
	var startedAt, completedAt sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&task.ID, &task.SkillName, &task.Status, &task.ParamsJSON,
		&task.ProgressPercent, &task.TotalItems, &task.ProcessedItems,
		&task.FailedItems, &task.ResultSummary, &task.ErrorMessage,
		&task.CreatedAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}

	if startedAt.Valid {
		task.StartedAt = &startedAt.String
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.String
	}

	return &task, nil
}

// List retrieves tasks, newest first, with an optional status filter
func (r *AnalysisTaskRepository) List(status string, limit, offset int) ([]*models.AnalysisTask, error) {
	query := `
		SELECT id, skill_name, status, params_json, progress_percent,
		       total_items, processed_items, failed_items,
		       COALESCE(result_summary, ''), COALESCE(error_message, ''),
		       created_at, started_at, completed_at
		FROM analysis_tasks
	`

	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.AnalysisTask
	for rows.Next() {
		var task models.AnalysisTask
		var startedAt, completedAt sql.NullString

		err := rows.Scan(
			&task.ID, &task.SkillName, &task.Status, &task.ParamsJSON,
			&task.ProgressPercent, &task.TotalItems, &task.ProcessedItems,
			&task.FailedItems, &task.ResultSummary, &task.ErrorMessage,
			&task.CreatedAt, &startedAt, &completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if startedAt.Valid {
			task.StartedAt = &startedAt.String
		}
		if completedAt.Valid {
			task.CompletedAt = &completedAt.String
		}

		tasks = append(tasks, &task)
	}

	return tasks, rows.Err()
}
