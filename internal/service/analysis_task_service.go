package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jengzang/cotraj-backend-go/internal/analysis"
	"github.com/jengzang/cotraj-backend-go/internal/models"
	"github.com/jengzang/cotraj-backend-go/internal/repository"
)

// AnalysisTaskService handles business logic for analysis tasks
type AnalysisTaskService struct {
	repo *repository.AnalysisTaskRepository
	db   *sql.DB
	deps analysis.Deps
}

// NewAnalysisTaskService creates a new analysis task service
func NewAnalysisTaskService(repo *repository.AnalysisTaskRepository, db *sql.DB, deps analysis.Deps) *AnalysisTaskService {
	return &AnalysisTaskService{repo: repo, db: db, deps: deps}
}

// CreateTask creates a task for a registered skill and runs it asynchronously
func (s *AnalysisTaskService) CreateTask(skillName string, params *models.AnalysisParams) (*models.AnalysisTask, error) {
	if !analysis.IsKnownSkill(skillName) {
		return nil, fmt.Errorf("unknown skill: %s", skillName)
	}

	paramsJSON := "{}"
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode params: %w", err)
		}
		paramsJSON = string(data)
	}

	task := &models.AnalysisTask{
		SkillName:  skillName,
		ParamsJSON: paramsJSON,
	}
	if err := s.repo.Create(task); err != nil {
		return nil, err
	}

	// Run the analyzer asynchronously; status lives in analysis_tasks.
	go s.runTask(task.ID, skillName)

	return task, nil
}

// runTask executes a registered analyzer for a task
func (s *AnalysisTaskService) runTask(taskID int64, skillName string) {
	analyzer := analysis.GetAnalyzer(skillName, s.db, s.deps)
	if analyzer == nil {
		log.Printf("[AnalysisTaskService] No analyzer registered for skill %s (task %d)", skillName, taskID)
		return
	}

	if err := analyzer.Analyze(context.Background(), taskID); err != nil {
		log.Printf("[AnalysisTaskService] Task %d (%s) failed: %v", taskID, skillName, err)
	}
}

// GetTask retrieves a task by id
func (s *AnalysisTaskService) GetTask(id int64) (*models.AnalysisTask, error) {
	return s.repo.GetByID(id)
}

// ListTasks retrieves tasks with optional status filter
func (s *AnalysisTaskService) ListTasks(status string, limit, offset int) ([]*models.AnalysisTask, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(status, limit, offset)
}
