package models

// Task statuses
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// AnalysisTask represents one population-level analysis run
type AnalysisTask struct {
	ID              int64   `json:"id"`
	SkillName       string  `json:"skillName"` // transition_stats, partition_index, map_match
	Status          string  `json:"status"`
	ParamsJSON      string  `json:"params"`
	ProgressPercent float64 `json:"progressPercent"`
	TotalItems      int64   `json:"totalItems"`
	ProcessedItems  int64   `json:"processedItems"`
	FailedItems     int64   `json:"failedItems"`
	ResultSummary   string  `json:"resultSummary,omitempty"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	StartedAt       *string `json:"startedAt,omitempty"`
	CompletedAt     *string `json:"completedAt,omitempty"`
}

// IsTerminal reports whether the task has finished (successfully or not)
func (t *AnalysisTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// AnalysisParams are the resolution parameters carried in a task's params JSON
type AnalysisParams struct {
	TimeResolution    int64   `json:"timeResolution"`    // tau, seconds
	SpatialResolution float64 `json:"spatialResolution"` // delta, degrees
}
