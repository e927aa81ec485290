package storage

import "time"

// Run represents a pipeline execution
type Run struct {
	ID          int        `json:"id"`
	Status      string     `json:"status"` // "running", "success", "failed"
	ProjectRoot string     `json:"project_root"`
	FailedStage string     `json:"failed_stage,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Duration    *string    `json:"duration,omitempty"`
}

// StageExecution represents execution of a single pipeline stage
type StageExecution struct {
	ID         int        `json:"id"`
	RunID      int        `json:"run_id"`
	Stage      string     `json:"stage"`
	Status     string     `json:"status"` // "running", "success", "failed"
	Output     string     `json:"output"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   *string    `json:"duration,omitempty"`
}
