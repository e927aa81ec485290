package pipeline

import (
	"time"

	"github.com/leun4m/colorful-coverage/pipeline/storage"
)

// State identifies where the orchestrator currently is in its fixed sequence.
type State string

const (
	StateNotStarted       State = "not_started"
	StateCleaning         State = "cleaning"
	StateBuilding         State = "building"
	StateTesting          State = "testing"
	StateGeneratingReport State = "generating_report"
	StatePresenting       State = "presenting"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Stage identifies one discrete, independently failable step of the pipeline.
type Stage string

const (
	StageClean   Stage = "clean"
	StageBuild   Stage = "build"
	StageTest    Stage = "test"
	StageReport  Stage = "report"
	StagePresent Stage = "present"
)

// RunResult represents the result of running the whole pipeline
type RunResult struct {
	Status      string        `json:"status"` // "success" or "failed"
	State       State         `json:"state"`
	FailedStage Stage         `json:"failed_stage,omitempty"`
	RunID       int           `json:"run_id"`
	Stages      []StageResult `json:"stages"`
	Duration    time.Duration `json:"duration"`
	ExitCode    int           `json:"exit_code"`
	Warning     string        `json:"warning,omitempty"` // presenter failures land here, never in Error
	Error       error         `json:"error,omitempty"`
}

// StageResult represents the outcome of a single stage. Immutable once recorded.
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Status   string        `json:"status"` // "success" or "failed"
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
	Error    error         `json:"error,omitempty"`
}

// RunOptions configures how the pipeline should be executed
type RunOptions struct {
	Storage          *storage.Storage // Optional storage for run-history persistence
	StreamToTerminal bool             // If true, also stream collaborator output to terminal
	SkipPresenter    bool             // If true, stop after the report is written (headless runs)
}
