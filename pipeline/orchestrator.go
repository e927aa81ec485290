package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/leun4m/colorful-coverage/exitcodes"
	"github.com/leun4m/colorful-coverage/pipeline/storage"
)

// Orchestrator runs the fixed stage sequence clean → build → test → report →
// present, advancing only while the current stage's collaborator reports
// success. Each collaborator is invoked exactly once per run.
type Orchestrator struct {
	cfg   *Config
	opts  RunOptions
	state State

	cleaner Cleaner
	builder Builder
	tester  TestRunner
	report  ReportGenerator
	viewer  ReportViewer
}

// New creates an orchestrator wired to the exec-backed collaborators.
func New(cfg *Config, opts RunOptions) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		opts:    opts,
		state:   StateNotStarted,
		cleaner: &ArtifactCleaner{ProjectRoot: cfg.ProjectRoot, ArtifactDir: cfg.ArtifactDir},
		builder: &shellBuilder{cfg: cfg, stream: opts.StreamToTerminal},
		tester:  &shellTestRunner{cfg: cfg, stream: opts.StreamToTerminal},
		report:  &grcovGenerator{cfg: cfg, stream: opts.StreamToTerminal},
		viewer:  &systemViewer{command: cfg.Viewer},
	}
}

// WithCollaborators allows injecting custom collaborators (for testing).
func (o *Orchestrator) WithCollaborators(cleaner Cleaner, builder Builder, tester TestRunner, report ReportGenerator, viewer ReportViewer) *Orchestrator {
	o.cleaner = cleaner
	o.builder = builder
	o.tester = tester
	o.report = report
	o.viewer = viewer
	return o
}

// State returns the orchestrator's current position in the stage sequence.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the pipeline. On stage failure it stops immediately, records
// which stage failed, and skips everything that remains. A presenter failure
// is the sole exception: the report already exists, so the run still ends in
// StateDone with the failure downgraded to a warning.
func (o *Orchestrator) Run() (*RunResult, error) {
	startTime := time.Now()

	result := &RunResult{
		Status: "running",
		State:  StateNotStarted,
		Stages: make([]StageResult, 0, 5),
	}

	// Create run record if storage is provided
	if o.opts.Storage != nil {
		run, err := o.opts.Storage.CreateRun(o.cfg.ProjectRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		result.RunID = run.ID
	}

	fatalStages := []struct {
		stage Stage
		state State
		fn    func() (string, error)
	}{
		{StageClean, StateCleaning, o.clean},
		{StageBuild, StateBuilding, o.build},
		{StageTest, StateTesting, o.test},
		{StageReport, StateGeneratingReport, o.generate},
	}

	for _, s := range fatalStages {
		o.state = s.state
		result.State = s.state

		stageResult, err := o.runStage(s.stage, s.fn, result.RunID)
		result.Stages = append(result.Stages, stageResult)

		if err != nil {
			o.state = StateFailed
			result.State = StateFailed
			result.Status = "failed"
			result.FailedStage = s.stage
			result.Error = err
			result.ExitCode = exitCodeFor(err)
			result.Duration = time.Since(startTime)

			if o.opts.Storage != nil {
				_ = o.opts.Storage.UpdateRunStatus(result.RunID, "failed", string(s.stage), result.Duration)
			}

			return result, err
		}
	}

	if o.opts.StreamToTerminal {
		fmt.Printf("\n🏁 Coverage report ready: %s\n", o.cfg.ReportArtifact())
	}

	// Presenting is advisory: a failure here never fails the run.
	if !o.opts.SkipPresenter {
		o.state = StatePresenting
		result.State = StatePresenting

		stageResult, err := o.runStage(StagePresent, o.present, result.RunID)
		result.Stages = append(result.Stages, stageResult)
		if err != nil {
			result.Warning = err.Error()
		}
	}

	o.state = StateDone
	result.State = StateDone
	result.Status = "success"
	result.ExitCode = exitcodes.Success
	result.Duration = time.Since(startTime)

	if o.opts.Storage != nil {
		if err := o.opts.Storage.UpdateRunStatus(result.RunID, "success", "", result.Duration); err != nil {
			return nil, fmt.Errorf("failed to update run status: %w", err)
		}
	}

	return result, nil
}

// runStage executes a single stage and returns its result
func (o *Orchestrator) runStage(stage Stage, fn func() (string, error), runID int) (StageResult, error) {
	stageStart := time.Now()

	if o.opts.StreamToTerminal {
		fmt.Println("→", stage)
	}

	// Create stage execution record if storage is provided
	var stageExec *storage.StageExecution
	var err error
	if o.opts.Storage != nil {
		stageExec, err = o.opts.Storage.CreateStageExecution(runID, string(stage))
		if err != nil {
			return StageResult{}, fmt.Errorf("failed to create stage execution: %w", err)
		}
	}

	output, err := fn()
	stageDuration := time.Since(stageStart)

	stageResult := StageResult{
		Stage:    stage,
		Output:   output,
		Duration: stageDuration,
	}

	if err != nil {
		stageResult.Status = "failed"
		stageResult.Error = err

		if o.opts.StreamToTerminal {
			fmt.Println("❌ Stage failed:", err)
		}

		if o.opts.Storage != nil && stageExec != nil {
			_ = o.opts.Storage.UpdateStageExecution(stageExec.ID, "failed", output, stageDuration)
		}

		return stageResult, err
	}

	stageResult.Status = "success"

	if o.opts.StreamToTerminal {
		fmt.Println("✅ Done:", stage)
	}

	if o.opts.Storage != nil && stageExec != nil {
		if err := o.opts.Storage.UpdateStageExecution(stageExec.ID, "success", output, stageDuration); err != nil {
			return StageResult{}, fmt.Errorf("failed to update stage execution: %w", err)
		}
	}

	return stageResult, nil
}

// clean wipes the previous run's artifacts and recreates the empty data
// directory the instrumented processes will write raw profiles into.
func (o *Orchestrator) clean() (string, error) {
	if err := o.cleaner.Clean(); err != nil {
		return "", err
	}

	dataRoot := o.cfg.resolve(o.cfg.Report.DataRoot)
	if err := os.MkdirAll(dataRoot, 0755); err != nil {
		return "", &CleanupError{Path: dataRoot, Err: err}
	}
	return "", nil
}

func (o *Orchestrator) build() (string, error) {
	res, err := o.builder.Build()
	if err != nil || res.ExitCode != 0 {
		return res.Output, &BuildError{ExitCode: res.ExitCode, Output: res.Output, Err: err}
	}
	return res.Output, nil
}

func (o *Orchestrator) test() (string, error) {
	res, err := o.tester.Test()
	if err != nil || res.ExitCode != 0 {
		return res.Output, &TestFailure{ExitCode: res.ExitCode, Output: res.Output, Err: err}
	}
	return res.Output, nil
}

func (o *Orchestrator) generate() (string, error) {
	res, err := o.report.Generate()
	if err != nil || res.ExitCode != 0 {
		return res.Output, &ReportGenerationError{ExitCode: res.ExitCode, Output: res.Output, Err: err}
	}
	return res.Output, nil
}

func (o *Orchestrator) present() (string, error) {
	path := o.cfg.ReportArtifact()
	if err := o.viewer.Open(path); err != nil {
		return "", &PresentationError{Path: path, Err: err}
	}
	return "", nil
}

// exitCodeFor maps a fatal stage error to the process exit code. The failing
// collaborator's own exit code is surfaced unchanged; a collaborator that
// never started has none and maps to the generic runtime error code.
func exitCodeFor(err error) int {
	var cleanupErr *CleanupError
	if errors.As(err, &cleanupErr) {
		return exitcodes.CleanupFailure
	}

	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return collaboratorCode(buildErr.ExitCode)
	}
	var testErr *TestFailure
	if errors.As(err, &testErr) {
		return collaboratorCode(testErr.ExitCode)
	}
	var reportErr *ReportGenerationError
	if errors.As(err, &reportErr) {
		return collaboratorCode(reportErr.ExitCode)
	}

	return exitcodes.RuntimeErr
}

func collaboratorCode(code int) int {
	if code > 0 {
		return code
	}
	return exitcodes.RuntimeErr
}
