package pipeline

import "fmt"

// CleanupError reports that removing the artifact directory was blocked.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleaning artifact directory %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

// BuildError reports a nonzero exit from the build collaborator.
type BuildError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("instrumented build failed (exit %d)", e.ExitCode)
}

func (e *BuildError) Unwrap() error { return e.Err }

// TestFailure reports a nonzero exit from the test collaborator. Any nonzero
// exit fails the run, even when some tests passed.
type TestFailure struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *TestFailure) Error() string {
	return fmt.Sprintf("test run failed (exit %d)", e.ExitCode)
}

func (e *TestFailure) Unwrap() error { return e.Err }

// ReportGenerationError reports that the coverage converter exited nonzero,
// typically because the test stage produced no coverage data.
type ReportGenerationError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *ReportGenerationError) Error() string {
	return fmt.Sprintf("report generation failed (exit %d)", e.ExitCode)
}

func (e *ReportGenerationError) Unwrap() error { return e.Err }

// PresentationError reports that the report viewer could not be launched.
// It is advisory: the report itself was already generated.
type PresentationError struct {
	Path string
	Err  error
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("could not open report %s: %v", e.Path, e.Err)
}

func (e *PresentationError) Unwrap() error { return e.Err }
