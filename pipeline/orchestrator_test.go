package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leun4m/colorful-coverage/exitcodes"
	"github.com/leun4m/colorful-coverage/pipeline/storage"
)

type fakeCleaner struct {
	calls *[]string
	err   error
}

func (f *fakeCleaner) Clean() error {
	*f.calls = append(*f.calls, "clean")
	return f.err
}

type fakeBuilder struct {
	calls *[]string
	res   CommandResult
	err   error
}

func (f *fakeBuilder) Build() (CommandResult, error) {
	*f.calls = append(*f.calls, "build")
	return f.res, f.err
}

type fakeTester struct {
	calls *[]string
	res   CommandResult
	err   error
}

func (f *fakeTester) Test() (CommandResult, error) {
	*f.calls = append(*f.calls, "test")
	return f.res, f.err
}

type fakeGenerator struct {
	calls *[]string
	res   CommandResult
	err   error
}

func (f *fakeGenerator) Generate() (CommandResult, error) {
	*f.calls = append(*f.calls, "report")
	return f.res, f.err
}

type fakeViewer struct {
	calls *[]string
	path  string
	err   error
}

func (f *fakeViewer) Open(path string) error {
	*f.calls = append(*f.calls, "present")
	f.path = path
	return f.err
}

type builderFunc func() (CommandResult, error)

func (f builderFunc) Build() (CommandResult, error) { return f() }

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ProjectRoot = t.TempDir()
	return cfg
}

func TestRunAllStagesSucceed(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	viewer := &fakeViewer{calls: &calls}
	o := New(cfg, RunOptions{}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls},
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls},
		viewer,
	)

	result, err := o.Run()
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, StateDone, o.State())
	assert.Equal(t, exitcodes.Success, result.ExitCode)
	assert.Empty(t, result.FailedStage)
	assert.Empty(t, result.Warning)
	assert.Equal(t, []string{"clean", "build", "test", "report", "present"}, calls)
	require.Len(t, result.Stages, 5)
	for _, stage := range result.Stages {
		assert.Equal(t, "success", stage.Status)
	}
	assert.Equal(t, cfg.ReportArtifact(), viewer.path)
}

func TestCleanerFailureStopsEverything(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	o := New(cfg, RunOptions{}).WithCollaborators(
		&fakeCleaner{calls: &calls, err: &CleanupError{Path: "target/coverage", Err: errors.New("permission denied")}},
		&fakeBuilder{calls: &calls},
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls},
	)

	result, err := o.Run()
	require.Error(t, err)

	var cleanupErr *CleanupError
	require.ErrorAs(t, err, &cleanupErr)
	assert.Equal(t, []string{"clean"}, calls)
	assert.Equal(t, "failed", result.Status)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, StageClean, result.FailedStage)
	assert.Equal(t, exitcodes.CleanupFailure, result.ExitCode)
}

func TestBuildFailurePropagatesExitCode(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	o := New(cfg, RunOptions{}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls, res: CommandResult{ExitCode: 101, Output: "error[E0308]: mismatched types\n"}, err: errors.New("exit status 101")},
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls},
	)

	result, err := o.Run()
	require.Error(t, err)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, 101, buildErr.ExitCode)
	assert.Contains(t, buildErr.Output, "mismatched types")
	assert.Equal(t, []string{"clean", "build"}, calls)
	assert.Equal(t, StageBuild, result.FailedStage)
	assert.Equal(t, 101, result.ExitCode)
	require.Len(t, result.Stages, 2)
	assert.Equal(t, "failed", result.Stages[1].Status)
}

func TestBuildToolNotStartable(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	o := New(cfg, RunOptions{}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls, res: CommandResult{ExitCode: -1}, err: errors.New("executable file not found")},
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls},
	)

	result, err := o.Run()
	require.Error(t, err)
	assert.Equal(t, exitcodes.RuntimeErr, result.ExitCode)
}

func TestTestFailureSkipsReport(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	o := New(cfg, RunOptions{}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls},
		&fakeTester{calls: &calls, res: CommandResult{ExitCode: 1, Output: "test result: FAILED\n"}, err: errors.New("exit status 1")},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls},
	)

	result, err := o.Run()
	require.Error(t, err)

	var testErr *TestFailure
	require.ErrorAs(t, err, &testErr)
	assert.Equal(t, []string{"clean", "build", "test"}, calls)
	assert.Equal(t, StageTest, result.FailedStage)
	assert.Equal(t, 1, result.ExitCode)
}

func TestReportFailureSkipsPresenter(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	o := New(cfg, RunOptions{}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls},
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls, res: CommandResult{ExitCode: 2, Output: "No coverage files found\n"}, err: errors.New("exit status 2")},
		&fakeViewer{calls: &calls},
	)

	result, err := o.Run()
	require.Error(t, err)

	var reportErr *ReportGenerationError
	require.ErrorAs(t, err, &reportErr)
	assert.Equal(t, []string{"clean", "build", "test", "report"}, calls)
	assert.Equal(t, StageReport, result.FailedStage)
	assert.Equal(t, 2, result.ExitCode)
}

func TestPresenterFailureIsNonFatal(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	o := New(cfg, RunOptions{}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls},
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls, err: errors.New("no display")},
	)

	result, err := o.Run()
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, exitcodes.Success, result.ExitCode)
	assert.Empty(t, result.FailedStage)
	assert.Contains(t, result.Warning, "could not open report")
	require.Len(t, result.Stages, 5)
	assert.Equal(t, "failed", result.Stages[4].Status)
}

func TestSkipPresenter(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	o := New(cfg, RunOptions{SkipPresenter: true}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls},
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls},
	)

	result, err := o.Run()
	require.NoError(t, err)

	assert.Equal(t, []string{"clean", "build", "test", "report"}, calls)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, StateDone, result.State)
	require.Len(t, result.Stages, 4)
}

func TestArtifactDirEmptyBeforeBuild(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	// Plant a stale report from a previous run
	artifactDir := filepath.Join(cfg.ProjectRoot, cfg.ArtifactDir)
	require.NoError(t, os.MkdirAll(filepath.Join(artifactDir, "html"), 0755))
	staleReport := filepath.Join(artifactDir, "html", "index.html")
	require.NoError(t, os.WriteFile(staleReport, []byte("<html>old</html>"), 0644))

	var entriesAtBuild []string
	builder := builderFunc(func() (CommandResult, error) {
		entries, err := os.ReadDir(artifactDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return CommandResult{}, err
		}
		for _, e := range entries {
			entriesAtBuild = append(entriesAtBuild, e.Name())
		}
		return CommandResult{}, nil
	})

	o := New(cfg, RunOptions{SkipPresenter: true}).WithCollaborators(
		&ArtifactCleaner{ProjectRoot: cfg.ProjectRoot, ArtifactDir: cfg.ArtifactDir},
		builder,
		&fakeTester{calls: &calls},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls},
	)

	_, err := o.Run()
	require.NoError(t, err)

	// The stale report is gone; only the freshly created empty data
	// directory may remain.
	assert.NoFileExists(t, staleReport)
	assert.NotContains(t, entriesAtBuild, "html")
	for _, name := range entriesAtBuild {
		sub, err := os.ReadDir(filepath.Join(artifactDir, name))
		require.NoError(t, err)
		assert.Empty(t, sub)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	calls := []string{}
	cfg := testConfig(t)

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "coverage.db"))
	require.NoError(t, err)
	defer store.Close()

	o := New(cfg, RunOptions{Storage: store}).WithCollaborators(
		&fakeCleaner{calls: &calls},
		&fakeBuilder{calls: &calls},
		&fakeTester{calls: &calls, res: CommandResult{ExitCode: 1, Output: "2 failed\n"}, err: errors.New("exit status 1")},
		&fakeGenerator{calls: &calls},
		&fakeViewer{calls: &calls},
	)

	result, err := o.Run()
	require.Error(t, err)
	require.NotZero(t, result.RunID)

	run, err := store.GetRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "failed", run.Status)
	assert.Equal(t, "test", run.FailedStage)

	stages, err := store.GetStageExecutions(result.RunID)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "clean", stages[0].Stage)
	assert.Equal(t, "success", stages[0].Status)
	assert.Equal(t, "test", stages[2].Stage)
	assert.Equal(t, "failed", stages[2].Status)
	assert.Contains(t, stages[2].Output, "2 failed")
}
