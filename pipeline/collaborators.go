package pipeline

import (
	"os/exec"
	"runtime"
)

// Builder produces a fresh instrumented build artifact.
type Builder interface {
	Build() (CommandResult, error)
}

// TestRunner runs the test suite against the instrumented build. Raw
// coverage data files are written as a side effect.
type TestRunner interface {
	Test() (CommandResult, error)
}

// ReportGenerator converts raw coverage data into the report artifact.
type ReportGenerator interface {
	Generate() (CommandResult, error)
}

// ReportViewer opens the report artifact for the user. Best effort only.
type ReportViewer interface {
	Open(path string) error
}

// Cleaner removes the previous run's artifacts.
type Cleaner interface {
	Clean() error
}

type shellBuilder struct {
	cfg    *Config
	stream bool
}

func (b *shellBuilder) Build() (CommandResult, error) {
	return runShell(b.cfg.Build.Command, b.cfg.ProjectRoot, b.cfg.Build.Env, b.stream)
}

type shellTestRunner struct {
	cfg    *Config
	stream bool
}

func (t *shellTestRunner) Test() (CommandResult, error) {
	return runShell(t.cfg.Test.Command, t.cfg.ProjectRoot, t.cfg.Test.Env, t.stream)
}

type grcovGenerator struct {
	cfg    *Config
	stream bool
}

func (g *grcovGenerator) Generate() (CommandResult, error) {
	return runCommand(g.cfg.Report.Tool, grcovArgs(g.cfg), g.cfg.ProjectRoot, nil, g.stream)
}

// grcovArgs builds the converter's argument list. Coverage entries for files
// that no longer exist are always skipped rather than failing the render,
// since the module list can drift between instrumentation and rendering.
func grcovArgs(cfg *Config) []string {
	args := []string{
		cfg.Report.DataRoot,
		"-s", cfg.Report.SourceRoot,
		"-t", cfg.Report.Format,
	}
	if cfg.Report.Branch {
		args = append(args, "--branch")
	}
	args = append(args, "--ignore-not-existing")
	if cfg.Report.BinaryPath != "" {
		args = append(args, "--binary-path", cfg.Report.BinaryPath)
	}
	args = append(args, "-o", cfg.Report.Output)
	return args
}

type systemViewer struct {
	command string
}

func (v *systemViewer) Open(path string) error {
	command := v.command
	if command == "" {
		command = defaultViewerCommand()
	}
	return exec.Command(command, path).Run()
}

// defaultViewerCommand picks the platform's default-handler launcher.
func defaultViewerCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}
