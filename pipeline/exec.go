package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// CommandResult is what an external collaborator reports back.
type CommandResult struct {
	ExitCode int
	Output   string
}

// runCommand executes an external program and captures its combined output.
// When streamToTerminal is set the output is additionally mirrored to the
// terminal while the process runs.
func runCommand(name string, args []string, dir string, env map[string]string, streamToTerminal bool) (CommandResult, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	if len(env) > 0 {
		cmd.Env = os.Environ()
		for key, value := range env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
		}
	}

	var stdout, stderr bytes.Buffer
	var stdoutWriters []io.Writer
	var stderrWriters []io.Writer

	// Always capture output
	stdoutWriters = append(stdoutWriters, &stdout)
	stderrWriters = append(stderrWriters, &stderr)

	// Optionally also stream to terminal
	if streamToTerminal {
		stdoutWriters = append(stdoutWriters, os.Stdout)
		stderrWriters = append(stderrWriters, os.Stderr)
	}

	cmd.Stdout = io.MultiWriter(stdoutWriters...)
	cmd.Stderr = io.MultiWriter(stderrWriters...)

	err := cmd.Run()

	// Combine stdout and stderr
	combinedOutput := stdout.String() + stderr.String()
	if len(combinedOutput) > 0 && combinedOutput[len(combinedOutput)-1] != '\n' {
		combinedOutput += "\n"
	}

	result := CommandResult{ExitCode: exitCode(err), Output: combinedOutput}
	return result, err
}

// runShell executes a shell command line, the way pipeline steps are written
// in the config file.
func runShell(command, dir string, env map[string]string, streamToTerminal bool) (CommandResult, error) {
	return runCommand("bash", []string{"-c", command}, dir, env, streamToTerminal)
}

// exitCode maps a Run error to the child's exit status. A process that never
// started has no exit status and reports -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
