package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactCleaner removes the artifact directory of a previous run so stale
// coverage data can never leak into a new report. Deletion is irreversible,
// so it only ever targets the configured artifact directory and refuses
// anything that resolves outside the project root.
type ArtifactCleaner struct {
	ProjectRoot string
	ArtifactDir string
}

// Clean removes the artifact directory and everything in it. An absent
// directory is a success: there is simply nothing stale to remove.
func (c *ArtifactCleaner) Clean() error {
	target, err := c.target()
	if err != nil {
		return err
	}

	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := os.RemoveAll(target); err != nil {
		return &CleanupError{Path: target, Err: err}
	}
	return nil
}

// target resolves and validates the directory to delete.
func (c *ArtifactCleaner) target() (string, error) {
	root, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return "", &CleanupError{Path: c.ProjectRoot, Err: err}
	}

	dir := c.ArtifactDir
	if dir == "" {
		return "", &CleanupError{Path: dir, Err: errors.New("artifact directory not configured")}
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dir = filepath.Clean(dir)

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &CleanupError{Path: dir, Err: errors.New("refusing to delete outside the project root")}
	}
	return dir, nil
}
