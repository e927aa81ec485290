package pipeline

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CommandConfig describes one shell-invoked collaborator.
type CommandConfig struct {
	Command string            `yaml:"command"`
	Env     map[string]string `yaml:"env"`
}

// ReportConfig describes the coverage-conversion collaborator invocation.
type ReportConfig struct {
	Tool       string `yaml:"tool"`
	SourceRoot string `yaml:"source_root"`
	DataRoot   string `yaml:"data_root"`
	Format     string `yaml:"format"`
	Branch     bool   `yaml:"branch"`
	BinaryPath string `yaml:"binary_path"`
	Output     string `yaml:"output"`
}

// Config holds the process-wide project configuration for a pipeline run.
type Config struct {
	ProjectRoot string        `yaml:"project_root"`
	ArtifactDir string        `yaml:"artifact_dir"`
	Build       CommandConfig `yaml:"build"`
	Test        CommandConfig `yaml:"test"`
	Report      ReportConfig  `yaml:"report"`
	Viewer      string        `yaml:"viewer"`
}

// DefaultConfig returns the cargo + grcov toolchain configuration used when
// no config file is present.
func DefaultConfig() *Config {
	return &Config{
		ProjectRoot: ".",
		ArtifactDir: "target/coverage",
		Build: CommandConfig{
			Command: "cargo build",
			Env:     instrumentEnv(),
		},
		Test: CommandConfig{
			Command: "cargo test",
			Env:     instrumentEnv(),
		},
		Report: ReportConfig{
			Tool:       "grcov",
			SourceRoot: "src",
			DataRoot:   "target/coverage/raw",
			Format:     "html",
			Branch:     true,
			BinaryPath: "target/debug",
			Output:     "target/coverage/html",
		},
	}
}

// instrumentEnv is the environment both build and test need so that probes
// are compiled in and raw profiles land inside the artifact directory.
func instrumentEnv() map[string]string {
	return map[string]string{
		"CARGO_INCREMENTAL": "0",
		"RUSTFLAGS":         "-Cinstrument-coverage",
		"LLVM_PROFILE_FILE": "target/coverage/raw/%p-%m.profraw",
	}
}

// LoadConfig reads a yaml config file. Fields absent from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve turns a config-relative path into one rooted at the project root.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ProjectRoot, path)
}

// ReportArtifact returns the path the presenter should open. HTML output is
// a directory; the entry point is its index page.
func (c *Config) ReportArtifact() string {
	out := c.resolve(c.Report.Output)
	if c.Report.Format == "html" {
		return filepath.Join(out, "index.html")
	}
	return out
}
