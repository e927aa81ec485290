package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/leun4m/colorful-coverage/exitcodes"
	"github.com/leun4m/colorful-coverage/pipeline"
	"github.com/leun4m/colorful-coverage/pipeline/storage"
)

const defaultConfigFile = "coverage.yml"

// Run executes the 'run' command and returns the process exit code.
func Run(configPath string) int {
	// Load .env if present
	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return exitcodes.RuntimeErr
	}

	store, err := openStorage()
	if err != nil {
		log.Printf("Failed to initialize storage: %v", err)
		return exitcodes.RuntimeErr
	}
	defer store.Close()

	orch := pipeline.New(cfg, pipeline.RunOptions{
		Storage:          store,
		StreamToTerminal: true, // Always stream to console for local runs
		SkipPresenter:    os.Getenv("COVERAGE_NO_OPEN") == "1",
	})

	result, err := orch.Run()
	if err != nil {
		if result == nil {
			log.Printf("Pipeline failed: %v", err)
			return exitcodes.RuntimeErr
		}
		log.Printf("Pipeline failed at stage '%s': %v", result.FailedStage, err)
		return result.ExitCode
	}

	if result.Warning != "" {
		log.Printf("⚠️  %s", result.Warning)
	}

	fmt.Printf("\n📊 Run ID: %d | Status: %s | Duration: %s\n", result.RunID, result.Status, result.Duration)

	return result.ExitCode
}

// loadConfig resolves the config to run with. An explicitly passed path must
// exist; without one, coverage.yml is used when present, otherwise the
// compiled-in cargo/grcov defaults.
func loadConfig(configPath string) (*pipeline.Config, error) {
	if configPath != "" {
		return pipeline.LoadConfig(configPath)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return pipeline.LoadConfig(defaultConfigFile)
	}
	return pipeline.DefaultConfig(), nil
}

// openStorage opens the run-history database under the data directory in the
// current working directory.
func openStorage() (*storage.Storage, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	dataDir := filepath.Join(cwd, "data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := os.Getenv("COVERAGE_DB")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "coverage.db")
	}

	return storage.NewStorage(dbPath)
}
