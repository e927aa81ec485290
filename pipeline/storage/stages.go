package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateStageExecution creates a new stage execution record
func (s *Storage) CreateStageExecution(runID int, stage string) (*StageExecution, error) {
	now := time.Now()
	result, err := s.db.Exec(
		"INSERT INTO stage_executions (run_id, stage, status, started_at) VALUES (?, ?, ?, ?)",
		runID, stage, "running", now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage execution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get stage execution ID: %w", err)
	}

	return &StageExecution{
		ID:        int(id),
		RunID:     runID,
		Stage:     stage,
		Status:    "running",
		StartedAt: now,
	}, nil
}

// UpdateStageExecution updates stage execution with output, status, and finish time
func (s *Storage) UpdateStageExecution(stageID int, status, output string, duration time.Duration) error {
	now := time.Now()
	durationStr := duration.String()
	_, err := s.db.Exec(
		"UPDATE stage_executions SET status = ?, output = ?, finished_at = ?, duration = ? WHERE id = ?",
		status, output, now, durationStr, stageID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stage execution: %w", err)
	}
	return nil
}

// GetStageExecutions retrieves all stage executions for a run
func (s *Storage) GetStageExecutions(runID int) ([]*StageExecution, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, stage, status, output, started_at, finished_at, duration FROM stage_executions WHERE run_id = ? ORDER BY id ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage executions: %w", err)
	}
	defer rows.Close()

	var stages []*StageExecution
	for rows.Next() {
		var stage StageExecution
		var output sql.NullString
		var finishedAt sql.NullTime
		var duration sql.NullString

		err := rows.Scan(&stage.ID, &stage.RunID, &stage.Stage, &stage.Status, &output, &stage.StartedAt, &finishedAt, &duration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage execution: %w", err)
		}

		if output.Valid {
			stage.Output = output.String
		}
		if finishedAt.Valid {
			stage.FinishedAt = &finishedAt.Time
		}
		if duration.Valid {
			durationStr := duration.String
			stage.Duration = &durationStr
		}

		stages = append(stages, &stage)
	}

	return stages, rows.Err()
}
