package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leun4m/colorful-coverage/exitcodes"
)

// Show executes the 'show' command: it prints one run and its stage results.
func Show(runID int) int {
	store, err := openStorage()
	if err != nil {
		log.Printf("Failed to initialize storage: %v", err)
		return exitcodes.RuntimeErr
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		log.Printf("Failed to load run %d: %v", runID, err)
		return exitcodes.RuntimeErr
	}

	stages, err := store.GetStageExecutions(runID)
	if err != nil {
		log.Printf("Failed to load stage executions: %v", err)
		return exitcodes.RuntimeErr
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Run %d (%s)", run.ID, run.Status))
	t.AppendHeader(table.Row{"Stage", "Status", "Duration", "Output"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Output", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, stage := range stages {
		duration := ""
		if stage.Duration != nil {
			duration = *stage.Duration
		}
		t.AppendRow(table.Row{
			stage.Stage,
			stage.Status,
			duration,
			strings.TrimSpace(stage.Output),
		})
	}

	t.Render()
	return exitcodes.Success
}
