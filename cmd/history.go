package cmd

import (
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leun4m/colorful-coverage/exitcodes"
)

// History executes the 'history' command: it prints the most recent pipeline
// runs from the run-history database.
func History(limit int) int {
	store, err := openStorage()
	if err != nil {
		log.Printf("Failed to initialize storage: %v", err)
		return exitcodes.RuntimeErr
	}
	defer store.Close()

	runs, err := store.GetRuns(limit)
	if err != nil {
		log.Printf("Failed to load runs: %v", err)
		return exitcodes.RuntimeErr
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Coverage Runs")
	t.AppendHeader(table.Row{"ID", "Status", "Failed Stage", "Started", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "ID", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, run := range runs {
		duration := ""
		if run.Duration != nil {
			duration = *run.Duration
		}
		t.AppendRow(table.Row{
			run.ID,
			run.Status,
			run.FailedStage,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			duration,
		})
	}

	t.Render()
	return exitcodes.Success
}
