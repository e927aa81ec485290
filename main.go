package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/leun4m/colorful-coverage/cmd"
)

func main() {
	command := "run"
	if len(os.Args) >= 2 {
		command = os.Args[1]
	}

	switch command {
	case "run":
		configPath := ""
		if len(os.Args) >= 3 {
			configPath = os.Args[2]
		}
		os.Exit(cmd.Run(configPath))
	case "history":
		limit := 20
		if len(os.Args) >= 3 {
			n, err := strconv.Atoi(os.Args[2])
			if err != nil || n <= 0 {
				fmt.Println("Invalid limit:", os.Args[2])
				os.Exit(1)
			}
			limit = n
		}
		os.Exit(cmd.History(limit))
	case "show":
		if len(os.Args) < 3 {
			fmt.Println("Usage: colorful-coverage show <run-id>")
			os.Exit(1)
		}
		runID, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Println("Invalid run ID:", os.Args[2])
			os.Exit(1)
		}
		os.Exit(cmd.Show(runID))
	default:
		fmt.Println("Unknown command:", command)
		os.Exit(1)
	}
}
