package main

import (
	"os"

	"example.com/ai-travel-planner/cmd/planctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
