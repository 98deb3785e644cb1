package main

import (
	"os"

	"github.com/wonny/avssa/cmd/avssa/commands"
)

// main is the entry point for the AVSSA CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/avssa [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
