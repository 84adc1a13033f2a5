// Package main is the entry point for the ifc-cost CLI.
package main

import (
	"os"

	"ifc-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
