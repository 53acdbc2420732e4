// Package main is the entry point for the studio admin CLI.
package main

import (
	"os"

	"github.com/studio-atelier/site-backend/cmd/studioctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
