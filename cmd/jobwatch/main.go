package main

import (
	"fmt"
	"os"

	"github.com/3leaps/jobwatch/internal/cmd"
)

// Injected at build time via -ldflags.
var (
	version   = "dev"
	commit    = "HEAD"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
