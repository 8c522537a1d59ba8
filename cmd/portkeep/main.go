// Package main is the entry point for the portkeep CLI.
//
// The binary resolves and maintains sticky port assignments for Docker
// dev sessions. All functionality lives in the internal/cli package,
// which defines the cobra commands.
package main

import (
	"github.com/mmr-tortoise/portkeep/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
// During development they default to "dev", "none", and "unknown".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
