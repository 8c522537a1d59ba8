// Package cli implements the cobra-based CLI commands for portkeep.
//
// Each subcommand (resolve, status, release, scan) is defined in its own
// file within this package. This file defines the root command that serves
// as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portkeep/internal/model"
)

// Global flag variables shared across all subcommands, bound to cobra
// persistent flags on the root command.
var (
	// jsonOutput switches command output to structured JSON for machine
	// consumption. Default is plain text.
	jsonOutput bool

	// verbose enables progress logging on stderr.
	verbose bool
)

// Version, Commit, and Date are injected from the main package, which
// receives them from build-time ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself performs no action — it provides help text and
// global flags. Actual functionality lives in the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portkeep",
		Short: "Sticky port reservation for Docker dev sessions",
		Long: `portkeep assigns a TCP port to a project's development session and keeps
it stable across restarts.

Resolution tries three strategies in order: reclaim the port from the
project's running session (stopping it first), reuse the port persisted in
the sticky record if it is still free, or scan for a free port starting at
the base port. The chosen port is written to the record file so the next
invocation picks it again.`,

		// Errors are formatted by Execute (text or JSON); cobra's own
		// usage/error printing would duplicate that.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewResolveCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewReleaseCommand())
	rootCmd.AddCommand(NewScanCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into OS exit codes.
// CLIError values carry their own code; anything else exits 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error in the format selected by --json. Errors
// always go to stderr; stdout is reserved for successful command output
// (scripts capture it as the resolved port).
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}

// projectDirFromArgs resolves the optional positional project directory,
// defaulting to the current working directory. The result is absolute:
// it is matched verbatim against container labels and used to locate the
// record and config files.
func projectDirFromArgs(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory %q: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}

	return abs, nil
}
