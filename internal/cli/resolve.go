// Package cli — resolve.go implements the "portkeep resolve" command,
// the primary entry point used by launcher scripts:
//
//	PORT=$(portkeep resolve)
//
// In text mode stdout carries exactly the resolved port number, so the
// command composes with shell substitution; everything else goes to
// stderr. JSON mode emits the full assignment including the tier.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portkeep/internal/config"
	"github.com/mmr-tortoise/portkeep/internal/docker"
	"github.com/mmr-tortoise/portkeep/internal/model"
	"github.com/mmr-tortoise/portkeep/internal/port"
	"github.com/mmr-tortoise/portkeep/internal/record"
)

// NewResolveCommand creates the "resolve" cobra command.
func NewResolveCommand() *cobra.Command {
	var (
		basePort        int
		maxAttempts     int
		shutdownTimeout time.Duration
		noReclaim       bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [dir]",
		Short: "Resolve the sticky port for a project",
		Long: `Resolve the TCP port the project's dev server should bind to.

Resolution order:
  1. Reclaim: if a session is running for the project, stop it and reuse
     its port (bounded teardown wait).
  2. Sticky: reuse the recorded port if it is still free.
  3. Scan: probe ports from the base port upward and take the first free one.

The chosen port is written to the record file before the command returns.
In text mode stdout carries only the port number, for use in scripts:

  PORT=$(portkeep resolve)

Examples:
  portkeep resolve
  portkeep resolve --base-port 8000 --max-attempts 50 ~/src/app
  portkeep resolve --no-reclaim --json`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := projectDirFromArgs(args)
			if err != nil {
				return err
			}

			settings, err := config.Load(projectDir)
			if err != nil {
				return err
			}

			// Flags beat every other configuration layer.
			if cmd.Flags().Changed("base-port") {
				if !model.ValidPort(basePort) {
					return model.NewCLIError(model.ExitConfigError,
						fmt.Sprintf("--base-port %d out of range (1-65535)", basePort))
				}
				settings.BasePort = basePort
				settings.BasePortSource = config.SourceFlag
			}
			if cmd.Flags().Changed("max-attempts") {
				if maxAttempts < 1 {
					return model.NewCLIError(model.ExitConfigError,
						fmt.Sprintf("--max-attempts must be positive, got %d", maxAttempts))
				}
				settings.MaxAttempts = maxAttempts
			}
			if cmd.Flags().Changed("shutdown-timeout") {
				if shutdownTimeout <= 0 {
					return model.NewCLIError(model.ExitConfigError,
						fmt.Sprintf("--shutdown-timeout must be positive, got %s", shutdownTimeout))
				}
				settings.ShutdownTimeout = shutdownTimeout
			}

			return runResolve(cmd.Context(), projectDir, settings, noReclaim)
		},
	}

	cmd.Flags().IntVar(&basePort, "base-port", port.DefaultBasePort, "First port of the scan range")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", port.DefaultMaxAttempts, "Number of ports to probe before giving up")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", port.DefaultShutdownTimeout, "How long to wait for session teardown during reclaim")
	cmd.Flags().BoolVar(&noReclaim, "no-reclaim", false, "Skip the session reclaim tier (never stop a running session)")

	return cmd
}

// runResolve wires the resolver's capabilities and executes resolution.
func runResolve(ctx context.Context, projectDir string, settings *config.Settings, noReclaim bool) error {
	VerboseLog("Base port %d (from %s), %d attempts, record at %s",
		settings.BasePort, settings.BasePortSource, settings.MaxAttempts, settings.RecordPath)

	// Session controller: only wired when reclaim is wanted AND Docker is
	// reachable. A missing daemon downgrades resolve to sticky/scan —
	// with no orchestrator there is no session holding a port anyway.
	session, cleanup := sessionController(ctx, projectDir, noReclaim)
	defer cleanup()

	resolver := port.NewResolver(
		port.NewScanner(),
		session,
		record.NewStoreWithPath(settings.RecordPath),
		port.Options{
			BasePort:        settings.BasePort,
			MaxAttempts:     settings.MaxAttempts,
			ShutdownTimeout: settings.ShutdownTimeout,
			Logf:            VerboseLog,
		},
	)

	assignment, err := resolver.Resolve(ctx, projectDir)
	if err != nil {
		var exhausted *model.PortExhaustedError
		if errors.As(err, &exhausted) {
			return model.WrapCLIError(model.ExitPortExhausted, "port resolution failed", err)
		}
		return err
	}

	printAssignment(assignment)
	return nil
}

// sessionController connects to Docker and builds the session capability.
// Returns a nil controller (reclaim disabled) when --no-reclaim is set or
// the daemon is unreachable, plus a cleanup func for the client.
func sessionController(ctx context.Context, projectDir string, noReclaim bool) (port.SessionController, func()) {
	if noReclaim {
		VerboseLog("Reclaim tier disabled by --no-reclaim")
		return nil, func() {}
	}

	cli, err := docker.NewClient()
	if err != nil {
		VerboseLog("Docker unavailable, skipping reclaim tier: %v", err)
		return nil, func() {}
	}
	if err := cli.Ping(ctx); err != nil {
		VerboseLog("Docker not responding, skipping reclaim tier: %v", err)
		_ = cli.Close()
		return nil, func() {}
	}

	return docker.NewController(cli, projectDir), func() { _ = cli.Close() }
}

// printAssignment outputs the result. Text mode prints only the port so
// shell substitution works; JSON mode includes the tier and project dir.
func printAssignment(assignment *model.PortAssignment) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(assignment, "", "  ")
		fmt.Println(string(data))
		return
	}

	VerboseLog("Resolved via %s tier", assignment.Tier)
	fmt.Println(assignment.Port)
}
