// Package cli — release.go implements the "portkeep release" command.
//
// Release is the explicit teardown path: it stops the project's session
// (if one is running) and deletes the sticky record, so the next resolve
// starts fresh from the scan tier. The resolver itself never deletes the
// record; only this command does.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portkeep/internal/config"
	"github.com/mmr-tortoise/portkeep/internal/docker"
	"github.com/mmr-tortoise/portkeep/internal/record"
)

// NewReleaseCommand creates the "release" cobra command.
func NewReleaseCommand() *cobra.Command {
	var keepRecord bool

	cmd := &cobra.Command{
		Use:   "release [dir]",
		Short: "Stop the project's session and forget its sticky port",
		Long: `Stop the project's dev session, if one is running, and delete the sticky
port record. Idempotent: releasing a project with no session and no record
succeeds quietly.

With --keep-record the session is stopped but the record survives, so the
next resolve reuses the same port.

Examples:
  portkeep release
  portkeep release --keep-record ~/src/app`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := projectDirFromArgs(args)
			if err != nil {
				return err
			}
			return runRelease(cmd.Context(), projectDir, keepRecord)
		},
	}

	cmd.Flags().BoolVar(&keepRecord, "keep-record", false, "Stop the session but keep the sticky record")

	return cmd
}

// runRelease stops the session and removes the record.
//
// Docker being unreachable is not fatal: with no daemon there is no
// session to stop, and the record cleanup should still happen.
func runRelease(ctx context.Context, projectDir string, keepRecord bool) error {
	stopped := false

	if cli, err := docker.NewClient(); err == nil {
		defer func() { _ = cli.Close() }()
		if err := cli.Ping(ctx); err == nil {
			controller := docker.NewController(cli, projectDir)

			info, err := controller.Status(ctx)
			if err != nil {
				return err
			}
			if info.Active {
				VerboseLog("Stopping session %s (port %d)", info.ContainerName, info.Port)
				if err := controller.Stop(ctx); err != nil {
					return err
				}
				stopped = true
			}
		} else {
			VerboseLog("Docker not responding, skipping session stop: %v", err)
		}
	} else {
		VerboseLog("Docker unavailable, skipping session stop: %v", err)
	}

	settings, err := config.Load(projectDir)
	if err != nil {
		return err
	}

	recordDeleted := false
	if !keepRecord {
		store := record.NewStoreWithPath(settings.RecordPath)
		if err := store.Delete(); err != nil {
			return err
		}
		recordDeleted = true
	}

	printReleaseResult(projectDir, stopped, recordDeleted)
	return nil
}

// printReleaseResult outputs what release actually did.
func printReleaseResult(projectDir string, stopped, recordDeleted bool) {
	if IsJSONOutput() {
		result := map[string]interface{}{
			"projectDir":     projectDir,
			"sessionStopped": stopped,
			"recordDeleted":  recordDeleted,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	switch {
	case stopped && recordDeleted:
		fmt.Println("Stopped session and deleted sticky record")
	case stopped:
		fmt.Println("Stopped session (sticky record kept)")
	case recordDeleted:
		fmt.Println("No session running; deleted sticky record")
	default:
		fmt.Println("Nothing to release")
	}
}
