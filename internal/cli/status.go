// Package cli — status.go implements the "portkeep status" command.
//
// Status is strictly read-only: it reports the sticky record, whether the
// recorded port is currently free, and the state of the project's session.
// It never stops anything and never writes the record.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portkeep/internal/config"
	"github.com/mmr-tortoise/portkeep/internal/docker"
	"github.com/mmr-tortoise/portkeep/internal/model"
	"github.com/mmr-tortoise/portkeep/internal/port"
	"github.com/mmr-tortoise/portkeep/internal/record"
)

// recordState summarizes the sticky record for status output.
type recordState string

const (
	recordPresent recordState = "present"
	recordAbsent  recordState = "absent"
	recordCorrupt recordState = "corrupt"
)

// statusReport is the full status of a project's port reservation.
type statusReport struct {
	ProjectDir     string                `json:"projectDir"`
	RecordPath     string                `json:"recordPath"`
	Record         recordState           `json:"record"`
	RecordedPort   int                   `json:"recordedPort,omitempty"`
	PortFree       bool                  `json:"portFree"`
	BasePort       int                   `json:"basePort"`
	BasePortSource config.BasePortSource `json:"basePortSource"`
	Session        model.SessionInfo     `json:"session"`
	SessionKnown   bool                  `json:"sessionKnown"`
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [dir]",
		Short: "Show the project's sticky record and session state",
		Long: `Show the sticky port record, whether the recorded port is currently free,
and whether a dev session is running for the project.

Status is read-only: it never stops a session and never touches the record.

Examples:
  portkeep status
  portkeep status --json ~/src/app`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := projectDirFromArgs(args)
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), projectDir)
		},
	}

	return cmd
}

// runStatus gathers and prints the status report.
func runStatus(ctx context.Context, projectDir string) error {
	settings, err := config.Load(projectDir)
	if err != nil {
		return err
	}

	report := statusReport{
		ProjectDir:     projectDir,
		RecordPath:     settings.RecordPath,
		BasePort:       settings.BasePort,
		BasePortSource: settings.BasePortSource,
	}

	// Sticky record, distinguishing absent from corrupt for the user even
	// though the resolver treats both the same.
	store := record.NewStoreWithPath(settings.RecordPath)
	switch recorded, err := store.Load(); {
	case err == nil:
		report.Record = recordPresent
		report.RecordedPort = recorded
		report.PortFree = port.NewScanner().IsPortAvailable(recorded)
	case errors.Is(err, model.ErrRecordCorrupt):
		report.Record = recordCorrupt
	default:
		report.Record = recordAbsent
	}

	// Session state. Docker being unreachable is reported as "unknown"
	// rather than failing the whole command.
	if cli, err := docker.NewClient(); err == nil {
		defer func() { _ = cli.Close() }()
		if err := cli.Ping(ctx); err == nil {
			if info, err := docker.NewController(cli, projectDir).Status(ctx); err == nil {
				report.Session = info
				report.SessionKnown = true
			} else {
				VerboseLog("session status query failed: %v", err)
			}
		} else {
			VerboseLog("Docker not responding: %v", err)
		}
	} else {
		VerboseLog("Docker unavailable: %v", err)
	}

	printStatus(report)
	return nil
}

// printStatus outputs the report in text or JSON form.
func printStatus(report statusReport) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Project:    %s\n", report.ProjectDir)
	fmt.Printf("Record:     %s\n", formatRecordLine(report))
	fmt.Printf("Base port:  %d (from %s)\n", report.BasePort, report.BasePortSource)
	fmt.Printf("Session:    %s\n", formatSessionLine(report))
}

// formatRecordLine renders the record portion of the text status.
func formatRecordLine(report statusReport) string {
	switch report.Record {
	case recordPresent:
		availability := "free"
		if !report.PortFree {
			availability = "in use"
		}
		return fmt.Sprintf("port %d (%s) — %s", report.RecordedPort, availability, report.RecordPath)
	case recordCorrupt:
		return fmt.Sprintf("corrupt — %s (will be ignored and rewritten on next resolve)", report.RecordPath)
	default:
		return fmt.Sprintf("none — %s", report.RecordPath)
	}
}

// formatSessionLine renders the session portion of the text status.
func formatSessionLine(report statusReport) string {
	if !report.SessionKnown {
		return "unknown (Docker unavailable)"
	}
	if !report.Session.Active {
		return "not running"
	}
	if report.Session.ContainerName != "" {
		return fmt.Sprintf("running on port %d (%s)", report.Session.Port, report.Session.ContainerName)
	}
	return fmt.Sprintf("running on port %d", report.Session.Port)
}
