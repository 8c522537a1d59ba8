// Package cli — scan.go implements the "portkeep scan" command, a
// diagnostic view of the configured scan range. It answers "why did
// resolve pick that port?" by showing which ports in the range are
// already taken.
package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/portkeep/internal/config"
	"github.com/mmr-tortoise/portkeep/internal/model"
	"github.com/mmr-tortoise/portkeep/internal/port"
)

// NewScanCommand creates the "scan" cobra command.
func NewScanCommand() *cobra.Command {
	var (
		basePort    int
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Show port occupancy in the scan range",
		Long: `Probe every port in the scan range [base, base+attempts) and report which
are in use. The range comes from the same configuration layers as resolve
(flags, PORTKEEP_BASE_PORT, .portkeep.yml, devcontainer.json).

Examples:
  portkeep scan
  portkeep scan --base-port 8000 --max-attempts 10`,

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

			if cmd.Flags().Changed("base-port") {
				if !model.ValidPort(basePort) {
					return model.NewCLIError(model.ExitConfigError,
						fmt.Sprintf("--base-port %d out of range (1-65535)", basePort))
				}
				settings.BasePort = basePort
			}
			if cmd.Flags().Changed("max-attempts") {
				if maxAttempts < 1 {
					return model.NewCLIError(model.ExitConfigError,
						fmt.Sprintf("--max-attempts must be positive, got %d", maxAttempts))
				}
				settings.MaxAttempts = maxAttempts
			}

			runScan(settings)
			return nil
		},
	}

	cmd.Flags().IntVar(&basePort, "base-port", port.DefaultBasePort, "First port of the scan range")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", port.DefaultMaxAttempts, "Number of ports in the range")

	return cmd
}

// runScan probes the range and prints the result.
func runScan(settings *config.Settings) {
	start := settings.BasePort
	end := settings.BasePort + settings.MaxAttempts - 1
	if end > model.MaxPort {
		end = model.MaxPort
	}

	used := port.NewScanner().UsedPorts(start, end)

	if IsJSONOutput() {
		result := map[string]interface{}{
			"rangeStart": start,
			"rangeEnd":   end,
			"usedPorts":  used,
			"freeCount":  (end - start + 1) - len(used),
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Range %d-%d: %d used, %d free\n", start, end, len(used), (end-start+1)-len(used))
	if len(used) > 0 {
		fmt.Printf("In use: %s\n", FormatPortList(used))
	}
}

// FormatPortList renders a port slice as a comma-separated string,
// or "-" when empty.
func FormatPortList(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		parts = append(parts, strconv.Itoa(p))
	}
	return strings.Join(parts, ",")
}
