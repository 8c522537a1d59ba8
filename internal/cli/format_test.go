// Package cli — format_test.go contains unit tests for the pure
// formatting and argument-resolution helpers used by the commands.
//
// These tests verify data transformation logic without requiring a
// Docker daemon or any network access.
package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/portkeep/internal/config"
	"github.com/mmr-tortoise/portkeep/internal/model"
)

// TestFormatPortList verifies the comma-separated port rendering used by
// the scan command.
func TestFormatPortList(t *testing.T) {
	tests := []struct {
		name  string
		ports []int
		want  string
	}{
		{name: "empty returns dash", ports: []int{}, want: "-"},
		{name: "nil returns dash", ports: nil, want: "-"},
		{name: "single port", ports: []int{3000}, want: "3000"},
		{name: "multiple ports", ports: []int{3000, 3001, 3005}, want: "3000,3001,3005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPortList(tt.ports))
		})
	}
}

// TestFormatRecordLine verifies the record portion of the text status.
func TestFormatRecordLine(t *testing.T) {
	tests := []struct {
		name   string
		report statusReport
		want   string
	}{
		{
			name: "present and free",
			report: statusReport{
				Record: recordPresent, RecordedPort: 4010, PortFree: true,
				RecordPath: "/proj/.portkeep-port",
			},
			want: "port 4010 (free) — /proj/.portkeep-port",
		},
		{
			name: "present but occupied",
			report: statusReport{
				Record: recordPresent, RecordedPort: 4010, PortFree: false,
				RecordPath: "/proj/.portkeep-port",
			},
			want: "port 4010 (in use) — /proj/.portkeep-port",
		},
		{
			name:   "absent",
			report: statusReport{Record: recordAbsent, RecordPath: "/proj/.portkeep-port"},
			want:   "none — /proj/.portkeep-port",
		},
		{
			name:   "corrupt",
			report: statusReport{Record: recordCorrupt, RecordPath: "/proj/.portkeep-port"},
			want:   "corrupt — /proj/.portkeep-port (will be ignored and rewritten on next resolve)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatRecordLine(tt.report))
		})
	}
}

// TestFormatSessionLine verifies the session portion of the text status.
func TestFormatSessionLine(t *testing.T) {
	tests := []struct {
		name   string
		report statusReport
		want   string
	}{
		{
			name:   "docker unavailable",
			report: statusReport{SessionKnown: false},
			want:   "unknown (Docker unavailable)",
		},
		{
			name:   "not running",
			report: statusReport{SessionKnown: true},
			want:   "not running",
		},
		{
			name: "running with container name",
			report: statusReport{
				SessionKnown: true,
				Session:      model.SessionInfo{Active: true, Port: 3003, ContainerName: "app-dev"},
			},
			want: "running on port 3003 (app-dev)",
		},
		{
			name: "running without container name",
			report: statusReport{
				SessionKnown: true,
				Session:      model.SessionInfo{Active: true, Port: 3003},
			},
			want: "running on port 3003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSessionLine(tt.report))
		})
	}
}

// TestProjectDirFromArgs verifies positional directory resolution.
func TestProjectDirFromArgs(t *testing.T) {
	t.Run("explicit directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := projectDirFromArgs([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("defaults to cwd", func(t *testing.T) {
		got, err := projectDirFromArgs(nil)
		require.NoError(t, err)

		cwd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, cwd, got)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := projectDirFromArgs([]string{filepath.Join(t.TempDir(), "nope")})
		assert.Error(t, err)
	})

	t.Run("file instead of directory fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		_, err := projectDirFromArgs([]string{path})
		assert.Error(t, err)
	})
}

// TestBasePortSources pins the source names surfaced in status output;
// launcher scripts parse these from --json.
func TestBasePortSources(t *testing.T) {
	assert.Equal(t, config.BasePortSource("flag"), config.SourceFlag)
	assert.Equal(t, config.BasePortSource("env"), config.SourceEnv)
	assert.Equal(t, config.BasePortSource("config"), config.SourceConfigFile)
	assert.Equal(t, config.BasePortSource("devcontainer"), config.SourceDevContainer)
	assert.Equal(t, config.BasePortSource("default"), config.SourceDefault)
}
