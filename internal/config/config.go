package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/portkeep/internal/devcontainer"
	"github.com/mmr-tortoise/portkeep/internal/model"
	"github.com/mmr-tortoise/portkeep/internal/port"
	"github.com/mmr-tortoise/portkeep/internal/record"
)

// FileName is the per-project configuration file, looked up at the
// project root.
const FileName = ".portkeep.yml"

// EnvBasePort is the environment override for the base port, intended
// for launcher scripts that compute a port band per developer.
const EnvBasePort = "PORTKEEP_BASE_PORT"

// BasePortSource names where the effective base port came from, for
// status output and verbose logging.
type BasePortSource string

const (
	SourceFlag         BasePortSource = "flag"
	SourceEnv          BasePortSource = "env"
	SourceConfigFile   BasePortSource = "config"
	SourceDevContainer BasePortSource = "devcontainer"
	SourceDefault      BasePortSource = "default"
)

// fileConfig is the raw YAML shape of .portkeep.yml. All fields are
// optional; zero values mean "not set".
type fileConfig struct {
	// BasePort is the start of the scan range.
	BasePort int `yaml:"base_port"`

	// MaxAttempts is the number of ports the scan tier probes.
	MaxAttempts int `yaml:"max_attempts"`

	// RecordFile overrides the sticky record location. Relative paths
	// are resolved against the project directory.
	RecordFile string `yaml:"record_file"`

	// ShutdownTimeout bounds the reclaim tier's teardown wait,
	// as a Go duration string ("10s", "1m").
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// Settings is the fully resolved configuration for one invocation.
type Settings struct {
	// BasePort is the effective scan start port.
	BasePort int

	// BasePortSource records which layer supplied BasePort.
	BasePortSource BasePortSource

	// MaxAttempts is the effective scan attempt bound.
	MaxAttempts int

	// ShutdownTimeout is the effective teardown wait bound.
	ShutdownTimeout time.Duration

	// RecordPath is the absolute path of the sticky record file.
	RecordPath string
}

// Load resolves settings for the given project directory from the
// environment, .portkeep.yml, and the devcontainer.json hint.
//
// A missing .portkeep.yml is normal; a present but unreadable or invalid
// one is a hard error (CLIError with ExitConfigError) — silently ignoring
// a file the user wrote would hide typos.
func Load(projectDir string) (*Settings, error) {
	settings := &Settings{
		BasePort:        port.DefaultBasePort,
		BasePortSource:  SourceDefault,
		MaxAttempts:     port.DefaultMaxAttempts,
		ShutdownTimeout: port.DefaultShutdownTimeout,
		RecordPath:      filepath.Join(projectDir, record.DefaultFileName),
	}

	// Lowest layer first: the devcontainer.json hint.
	if hint, ok := devcontainer.BasePortHint(projectDir); ok {
		settings.BasePort = hint
		settings.BasePortSource = SourceDevContainer
	}

	if err := applyFile(projectDir, settings); err != nil {
		return nil, err
	}

	if err := applyEnv(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// applyFile merges .portkeep.yml into the settings, when present.
func applyFile(projectDir string, settings *Settings) error {
	path := filepath.Join(projectDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read %s", path), err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to parse %s", path), err)
	}

	if fc.BasePort != 0 {
		if !model.ValidPort(fc.BasePort) {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("%s: base_port %d out of range (1-65535)", path, fc.BasePort))
		}
		settings.BasePort = fc.BasePort
		settings.BasePortSource = SourceConfigFile
	}

	if fc.MaxAttempts != 0 {
		if fc.MaxAttempts < 1 {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("%s: max_attempts must be positive, got %d", path, fc.MaxAttempts))
		}
		settings.MaxAttempts = fc.MaxAttempts
	}

	if fc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(fc.ShutdownTimeout)
		if err != nil || d <= 0 {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("%s: invalid shutdown_timeout %q", path, fc.ShutdownTimeout))
		}
		settings.ShutdownTimeout = d
	}

	if fc.RecordFile != "" {
		recordPath := fc.RecordFile
		if !filepath.IsAbs(recordPath) {
			recordPath = filepath.Join(projectDir, recordPath)
		}
		settings.RecordPath = recordPath
	}

	return nil
}

// applyEnv merges the PORTKEEP_BASE_PORT override into the settings.
func applyEnv(settings *Settings) error {
	raw, ok := os.LookupEnv(EnvBasePort)
	if !ok || raw == "" {
		return nil
	}

	port, err := strconv.Atoi(raw)
	if err != nil || !model.ValidPort(port) {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid %s value %q: must be a port in 1-65535", EnvBasePort, raw))
	}

	settings.BasePort = port
	settings.BasePortSource = SourceEnv
	return nil
}
