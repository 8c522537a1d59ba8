package model

import (
	"errors"
	"fmt"
	"time"
)

// Port range boundaries. MinPort excludes port 0, which the OS interprets
// as "pick any port" and is therefore never a valid sticky assignment.
const (
	MinPort = 1
	MaxPort = 65535
)

// ValidPort reports whether p is a usable TCP port number (1-65535).
func ValidPort(p int) bool {
	return p >= MinPort && p <= MaxPort
}

// ResolutionTier identifies which of the three prioritized strategies
// produced a port assignment.
//
// The tiers are attempted in order: reclaim (an active session's port is
// taken over), sticky (the persisted record's port is reused), scan (the
// first free port in the configured range is picked).
type ResolutionTier string

const (
	// TierReclaimed means an active session was stopped and its port reused.
	TierReclaimed ResolutionTier = "reclaimed"

	// TierSticky means the persisted record's port was free and reused.
	TierSticky ResolutionTier = "sticky"

	// TierScanned means a fresh port was found by scanning from the base port.
	TierScanned ResolutionTier = "scanned"
)

// String returns the string representation of ResolutionTier.
func (t ResolutionTier) String() string {
	return string(t)
}

// IsValid checks whether the ResolutionTier value is one of the
// predefined tiers.
func (t ResolutionTier) IsValid() bool {
	switch t {
	case TierReclaimed, TierSticky, TierScanned:
		return true
	default:
		return false
	}
}

// PortAssignment is the result of a successful port resolution.
// The assigned port has been persisted to the sticky record before
// this value is returned to the caller.
type PortAssignment struct {
	// Port is the TCP port the caller should bind the dev server to.
	Port int `json:"port"`

	// Tier records which resolution strategy produced the port.
	Tier ResolutionTier `json:"tier"`

	// ProjectDir is the absolute path of the project directory the
	// assignment belongs to.
	ProjectDir string `json:"projectDir"`
}

// SessionInfo is the transient view of a project's dev session as reported
// by the session controller. It is queried, never persisted; the session
// itself (a Docker container) is the source of truth.
type SessionInfo struct {
	// Active reports whether a session is currently running for the project.
	Active bool `json:"active"`

	// Port is the host port the session currently holds. Only meaningful
	// when Active is true; zero otherwise.
	Port int `json:"port,omitempty"`

	// ContainerID identifies the backing container, when there is one.
	ContainerID string `json:"containerId,omitempty"`

	// ContainerName is the human-readable container name, when there is one.
	ContainerName string `json:"containerName,omitempty"`
}

// Sentinel errors for the sticky record store. Callers distinguish
// "no record yet" from "record exists but is unreadable"; the resolver
// treats both as absent, per the propagation policy.
var (
	// ErrRecordNotFound indicates no sticky record exists for the project.
	ErrRecordNotFound = errors.New("sticky port record not found")

	// ErrRecordCorrupt indicates the sticky record exists but does not
	// contain a valid port number.
	ErrRecordCorrupt = errors.New("sticky port record is corrupt")
)

// PortExhaustedError indicates that no free port was found in the scan
// range [BasePort, BasePort+MaxAttempts). This is fatal for the invocation:
// the resolver does not retry with a different range, and the sticky record
// is left untouched.
type PortExhaustedError struct {
	BasePort    int
	MaxAttempts int
}

// Error satisfies the error interface.
func (e *PortExhaustedError) Error() string {
	return fmt.Sprintf("no free port in range %d-%d (%d attempts)",
		e.BasePort, e.BasePort+e.MaxAttempts-1, e.MaxAttempts)
}

// ShutdownTimeoutError indicates that a session stop was issued but the
// orchestration layer did not confirm full teardown within the bounded
// wait. The resolver treats this as recoverable and degrades to the
// sticky/scan tiers instead of reusing the session's port.
type ShutdownTimeoutError struct {
	Timeout time.Duration
}

// Error satisfies the error interface.
func (e *ShutdownTimeoutError) Error() string {
	return fmt.Sprintf("session did not stop within %s", e.Timeout)
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the project configuration could not be
	// loaded or contains invalid values.
	ExitConfigError ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitPortExhausted indicates no free port was found in the scan range.
	ExitPortExhausted ExitCode = 4

	// ExitNoSession indicates the command required an active session but
	// none exists for the project.
	ExitNoSession ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
