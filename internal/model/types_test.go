package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestValidPort verifies the port range check used throughout the resolver
// to decide whether a recorded or reported port is usable.
func TestValidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
		want bool
	}{
		{name: "lowest valid port", port: 1, want: true},
		{name: "typical dev port", port: 3000, want: true},
		{name: "highest valid port", port: 65535, want: true},
		{name: "zero is invalid", port: 0, want: false},
		{name: "negative is invalid", port: -1, want: false},
		{name: "above 16-bit range", port: 65536, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPort(tt.port))
		})
	}
}

// TestResolutionTier_IsValid verifies that only the three defined tiers
// are accepted.
func TestResolutionTier_IsValid(t *testing.T) {
	assert.True(t, TierReclaimed.IsValid())
	assert.True(t, TierSticky.IsValid())
	assert.True(t, TierScanned.IsValid())
	assert.False(t, ResolutionTier("guessed").IsValid())
	assert.False(t, ResolutionTier("").IsValid())
}

// TestPortExhaustedError_Message verifies the error reports the scanned
// range so the user can retry with a different base port.
func TestPortExhaustedError_Message(t *testing.T) {
	err := &PortExhaustedError{BasePort: 8000, MaxAttempts: 5}
	assert.Equal(t, "no free port in range 8000-8004 (5 attempts)", err.Error())
}

// TestShutdownTimeoutError_Message verifies the timeout is included in
// the message.
func TestShutdownTimeoutError_Message(t *testing.T) {
	err := &ShutdownTimeoutError{Timeout: 10 * time.Second}
	assert.Contains(t, err.Error(), "10s")
}

// TestCLIError_Unwrap verifies errors.Is/As work through CLIError wrapping,
// which the CLI layer relies on to surface domain errors with the right
// exit code.
func TestCLIError_Unwrap(t *testing.T) {
	inner := &PortExhaustedError{BasePort: 3000, MaxAttempts: 20}
	wrapped := WrapCLIError(ExitPortExhausted, "port resolution failed", inner)

	var exhausted *PortExhaustedError
	assert.True(t, errors.As(wrapped, &exhausted))
	assert.Equal(t, 3000, exhausted.BasePort)

	assert.Contains(t, wrapped.Error(), "port resolution failed")
	assert.Contains(t, wrapped.Error(), "3000")
}

// TestCLIError_NoUnderlying verifies the message-only form.
func TestCLIError_NoUnderlying(t *testing.T) {
	err := NewCLIError(ExitNoSession, "no active session")
	assert.Equal(t, "no active session", err.Error())
	assert.Nil(t, err.Unwrap())
}
