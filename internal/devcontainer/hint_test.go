package devcontainer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDevContainer creates .devcontainer/devcontainer.json with the given
// contents under a fresh temp project directory.
func writeDevContainer(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	devDir := filepath.Join(dir, ".devcontainer")
	require.NoError(t, os.MkdirAll(devDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(devDir, "devcontainer.json"), []byte(contents), 0o644))
	return dir
}

// TestBasePortHint_ForwardPorts verifies the first forwardPorts entry wins.
func TestBasePortHint_ForwardPorts(t *testing.T) {
	dir := writeDevContainer(t, `{
		"name": "app",
		"forwardPorts": [3000, 5432]
	}`)

	port, ok := BasePortHint(dir)
	assert.True(t, ok)
	assert.Equal(t, 3000, port)
}

// TestBasePortHint_JSONCComments verifies that comments and trailing commas
// (both legal in devcontainer.json) do not break parsing.
func TestBasePortHint_JSONCComments(t *testing.T) {
	dir := writeDevContainer(t, `{
		// primary dev server
		"forwardPorts": [
			8080, // app
		],
	}`)

	port, ok := BasePortHint(dir)
	assert.True(t, ok)
	assert.Equal(t, 8080, port)
}

// TestBasePortHint_ServicePortString verifies the "service:port" string
// form used in Compose setups.
func TestBasePortHint_ServicePortString(t *testing.T) {
	dir := writeDevContainer(t, `{"forwardPorts": ["db:5432", 3000]}`)

	port, ok := BasePortHint(dir)
	assert.True(t, ok)
	assert.Equal(t, 5432, port)
}

// TestBasePortHint_AppPortFallback verifies appPort is consulted when
// forwardPorts is absent, including the "host:container" string form.
func TestBasePortHint_AppPortFallback(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     int
	}{
		{name: "scalar number", contents: `{"appPort": 4000}`, want: 4000},
		{name: "host:container string", contents: `{"appPort": "4100:3000"}`, want: 4100},
		{name: "bare string", contents: `{"appPort": "4200"}`, want: 4200},
		{name: "array", contents: `{"appPort": [4300, 4400]}`, want: 4300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeDevContainer(t, tt.contents)
			port, ok := BasePortHint(dir)
			assert.True(t, ok)
			assert.Equal(t, tt.want, port)
		})
	}
}

// TestBasePortHint_NoHint covers the failure modes that must yield
// (0, false) without erroring.
func TestBasePortHint_NoHint(t *testing.T) {
	t.Run("no devcontainer.json", func(t *testing.T) {
		port, ok := BasePortHint(t.TempDir())
		assert.False(t, ok)
		assert.Zero(t, port)
	})

	t.Run("no port fields", func(t *testing.T) {
		dir := writeDevContainer(t, `{"name": "app", "image": "node:20"}`)
		_, ok := BasePortHint(dir)
		assert.False(t, ok)
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := writeDevContainer(t, `{"forwardPorts": [3000`)
		_, ok := BasePortHint(dir)
		assert.False(t, ok)
	})

	t.Run("out-of-range entries skipped entirely", func(t *testing.T) {
		dir := writeDevContainer(t, `{"forwardPorts": [0, 99999]}`)
		_, ok := BasePortHint(dir)
		assert.False(t, ok)
	})
}

// TestBasePortHint_SkipsBadEntries verifies that unusable entries are
// skipped in favor of later valid ones.
func TestBasePortHint_SkipsBadEntries(t *testing.T) {
	dir := writeDevContainer(t, `{"forwardPorts": ["not-a-port", 99999, 3000]}`)

	port, ok := BasePortHint(dir)
	assert.True(t, ok)
	assert.Equal(t, 3000, port)
}

// TestLocate verifies both standard devcontainer.json locations and the
// lookup order between them.
func TestLocate(t *testing.T) {
	t.Run("directory form", func(t *testing.T) {
		dir := writeDevContainer(t, `{}`)
		assert.Equal(t, filepath.Join(dir, ".devcontainer", "devcontainer.json"), Locate(dir))
	})

	t.Run("root dotfile form", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".devcontainer.json"), []byte(`{}`), 0o644))
		assert.Equal(t, filepath.Join(dir, ".devcontainer.json"), Locate(dir))
	})

	t.Run("directory form is preferred", func(t *testing.T) {
		dir := writeDevContainer(t, `{}`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".devcontainer.json"), []byte(`{}`), 0o644))
		assert.Equal(t, filepath.Join(dir, ".devcontainer", "devcontainer.json"), Locate(dir))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, Locate(t.TempDir()))
	})
}
