package devcontainer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/portkeep/internal/model"
)

// rawDevContainer models only the devcontainer.json fields used for the
// port hint. Other fields are silently ignored.
//
// forwardPorts and appPort use interface{} element types because the
// devcontainer.json specification allows numbers and strings in the same
// array, and appPort may additionally be a single scalar.
type rawDevContainer struct {
	// ForwardPorts lists ports to forward from the container to the host.
	// Elements are integers ("3000") or strings, including the
	// "service:port" form for Compose setups.
	ForwardPorts []interface{} `json:"forwardPorts,omitempty"`

	// AppPort publishes container ports. A single integer, a single
	// string ("hostPort:containerPort"), or an array of either.
	AppPort interface{} `json:"appPort,omitempty"`
}

// standardPaths are the devcontainer.json locations defined by the Dev
// Containers specification, in lookup order.
var standardPaths = []string{
	filepath.Join(".devcontainer", "devcontainer.json"),
	".devcontainer.json",
}

// Locate returns the path of the project's devcontainer.json, or "" when
// the project has none.
func Locate(projectDir string) string {
	for _, rel := range standardPaths {
		path := filepath.Join(projectDir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// BasePortHint returns the first usable port declared in the project's
// devcontainer.json, preferring forwardPorts over appPort. The boolean
// reports whether a hint was found; all failure modes yield (0, false).
func BasePortHint(projectDir string) (int, bool) {
	path := Locate(projectDir)
	if path == "" {
		return 0, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	var raw rawDevContainer
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return 0, false
	}

	for _, entry := range raw.ForwardPorts {
		if port, ok := forwardPort(entry); ok {
			return port, true
		}
	}

	return appPort(raw.AppPort)
}

// forwardPort extracts the port from one forwardPorts entry.
// Numbers are ports directly; strings are either a bare port ("8000") or
// "service:port", where the port follows the colon.
func forwardPort(entry interface{}) (int, bool) {
	switch v := entry.(type) {
	case float64:
		// encoding/json decodes all JSON numbers as float64.
		return validPort(int(v))
	case string:
		if idx := strings.LastIndex(v, ":"); idx >= 0 {
			v = v[idx+1:]
		}
		return parsePort(v)
	default:
		return 0, false
	}
}

// appPort extracts the host port from the appPort field, handling the
// scalar, string, and array forms. In the "hostPort:containerPort" string
// form the host port precedes the colon.
func appPort(entry interface{}) (int, bool) {
	switch v := entry.(type) {
	case float64:
		return validPort(int(v))
	case string:
		if idx := strings.Index(v, ":"); idx >= 0 {
			v = v[:idx]
		}
		return parsePort(v)
	case []interface{}:
		for _, item := range v {
			if port, ok := appPort(item); ok {
				return port, true
			}
		}
	}
	return 0, false
}

func parsePort(s string) (int, bool) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return validPort(port)
}

func validPort(port int) (int, bool) {
	if !model.ValidPort(port) {
		return 0, false
	}
	return port, true
}
