// Package devcontainer derives a base-port hint from a project's
// devcontainer.json.
//
// When neither a flag, the environment, nor .portkeep.yml sets a base
// port, the first port a project declares in forwardPorts or appPort is
// a better scan starting point than the built-in default. The
// devcontainer.json specification allows JSONC (JSON with Comments), so
// parsing goes through github.com/tidwall/jsonc before encoding/json.
//
// Everything here is a hint: missing files, parse errors, and malformed
// port entries all yield "no hint", never an error to the caller.
package devcontainer
