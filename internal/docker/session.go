// session.go implements the dev-session view over Docker containers.
//
// Session discovery is label-based: every container started by the
// external launcher carries the portkeep management labels, and the
// Controller reconstructs session state from them on each query.
package docker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/mmr-tortoise/portkeep/internal/model"
)

// Label keys used to identify and describe dev-session containers.
// All keys share the "devsession." prefix to avoid collisions with labels
// set by other tools (Docker Compose, VS Code, etc.).
const (
	// LabelManagedBy identifies containers managed as portkeep sessions.
	// Key: "devsession.managed-by", value: always "portkeep".
	LabelManagedBy = "devsession.managed-by"

	// LabelProjectPath stores the absolute path of the project checkout
	// the session serves. One session per project path.
	LabelProjectPath = "devsession.project-path"

	// LabelPort stores the host port the session was started on. This is
	// the authoritative port source; published port bindings are only a
	// fallback when the label is missing.
	LabelPort = "devsession.port"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "portkeep"

// BuildLabels constructs the label set an external launcher should apply
// to a session container so portkeep can discover and reclaim it.
func BuildLabels(projectDir string, port int) map[string]string {
	return map[string]string{
		LabelManagedBy:   ManagedByValue,
		LabelProjectPath: projectDir,
		LabelPort:        strconv.Itoa(port),
	}
}

// Controller reports and controls the dev session for one project
// directory. It satisfies the resolver's SessionController capability.
type Controller struct {
	cli        *Client
	projectDir string
}

// NewController creates a Controller scoped to the given project directory.
// The directory must be absolute — it is matched verbatim against the
// devsession.project-path label.
func NewController(cli *Client, projectDir string) *Controller {
	return &Controller{cli: cli, projectDir: projectDir}
}

// Status reports whether a session container is running for the project
// and, if so, which host port it holds.
//
// Only running containers count as an active session: a stopped session
// container no longer holds its port, so there is nothing to reclaim.
func (c *Controller) Status(ctx context.Context) (model.SessionInfo, error) {
	containers, err := c.list(ctx, false)
	if err != nil {
		return model.SessionInfo{}, err
	}
	return sessionFromContainers(containers), nil
}

// Stop requests teardown of all running session containers for the
// project. Idempotent: no running session is a success, and Docker's
// ContainerStop on an already-stopped container is tolerated.
//
// Docker sends SIGTERM and escalates to SIGKILL after its default grace
// period; the resolver's bounded teardown wait sits on top of that.
func (c *Controller) Stop(ctx context.Context) error {
	containers, err := c.list(ctx, false)
	if err != nil {
		return err
	}

	for _, cont := range containers {
		// nil Timeout uses the daemon's default stop grace period.
		if err := c.cli.Inner().ContainerStop(ctx, cont.ID, container.StopOptions{}); err != nil {
			return model.WrapCLIError(model.ExitDockerNotRunning,
				fmt.Sprintf("failed to stop session container %s", cont.ID[:12]), err)
		}
	}
	return nil
}

// list queries the daemon for this project's session containers.
// Filtering happens daemon-side via label filters.
func (c *Controller) list(ctx context.Context, all bool) ([]types.Container, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
		filters.Arg("label", LabelProjectPath+"="+c.projectDir),
	)

	containers, err := c.cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     all,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			"failed to list session containers", err)
	}
	return containers, nil
}

// sessionFromContainers reduces a container listing to a SessionInfo.
// Pure mapping, no Docker I/O.
//
// The first running container wins; the invariant is one session per
// project path, so multiples indicate external tampering and the extra
// containers are simply ignored for status purposes (Stop still stops
// them all).
func sessionFromContainers(containers []types.Container) model.SessionInfo {
	for _, cont := range containers {
		if cont.State != "running" {
			continue
		}
		return model.SessionInfo{
			Active:        true,
			Port:          containerPort(cont),
			ContainerID:   cont.ID,
			ContainerName: containerName(cont),
		}
	}
	return model.SessionInfo{}
}

// containerPort extracts the session's host port from a container summary.
// The devsession.port label is authoritative; if it is missing or
// unparsable, the first published TCP port binding is used instead.
// Returns 0 when no port can be determined.
func containerPort(cont types.Container) int {
	if v, ok := cont.Labels[LabelPort]; ok {
		if port, err := strconv.Atoi(v); err == nil && model.ValidPort(port) {
			return port
		}
	}

	for _, p := range cont.Ports {
		if p.Type == "tcp" && p.PublicPort != 0 {
			return int(p.PublicPort)
		}
	}
	return 0
}

// containerName returns the container's display name without the leading
// "/" the Docker API prepends.
func containerName(cont types.Container) string {
	if len(cont.Names) == 0 {
		return ""
	}
	name := cont.Names[0]
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return name
}
