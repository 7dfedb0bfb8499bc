package docker

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// Published is one host port a container publishes, or will publish when
// it starts.
type Published struct {
	Container string
	HostPort  int
	Proto     string
	Running   bool
}

// PublishedPorts lists the host ports of every container, running or not.
//
// Running containers report their bound ports in the container list.
// Stopped containers report nothing there, so their configured port
// bindings are read by inspecting each one. Bindings without a fixed host
// port (Docker picks one at start) are skipped.
func PublishedPorts(ctx context.Context, cli *Client) ([]Published, error) {
	containers, err := cli.inner.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	var result []Published
	for _, c := range containers {
		if c.State == "running" {
			result = append(result, summaryPorts(c)...)
			continue
		}

		info, err := cli.inner.ContainerInspect(ctx, c.ID)
		if err != nil {
			return nil, model.WrapCLIError(
				model.ExitDockerNotRunning,
				"failed to inspect Docker container "+containerName(c),
				err,
			)
		}
		// HostConfig is promoted from an embedded pointer; a sparse
		// inspect response leaves both nil.
		if info.ContainerJSONBase == nil || info.HostConfig == nil {
			continue
		}
		for natPort, bindings := range info.HostConfig.PortBindings {
			for _, b := range bindings {
				hostPort, err := strconv.Atoi(b.HostPort)
				if err != nil || hostPort == 0 {
					continue
				}
				result = append(result, Published{
					Container: containerName(c),
					HostPort:  hostPort,
					Proto:     natPort.Proto(),
				})
			}
		}
	}
	return result, nil
}

// ReservedHostPorts pings the daemon and returns the distinct host ports
// published for proto by any container, sorted ascending. Every failure is
// a model.CLIError with ExitDockerNotRunning.
func ReservedHostPorts(ctx context.Context, cli *Client, proto string) ([]int, error) {
	if err := cli.Ping(ctx); err != nil {
		return nil, err
	}

	published, err := PublishedPorts(ctx, cli)
	if err != nil {
		return nil, err
	}
	return ReservedPorts(published, proto), nil
}

// summaryPorts converts the published ports of a running container.
// Ports that are exposed but not published have no public port.
func summaryPorts(c container.Summary) []Published {
	var result []Published
	for _, p := range c.Ports {
		if p.PublicPort == 0 {
			continue
		}
		result = append(result, Published{
			Container: containerName(c),
			HostPort:  int(p.PublicPort),
			Proto:     p.Type,
			Running:   true,
		})
	}
	return result
}

// containerName strips the leading "/" the Docker API puts on names and
// falls back to the short ID.
func containerName(c container.Summary) string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}

// ReservedPorts returns the distinct host ports in published for proto,
// sorted ascending. An empty proto counts as "tcp".
func ReservedPorts(published []Published, proto string) []int {
	if proto == "" {
		proto = "tcp"
	}

	seen := make(map[int]struct{})
	var ports []int
	for _, p := range published {
		pp := p.Proto
		if pp == "" {
			pp = "tcp"
		}
		if pp != proto {
			continue
		}
		if _, ok := seen[p.HostPort]; ok {
			continue
		}
		seen[p.HostPort] = struct{}{}
		ports = append(ports, p.HostPort)
	}
	sort.Ints(ports)
	return ports
}
