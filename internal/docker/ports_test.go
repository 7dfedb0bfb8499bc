package docker

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// TestSummaryPorts verifies only published ports of a running container
// are converted, and the container name loses its leading slash.
func TestSummaryPorts(t *testing.T) {
	c := container.Summary{
		ID:    "0123456789abcdef",
		Names: []string{"/web-1"},
		State: "running",
		Ports: []container.Port{
			{IP: "0.0.0.0", PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
			{PrivatePort: 443, Type: "tcp"}, // exposed, not published
			{IP: "0.0.0.0", PrivatePort: 53, PublicPort: 5353, Type: "udp"},
		},
	}

	got := summaryPorts(c)
	assert.Equal(t, []Published{
		{Container: "web-1", HostPort: 8080, Proto: "tcp", Running: true},
		{Container: "web-1", HostPort: 5353, Proto: "udp", Running: true},
	}, got)
}

// TestContainerName covers the ID fallback.
func TestContainerName(t *testing.T) {
	assert.Equal(t, "db", containerName(container.Summary{Names: []string{"/db"}}))
	assert.Equal(t, "0123456789ab", containerName(container.Summary{ID: "0123456789abcdef"}))
	assert.Equal(t, "abc", containerName(container.Summary{ID: "abc"}))
}

// TestReservedPorts verifies filtering by protocol, deduplication (IPv4
// and IPv6 bindings of the same port) and numeric sorting.
func TestReservedPorts(t *testing.T) {
	published := []Published{
		{Container: "web", HostPort: 15432, Proto: "tcp", Running: true},
		{Container: "web", HostPort: 8080, Proto: "tcp", Running: true},
		{Container: "web", HostPort: 8080, Proto: "tcp", Running: true},
		{Container: "dns", HostPort: 5353, Proto: "udp"},
		{Container: "old", HostPort: 3000, Proto: ""},
	}

	assert.Equal(t, []int{3000, 8080, 15432}, ReservedPorts(published, "tcp"))
	assert.Equal(t, []int{3000, 8080, 15432}, ReservedPorts(published, ""))
	assert.Equal(t, []int{5353}, ReservedPorts(published, "udp"))
	assert.Empty(t, ReservedPorts(nil, "tcp"))
}

// TestDetectUnixSocket verifies the first existing path wins and a
// missing socket produces an error.
func TestDetectUnixSocket(t *testing.T) {
	dir := t.TempDir()

	_, err := detectUnixSocket([]string{dir + "/missing.sock"})
	assert.Error(t, err)

	host, err := detectUnixSocket([]string{dir + "/missing.sock", dir})
	assert.NoError(t, err)
	assert.Equal(t, "unix://"+dir, host)
}

// fakeAPI serves a canned container list and inspect responses keyed by
// container ID. Methods not overridden panic through the nil embedded
// interface, which keeps the test honest about which calls PublishedPorts
// makes.
type fakeAPI struct {
	client.APIClient
	containers []container.Summary
	listErr    error
	inspect    map[string]container.InspectResponse
	inspectErr error
	inspected  []string
	pingErr    error
}

func (f *fakeAPI) Ping(context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeAPI) ContainerList(context.Context, container.ListOptions) ([]container.Summary, error) {
	return f.containers, f.listErr
}

func (f *fakeAPI) ContainerInspect(_ context.Context, id string) (container.InspectResponse, error) {
	f.inspected = append(f.inspected, id)
	if f.inspectErr != nil {
		return container.InspectResponse{}, f.inspectErr
	}
	return f.inspect[id], nil
}

// inspectWithBindings builds an inspect response carrying only port
// bindings.
func inspectWithBindings(bindings nat.PortMap) container.InspectResponse {
	return container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			HostConfig: &container.HostConfig{PortBindings: bindings},
		},
	}
}

// TestPublishedPorts_Running verifies running containers are read from
// the list without inspecting them.
func TestPublishedPorts_Running(t *testing.T) {
	cli := &Client{inner: &fakeAPI{containers: []container.Summary{
		{ID: "a", Names: []string{"/app"}, State: "running", Ports: []container.Port{
			{PrivatePort: 3000, PublicPort: 13000, Type: "tcp"},
		}},
		{ID: "b", Names: []string{"/cache"}, State: "running", Ports: []container.Port{
			{PrivatePort: 6379, PublicPort: 16379, Type: "tcp"},
		}},
	}}}

	published, err := PublishedPorts(context.Background(), cli)
	require.NoError(t, err)
	assert.Equal(t, []int{13000, 16379}, ReservedPorts(published, "tcp"))
}

// TestPublishedPorts_Stopped verifies that a stopped container's
// configured bindings are reserved, that bindings Docker assigns at start
// ("" or "0") are dropped, and that running containers are not inspected.
func TestPublishedPorts_Stopped(t *testing.T) {
	api := &fakeAPI{
		containers: []container.Summary{
			{ID: "run", Names: []string{"/app"}, State: "running", Ports: []container.Port{
				{PrivatePort: 3000, PublicPort: 13000, Type: "tcp"},
			}},
			{ID: "db", Names: []string{"/db"}, State: "exited"},
			{ID: "dns", Names: []string{"/dns"}, State: "created"},
			{ID: "bare", Names: []string{"/bare"}, State: "exited"},
		},
		inspect: map[string]container.InspectResponse{
			"db": inspectWithBindings(nat.PortMap{
				"5432/tcp": []nat.PortBinding{
					{HostIP: "0.0.0.0", HostPort: "15432"},
					{HostIP: "::", HostPort: "15432"},
				},
				"8080/tcp": []nat.PortBinding{{HostPort: ""}},
				"9090/tcp": []nat.PortBinding{{HostPort: "0"}},
			}),
			"dns": inspectWithBindings(nat.PortMap{
				"53/udp": []nat.PortBinding{{HostPort: "5353"}},
			}),
			// "bare" has no entry: an empty response without HostConfig.
		},
	}
	cli := &Client{inner: api}

	published, err := PublishedPorts(context.Background(), cli)
	require.NoError(t, err)

	assert.Equal(t, []string{"db", "dns", "bare"}, api.inspected)
	assert.Equal(t, []int{13000, 15432}, ReservedPorts(published, "tcp"))
	assert.Equal(t, []int{5353}, ReservedPorts(published, "udp"))

	for _, p := range published {
		if p.Container == "db" {
			assert.False(t, p.Running)
			assert.Equal(t, "tcp", p.Proto)
		}
	}
}

// TestPublishedPorts_InspectError verifies an inspect failure carries the
// Docker exit code and names the container.
func TestPublishedPorts_InspectError(t *testing.T) {
	cli := &Client{inner: &fakeAPI{
		containers: []container.Summary{{ID: "db", Names: []string{"/db"}, State: "exited"}},
		inspectErr: errors.New("daemon went away"),
	}}

	_, err := PublishedPorts(context.Background(), cli)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitDockerNotRunning, cliErr.Code)
	assert.Contains(t, err.Error(), "db")
	assert.Contains(t, err.Error(), "daemon went away")
}

// TestPublishedPorts_ListError verifies daemon failures carry the Docker
// exit code.
func TestPublishedPorts_ListError(t *testing.T) {
	cli := &Client{inner: &fakeAPI{listErr: errors.New("connection refused")}}

	_, err := PublishedPorts(context.Background(), cli)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitDockerNotRunning, cliErr.Code)
	assert.Contains(t, err.Error(), "connection refused")
}

// TestReservedHostPorts verifies the combined ping, list and reduce step,
// and that each failure keeps the Docker exit code for the CLI to return.
func TestReservedHostPorts(t *testing.T) {
	t.Run("ports", func(t *testing.T) {
		cli := &Client{inner: &fakeAPI{
			containers: []container.Summary{
				{ID: "a", Names: []string{"/app"}, State: "running", Ports: []container.Port{
					{PrivatePort: 80, PublicPort: 18080, Type: "tcp"},
					{PrivatePort: 53, PublicPort: 5353, Type: "udp"},
				}},
				{ID: "b", Names: []string{"/db"}, State: "exited"},
			},
			inspect: map[string]container.InspectResponse{
				"b": inspectWithBindings(nat.PortMap{"5432/tcp": []nat.PortBinding{{HostPort: "15432"}}}),
			},
		}}

		ports, err := ReservedHostPorts(context.Background(), cli, "tcp")
		require.NoError(t, err)
		assert.Equal(t, []int{15432, 18080}, ports)
	})

	tests := []struct {
		name string
		api  *fakeAPI
	}{
		{"ping fails", &fakeAPI{pingErr: errors.New("connection refused")}},
		{"list fails", &fakeAPI{listErr: errors.New("connection reset")}},
		{"inspect fails", &fakeAPI{
			containers: []container.Summary{{ID: "b", Names: []string{"/db"}, State: "exited"}},
			inspectErr: errors.New("no such container"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReservedHostPorts(context.Background(), &Client{inner: tt.api}, "tcp")

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr), "expected *model.CLIError, got %T", err)
			assert.Equal(t, model.ExitDockerNotRunning, cliErr.Code)
		})
	}
}

// TestClose_NilInner verifies Close on a zero Client is a no-op.
func TestClose_NilInner(t *testing.T) {
	assert.NoError(t, (&Client{}).Close())
}
