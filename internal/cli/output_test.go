package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// TestFormatEndpoints verifies text output: port numbers for TCP and
// identifiers for sockets and pipes.
func TestFormatEndpoints(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []model.Endpoint
		expected  string
	}{
		{
			name:      "empty",
			endpoints: nil,
			expected:  "",
		},
		{
			name:      "single port",
			endpoints: tcpEndpoints("127.0.0.1", []int{8000}),
			expected:  "8000",
		},
		{
			name:      "multiple ports",
			endpoints: tcpEndpoints("", []int{8000, 8001, 8003}),
			expected:  "8000\n8001\n8003",
		},
		{
			name:      "unix socket",
			endpoints: []model.Endpoint{{Network: model.NetworkUnix, Path: "/tmp/app1.sock"}},
			expected:  "/tmp/app1.sock",
		},
		{
			name:      "named pipe",
			endpoints: []model.Endpoint{{Network: model.NetworkPipe, Path: `\\.\pipe\app.sock`}},
			expected:  `\\.\pipe\app.sock`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEndpoints(tt.endpoints))
		})
	}
}

// TestFormatPorts verifies the comma-separated port list used in logs.
func TestFormatPorts(t *testing.T) {
	tests := []struct {
		name     string
		ports    []int
		expected string
	}{
		{"nil", nil, "-"},
		{"empty", []int{}, "-"},
		{"single", []int{3000}, "3000"},
		{"multiple", []int{3000, 5432, 8080}, "3000,5432,8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPorts(tt.ports))
		})
	}
}

// TestPrintEndpointsJSON checks the JSON envelope, including the empty case.
func TestPrintEndpointsJSON(t *testing.T) {
	t.Run("ports", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printEndpointsJSON(&buf, tcpEndpoints("127.0.0.1", []int{9000, 9001})))

		var out struct {
			Endpoints []model.Endpoint `json:"endpoints"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out.Endpoints, 2)
		assert.Equal(t, model.NetworkTCP, out.Endpoints[0].Network)
		assert.Equal(t, "127.0.0.1", out.Endpoints[0].Host)
		assert.Equal(t, 9001, out.Endpoints[1].Port)
	})

	t.Run("empty list is not null", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printEndpointsJSON(&buf, nil))
		assert.Contains(t, buf.String(), `"endpoints": []`)
	})
}

// TestParseDirMode verifies octal parsing for --dir-mode.
func TestParseDirMode(t *testing.T) {
	tests := []struct {
		input    string
		expected uint32
		hasError bool
	}{
		{"0755", 0o755, false},
		{"700", 0o700, false},
		{"0", 0, false},
		{"0888", 0, true},
		{"rwx", 0, true},
		{"1777", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := parseDirMode(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, uint32(mode))
		})
	}
}
