package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shinji-kodama/portfinder/internal/model"
)

// printEndpoints writes the found endpoints to w, as JSON when --json is
// set and one per line otherwise.
func printEndpoints(w io.Writer, endpoints []model.Endpoint) error {
	if IsJSONOutput() {
		return printEndpointsJSON(w, endpoints)
	}
	_, err := fmt.Fprintln(w, FormatEndpoints(endpoints))
	return err
}

// printEndpointsJSON writes {"endpoints": [...]}.
func printEndpointsJSON(w io.Writer, endpoints []model.Endpoint) error {
	type resultJSON struct {
		Endpoints []model.Endpoint `json:"endpoints"`
	}

	// Use an empty slice instead of nil so the output shows [] not null.
	result := resultJSON{Endpoints: make([]model.Endpoint, 0, len(endpoints))}
	result.Endpoints = append(result.Endpoints, endpoints...)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// FormatEndpoints renders endpoints for text output: bare port numbers
// for TCP (what scripts feed to --port flags), paths for sockets, one per
// line.
//
// Example:
//
//	[{tcp 8000} {tcp 8001}] → "8000\n8001"
//	[{unix /tmp/a1.sock}]   → "/tmp/a1.sock"
func FormatEndpoints(endpoints []model.Endpoint) string {
	lines := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if e.Network == model.NetworkTCP {
			lines = append(lines, strconv.Itoa(e.Port))
			continue
		}
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

// tcpEndpoints wraps found ports for output.
func tcpEndpoints(host string, ports []int) []model.Endpoint {
	endpoints := make([]model.Endpoint, 0, len(ports))
	for _, p := range ports {
		endpoints = append(endpoints, model.Endpoint{Network: model.NetworkTCP, Host: host, Port: p})
	}
	return endpoints
}
