// Package docker reads the host ports Docker containers publish, so the
// port finder can avoid them.
//
// A running container's published port is already bound on the host and
// any probe would see it. A stopped container is different: its port is
// free right now but will be bound again as soon as the container starts.
// PublishedPorts reports both, and the finder treats them as reserved.
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
