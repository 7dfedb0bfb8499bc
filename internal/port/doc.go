// Package port finds a free TCP port on the local host.
//
// The Scanner probes one port at a time: it opens a listener on the port,
// closes it immediately and classifies the result as available, in use or
// failed. The Allocator feeds the Scanner to the sequential search driver,
// starting at a base port and counting upward:
//
//	8000 (in use) -> 8001 (in use) -> 8002 (available) => 8002
//
// A returned port is free at the moment it was probed. Another process may
// bind it before the caller does; callers that cannot tolerate this should
// retry their own bind.
package port
