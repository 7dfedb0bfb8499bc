// Package socket finds a free UNIX domain socket path, or on Windows a free
// named pipe.
//
// Candidates are derived from a base path by appending an increasing
// number before the extension:
//
//	/run/app/test.sock -> /run/app/test1.sock -> /run/app/test2.sock
//
// Each candidate is probed by creating a listener at the path and closing
// it again, which also removes the socket file. A base path whose parent
// directory does not exist is returned as is: nothing can be listening
// there.
//
// The platform decides how a listener is created (listen_*.go); the probe
// contract is the same everywhere.
package socket
