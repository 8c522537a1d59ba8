package port

import (
	"fmt"
	"net"
)

// Scanner checks whether specific TCP ports are free on the host machine.
//
// It uses the operating system's network stack (net.Listen) to determine
// availability. This asks the OS directly rather than parsing /proc/net/*
// or shelling out to `lsof`/`ss`, which may require elevated permissions.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so it can be injected into the Resolver as its
// Prober capability and replaced with a fake in tests.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable checks whether a single TCP port is free on the host.
//
// It attempts net.Listen("tcp", ":port"). If the bind succeeds, the port
// is available — the listener is closed immediately. We bind to all
// interfaces (":port" rather than "127.0.0.1:port") because Docker
// publishes ports on 0.0.0.0, so the check must cover the same address
// space to avoid false positives.
//
// Ports outside 1-65535 are reported as unavailable.
func (s *Scanner) IsPortAvailable(port int) bool {
	if port < 1 || port > 65535 {
		return false
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// FindAvailablePort scans [startPort, endPort] (inclusive) and returns the
// first port that is free. The search is sequential from startPort upward,
// so the same free port is selected consistently across invocations.
//
// Returns an error if every port in the range is occupied.
func (s *Scanner) FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		if s.IsPortAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found in range %d-%d", startPort, endPort)
}

// UsedPorts returns the ports in [startPort, endPort] (inclusive) that are
// currently held by some process. Used by the `scan` command to show the
// occupancy of the configured port range.
func (s *Scanner) UsedPorts(startPort, endPort int) []int {
	var used []int
	for port := startPort; port <= endPort; port++ {
		if !s.IsPortAvailable(port) {
			used = append(used, port)
		}
	}
	return used
}
