// Package port implements sticky port resolution for dev sessions.
//
// The Resolver answers one question — which TCP port should this project's
// dev server bind to? — using three prioritized tiers:
//
//  1. Reclaim: an active session for the project is stopped and its port
//     reused, so a plain restart never churns ports.
//  2. Sticky: the persisted record's port is reused when it is still free.
//  3. Scan: the first free port in [basePort, basePort+maxAttempts) wins.
//
// The chosen port is persisted before being returned, making the next
// invocation sticky. The Scanner verifies OS-level port availability via
// net.Listen; session state and record persistence are injected as
// capabilities so each tier is testable without socket or Docker I/O.
package port
