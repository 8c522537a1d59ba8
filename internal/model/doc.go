// Package model defines the domain types and error taxonomy for the
// portkeep CLI.
//
// This package contains pure data structures with no external dependencies.
// The central entity is PortAssignment — the outcome of resolving a sticky
// port for a project directory — along with SessionInfo, the transient view
// of a running dev session reported by the session controller.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
