// Package daemon hosts the long-running SyncOrbit process.
//
// The Daemon enforces single-instance execution with a file lock, owns the
// library store and scan orchestrator, and serves the HTTP API the CLI
// talks to.
package daemon
