// Package services defines shared utilities consumed by the scan
// orchestrator and the external tool integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     into the kinds the API layer reports (not_found, ineligible, conflict,
//     corrupt, collaborator_failure).
//   - Thin abstractions that make command execution against external tools
//     testable.
//
// The subpackages wrap each collaborator: the alignment analyzer, the
// WhisperX transcription service, and the ffsubsync resynchronizer.
package services
