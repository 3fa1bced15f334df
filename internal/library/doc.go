// Package library is the persistent ledger of subtitle quality verdicts.
//
// It stores one row per movie in a SQLite database: the latest alignment
// statistics, the winning reference, operator flags, and lifecycle state.
// Writes are read-modify-write cycles serialized per movie so concurrent
// scan workers and API calls cannot interleave partial updates. Two fields
// have merge semantics that survive any update: the ignored flag only
// changes through SetIgnored/ClearIgnored, and has_whisper never goes back
// to false once a transcription reference has been observed.
//
// The package also owns the analysis sidecar documents written next to the
// database, which let a rescan reuse a previous verdict without re-running
// the aligner.
package library
