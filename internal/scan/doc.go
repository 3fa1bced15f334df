// Package scan orchestrates library reconciliation.
//
// The Scanner walks the media root, arbitrates reference candidates per
// movie, invokes the alignment analyzer when stored results are stale, and
// commits verdicts to the library store. It owns the single-rescan guard,
// batch progress reporting, on-demand re-analysis collapsed through
// singleflight, bulk operator actions, fire-and-forget transcription jobs,
// and the optional cron-scheduled rescan.
package scan
