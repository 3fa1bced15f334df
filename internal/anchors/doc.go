// Package anchors models the output of the external alignment analyzer: a
// sequence of timestamped offset samples between a reference subtitle track
// and a target track, the robust statistics derived from them, and the
// quality decision those statistics map to. Everything in this package is a
// pure function of its inputs.
package anchors
