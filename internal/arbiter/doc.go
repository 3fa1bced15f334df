// Package arbiter decides which reference subtitle track is authoritative
// for a movie and whether a fresh analysis result may replace the stored
// one. The policy lives in one place so the freshness comparison and the
// priority tie-break are never duplicated at call sites.
package arbiter
