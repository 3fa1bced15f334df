// Package ffsubsync wraps the ffsubsync resynchronization tool. Given a
// video and a subtitle track it writes a corrected track into the per-movie
// resync directory and reports the shift and correlation score the tool
// printed while running.
package ffsubsync
