// Package whisperx is the HTTP client for the WhisperX transcription
// service.
//
// The service queues one transcription job per request and writes the
// resulting reference track to a deterministic location
// (<ref root>/<movie>/ref.srt), replacing any previous reference
// atomically. Job state is polled via Status; completion is otherwise
// observed by the next library scan noticing the new reference mtime.
package whisperx
