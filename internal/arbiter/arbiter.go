package arbiter

import (
	"os"
	"strings"
	"time"
)

// Kind identifies the provenance of a reference candidate.
type Kind string

const (
	// KindEN is an original-language subtitle shipped with the media.
	KindEN Kind = "en"
	// KindWhisper is a transcription-derived reference.
	KindWhisper Kind = "whisper"
	// KindFFsync is a resync-derived reference.
	KindFFsync Kind = "ffsync"
	// KindNone signals that no valid candidate exists.
	KindNone Kind = "none"
)

// priority breaks ties between candidates produced at the same instant.
// Transcription references are the most expensive to produce and therefore
// the most trustworthy when equally fresh.
var priority = map[Kind]int{
	KindWhisper: 3,
	KindFFsync:  2,
	KindEN:      1,
}

var kindSet = map[Kind]struct{}{
	KindEN:      {},
	KindWhisper: {},
	KindFFsync:  {},
	KindNone:    {},
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := kindSet[normalized]
	return normalized, ok
}

// Candidate is one reference track eligible to serve as ground truth.
type Candidate struct {
	Kind        Kind
	Path        string
	ProducedAt  time.Time
	QualityHint float64
}

// Arbiter selects the authoritative reference among candidates. The
// existence probe is injectable so tests can run without touching disk.
type Arbiter struct {
	exists func(path string) bool
}

// New constructs an Arbiter that checks candidate paths on the filesystem.
func New() *Arbiter {
	return &Arbiter{exists: fileExists}
}

// WithExists overrides the candidate existence probe (for testing).
func (a *Arbiter) WithExists(probe func(path string) bool) *Arbiter {
	if probe != nil {
		a.exists = probe
	}
	return a
}

// Select returns the authoritative candidate: the most recently produced one
// that still exists on disk, ties broken by whisper > ffsync > en. When no
// valid candidate remains, the returned candidate has Kind none and the
// caller must not attempt alignment.
func (a *Arbiter) Select(candidates []Candidate) Candidate {
	best := Candidate{Kind: KindNone}
	for _, c := range candidates {
		if c.Kind == KindNone || c.Path == "" {
			continue
		}
		if a.exists != nil && !a.exists(c.Path) {
			continue
		}
		if best.Kind == KindNone || newer(c, best) {
			best = c
		}
	}
	return best
}

// newer reports whether a should win over b under the newest-wins policy.
func newer(a, b Candidate) bool {
	if !a.ProducedAt.Equal(b.ProducedAt) {
		return a.ProducedAt.After(b.ProducedAt)
	}
	return priority[a.Kind] > priority[b.Kind]
}

// ShouldReplace gates whether a stored record may be overwritten by a new
// analysis against the chosen candidate. A record is replaced when it has
// never been analyzed, when the reference or the target track is fresher
// than the last analysis, or when the caller forced re-analysis.
func ShouldReplace(chosen Candidate, lastAnalyzed, targetMtime *time.Time, forced bool) bool {
	if forced {
		return true
	}
	if lastAnalyzed == nil {
		return true
	}
	if chosen.ProducedAt.After(*lastAnalyzed) {
		return true
	}
	if targetMtime != nil && targetMtime.After(*lastAnalyzed) {
		return true
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
