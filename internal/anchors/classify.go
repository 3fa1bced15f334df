package anchors

import "strings"

// Decision grades how well a target track lines up with its reference.
type Decision string

const (
	DecisionSynced          Decision = "synced"
	DecisionNeedsAdjustment Decision = "needs_adjustment"
	DecisionBad             Decision = "bad"
	DecisionUnknown         Decision = "unknown"
)

var decisionSet = map[Decision]struct{}{
	DecisionSynced:          {},
	DecisionNeedsAdjustment: {},
	DecisionBad:             {},
	DecisionUnknown:         {},
}

// ParseDecision converts a string into a known Decision.
func ParseDecision(value string) (Decision, bool) {
	normalized := Decision(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := decisionSet[normalized]
	return normalized, ok
}

// Thresholds are the tunable boundaries of the quality classification.
// All offsets and spans are in seconds.
type Thresholds struct {
	// MinAnchors is the clean sample count below which no verdict is
	// possible; smaller sets classify as unknown.
	MinAnchors int `toml:"min_anchors"`
	// MaxDriftSpan fails alignment outright when exceeded.
	MaxDriftSpan float64 `toml:"max_drift_span"`
	// MaxAvgOffset fails alignment outright when exceeded (absolute value).
	MaxAvgOffset float64 `toml:"max_avg_offset"`
	// SyncedDriftSpan is the drift span ceiling for a synced verdict.
	SyncedDriftSpan float64 `toml:"synced_drift_span"`
	// SyncedAvgOffset is the average offset ceiling for a synced verdict.
	SyncedAvgOffset float64 `toml:"synced_avg_offset"`
}

// DefaultThresholds carry the tuning the analyzer was calibrated against.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAnchors:      3,
		MaxDriftSpan:    3.5,
		MaxAvgOffset:    4.0,
		SyncedDriftSpan: 2.0,
		SyncedAvgOffset: 1.0,
	}
}

// Classify maps robust statistics to a Decision. The mapping is total: every
// input lands in exactly one bucket.
func (t Thresholds) Classify(anchorCount int, avgOffset, driftSpan float64) Decision {
	if anchorCount < t.MinAnchors {
		return DecisionUnknown
	}
	if driftSpan > t.MaxDriftSpan || abs(avgOffset) > t.MaxAvgOffset {
		return DecisionBad
	}
	if driftSpan <= t.SyncedDriftSpan && abs(avgOffset) <= t.SyncedAvgOffset {
		return DecisionSynced
	}
	return DecisionNeedsAdjustment
}
