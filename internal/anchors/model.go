package anchors

import "sort"

// Sample is one point of correspondence between the reference timeline and
// the target track: at reference time T the target is offset by Delta
// seconds (positive means the target lags the reference).
type Sample struct {
	T     float64 `json:"ref_t"`
	Delta float64 `json:"delta"`
	Score float64 `json:"score,omitempty"`
}

// madFloor guards against a zero MAD when every delta is identical.
const madFloor = 1e-6

// outlierMADFactor is the cutoff for the robust clean split: samples whose
// delta deviates from the median by more than this many MADs are outliers.
const outlierMADFactor = 2.5

// robustSpanMADFactor converts the MAD into the reported drift span.
const robustSpanMADFactor = 4.0

// Analysis is the value object produced from one analyzer invocation.
// Clean holds the samples that survived outlier removal; Outliers the rest.
// The derived statistics are computed from Clean.
type Analysis struct {
	Samples  []Sample `json:"offsets"`
	Clean    []Sample `json:"clean_offsets"`
	Outliers []Sample `json:"outlier_offsets"`

	AnchorCount int     `json:"anchor_count"`
	AvgOffset   float64 `json:"avg_offset_sec"`
	DriftSpan   float64 `json:"drift_span_sec"`
	MinOffset   float64 `json:"min_offset_sec"`
	MaxOffset   float64 `json:"max_offset_sec"`

	Decision Decision `json:"decision"`
}

// Analyze derives robust statistics and a quality decision from raw samples.
// The average offset is the median of the clean deltas and the drift span is
// a MAD-based robust spread, so a handful of mis-detected anchors cannot
// skew the result.
func Analyze(samples []Sample, th Thresholds) Analysis {
	out := Analysis{Samples: sortedByTime(samples)}

	if len(out.Samples) == 0 {
		out.Decision = DecisionUnknown
		return out
	}

	deltas := make([]float64, len(out.Samples))
	for i, s := range out.Samples {
		deltas[i] = s.Delta
	}
	out.MinOffset = minFloat(deltas)
	out.MaxOffset = maxFloat(deltas)

	med := median(deltas)
	mad := medianAbsDeviation(deltas, med)
	if mad < madFloor {
		mad = madFloor
	}

	cutoff := outlierMADFactor * mad
	for _, s := range out.Samples {
		if abs(s.Delta-med) <= cutoff {
			out.Clean = append(out.Clean, s)
		} else {
			out.Outliers = append(out.Outliers, s)
		}
	}

	out.AnchorCount = len(out.Clean)
	out.AvgOffset = medianOf(out.Clean)
	out.DriftSpan = robustSpanMADFactor * mad
	out.Decision = th.Classify(out.AnchorCount, out.AvgOffset, out.DriftSpan)
	return out
}

func sortedByTime(samples []Sample) []Sample {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].T < cp[j].T })
	return cp
}

func medianOf(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	deltas := make([]float64, len(samples))
	for i, s := range samples {
		deltas[i] = s.Delta
	}
	return median(deltas)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return 0.5 * (cp[mid-1] + cp[mid])
}

func medianAbsDeviation(values []float64, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = abs(v - center)
	}
	return median(devs)
}

func minFloat(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
