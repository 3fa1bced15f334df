package anchors

// DefaultCurveDensity is the number of interpolated points emitted per
// sample interval when no density is configured.
const DefaultCurveDensity = 8

// SmoothCurve interpolates a dense display curve through the samples using a
// natural cubic spline, parameterized over the sample index and evaluated
// per coordinate. The input samples appear exactly, in order, within the
// result, and the curve never extends beyond the first or last sample.
// Fewer than three samples are returned unchanged since a line segment needs
// no smoothing.
func SmoothCurve(samples []Sample, pointsPerInterval int) []Sample {
	if len(samples) < 3 {
		cp := make([]Sample, len(samples))
		copy(cp, samples)
		return cp
	}
	if pointsPerInterval < 1 {
		pointsPerInterval = DefaultCurveDensity
	}

	n := len(samples)
	ts := make([]float64, n)
	deltas := make([]float64, n)
	for i, s := range samples {
		ts[i] = s.T
		deltas[i] = s.Delta
	}

	mt := secondDerivatives(ts)
	md := secondDerivatives(deltas)

	out := make([]Sample, 0, (n-1)*pointsPerInterval+1)
	for i := 0; i < n-1; i++ {
		for j := 0; j < pointsPerInterval; j++ {
			if j == 0 {
				out = append(out, samples[i])
				continue
			}
			u := float64(j) / float64(pointsPerInterval)
			out = append(out, Sample{
				T:     splineEval(ts[i], ts[i+1], mt[i], mt[i+1], u),
				Delta: splineEval(deltas[i], deltas[i+1], md[i], md[i+1], u),
			})
		}
	}
	out = append(out, samples[n-1])
	return out
}

// secondDerivatives solves the natural cubic spline system for values
// sampled at unit spacing. The tridiagonal system is reduced by forward
// elimination and recovered by back substitution; the boundary second
// derivatives are zero.
func secondDerivatives(values []float64) []float64 {
	n := len(values)
	m := make([]float64, n)
	if n < 3 {
		return m
	}

	// Interior equations: m[i-1] + 4*m[i] + m[i+1] = rhs[i].
	diag := make([]float64, n)
	rhs := make([]float64, n)
	for i := 1; i < n-1; i++ {
		diag[i] = 4
		rhs[i] = 6 * (values[i-1] - 2*values[i] + values[i+1])
	}

	for i := 2; i < n-1; i++ {
		factor := 1 / diag[i-1]
		diag[i] -= factor
		rhs[i] -= factor * rhs[i-1]
	}

	for i := n - 2; i >= 1; i-- {
		m[i] = (rhs[i] - m[i+1]) / diag[i]
	}
	return m
}

// splineEval evaluates one cubic segment at fraction u in [0,1] given the
// endpoint values and second derivatives, assuming unit interval length.
func splineEval(y0, y1, m0, m1, u float64) float64 {
	v := 1 - u
	return v*y0 + u*y1 + (v*v*v-v)*m0/6 + (u*u*u-u)*m1/6
}

// NearestSample returns the index of the sample closest to the query point
// in display space, where the axes carry independent scale factors. Returns
// -1 for an empty sample set. A linear scan is deliberate: sample counts top
// out in the low thousands.
func NearestSample(samples []Sample, qx, qy, scaleX, scaleY float64) int {
	best := -1
	bestDist := 0.0
	for i, s := range samples {
		dx := s.T*scaleX - qx
		dy := s.Delta*scaleY - qy
		dist := dx*dx + dy*dy
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}
