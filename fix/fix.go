// Package fix removes systematic coverage biases from a sample's per-bin
// log2 ratios: whole-sample centering, sliding-window centering against a
// covariate (GC, repeat fraction, edge bias), and flagging of unusable bins.
package fix

import (
	"math"

	"github.com/JaderDias/movingmedian"
	"github.com/brentp/cnvref/descriptives"
	"github.com/brentp/cnvref/regions"
	"gonum.org/v1/gonum/floats"
)

// Params are the numeric thresholds of the corrector. They are passed
// explicitly rather than kept as package globals so tests can vary them.
type Params struct {
	// NullLog2 is the log2 value standing in for zero coverage.
	NullLog2 float64
	// MinRefCoverage is the lowest acceptable bin log2 in a reference;
	// bins below it, or above its negation, fail the bad-bin mask.
	MinRefCoverage float64
	// MaxRefSpread is the highest acceptable cross-sample spread.
	MaxRefSpread float64
	// InsertSize is the expected sequencing fragment size used for the
	// edge-bias estimate.
	InsertSize float64
	// WindowFraction sizes the rolling window in CenterByWindow as a
	// fraction of the number of bins.
	WindowFraction float64
}

// Defaults returns the standard thresholds.
func Defaults() Params {
	return Params{
		NullLog2:       -20.0,
		MinRefCoverage: -5.0,
		MaxRefSpread:   1.0,
		InsertSize:     250,
		WindowFraction: 0.1,
	}
}

// LowCoverageFloor is the log2 value at or below which a bin is considered
// to have essentially no coverage.
func (p Params) LowCoverageFloor() float64 { return p.NullLog2 - p.MinRefCoverage }

// MaskBadBins flags bins whose coverage is non-finite, outside the
// acceptable log2 range, or whose spread (when present) is too large.
func MaskBadBins(t *regions.Table, p Params) []bool {
	mask := make([]bool, t.Len())
	for i, v := range t.Log2 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			mask[i] = true
			continue
		}
		if v < p.MinRefCoverage || v > -p.MinRefCoverage {
			mask[i] = true
			continue
		}
		if t.HasSpread() && t.Spread[i] > p.MaxRefSpread {
			mask[i] = true
		}
	}
	return mask
}

// CenterAll shifts the table's log2 values so their median is zero.
// With skipLow, bins at or below the low-coverage floor are excluded from
// the median calculation (but still shifted). Bins where ignore is true are
// likewise excluded; ignore may be nil.
func CenterAll(t *regions.Table, skipLow bool, ignore []bool, p Params) {
	kept := make([]float64, 0, t.Len())
	for i, v := range t.Log2 {
		if ignore != nil && ignore[i] {
			continue
		}
		if skipLow && v <= p.LowCoverageFloor() {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return
	}
	shift := descriptives.Median(kept)
	for i := range t.Log2 {
		t.Log2[i] -= shift
	}
}

// CenterByWindow subtracts a rolling median of vals taken in covariate
// order, correcting bias that varies smoothly with the covariate while
// leaving position-level signal in place. The window covers frac of all
// bins. vals is modified in place; covariate is not.
func CenterByWindow(vals, covariate []float64, frac float64) {
	n := len(vals)
	if n == 0 {
		return
	}
	w := int(frac * float64(n))
	if w < 3 {
		w = 3
	}
	if w >= n {
		shift := descriptives.Median(vals)
		for i := range vals {
			vals[i] -= shift
		}
		return
	}

	cov := make([]float64, n)
	copy(cov, covariate)
	inds := make([]int, n)
	floats.Argsort(cov, inds)

	sorted := make([]float64, n)
	for ai, bi := range inds {
		sorted[ai] = vals[bi]
	}

	// rolling median centered on each bin: when reading out bin i the
	// window holds sorted[i-mid..i+mid]. The ends see a partial window.
	out := make([]float64, n)
	mm := movingmedian.NewMovingMedian(w)
	mid := (w - 1) / 2
	for i := 0; i < mid && i < n; i++ {
		mm.Push(sorted[i])
	}
	for i := 0; i < n; i++ {
		if i+mid < n {
			mm.Push(sorted[i+mid])
		}
		out[i] = sorted[i] - mm.Median()
	}

	for ai, bi := range inds {
		vals[bi] = out[ai]
	}
}

// EdgeBias estimates, per bin, the expected log2 coverage change from
// fragment-size effects: coverage lost at bin edges plus coverage gained
// from close neighboring bins, computed per chromosome in position order.
func EdgeBias(t *regions.Table, insertSize float64) []float64 {
	bias := make([]float64, t.Len())
	for s, e := 0, 0; s < t.Len(); s = e {
		for e = s; e < t.Len() && t.Chrom[e] == t.Chrom[s]; e++ {
		}
		edgeBiasChrom(t, s, e, insertSize, bias)
	}
	return bias
}

func edgeBiasChrom(t *regions.Table, lo, hi int, insert float64, bias []float64) {
	for i := lo; i < hi; i++ {
		size := float64(t.End[i] - t.Start[i])
		bias[i] = -edgeLoss(size, insert)
		// gain from the previous neighbor, if it is within one
		// insert size.
		if i > lo {
			gap := float64(t.Start[i] - t.End[i-1])
			if gap < insert {
				prev := float64(t.End[i-1] - t.Start[i-1])
				bias[i] += edgeGain(size, gap, insert)
				bias[i-1] += edgeGain(prev, gap, insert)
			}
		}
	}
}

// edgeLoss is the expected coverage loss at both edges of a bin of the
// given size.
func edgeLoss(size, insert float64) float64 {
	loss := insert / (2 * size)
	if size < insert {
		loss -= (insert - size) * (insert - size) / (2 * insert * size)
	}
	return loss
}

// edgeGain is the coverage gained from a neighbor separated by gap, scaled
// down when the bin plus the gap is smaller than the insert size.
func edgeGain(size, gap, insert float64) float64 {
	if gap < 0 {
		gap = 0
	}
	gain := (insert - gap) * (insert - gap) / (4 * insert * size)
	if size+gap < insert {
		rem := insert - size - gap
		gain -= rem * rem / (4 * insert * size)
	}
	return gain
}
