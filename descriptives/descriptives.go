// Package descriptives implements robust estimators of center and spread.
// The biweight (Tukey bisquare) estimators down-weight outlier bins, e.g.
// true CNVs present in the panel of normals, so the pooled reference is not
// dragged by them the way a plain mean would be.
package descriptives

import (
	"math"
	"sort"
)

// tuning constants for the bisquare kernel, following the usual values for
// location (c=6) and scale (c=9) estimation.
const (
	locC    = 6.0
	scaleC  = 9.0
	epsilon = 1e-4
	maxIter = 5
)

// Median returns the median of a, averaging the two middle values for
// even-length input. It does not modify a.
func Median(a []float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(a))
	copy(s, a)
	sort.Float64s(s)
	if len(s)%2 == 0 {
		return (s[len(s)/2-1] + s[len(s)/2]) / 2
	}
	return s[len(s)/2]
}

// MAD returns the median absolute deviation of a around center.
func MAD(a []float64, center float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	d := make([]float64, len(a))
	for i, v := range a {
		d[i] = math.Abs(v - center)
	}
	return Median(d)
}

// BiweightLocation returns an iteratively reweighted M-estimate of the
// center of a, starting from the median. A constant-valued input returns
// that constant. a is not modified.
func BiweightLocation(a []float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	initial := Median(a)
	var result float64
	for iter := 0; iter < maxIter; iter++ {
		result = bilocStep(a, initial)
		if math.Abs(result-initial) <= epsilon {
			break
		}
		initial = result
	}
	return result
}

func bilocStep(a []float64, initial float64) float64 {
	mad := MAD(a, initial)
	if mad == 0 {
		// zero variance: every remaining point is the center.
		return initial
	}
	scale := math.Max(locC*mad, epsilon)
	var num, den float64
	for _, v := range a {
		d := v - initial
		u := d / scale
		if math.Abs(u) >= 1 {
			continue
		}
		w := (1 - u*u) * (1 - u*u)
		num += d * w
		den += w
	}
	if den == 0 {
		return initial
	}
	return initial + num/den
}

// BiweightMidvariance returns a robust estimate of the spread of a around
// center, on the same scale as a standard deviation. Zero-variance input
// yields 0.
func BiweightMidvariance(a []float64, center float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	mad := MAD(a, center)
	if mad == 0 {
		return 0
	}
	scale := math.Max(scaleC*mad, epsilon)
	var num, den float64
	n := 0
	for _, v := range a {
		d := v - center
		u := d / scale
		if math.Abs(u) >= 1 {
			continue
		}
		u2 := u * u
		num += d * d * (1 - u2) * (1 - u2) * (1 - u2) * (1 - u2)
		den += (1 - u2) * (1 - 5*u2)
		n++
	}
	if den == 0 {
		return 0
	}
	return math.Sqrt(float64(n) * num / (den * den))
}
