package descriptives

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	if m := Median([]float64{3, 1, 2}); m != 2 {
		t.Errorf("expected 2, got %v", m)
	}
	if m := Median([]float64{4, 1, 3, 2}); m != 2.5 {
		t.Errorf("expected 2.5, got %v", m)
	}
	if m := Median([]float64{7}); m != 7 {
		t.Errorf("expected 7, got %v", m)
	}
}

func TestMAD(t *testing.T) {
	if v := MAD([]float64{1, 2, 3, 4, 5}, 3); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	if v := MAD([]float64{2, 2, 2}, 2); v != 0 {
		t.Errorf("expected 0, got %v", v)
	}
}

func TestBiweightConstant(t *testing.T) {
	for n := 1; n <= 5; n++ {
		a := make([]float64, n)
		for i := range a {
			a[i] = 3.5
		}
		if loc := BiweightLocation(a); loc != 3.5 {
			t.Errorf("n=%d: expected 3.5, got %v", n, loc)
		}
		if mv := BiweightMidvariance(a, 3.5); mv != 0 {
			t.Errorf("n=%d: expected 0 midvariance, got %v", n, mv)
		}
	}
}

func TestBiweightAgreeingSamples(t *testing.T) {
	// symmetric input: the estimate is the median exactly.
	if loc := BiweightLocation([]float64{10, 12, 11}); math.Abs(loc-11) > 1e-12 {
		t.Errorf("expected 11, got %v", loc)
	}
}

func TestBiweightOutlier(t *testing.T) {
	a := []float64{10, 11, 40}
	loc := BiweightLocation(a)
	mean := (10.0 + 11 + 40) / 3
	if loc <= 10 || loc >= 12 {
		t.Errorf("expected location near 10.5, got %v", loc)
	}
	if mean-loc < 8 {
		t.Errorf("biweight location %v not robust against outlier (mean %v)", loc, mean)
	}
}

func TestMidvariance(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	mv := BiweightMidvariance(a, 3)
	if mv <= 0 || math.IsNaN(mv) {
		t.Errorf("expected positive spread, got %v", mv)
	}
	// an outlier should barely move the spread.
	b := []float64{1, 2, 3, 4, 500}
	mvb := BiweightMidvariance(b, Median(b))
	if mvb > 10*mv {
		t.Errorf("spread %v blown up by outlier (was %v)", mvb, mv)
	}
}
