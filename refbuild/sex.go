package refbuild

import (
	"log"
	"strings"

	"github.com/brentp/cnvref/descriptives"
	"github.com/brentp/cnvref/regions"
)

// chrLabels returns the spelling of the X and Y chromosome names used by
// the table ("chrX"/"chrY" or bare "X"/"Y").
func chrLabels(t *regions.Table) (x, y string) {
	if t.Len() > 0 && strings.HasPrefix(t.Chrom[0], "chr") {
		return "chrX", "chrY"
	}
	return "X", "Y"
}

func sexMasks(t *regions.Table) (isX, isY []bool) {
	xl, yl := chrLabels(t)
	isX = make([]bool, t.Len())
	isY = make([]bool, t.Len())
	for i, c := range t.Chrom {
		isX[i] = c == xl
		isY[i] = c == yl
	}
	return isX, isY
}

// FlatLog2 is the expected log2 ratio per bin under no copy-number change:
// zero on autosomes, with the sex chromosomes at half ploidy (-1) according
// to the declared reference sex. chrY is -1 for either reference sex.
func FlatLog2(t *regions.Table, maleReference bool) []float64 {
	isX, isY := sexMasks(t)
	flat := make([]float64, t.Len())
	for i := range flat {
		if isY[i] || (isX[i] && maleReference) {
			flat[i] = -1
		}
	}
	return flat
}

// guessXX infers whether a sample is XX from its relative chrX coverage.
// The sample's log2 values are assumed centered, so chrX sits near the
// autosome level for an XX sample and a full copy below it for XY; the
// cutoff is halfway between. The reference sex plays no part here: the
// sample's own coverage is what it is regardless of what is being built.
func guessXX(t *regions.Table) bool {
	xl, yl := chrLabels(t)
	var auto, xs []float64
	for i, c := range t.Chrom {
		switch c {
		case xl:
			xs = append(xs, t.Log2[i])
		case yl:
		default:
			auto = append(auto, t.Log2[i])
		}
	}
	if len(xs) == 0 || len(auto) == 0 {
		log.Printf("WARNING: no chrX bins in %s; assuming male", t.SampleID)
		return false
	}
	diff := descriptives.Median(xs) - descriptives.Median(auto)
	return diff >= -0.5
}

// shiftSexChroms adds the flat baseline to the already-centered sample and
// reconciles the sex chromosomes with the reference sex. For an XX sample
// chrY carries no real signal and is pinned to a constant -1 rather than
// left as near-zero-coverage noise; for an XY sample both sex chromosomes
// get +1 to undo their half ploidy relative to autosomes.
func shiftSexChroms(t *regions.Table, isXX bool, flat []float64, isX, isY []bool) {
	for i := range t.Log2 {
		t.Log2[i] += flat[i]
	}
	if isXX {
		for i := range t.Log2 {
			if isY[i] {
				t.Log2[i] = -1.0
			}
		}
	} else {
		for i := range t.Log2 {
			if isX[i] || isY[i] {
				t.Log2[i] += 1.0
			}
		}
	}
}
