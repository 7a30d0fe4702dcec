// Package gcstats computes the GC fraction and the lowercase (RepeatMasker
// soft-masked) fraction of genomic intervals. Case is the masking signal, so
// sequence is never case-folded before counting.
package gcstats

import (
	"github.com/brentp/cnvref/regions"
	"github.com/brentp/faidx"
)

// Getter extracts the sequence text for a 0-based half-open interval.
// *faidx.Faidx satisfies this.
type Getter interface {
	Get(chrom string, start, end int) (string, error)
}

var _ Getter = &faidx.Faidx{}

// Calc returns the GC fraction and the lowercase fraction of subseq.
// Characters other than a/c/g/t (either case) are ignored; if no valid
// bases remain, both fractions are 0 so gap (all-N) bins do not divide
// by zero.
func Calc(subseq string) (gcFrac, loFrac float64) {
	var atLo, atUp, gcLo, gcUp int
	for i := 0; i < len(subseq); i++ {
		switch subseq[i] {
		case 'a', 't':
			atLo++
		case 'A', 'T':
			atUp++
		case 'g', 'c':
			gcLo++
		case 'G', 'C':
			gcUp++
		}
	}
	tot := atLo + atUp + gcLo + gcUp
	if tot == 0 {
		return 0, 0
	}
	return float64(gcLo+gcUp) / float64(tot), float64(atLo+gcLo) / float64(tot)
}

// FastaStats computes per-bin GC and repeat-masked fractions for every bin
// of t, in bin order.
func FastaStats(fa Getter, t *regions.Table) (gc, rmask []float64, err error) {
	gc = make([]float64, t.Len())
	rmask = make([]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		subseq, err := fa.Get(t.Chrom[i], t.Start[i], t.End[i])
		if err != nil {
			return nil, nil, err
		}
		gc[i], rmask[i] = Calc(subseq)
	}
	return gc, rmask, nil
}
