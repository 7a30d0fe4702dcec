package refbuild

import (
	"fmt"
	"io"

	"github.com/brentp/cnvref/fix"
	"github.com/brentp/cnvref/regions"
)

const maxNameWidth = 50

// WarnBadBins writes a summary of the reference bins failing the bad-bin
// filters: counts and percentages for target and antitarget (Background)
// bins, and one aligned line per failing target bin. It does not modify t.
func WarnBadBins(w io.Writer, t *regions.Table, p fix.Params) {
	bad := fix.MaskBadBins(t, p)

	var fgTotal, bgTotal int
	var fgBad, bgBad []int
	for i := 0; i < t.Len(); i++ {
		if t.Gene[i] == regions.Background {
			bgTotal++
			if bad[i] {
				bgBad = append(bgBad, i)
			}
		} else {
			fgTotal++
			if bad[i] {
				fgBad = append(fgBad, i)
			}
		}
	}

	if len(fgBad) > 0 {
		fmt.Fprintf(w, "targets: %d (%.4f%%) bins failed filters:\n",
			len(fgBad), 100*float64(len(fgBad))/float64(fgTotal))

		geneCols, chromCols := 0, 0
		labels := make([]string, len(fgBad))
		for k, i := range fgBad {
			if n := len(t.Gene[i]); n > geneCols {
				geneCols = n
			}
			labels[k] = t.RowLabel(i)
			if len(labels[k]) > chromCols {
				chromCols = len(labels[k])
			}
		}
		if geneCols > maxNameWidth {
			geneCols = maxNameWidth
		}

		lastGene := ""
		for k, i := range fgBad {
			gene := t.Gene[i]
			if gene == lastGene {
				gene = `  "`
			} else {
				lastGene = gene
			}
			if len(gene) > maxNameWidth {
				gene = gene[:maxNameWidth-3] + "..."
			}
			var spread float64
			if t.HasSpread() {
				spread = t.Spread[i]
			}
			if t.HasRmask() {
				fmt.Fprintf(w, "  %-*s  %-*s  log2=%.3f  spread=%.3f  rmask=%.3f\n",
					geneCols, gene, chromCols, labels[k], t.Log2[i], spread, t.Rmask[i])
			} else {
				fmt.Fprintf(w, "  %-*s  %-*s  log2=%.3f  spread=%.3f\n",
					geneCols, gene, chromCols, labels[k], t.Log2[i], spread)
			}
		}
	}

	if len(bgBad) > 0 {
		fmt.Fprintf(w, "antitargets: %d (%.4f%%) bins failed filters\n",
			len(bgBad), 100*float64(len(bgBad))/float64(bgTotal))
	}
}
