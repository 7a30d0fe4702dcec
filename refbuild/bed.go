package refbuild

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brentp/cnvref/regions"
	"github.com/brentp/xopen"
)

// BedToProbes builds a neutral-coverage table from a BED of intervals:
// log2 and spread zero for every bin, gene from column 4 when present.
// Used to create a "flat" reference when no control samples are available.
func BedToProbes(path string) (*regions.Table, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	t := &regions.Table{
		SampleID: regions.SampleFromPath(path),
		Chrom:    []string{},
		Start:    []int{},
		End:      []int{},
		Gene:     []string{},
		Log2:     []float64{},
		Spread:   []float64{},
	}
	for {
		line, err := r.ReadString('\n')
		if line == "" && err == io.EOF {
			break
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") {
			continue
		}
		toks := strings.Split(line, "\t")
		if len(toks) < 3 {
			return nil, fmt.Errorf("refbuild: bad bed line in %s: %s", path, line)
		}
		s, err := strconv.Atoi(toks[1])
		if err != nil {
			return nil, err
		}
		e, err := strconv.Atoi(toks[2])
		if err != nil {
			return nil, err
		}
		gene := "-"
		if len(toks) > 3 && toks[3] != "" {
			gene = toks[3]
		}
		t.Chrom = append(t.Chrom, toks[0])
		t.Start = append(t.Start, s)
		t.End = append(t.End, e)
		t.Gene = append(t.Gene, gene)
		t.Log2 = append(t.Log2, 0)
		t.Spread = append(t.Spread, 0)
	}
	return t, nil
}

// SplitRegions partitions a reference into its target and antitarget
// (Background) bins, returning two new tables sharing the input's columns.
func SplitRegions(t *regions.Table) (targets, antitargets *regions.Table) {
	targets = subset(t, func(i int) bool { return t.Gene[i] != regions.Background })
	antitargets = subset(t, func(i int) bool { return t.Gene[i] == regions.Background })
	return targets, antitargets
}

func subset(t *regions.Table, keep func(int) bool) *regions.Table {
	o := &regions.Table{
		SampleID: t.SampleID,
		Chrom:    []string{},
		Start:    []int{},
		End:      []int{},
		Gene:     []string{},
		Log2:     []float64{},
	}
	if t.HasDepth() {
		o.Depth = []float64{}
	}
	if t.HasGC() {
		o.GC = []float64{}
	}
	if t.HasRmask() {
		o.Rmask = []float64{}
	}
	if t.HasSpread() {
		o.Spread = []float64{}
	}
	for i := 0; i < t.Len(); i++ {
		if !keep(i) {
			continue
		}
		o.Chrom = append(o.Chrom, t.Chrom[i])
		o.Start = append(o.Start, t.Start[i])
		o.End = append(o.End, t.End[i])
		o.Gene = append(o.Gene, t.Gene[i])
		o.Log2 = append(o.Log2, t.Log2[i])
		if t.HasDepth() {
			o.Depth = append(o.Depth, t.Depth[i])
		}
		if t.HasGC() {
			o.GC = append(o.GC, t.GC[i])
		}
		if t.HasRmask() {
			o.Rmask = append(o.Rmask, t.Rmask[i])
		}
		if t.HasSpread() {
			o.Spread = append(o.Spread, t.Spread[i])
		}
	}
	return o
}

// WriteRegions writes the target and antitarget bins of a reference as two
// BED files with the given prefix.
func WriteRegions(t *regions.Table, prefix string) error {
	targets, antitargets := SplitRegions(t)
	for _, part := range []struct {
		t    *regions.Table
		name string
	}{{targets, prefix + ".target.bed"}, {antitargets, prefix + ".antitarget.bed"}} {
		w, err := xopen.Wopen(part.name)
		if err != nil {
			return err
		}
		for i := 0; i < part.t.Len(); i++ {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", part.t.Chrom[i], part.t.Start[i], part.t.End[i], part.t.Gene[i])
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
