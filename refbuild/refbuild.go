// Package refbuild pools per-sample coverage tables into a reference
// copy-number profile: per-sample bias correction and sex-chromosome
// normalization, then a robust per-bin center and spread across samples.
package refbuild

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/brentp/cnvref/descriptives"
	"github.com/brentp/cnvref/fix"
	"github.com/brentp/cnvref/gcstats"
	"github.com/brentp/cnvref/regions"
	"github.com/brentp/faidx"
	"github.com/fatih/color"
	"gonum.org/v1/gonum/mat"
)

// Config controls a reference build. The zero value requests a female
// reference with all corrections enabled and per-sample sex inference.
type Config struct {
	// MaleReference declares the reference sex: chrX at half coverage.
	MaleReference bool
	// FemaleSample forces the sex of every input sample; nil means infer
	// per sample from relative chrX coverage.
	FemaleSample *bool
	// SkipLow excludes low-coverage bins from the centering median.
	SkipLow bool

	FixGC    bool
	FixEdge  bool
	FixRmask bool

	// ExcludePath is an optional BED of regions whose bins are left out
	// of centering and reported by the diagnostics.
	ExcludePath string

	Params fix.Params
}

// buildContext holds the per-build covariates shared by every sample:
// the flat baseline, sex-chromosome masks, the edge-bias vector and the
// composition columns. Passing it explicitly keeps the per-sample
// correction step free of hidden captured state.
type buildContext struct {
	cfg       Config
	flat      []float64
	isX, isY  []bool
	edge      []float64
	gc, rmask []float64
	exclude   []bool
	floor     float64
}

// Combine reads the given coverage tables (the first defines the bin
// layout), corrects and pools them, and returns the reference table.
// fastaPath may be empty; when set, it is used to compute per-bin GC and
// repeat-masked fractions.
func Combine(paths []string, fastaPath string, cfg Config) (*regions.Table, error) {
	var fa gcstats.Getter
	if fastaPath != "" {
		fai, err := faidx.New(fastaPath)
		if err != nil {
			return nil, err
		}
		defer fai.Close()
		fa = fai
	}
	tables := make([]*regions.Table, 0, len(paths))
	for _, p := range paths {
		log.Printf("loading %s", p)
		t, err := regions.ReadFile(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return CombineTables(tables, fa, cfg)
}

// CombineTables is Combine over already-loaded tables. Sample log2 columns
// are modified in place during correction; bin identity columns are not.
func CombineTables(tables []*regions.Table, fa gcstats.Getter, cfg Config) (*regions.Table, error) {
	if cfg.Params == (fix.Params{}) {
		cfg.Params = fix.Defaults()
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("refbuild: no input samples")
	}
	primary := tables[0]

	if primary.Len() == 0 {
		// an empty input is not an error; emit an empty table with
		// the right column schema.
		out := emptyReference(primary.HasGC() || fa != nil, fa != nil)
		return out, nil
	}

	ctx := &buildContext{cfg: cfg, floor: cfg.Params.LowCoverageFloor()}
	ctx.isX, ctx.isY = sexMasks(primary)
	ctx.flat = FlatLog2(primary, cfg.MaleReference)
	ctx.edge = fix.EdgeBias(primary, cfg.Params.InsertSize)

	// composition columns are computed once against the primary layout
	// and shared, since bins must be positionally identical anyway.
	var outGC, outRmask []float64
	if fa != nil && (cfg.FixGC || cfg.FixRmask) {
		log.Printf("calculating GC and repeat-masked content of %d bins", primary.Len())
		gc, rmask, err := gcstats.FastaStats(fa, primary)
		if err != nil {
			return nil, err
		}
		if cfg.FixGC {
			ctx.gc, outGC = gc, gc
		}
		if cfg.FixRmask {
			ctx.rmask, outRmask = rmask, rmask
		}
	} else if primary.HasGC() && cfg.FixGC {
		ctx.gc, outGC = primary.GC, primary.GC
	}

	if cfg.ExcludePath != "" {
		trees, err := readTree(cfg.ExcludePath)
		if err != nil {
			return nil, err
		}
		ctx.exclude = excludeMask(primary, trees)
	}

	nbins := primary.Len()
	// column 0 is the flat pseudo-sample: one unit of regularizing data
	// pulling each pooled bin toward its no-change expectation.
	coverages := mat.NewDense(nbins, len(tables)+1, nil)
	coverages.SetCol(0, ctx.flat)
	depths := mat.NewDense(nbins, len(tables), nil)

	for si, t := range tables {
		if si > 0 && !primary.MatchesLayout(t) {
			return nil, fmt.Errorf("refbuild: bins in %s do not match those in %s",
				t.SampleID, primary.SampleID)
		}
		depths.SetCol(si, depthSignal(t))
		coverages.SetCol(si+1, correctSample(t, ctx))
	}

	log.Printf("calculating average bin coverages and spreads")
	out := emptyReference(outGC != nil, outRmask != nil)
	out.Chrom = primary.Chrom
	out.Start = primary.Start
	out.End = primary.End
	out.Gene = primary.Gene
	out.Log2 = make([]float64, nbins)
	out.Depth = make([]float64, nbins)
	out.Spread = make([]float64, nbins)
	out.GC = outGC
	out.Rmask = outRmask

	crow := make([]float64, len(tables)+1)
	drow := make([]float64, len(tables))
	for i := 0; i < nbins; i++ {
		mat.Row(crow, i, coverages)
		center := descriptives.BiweightLocation(crow)
		out.Log2[i] = center
		out.Spread[i] = descriptives.BiweightMidvariance(crow, center)
		mat.Row(drow, i, depths)
		out.Depth[i] = descriptives.BiweightLocation(drow)
	}
	return out, nil
}

func emptyReference(withGC, withRmask bool) *regions.Table {
	out := &regions.Table{
		SampleID: "reference",
		Chrom:    []string{},
		Start:    []int{},
		End:      []int{},
		Gene:     []string{},
		Log2:     []float64{},
		Depth:    []float64{},
		Spread:   []float64{},
	}
	if withGC {
		out.GC = []float64{}
	}
	if withRmask {
		out.Rmask = []float64{}
	}
	return out
}

// depthSignal returns the sample's raw depth column, or 2^log2 as a
// pseudo-depth so samples carrying only ratios stay comparable. Taken
// before correction, like the raw depth it stands in for.
func depthSignal(t *regions.Table) []float64 {
	d := make([]float64, t.Len())
	if t.HasDepth() {
		copy(d, t.Depth)
		return d
	}
	for i, v := range t.Log2 {
		d[i] = math.Exp2(v)
	}
	return d
}

// correctSample centers the sample, reconciles its sex chromosomes with
// the reference sex, and applies the requested covariate corrections.
// It returns the sample's corrected log2 column.
func correctSample(t *regions.Table, ctx *buildContext) []float64 {
	cfg := ctx.cfg
	fix.CenterAll(t, cfg.SkipLow, ctx.exclude, cfg.Params)

	isXX := guessXX(t)
	if cfg.FemaleSample != nil {
		isXX = *cfg.FemaleSample
	}
	shiftSexChroms(t, isXX, ctx.flat, ctx.isX, ctx.isY)

	covered := 0
	for _, v := range t.Log2 {
		if v > ctx.floor {
			covered++
		}
	}
	if covered <= t.Len()/2 {
		// usually a region file that doesn't match the sample.
		warn := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s\n", warn(fmt.Sprintf(
			"WARNING: most bins in %s have no or very low coverage; check that the right region file was used", t.SampleID)))
	} else {
		if ctx.gc != nil && cfg.FixGC {
			log.Printf("%s: correcting for GC bias", t.SampleID)
			fix.CenterByWindow(t.Log2, ctx.gc, cfg.Params.WindowFraction)
		}
		if ctx.rmask != nil && cfg.FixRmask {
			log.Printf("%s: correcting for repeat-masked bias", t.SampleID)
			fix.CenterByWindow(t.Log2, ctx.rmask, cfg.Params.WindowFraction)
		}
		if cfg.FixEdge {
			log.Printf("%s: correcting for edge bias", t.SampleID)
			fix.CenterByWindow(t.Log2, ctx.edge, cfg.Params.WindowFraction)
		}
	}
	out := make([]float64, t.Len())
	copy(out, t.Log2)
	return out
}
