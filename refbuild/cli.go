package refbuild

import (
	"log"
	"os"

	arg "github.com/alexflint/go-arg"
	"github.com/brentp/cnvref/fix"
	"github.com/brentp/cnvref/regions"
)

var cli = struct {
	Output       string   `arg:"-o,help:path for the output reference table"`
	Fasta        string   `arg:"-f,help:indexed fasta used to compute GC and repeat-masked fraction per bin"`
	Targets      string   `arg:"-t,help:bed of regions; builds a neutral flat reference when no coverage tables are given"`
	MaleRef      bool     `arg:"-y,--male-reference,help:create a male reference with chrX at half coverage"`
	SampleSex    string   `arg:"--sample-sex,help:force all samples to this sex (male or female); default infers per sample"`
	SkipLow      bool     `arg:"--skip-low,help:skip low-coverage bins when centering"`
	NoGC         bool     `arg:"--no-gc,help:skip GC correction"`
	NoEdge       bool     `arg:"--no-edge,help:skip edge-bias correction"`
	NoRmask      bool     `arg:"--no-rmask,help:skip repeat-masked-fraction correction"`
	InsertSize   float64  `arg:"--insert-size,help:expected fragment size for the edge-bias estimate"`
	Exclude      string   `arg:"-x,help:bed of regions to leave out of centering"`
	RegionPrefix string   `arg:"--region-prefix,help:also write <prefix>.target.bed and <prefix>.antitarget.bed"`
	Tables       []string `arg:"positional,help:per-sample coverage tables; the first defines the bin layout"`
}{Output: "reference.cnn", InsertSize: 250}

// Main is called from the dispatcher
func Main() {
	p := arg.MustParse(&cli)

	params := fix.Defaults()
	params.InsertSize = cli.InsertSize

	if len(cli.Tables) == 0 {
		if cli.Targets == "" {
			p.Fail("provide coverage tables, or -t <bed> for a flat reference")
		}
		flat, err := BedToProbes(cli.Targets)
		if err != nil {
			log.Fatal(err)
		}
		if err := regions.WriteFile(cli.Output, flat); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote flat reference with %d bins to %s", flat.Len(), cli.Output)
		return
	}

	cfg := Config{
		MaleReference: cli.MaleRef,
		SkipLow:       cli.SkipLow,
		FixGC:         !cli.NoGC,
		FixEdge:       !cli.NoEdge,
		FixRmask:      !cli.NoRmask,
		ExcludePath:   cli.Exclude,
		Params:        params,
	}
	switch cli.SampleSex {
	case "":
	case "male", "m":
		f := false
		cfg.FemaleSample = &f
	case "female", "f":
		f := true
		cfg.FemaleSample = &f
	default:
		p.Fail("--sample-sex must be male or female")
	}

	ref, err := Combine(cli.Tables, cli.Fasta, cfg)
	if err != nil {
		log.Fatal(err)
	}
	WarnBadBins(os.Stderr, ref, params)
	if err := regions.WriteFile(cli.Output, ref); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote reference with %d bins to %s", ref.Len(), cli.Output)
	if cli.RegionPrefix != "" {
		if err := WriteRegions(ref, cli.RegionPrefix); err != nil {
			log.Fatal(err)
		}
	}
}
