package refbuild

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/brentp/cnvref/regions"
)

func TestBedToProbes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.bed")
	bed := "chr1\t0\t500\tGENE1\nchr1\t1000\t1500\nchr2\t0\t500\tGENE2\n"
	if err := os.WriteFile(path, []byte(bed), 0644); err != nil {
		t.Fatal(err)
	}
	probes, err := BedToProbes(path)
	if err != nil {
		t.Fatal(err)
	}
	if probes.SampleID != "targets" {
		t.Errorf("expected sample id targets, got %s", probes.SampleID)
	}
	if !reflect.DeepEqual(probes.Gene, []string{"GENE1", "-", "GENE2"}) {
		t.Errorf("genes: %v", probes.Gene)
	}
	for i := 0; i < probes.Len(); i++ {
		if probes.Log2[i] != 0 || probes.Spread[i] != 0 {
			t.Errorf("bin %d: expected neutral coverage, got log2=%v spread=%v", i, probes.Log2[i], probes.Spread[i])
		}
	}
}

func TestSplitRegions(t *testing.T) {
	tbl := &regions.Table{
		Chrom:  []string{"chr1", "chr1", "chr2"},
		Start:  []int{0, 1000, 0},
		End:    []int{500, 1500, 500},
		Gene:   []string{"GENE1", regions.Background, regions.Background},
		Log2:   []float64{0.1, 0, -0.1},
		Spread: []float64{0.1, 0.2, 0.3},
	}
	targets, anti := SplitRegions(tbl)
	if targets.Len() != 1 || anti.Len() != 2 {
		t.Fatalf("expected 1 target and 2 antitargets, got %d and %d", targets.Len(), anti.Len())
	}
	if targets.Gene[0] != "GENE1" || anti.Spread[1] != 0.3 {
		t.Errorf("split carried wrong rows: %v %v", targets.Gene, anti.Spread)
	}
}

func TestExcludeMask(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclude.bed")
	if err := os.WriteFile(path, []byte("chr1\t1200\t1300\n"), 0644); err != nil {
		t.Fatal(err)
	}
	trees, err := readTree(path)
	if err != nil {
		t.Fatal(err)
	}
	tbl := &regions.Table{
		Chrom: []string{"chr1", "chr1", "chr2"},
		Start: []int{0, 1000, 1000},
		End:   []int{500, 1500, 1500},
		Gene:  []string{"A", "B", "C"},
		Log2:  []float64{0, 0, 0},
	}
	got := excludeMask(tbl, trees)
	if !reflect.DeepEqual(got, []bool{false, true, false}) {
		t.Errorf("expected only the overlapping chr1 bin masked, got %v", got)
	}
}
