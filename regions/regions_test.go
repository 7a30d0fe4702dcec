package regions

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func testTable() *Table {
	return &Table{
		SampleID: "s1",
		Chrom:    []string{"chr1", "chr1", "chrX"},
		Start:    []int{100, 300, 500},
		End:      []int{200, 400, 600},
		Gene:     []string{"GENEA", "Background", "GENEB"},
		Log2:     []float64{-0.5, 0.25, 0},
		Depth:    []float64{10, 12.5, 0},
		GC:       []float64{0.4, 0.6, 0.5},
	}
}

func TestRoundTrip(t *testing.T) {
	tbl := testTable()
	var buf bytes.Buffer
	if err := Write(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got.SampleID = tbl.SampleID
	if !reflect.DeepEqual(got, tbl) {
		t.Errorf("round trip mismatch:\nexpected: %+v\ngot:      %+v", tbl, got)
	}
}

func TestColumns(t *testing.T) {
	tbl := testTable()
	want := []string{"chromosome", "start", "end", "gene", "log2", "depth", "gc"}
	if !reflect.DeepEqual(tbl.Columns(), want) {
		t.Errorf("expected %v, got %v", want, tbl.Columns())
	}
}

func TestRowLabel(t *testing.T) {
	tbl := testTable()
	if l := tbl.RowLabel(0); l != "chr1:101-200" {
		t.Errorf("expected chr1:101-200, got %s", l)
	}
}

func TestMatchesLayout(t *testing.T) {
	a, b := testTable(), testTable()
	if !a.MatchesLayout(b) {
		t.Fatal("identical layouts reported as mismatch")
	}
	b.Start[1]++
	if a.MatchesLayout(b) {
		t.Fatal("differing start not detected")
	}
	c := testTable()
	c.Gene[0] = "OTHER"
	if a.MatchesLayout(c) {
		t.Fatal("differing gene not detected")
	}
}

func TestReadMissingColumn(t *testing.T) {
	in := "chromosome\tstart\tend\tgene\n" + "chr1\t0\t100\tG\n"
	if _, err := Read(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for missing log2 column")
	}
}

func TestReadHeaderOnly(t *testing.T) {
	in := "chromosome\tstart\tend\tgene\tlog2\tdepth\tspread\n"
	tbl, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 0 {
		t.Errorf("expected 0 bins, got %d", tbl.Len())
	}
	if !tbl.HasDepth() || !tbl.HasSpread() || tbl.HasGC() {
		t.Errorf("column presence wrong: %v", tbl.Columns())
	}
}

func TestSampleFromPath(t *testing.T) {
	if s := SampleFromPath("/a/b/sampleA.targetcoverage.cnn.gz"); s != "sampleA.targetcoverage" {
		t.Errorf("got %s", s)
	}
}
