// Package regions holds the tab-delimited coverage table used as both the
// per-sample input and the pooled reference output. Tables are stored
// column-wise so the numeric columns can be handed to gonum without copying
// row structs around.
package regions

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/brentp/xopen"
)

// Background is the gene label marking off-target (antitarget) bins.
const Background = "Background"

// Table is an ordered set of genomic bins with per-bin coverage columns.
// Chrom/Start/End/Gene are always present. Depth, GC, Rmask and Spread are
// optional; a nil slice means the column was absent from the source file.
// Within one table bins are position-ordered and that order must match
// across all samples being pooled.
type Table struct {
	SampleID string

	Chrom []string
	Start []int
	End   []int
	Gene  []string
	Log2  []float64

	Depth  []float64
	GC     []float64
	Rmask  []float64
	Spread []float64
}

// Len returns the number of bins.
func (t *Table) Len() int { return len(t.Log2) }

func (t *Table) HasDepth() bool  { return t.Depth != nil }
func (t *Table) HasGC() bool     { return t.GC != nil }
func (t *Table) HasRmask() bool  { return t.Rmask != nil }
func (t *Table) HasSpread() bool { return t.Spread != nil }

// RowLabel formats a 1-based position label for the bin at i, e.g. "chr2:3401-9000".
func (t *Table) RowLabel(i int) string {
	return fmt.Sprintf("%s:%d-%d", t.Chrom[i], t.Start[i]+1, t.End[i])
}

// Columns lists the column names that Write would emit, in order.
func (t *Table) Columns() []string {
	cols := []string{"chromosome", "start", "end", "gene", "log2"}
	if t.HasDepth() {
		cols = append(cols, "depth")
	}
	if t.HasGC() {
		cols = append(cols, "gc")
	}
	if t.HasRmask() {
		cols = append(cols, "rmask")
	}
	if t.HasSpread() {
		cols = append(cols, "spread")
	}
	return cols
}

// MatchesLayout reports whether o has the same bin count, coordinates and
// gene labels as t, compared positionally.
func (t *Table) MatchesLayout(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	for i := range t.Chrom {
		if t.Chrom[i] != o.Chrom[i] || t.Start[i] != o.Start[i] ||
			t.End[i] != o.End[i] || t.Gene[i] != o.Gene[i] {
			return false
		}
	}
	return true
}

func mustHave(cols map[string]int, names ...string) error {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return fmt.Errorf("regions: missing required column %q", n)
		}
	}
	return nil
}

// ReadFile opens path (gzipped or not) and parses it with Read.
// The sample id is derived from the file name.
func ReadFile(path string) (*Table, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	t, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", path, err)
	}
	t.SampleID = SampleFromPath(path)
	return t, nil
}

// SampleFromPath strips directories and the common table suffixes from a
// file path to get a sample name.
func SampleFromPath(p string) string {
	tmp := strings.Split(p, "/")
	name := tmp[len(tmp)-1]
	for _, suff := range []string{".gz", ".cnn", ".tsv", ".bed", ".txt"} {
		name = strings.TrimSuffix(name, suff)
	}
	return name
}

// Read parses a tab-delimited coverage table with a header line naming at
// least chromosome, start, end, gene and log2. Unknown columns are ignored.
func Read(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err == io.EOF && header == "" {
		return nil, fmt.Errorf("regions: empty file")
	} else if err != nil && err != io.EOF {
		return nil, err
	}
	cols := make(map[string]int)
	for i, name := range strings.Split(strings.TrimSpace(strings.TrimPrefix(header, "#")), "\t") {
		cols[name] = i
	}
	if err := mustHave(cols, "chromosome", "start", "end", "gene", "log2"); err != nil {
		return nil, err
	}
	t := &Table{Chrom: []string{}, Start: []int{}, End: []int{}, Gene: []string{}, Log2: []float64{}}
	if _, ok := cols["depth"]; ok {
		t.Depth = []float64{}
	}
	if _, ok := cols["gc"]; ok {
		t.GC = []float64{}
	}
	if _, ok := cols["rmask"]; ok {
		t.Rmask = []float64{}
	}
	if _, ok := cols["spread"]; ok {
		t.Spread = []float64{}
	}

	for {
		line, err := br.ReadString('\n')
		if line == "" && err == io.EOF {
			break
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}
		toks := strings.Split(line, "\t")
		if len(toks) < len(cols) {
			return nil, fmt.Errorf("regions: expected %d fields, got %d in line: %s", len(cols), len(toks), line)
		}
		s, err := strconv.Atoi(toks[cols["start"]])
		if err != nil {
			return nil, err
		}
		e, err := strconv.Atoi(toks[cols["end"]])
		if err != nil {
			return nil, err
		}
		l2, err := strconv.ParseFloat(toks[cols["log2"]], 64)
		if err != nil {
			return nil, err
		}
		t.Chrom = append(t.Chrom, toks[cols["chromosome"]])
		t.Start = append(t.Start, s)
		t.End = append(t.End, e)
		t.Gene = append(t.Gene, toks[cols["gene"]])
		t.Log2 = append(t.Log2, l2)
		for _, opt := range []struct {
			name string
			dst  *[]float64
		}{{"depth", &t.Depth}, {"gc", &t.GC}, {"rmask", &t.Rmask}, {"spread", &t.Spread}} {
			if *opt.dst == nil {
				continue
			}
			v, err := strconv.ParseFloat(toks[cols[opt.name]], 64)
			if err != nil {
				return nil, err
			}
			*opt.dst = append(*opt.dst, v)
		}
		if err == io.EOF {
			break
		}
	}
	return t, nil
}

// WriteFile writes the table to path, gzipping if the path ends in .gz.
func WriteFile(path string, t *Table) error {
	fh, err := xopen.Wopen(path)
	if err != nil {
		return err
	}
	if err := Write(fh, t); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Write emits the table as tab-delimited text with a header of the present
// columns. NaN values are written as an empty field.
func Write(w io.Writer, t *Table) error {
	if _, err := fmt.Fprintln(w, strings.Join(t.Columns(), "\t")); err != nil {
		return err
	}
	var b strings.Builder
	for i := 0; i < t.Len(); i++ {
		b.Reset()
		fmt.Fprintf(&b, "%s\t%d\t%d\t%s\t%s", t.Chrom[i], t.Start[i], t.End[i], t.Gene[i], ffmt(t.Log2[i]))
		if t.HasDepth() {
			b.WriteByte('\t')
			b.WriteString(ffmt(t.Depth[i]))
		}
		if t.HasGC() {
			b.WriteByte('\t')
			b.WriteString(ffmt(t.GC[i]))
		}
		if t.HasRmask() {
			b.WriteByte('\t')
			b.WriteString(ffmt(t.Rmask[i]))
		}
		if t.HasSpread() {
			b.WriteByte('\t')
			b.WriteString(ffmt(t.Spread[i]))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func ffmt(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
