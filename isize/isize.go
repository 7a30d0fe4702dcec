// Package isize estimates the sequencing fragment (insert) size of a
// library by sampling well-behaved read pairs from a bam/cram. The mean is
// what `reference --insert-size` wants for the edge-bias correction.
package isize

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	arg "github.com/alexflint/go-arg"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/brentp/smoove/shared"
	"go4.org/sort"
	"gonum.org/v1/gonum/stat"
)

var cli = struct {
	N     int      `arg:"-n,help:number of read pairs to sample"`
	Fasta string   `arg:"-f,help:fasta file. required for cram input"`
	Bams  []string `arg:"positional,required,help:bams/crams for which to estimate insert size"`
}{N: 100000}

func pcheck(e error) {
	if e != nil {
		panic(e)
	}
}

// insert sizes more than this many MADs above the median are discarded
// before taking the mean.
const nMads = 10

// Stats holds the sampled insert-size distribution of one bam.
type Stats struct {
	InsertMean float64
	InsertSD   float64
	// 5th and 95th percentiles of insert size
	InsertPct5     float64
	InsertPct95    float64
	TemplateMean   float64
	TemplateSD     float64
	ReadLengthMean float64
}

func (s Stats) String() string {
	return fmt.Sprintf("%.2f\t%.2f\t%.0f\t%.0f\t%.2f\t%.2f\t%.2f",
		s.InsertMean, s.InsertSD, s.InsertPct5, s.InsertPct95, s.TemplateMean, s.TemplateSD, s.ReadLengthMean)
}

func meanStd(arr []float64) (mean, std float64) {
	l := float64(len(arr))
	for _, a := range arr {
		mean += a / l
	}
	for _, a := range arr {
		std += math.Pow(a-mean, 2) / l
	}
	return mean, math.Sqrt(std)
}

// madFilter drops values more than nmads median-absolute-deviations above
// the median; extreme chimeric pairs otherwise wreck the mean.
func madFilter(arr []float64, nmads float64) []float64 {
	if len(arr) < 3 {
		return arr
	}
	sort.Float64s(arr)
	med := arr[len(arr)/2]
	upper := make([]float64, 0, len(arr)/2)
	for _, a := range arr[len(arr)/2+1:] {
		upper = append(upper, a-med)
	}
	if len(upper) == 0 {
		return arr
	}
	sort.Float64s(upper)
	cut := med + nmads*upper[len(upper)/2]
	var i int
	for i = 0; i < len(arr); i++ {
		if arr[i] > cut {
			break
		}
	}
	return arr[:i]
}

// BamInsertSizes samples up to n proper pairs and returns the insert-size
// distribution.
func BamInsertSizes(br *bam.Reader, n int) Stats {
	br.Omit(bam.AllVariableLengthData)
	readLengths := make([]float64, 0, 2*n)
	insertSizes := make([]float64, 0, n)
	templateLengths := make([]float64, 0, n)
	for len(insertSizes) < n {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		pcheck(err)
		if rec.Flags&(sam.Duplicate|sam.QCFail|sam.Unmapped) != 0 {
			continue
		}
		if len(readLengths) < 2*n {
			_, read := rec.Cigar.Lengths()
			readLengths = append(readLengths, float64(read-1))
		} else if len(insertSizes) == 0 {
			// single-end data has no pairs to sample.
			break
		}
		if rec.Pos < rec.MatePos && rec.Flags&sam.ProperPair == sam.ProperPair &&
			len(rec.Cigar) == 1 && rec.Cigar[0].Type() == sam.CigarMatch {
			insertSizes = append(insertSizes, float64(rec.MatePos-rec.End()))
			templateLengths = append(templateLengths, float64(rec.TempLen))
		}
	}

	s := Stats{}
	if len(readLengths) > 0 {
		s.ReadLengthMean, _ = meanStd(readLengths)
	}
	if len(insertSizes) > 0 {
		sort.Float64s(insertSizes)
		s.InsertPct5 = stat.Quantile(0.05, stat.Empirical, insertSizes, nil)
		s.InsertPct95 = stat.Quantile(0.95, stat.Empirical, insertSizes, nil)

		insertSizes = madFilter(insertSizes, nMads)
		s.InsertMean, s.InsertSD = meanStd(insertSizes)

		templateLengths = madFilter(templateLengths, nMads)
		s.TemplateMean, s.TemplateSD = meanStd(templateLengths)
	}
	return s
}

func sampleNames(h *sam.Header) []string {
	tag := sam.Tag([2]byte{'S', 'M'})
	m := make(map[string]bool)
	for _, rg := range h.RGs() {
		if v := rg.Get(tag); v != "" {
			m[v] = true
		}
	}
	names := make([]string, 0, len(m))
	for sm := range m {
		names = append(names, sm)
	}
	sort.Strings(names)
	return names
}

// Main is called from the dispatcher
func Main() {
	arg.MustParse(&cli)
	fmt.Fprintln(os.Stdout, "insert_mean\tinsert_sd\tinsert_5th\tinsert_95th\ttemplate_mean\ttemplate_sd\tread_length\tbam\tsample")
	for _, bamPath := range cli.Bams {
		br, err := shared.NewReader(bamPath, 2, cli.Fasta)
		pcheck(err)

		names := strings.Join(sampleNames(br.Header()), ",")
		if names == "" {
			names = "<no-read-groups>"
		}
		s := BamInsertSizes(br, cli.N)
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", s.String(), bamPath, names)
		br.Close()
	}
}
