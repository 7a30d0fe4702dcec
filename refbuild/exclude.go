package refbuild

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
	"github.com/brentp/cnvref/regions"
	"github.com/brentp/xopen"
)

// irange is an integer interval for the exclude tree.
type irange struct {
	Start, End int
	UID        uintptr
}

func (i irange) Overlap(b interval.IntRange) bool {
	// half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}
func (i irange) ID() uintptr              { return i.UID }
func (i irange) Range() interval.IntRange { return interval.IntRange{Start: i.Start, End: i.End} }

// overlaps checks whether the tree contains anything intersecting
// [start, end) without pulling intervals out of it.
func overlaps(tree *interval.IntTree, start, end int) bool {
	if tree == nil {
		return false
	}
	q := irange{Start: start, End: end, UID: uintptr(tree.Len())}
	found := false
	tree.DoMatching(func(iv interval.IntInterface) bool {
		found = true
		return true
	}, q)
	return found
}

// readTree loads a BED of regions to exclude into per-chromosome interval
// trees.
func readTree(path string) (map[string]*interval.IntTree, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	trees := make(map[string]*interval.IntTree, 10)
	k := 0
	for {
		line, err := r.ReadString('\n')
		if line == "" && err == io.EOF {
			break
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		toks := strings.SplitN(line, "\t", 4)
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
		if _, ok := trees[toks[0]]; !ok {
			trees[toks[0]] = &interval.IntTree{}
		}
		trees[toks[0]].Insert(irange{s, e, uintptr(k)}, false)
		k++
	}
	log.Printf("read %d excluded intervals from %s", k, path)
	return trees, nil
}

// excludeMask marks the bins of t overlapping any excluded region.
func excludeMask(t *regions.Table, trees map[string]*interval.IntTree) []bool {
	mask := make([]bool, t.Len())
	n := 0
	for i := 0; i < t.Len(); i++ {
		if overlaps(trees[t.Chrom[i]], t.Start[i], t.End[i]) {
			mask[i] = true
			n++
		}
	}
	if n > 0 {
		log.Printf("%d bins overlap excluded regions and are left out of centering", n)
	}
	return mask
}
