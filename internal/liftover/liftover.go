// Package liftover defines the coordinate-conversion boundary used during
// normalization. Converting a position between genome builds is an external
// capability: implementations wrap a chain-file tool and this package only
// resolves which chain mapping a build pair needs and tracks success rates.
package liftover

import (
	"os"
	"path/filepath"

	"github.com/pgstools/pgmatch/internal/pgserr"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

// Lifter converts a chromosome/position pair from one build's coordinate
// system to another. ok is false when the position has no mapping in the
// chain file.
type Lifter interface {
	Lift(chrom string, pos int) (newChrom string, newPos int, ok bool)
}

// Func adapts a plain function to the Lifter interface.
type Func func(chrom string, pos int) (string, int, bool)

// Lift implements Lifter.
func (f Func) Lift(chrom string, pos int) (string, int, bool) {
	return f(chrom, pos)
}

// ChainPath resolves the UCSC chain file for a build pair inside chainDir.
// Only GRCh37 <-> GRCh38 conversions are supported.
func ChainPath(chainDir string, from, to scorefile.GenomeBuild) (string, error) {
	var name string
	switch {
	case from == scorefile.BuildGRCh37 && to == scorefile.BuildGRCh38:
		name = "hg19ToHg38.over.chain.gz"
	case from == scorefile.BuildGRCh38 && to == scorefile.BuildGRCh37:
		name = "hg38ToHg19.over.chain.gz"
	default:
		return "", pgserr.New(pgserr.KindBuildMismatch,
			"unsupported liftover %s -> %s", from, to)
	}

	path := filepath.Join(chainDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", pgserr.Wrap(pgserr.KindBuildMismatch, err, "chain file %s not found", name)
	}
	return path, nil
}

// Stats tracks how many records a Lifter converted successfully. The chain
// mapping is loaded once per build pair and is read-only, so one Stats value
// per shard needs no locking.
type Stats struct {
	Lifted int
	Total  int
}

// Fraction returns the successful-lift fraction, or 1 when nothing was
// attempted.
func (s Stats) Fraction() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Lifted) / float64(s.Total)
}
