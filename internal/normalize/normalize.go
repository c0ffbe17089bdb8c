// Package normalize turns raw scoring file rows into validated canonical
// variants ready for matching or export. Stages run lazily in a fixed order
// over a stream of records; later stages assume earlier stages' invariants.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/liftover"
	"github.com/pgstools/pgmatch/internal/pgserr"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

// VariantSource yields scoring file variants one at a time, returning
// nil, nil when there are no more.
type VariantSource interface {
	Next() (*scorefile.Variant, error)
}

// Options configures the pipeline for one scoring file.
type Options struct {
	// DropMissing removes records with invalid effect alleles or missing
	// positions instead of flagging them for the caller to decide.
	DropMissing bool

	// Liftover enables coordinate conversion for non-harmonized files whose
	// build differs from the target build.
	Liftover     bool
	Lifter       liftover.Lifter
	CurrentBuild scorefile.GenomeBuild
	TargetBuild  scorefile.GenomeBuild

	// MinLiftFraction is the successful-lift fraction below which the whole
	// scoring file fails. Guards against a mismatched or corrupt chain
	// mapping producing plausible-looking wrong coordinates.
	MinLiftFraction float64

	// Harmonised means catalog-supplied positions take precedence over
	// author-submitted ones (and over liftover, which is skipped).
	Harmonised bool

	// Accession names the scoring file in fatal errors.
	Accession string
}

// DefaultMinLiftFraction is the default lift-fraction gate.
const DefaultMinLiftFraction = 0.95

// Stats counts per-stage outcomes for the QC log. Emitted plus Dropped
// always equals Total: no record vanishes without classification.
type Stats struct {
	Total   int `json:"total"`
	Emitted int `json:"emitted"`
	Dropped int `json:"dropped"`

	Lifted        int `json:"lifted"`
	LiftFailed    int `json:"lift_failed"`
	HLADropped    int `json:"hla_dropped"`
	BadAlleles    int `json:"bad_alleles"`
	MultiOther    int `json:"multi_other_allele"`
	Complex       int `json:"complex"`
	Duplicates    int `json:"duplicates"`
	MissingCoords int `json:"missing_coords"`
}

// Pipeline applies the normalization stages to a variant stream. It is
// single pass: restart by constructing a new Pipeline from a fresh source.
type Pipeline struct {
	src    VariantSource
	opts   Options
	logger *zap.Logger

	doLift    bool
	liftStats liftover.Stats

	seenKeys     map[string]bool
	curAccession string

	stats       Stats
	complexSeen bool
	done        bool
}

// New builds a pipeline over src. The stage order is load-bearing and must
// not be rearranged.
func New(src VariantSource, opts Options) *Pipeline {
	if opts.MinLiftFraction == 0 {
		opts.MinLiftFraction = DefaultMinLiftFraction
	}
	doLift := opts.Liftover && !opts.Harmonised &&
		opts.CurrentBuild != opts.TargetBuild && opts.Lifter != nil
	return &Pipeline{
		src:      src,
		opts:     opts,
		logger:   zap.NewNop(),
		doLift:   doLift,
		seenKeys: make(map[string]bool),
	}
}

// SetLogger sets the logger for warning messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Stats returns per-stage counters. Only complete after the stream is
// exhausted.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Next returns the next canonical variant, nil at end of stream, or a fatal
// per-file error. Per-record problems are counted and resolved by dropping
// or flagging; only unparseable weights and an insufficient lift fraction
// abort the file.
func (p *Pipeline) Next() (*scorefile.Variant, error) {
	if p.done {
		return nil, nil
	}

	for {
		v, err := p.src.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, p.finish()
		}
		p.stats.Total++

		// 1. Liftover. Failed lifts null the position; dropping is decided
		// later so the record still counts toward duplicate detection.
		if p.doLift {
			p.liftStats.Total++
			if chrom, pos, ok := p.opts.Lifter.Lift(v.ChrName, v.ChrPosition); ok {
				v.ChrName = strings.TrimPrefix(chrom, "chr")
				v.ChrPosition = pos
				p.liftStats.Lifted++
				p.stats.Lifted++
			} else {
				v.ChrName = ""
				v.ChrPosition = 0
				p.stats.LiftFailed++
			}
		}

		// 2. Harmonized remap takes precedence for harmonized sources. A
		// failed harmonization nulls the position, which we always keep.
		if p.opts.Harmonised {
			v.ChrName = v.HmChr
			v.ChrPosition = v.HmPos
			if v.OtherAllele == "" {
				v.OtherAllele = v.HmInferOtherAllele
			}
		}

		// 3. Effect type from boolean source columns, default additive.
		if err := assignEffectType(v); err != nil {
			return nil, err
		}

		// 4. A slash-delimited other allele encodes multiple possibilities.
		// Null it rather than guessing: null widens candidate generation
		// instead of risking a wrong pin.
		if strings.Contains(v.OtherAllele, "/") {
			v.OtherAllele = ""
			p.stats.MultiOther++
		}

		// 5. Complex rows are preserved but flagged; they need multi-locus
		// handling that standard matching can't provide.
		if v.IsComplex() {
			p.stats.Complex++
			if !p.complexSeen {
				p.complexSeen = true
				p.logger.Warn("complex scoring file detected; haplotype/diplotype/interaction rows need manual intervention",
					zap.String("accession", v.Accession))
			}
		}

		// 6. HLA serotype codes can't be located on a genome. Always drop.
		if v.EffectAllele == "P" || v.EffectAllele == "N" {
			p.stats.HLADropped++
			p.stats.Dropped++
			p.logger.Debug("dropped HLA allele",
				zap.String("accession", v.Accession), zap.Int("row_nr", v.RowNr))
			continue
		}

		// 7. Effect allele must be a valid nucleotide sequence.
		if !scorefile.IsSNP(v.EffectAllele) {
			p.stats.BadAlleles++
			if p.opts.DropMissing {
				p.stats.Dropped++
				continue
			}
		}

		// 8. An unparseable weight means file corruption, always fatal.
		if err := checkEffectWeight(v); err != nil {
			return nil, err
		}

		// 9. Duplicate identity keys are flagged, never removed: output and
		// logging must surface them so weight isn't silently split.
		if v.Accession != p.curAccession {
			p.seenKeys = make(map[string]bool)
			p.curAccession = v.Accession
		}
		key := v.IdentityKey()
		if p.seenKeys[key] {
			v.IsDuplicated = true
			p.stats.Duplicates++
		}
		p.seenKeys[key] = true

		// 10. Records with no position left (lift failed, not harmonized)
		// are dropped only when configured; otherwise kept and flagged.
		if !v.HasPosition() {
			p.stats.MissingCoords++
			if p.opts.DropMissing {
				p.stats.Dropped++
				continue
			}
		}

		p.stats.Emitted++
		return v, nil
	}
}

// finish runs end-of-stream validation: the lift-fraction gate can only be
// evaluated once every record has been seen.
func (p *Pipeline) finish() error {
	p.done = true

	if p.stats.Duplicates > 0 {
		p.logger.Warn("duplicated variants in scoring file",
			zap.String("accession", p.opts.Accession),
			zap.Int("duplicates", p.stats.Duplicates),
			zap.Int("total", p.stats.Total))
	}

	if p.doLift && p.liftStats.Total > 0 {
		if frac := p.liftStats.Fraction(); frac < p.opts.MinLiftFraction {
			return &pgserr.Error{
				Kind:      pgserr.KindLiftoverInsufficient,
				Accession: p.opts.Accession,
				Rate:      frac,
				Threshold: p.opts.MinLiftFraction,
				Msg:       "too many failed liftovers, check chain files and genome build",
			}
		}
	}
	return nil
}

// assignEffectType converts the dominant/recessive flag columns to an
// EffectType. Both flags set at once is a format error.
func assignEffectType(v *scorefile.Variant) error {
	switch {
	case v.IsDominant && v.IsRecessive:
		return pgserr.New(pgserr.KindScoreFormatInvalid,
			"%s: variant is both dominant and recessive", v)
	case v.IsDominant:
		v.EffectType = scorefile.EffectDominant
	case v.IsRecessive:
		v.EffectType = scorefile.EffectRecessive
	default:
		v.EffectType = scorefile.EffectAdditive
	}
	return nil
}

// checkEffectWeight verifies the weight parses as a finite number. The
// weight stays a string until final use to avoid float round-trip loss.
func checkEffectWeight(v *scorefile.Variant) error {
	w, err := strconv.ParseFloat(v.EffectWeight, 64)
	if err != nil || math.IsInf(w, 0) || math.IsNaN(w) {
		return &pgserr.Error{
			Kind:      pgserr.KindScoreFormatInvalid,
			Accession: v.Accession,
			Msg:       "bad effect weight " + strconv.Quote(v.EffectWeight) + " at row " + strconv.Itoa(v.RowNr),
		}
	}
	return nil
}
