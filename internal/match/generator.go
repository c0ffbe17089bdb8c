package match

import (
	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/scorefile"
	"github.com/pgstools/pgmatch/internal/target"
)

// Candidate associates one scoring file variant with one target variant
// under a specific match strategy. Candidates are only created when
// chromosome and position agree and the allele pair is consistent with the
// match type.
type Candidate struct {
	Variant *scorefile.Variant
	Target  *target.Variant
	Type    MatchType

	// MatchedEffectAllele is the allele as it appears in the target
	// (complemented for strand-flipped strategies). Downstream scoring
	// counts dosages of this allele.
	MatchedEffectAllele string

	// Ambiguous marks candidates at strand-ambiguous target sites
	// (REF/ALT are complements, e.g. A/T), where a strand flip is
	// indistinguishable from no flip.
	Ambiguous bool
}

// RecordCandidates holds every candidate generated for one scoring file
// variant, in deterministic order.
type RecordCandidates struct {
	Variant    *scorefile.Variant
	Candidates []*Candidate
}

// Generator enumerates match candidates against a target index. Every
// syntactically valid candidate under an enabled strategy is produced;
// filtering and prioritization happen only in the resolver.
type Generator struct {
	index  *target.Index
	logger *zap.Logger

	// SkipComplex excludes haplotype/diplotype/interaction rows from
	// matching. They are logged loudly instead, since they need multi-locus
	// logic. On by default.
	SkipComplex bool
}

// NewGenerator creates a generator over a read-only target index.
func NewGenerator(index *target.Index) *Generator {
	return &Generator{index: index, logger: zap.NewNop(), SkipComplex: true}
}

// SetLogger sets the logger for warning messages.
func (g *Generator) SetLogger(l *zap.Logger) {
	g.logger = l
}

// Generate returns all candidates for one scoring file variant. Records
// that can't take part in matching (no position, complex, non-nucleotide
// effect allele) get an empty candidate list.
func (g *Generator) Generate(v *scorefile.Variant) RecordCandidates {
	rc := RecordCandidates{Variant: v}

	if !v.HasPosition() || !scorefile.IsSNP(v.EffectAllele) {
		return rc
	}
	if g.SkipComplex && v.IsComplex() {
		g.logger.Warn("complex variant excluded from matching",
			zap.String("accession", v.Accession), zap.Int("row_nr", v.RowNr))
		return rc
	}

	ea := v.EffectAllele
	oa := v.OtherAllele
	cea := scorefile.Complement(ea)
	coa := scorefile.Complement(oa)

	for _, tv := range g.index.At(v.ChrName, v.ChrPosition) {
		ambiguous := scorefile.IsPalindromic(tv.Ref, tv.Alt)

		add := func(mt MatchType, matched string) {
			rc.Candidates = append(rc.Candidates, &Candidate{
				Variant:             v,
				Target:              tv,
				Type:                mt,
				MatchedEffectAllele: matched,
				Ambiguous:           ambiguous,
			})
		}

		if oa != "" {
			if ea == tv.Alt && oa == tv.Ref {
				add(MatchExact, ea)
			}
			if cea == tv.Alt && coa == tv.Ref {
				add(MatchStrandFlip, cea)
			}
			if ea == tv.Ref && oa == tv.Alt {
				add(MatchRefFlip, ea)
			}
			if cea == tv.Ref && coa == tv.Alt {
				add(MatchRefFlipStrand, cea)
			}
		} else {
			// Null other allele is unconstrained: match on effect allele
			// and position alone.
			if ea == tv.Alt {
				add(MatchNoOAExact, ea)
			}
			if cea == tv.Alt {
				add(MatchNoOAStrandFlip, cea)
			}
			if ea == tv.Ref {
				add(MatchNoOARefFlip, ea)
			}
			if cea == tv.Ref {
				add(MatchNoOARefFlipStrand, cea)
			}
		}
	}

	return rc
}

// GenerateAll drains a variant source and generates candidates for each
// record, preserving input order.
func (g *Generator) GenerateAll(src interface {
	Next() (*scorefile.Variant, error)
}) ([]RecordCandidates, error) {
	var records []RecordCandidates
	for {
		v, err := src.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return records, nil
		}
		records = append(records, g.Generate(v))
	}
}
