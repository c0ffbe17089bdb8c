// Package match implements the variant matching engine: candidate
// generation across match strategies, best-match resolution, and match-rate
// validation.
package match

// MatchType labels the strategy that produced a candidate. Declaration
// order is the fixed priority order used by the resolver: exact matches with
// identical alleles rank above strand flips, which rank above reference
// flips, which rank above unconstrained (null other allele) matches.
type MatchType int

const (
	// MatchExact: effect/other alleles equal target ALT/REF.
	MatchExact MatchType = iota
	// MatchStrandFlip: complemented alleles equal target ALT/REF.
	MatchStrandFlip
	// MatchRefFlip: effect/other alleles equal target REF/ALT. The effect
	// allele aligns to the reference, so the effect weight's sign convention
	// is inverted downstream.
	MatchRefFlip
	// MatchRefFlipStrand: complemented alleles equal target REF/ALT.
	MatchRefFlipStrand
	// MatchNoOAExact: effect allele equals target ALT, other allele null.
	MatchNoOAExact
	// MatchNoOAStrandFlip: complemented effect allele equals target ALT.
	MatchNoOAStrandFlip
	// MatchNoOARefFlip: effect allele equals target REF.
	MatchNoOARefFlip
	// MatchNoOARefFlipStrand: complemented effect allele equals target REF.
	MatchNoOARefFlipStrand

	numMatchTypes
)

var matchTypeNames = [numMatchTypes]string{
	"exact",
	"strand_flip",
	"ref_flip",
	"ref_flip_strand",
	"no_oa_exact",
	"no_oa_strand_flip",
	"no_oa_ref_flip",
	"no_oa_ref_flip_strand",
}

func (m MatchType) String() string {
	if m < 0 || m >= numMatchTypes {
		return "unknown"
	}
	return matchTypeNames[m]
}

// ParseMatchType inverts String. ok is false for unknown labels.
func ParseMatchType(s string) (MatchType, bool) {
	for i, name := range matchTypeNames {
		if name == s {
			return MatchType(i), true
		}
	}
	return 0, false
}

// Priority returns the rank used by the resolver; lower is better.
func (m MatchType) Priority() int {
	return int(m)
}

// IsStrandFlipped reports whether the strategy complemented the scoring
// file alleles before comparing.
func (m MatchType) IsStrandFlipped() bool {
	switch m {
	case MatchStrandFlip, MatchRefFlipStrand, MatchNoOAStrandFlip, MatchNoOARefFlipStrand:
		return true
	}
	return false
}

// RequiresSignFlip reports whether the effect weight must be negated for
// downstream score calculation because the effect allele aligned to the
// target reference allele.
func (m MatchType) RequiresSignFlip() bool {
	switch m {
	case MatchRefFlip, MatchRefFlipStrand, MatchNoOARefFlip, MatchNoOARefFlipStrand:
		return true
	}
	return false
}

// IsUnconstrained reports whether the strategy matched on effect allele and
// position alone because the other allele was null.
func (m MatchType) IsUnconstrained() bool {
	switch m {
	case MatchNoOAExact, MatchNoOAStrandFlip, MatchNoOARefFlip, MatchNoOARefFlipStrand:
		return true
	}
	return false
}
