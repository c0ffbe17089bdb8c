package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstools/pgmatch/internal/scorefile"
	"github.com/pgstools/pgmatch/internal/target"
)

func scoreVariant(rowNr int, chrom string, pos int, ea, oa string) *scorefile.Variant {
	return &scorefile.Variant{
		Accession:    "PGS000001",
		RowNr:        rowNr,
		ChrName:      chrom,
		ChrPosition:  pos,
		EffectAllele: ea,
		OtherAllele:  oa,
		EffectWeight: "0.5",
	}
}

func targetIndex(variants ...*target.Variant) *target.Index {
	src := &sliceTargets{variants: variants}
	idx, err := target.NewIndex(src)
	if err != nil {
		panic(err)
	}
	return idx
}

type sliceTargets struct {
	variants []*target.Variant
	i        int
}

func (s *sliceTargets) Next() (*target.Variant, error) {
	if s.i >= len(s.variants) {
		return nil, nil
	}
	v := s.variants[s.i]
	s.i++
	return v, nil
}

func TestGenerateExact(t *testing.T) {
	idx := targetIndex(&target.Variant{Chrom: "11", Pos: 69516650, Ref: "C", Alt: "T", ID: "11:69516650:C:T"})
	g := NewGenerator(idx)

	rc := g.Generate(scoreVariant(0, "11", 69516650, "T", "C"))
	require.Len(t, rc.Candidates, 1)

	c := rc.Candidates[0]
	assert.Equal(t, MatchExact, c.Type)
	assert.Equal(t, "T", c.MatchedEffectAllele)
	assert.False(t, c.Type.RequiresSignFlip())
	assert.False(t, c.Type.IsStrandFlipped())
	assert.False(t, c.Ambiguous)
}

func TestGenerateStrandFlip(t *testing.T) {
	// effect A / other G; target on the other strand: ALT=T, REF=C
	idx := targetIndex(&target.Variant{Chrom: "1", Pos: 100, Ref: "C", Alt: "T", ID: "1:100:C:T"})
	g := NewGenerator(idx)

	rc := g.Generate(scoreVariant(0, "1", 100, "A", "G"))
	require.Len(t, rc.Candidates, 1)
	c := rc.Candidates[0]
	assert.Equal(t, MatchStrandFlip, c.Type)
	assert.Equal(t, "T", c.MatchedEffectAllele)
	assert.True(t, c.Type.IsStrandFlipped())
}

func TestGenerateRefFlip(t *testing.T) {
	// effect C / other T against ref C / alt T: effect aligns to REF
	idx := targetIndex(&target.Variant{Chrom: "1", Pos: 100, Ref: "C", Alt: "T", ID: "1:100:C:T"})
	g := NewGenerator(idx)

	rc := g.Generate(scoreVariant(0, "1", 100, "C", "T"))
	require.Len(t, rc.Candidates, 1)
	c := rc.Candidates[0]
	assert.Equal(t, MatchRefFlip, c.Type)
	assert.True(t, c.Type.RequiresSignFlip())
}

func TestGenerateUnconstrainedOtherAllele(t *testing.T) {
	idx := targetIndex(&target.Variant{Chrom: "1", Pos: 100, Ref: "C", Alt: "T", ID: "1:100:C:T"})
	g := NewGenerator(idx)

	rc := g.Generate(scoreVariant(0, "1", 100, "T", ""))
	require.Len(t, rc.Candidates, 1)
	assert.Equal(t, MatchNoOAExact, rc.Candidates[0].Type)
	assert.True(t, rc.Candidates[0].Type.IsUnconstrained())
}

func TestGenerateMultiallelicIndependentCandidates(t *testing.T) {
	// two target records from one multi-allelic site
	idx := targetIndex(
		&target.Variant{Chrom: "1", Pos: 100, Ref: "A", Alt: "C", ID: "1:100:A:C,G", IsMultiallelic: true},
		&target.Variant{Chrom: "1", Pos: 100, Ref: "A", Alt: "G", ID: "1:100:A:C,G", IsMultiallelic: true},
	)
	g := NewGenerator(idx)

	rc := g.Generate(scoreVariant(0, "1", 100, "C", ""))
	// C matches the first ALT directly and the second ALT (G) by complement
	require.Len(t, rc.Candidates, 2)
	assert.Equal(t, MatchNoOAExact, rc.Candidates[0].Type)
	assert.Equal(t, MatchNoOAStrandFlip, rc.Candidates[1].Type)
}

func TestGenerateAmbiguousPalindromic(t *testing.T) {
	// effect A / other T against target T/A: exact and flipped are
	// indistinguishable, every candidate at the site is flagged
	idx := targetIndex(&target.Variant{Chrom: "1", Pos: 100, Ref: "T", Alt: "A", ID: "1:100:T:A"})
	g := NewGenerator(idx)

	rc := g.Generate(scoreVariant(0, "1", 100, "A", "T"))
	require.NotEmpty(t, rc.Candidates)
	for _, c := range rc.Candidates {
		assert.True(t, c.Ambiguous)
	}
}

func TestGenerateNoPositionalOverlap(t *testing.T) {
	idx := targetIndex(&target.Variant{Chrom: "1", Pos: 100, Ref: "C", Alt: "T", ID: "1:100:C:T"})
	g := NewGenerator(idx)

	assert.Empty(t, g.Generate(scoreVariant(0, "1", 999, "T", "C")).Candidates)
	assert.Empty(t, g.Generate(scoreVariant(0, "2", 100, "T", "C")).Candidates)
}

func TestGenerateAlleleMismatchProducesNothing(t *testing.T) {
	idx := targetIndex(&target.Variant{Chrom: "1", Pos: 100, Ref: "C", Alt: "T", ID: "1:100:C:T"})
	g := NewGenerator(idx)

	assert.Empty(t, g.Generate(scoreVariant(0, "1", 100, "G", "C")).Candidates)
}

func TestGenerateSkipsComplexAndMissing(t *testing.T) {
	idx := targetIndex(&target.Variant{Chrom: "1", Pos: 100, Ref: "C", Alt: "T", ID: "1:100:C:T"})
	g := NewGenerator(idx)

	complexVar := scoreVariant(0, "1", 100, "T", "C")
	complexVar.IsHaplotype = true
	assert.Empty(t, g.Generate(complexVar).Candidates)

	missing := scoreVariant(1, "", 0, "T", "C")
	assert.Empty(t, g.Generate(missing).Candidates)

	hla := scoreVariant(2, "1", 100, "P", "")
	assert.Empty(t, g.Generate(hla).Candidates)
}
