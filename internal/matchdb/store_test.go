package matchdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstools/pgmatch/internal/match"
	"github.com/pgstools/pgmatch/internal/scorefile"
	"github.com/pgstools/pgmatch/internal/target"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func matchedOutcome(accession string, rowNr int) match.Outcome {
	v := &scorefile.Variant{
		Accession:    accession,
		RowNr:        rowNr,
		ChrName:      "11",
		ChrPosition:  69516650,
		EffectAllele: "T",
		OtherAllele:  "C",
		EffectWeight: "0.21",
	}
	return match.Outcome{
		Record: match.RecordCandidates{Variant: v},
		Status: match.StatusMatched,
		Best: &match.Candidate{
			Variant: v,
			Target: &target.Variant{
				Chrom: "11", Pos: 69516650, Ref: "C", Alt: "T",
				ID: "11:69516650:C:T",
			},
			Type:                match.MatchExact,
			MatchedEffectAllele: "T",
		},
	}
}

func unmatchedOutcome(accession string, rowNr int, reason match.Reason) match.Outcome {
	v := &scorefile.Variant{
		Accession:    accession,
		RowNr:        rowNr,
		ChrName:      "1",
		ChrPosition:  100,
		EffectAllele: "A",
		EffectWeight: "-0.05",
		EffectType:   scorefile.EffectDominant,
	}
	return match.Outcome{
		Record: match.RecordCandidates{Variant: v},
		Status: match.StatusUnmatched,
		Reason: reason,
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndReadOutcomes(t *testing.T) {
	s := openInMemory(t)

	written := []match.Outcome{
		matchedOutcome("PGS000001", 0),
		unmatchedOutcome("PGS000001", 1, match.ReasonNoCandidates),
	}
	require.NoError(t, s.WriteOutcomes(written))

	got, err := s.ReadOutcomes()
	require.NoError(t, err)
	require.Len(t, got, 2)

	m := got[0]
	assert.Equal(t, match.StatusMatched, m.Status)
	require.NotNil(t, m.Best)
	assert.Equal(t, match.MatchExact, m.Best.Type)
	assert.Equal(t, "11:69516650:C:T", m.Best.Target.ID)
	assert.Equal(t, "T", m.Best.MatchedEffectAllele)
	assert.Equal(t, "0.21", m.Record.Variant.EffectWeight)

	u := got[1]
	assert.Equal(t, match.StatusUnmatched, u.Status)
	assert.Equal(t, match.ReasonNoCandidates, u.Reason)
	assert.Nil(t, u.Best)
	assert.Equal(t, scorefile.EffectDominant, u.Record.Variant.EffectType)
}

func TestReadOutcomesOrdered(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteOutcomes([]match.Outcome{
		matchedOutcome("PGS000002", 0),
		unmatchedOutcome("PGS000001", 5, match.ReasonConflict),
		unmatchedOutcome("PGS000001", 2, match.ReasonAllExcluded),
	}))

	got, err := s.ReadOutcomes()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "PGS000001", got[0].Record.Variant.Accession)
	assert.Equal(t, 2, got[0].Record.Variant.RowNr)
	assert.Equal(t, 5, got[1].Record.Variant.RowNr)
	assert.Equal(t, "PGS000002", got[2].Record.Variant.Accession)
}

func TestCountByStatus(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteOutcomes([]match.Outcome{
		matchedOutcome("PGS000001", 0),
		matchedOutcome("PGS000001", 1),
		unmatchedOutcome("PGS000001", 2, match.ReasonNoCandidates),
	}))

	counts, err := s.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, counts["matched"])
	assert.Equal(t, 1, counts["unmatched"])
}

func TestClear(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteOutcomes([]match.Outcome{matchedOutcome("PGS000001", 0)}))
	require.NoError(t, s.Clear())

	got, err := s.ReadOutcomes()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteEmptyIsNoop(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteOutcomes(nil))
}
