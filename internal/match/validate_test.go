package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstools/pgmatch/internal/pgserr"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

func outcomeFor(accession string, rowNr int, status Status) Outcome {
	v := &scorefile.Variant{Accession: accession, RowNr: rowNr, EffectWeight: "0.1"}
	out := Outcome{Record: RecordCandidates{Variant: v}, Status: status}
	if status == StatusMatched {
		out.Best = &Candidate{Variant: v}
	}
	return out
}

func nOutcomes(accession string, matched, unmatched int) []Outcome {
	var outs []Outcome
	row := 0
	for range matched {
		outs = append(outs, outcomeFor(accession, row, StatusMatched))
		row++
	}
	for range unmatched {
		outs = append(outs, outcomeFor(accession, row, StatusUnmatched))
		row++
	}
	return outs
}

func TestSummarize(t *testing.T) {
	outs := nOutcomes("PGS000002", 3, 1)
	outs = append(outs, nOutcomes("PGS000001", 1, 0)...)
	outs = append(outs, outcomeFor("PGS000002", 99, StatusExcluded))

	summaries := Summarize(outs)
	require.Len(t, summaries, 2)

	assert.Equal(t, "PGS000001", summaries[0].Accession)
	assert.Equal(t, 1, summaries[0].Total)
	assert.Equal(t, 1, summaries[0].Matched)

	assert.Equal(t, "PGS000002", summaries[1].Accession)
	assert.Equal(t, 5, summaries[1].Total)
	assert.Equal(t, 3, summaries[1].Matched)
	assert.Equal(t, 1, summaries[1].Unmatched)
	assert.Equal(t, 1, summaries[1].Excluded)
	assert.InDelta(t, 0.6, summaries[1].MatchRate, 1e-9)
}

func TestSummarizeCountsConflicts(t *testing.T) {
	conflicted := outcomeFor("PGS000001", 0, StatusUnmatched)
	conflicted.Reason = ReasonConflict

	summaries := Summarize([]Outcome{conflicted, outcomeFor("PGS000001", 1, StatusMatched)})
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Conflicts)
}

func TestValidateThreshold(t *testing.T) {
	// 2 of 4 matched: rate 0.50
	outs := nOutcomes("PGS000001", 2, 2)

	summaries, err := Validate(outs, 0.75, nil)
	require.Error(t, err)
	assert.Equal(t, pgserr.KindMatchRateInsufficient, pgserr.KindOf(err))
	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].Pass)

	var perr *pgserr.Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Accession, "PGS000001")
	assert.InDelta(t, 0.5, perr.Rate, 1e-9)
	assert.InDelta(t, 0.75, perr.Threshold, 1e-9)

	summaries, err = Validate(outs, 0.40, nil)
	require.NoError(t, err)
	assert.True(t, summaries[0].Pass)
}

func TestValidateZeroMatches(t *testing.T) {
	outs := nOutcomes("PGS000001", 0, 3)

	summaries, err := Validate(outs, 0.75, nil)
	require.Error(t, err)
	assert.Equal(t, pgserr.KindZeroMatches, pgserr.KindOf(err))
	assert.Len(t, summaries, 1)
}

func TestValidateAllExcludedIsRateFailure(t *testing.T) {
	// candidates existed at every site but configuration filtered them all,
	// e.g. palindromic matches without keep_ambiguous
	outs := []Outcome{
		outcomeFor("PGS000001", 0, StatusExcluded),
		outcomeFor("PGS000001", 1, StatusExcluded),
	}

	summaries, err := Validate(outs, 0.75, nil)
	require.Error(t, err)
	assert.Equal(t, pgserr.KindMatchRateInsufficient, pgserr.KindOf(err))

	var perr *pgserr.Error
	require.ErrorAs(t, err, &perr)
	assert.InDelta(t, 0.0, perr.Rate, 1e-9)
	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].Pass)
}

func TestValidateAllConflictsIsRateFailure(t *testing.T) {
	conflicted := outcomeFor("PGS000001", 0, StatusUnmatched)
	conflicted.Reason = ReasonConflict

	_, err := Validate([]Outcome{conflicted}, 0.75, nil)
	require.Error(t, err)
	assert.Equal(t, pgserr.KindMatchRateInsufficient, pgserr.KindOf(err))
}

func TestValidateNoOutcomes(t *testing.T) {
	_, err := Validate(nil, 0.75, nil)
	require.Error(t, err)
	assert.Equal(t, pgserr.KindZeroMatches, pgserr.KindOf(err))
}

func TestValidatePartialFailureKeepsPassingSummaries(t *testing.T) {
	outs := nOutcomes("PGS000001", 4, 0)
	outs = append(outs, nOutcomes("PGS000002", 1, 3)...)

	summaries, err := Validate(outs, 0.75, nil)
	require.Error(t, err)
	assert.Equal(t, pgserr.KindMatchRateInsufficient, pgserr.KindOf(err))

	require.Len(t, summaries, 2)
	assert.True(t, summaries[0].Pass)
	assert.False(t, summaries[1].Pass)

	var perr *pgserr.Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Accession, "PGS000002")
	assert.NotContains(t, perr.Accession, "PGS000001")
}

func TestValidateDefaultThreshold(t *testing.T) {
	outs := nOutcomes("PGS000001", 3, 1)

	// 0 means use the default of 0.75; rate is exactly 0.75 and passes
	summaries, err := Validate(outs, 0, nil)
	require.NoError(t, err)
	assert.True(t, summaries[0].Pass)
}
