package scorefile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstools/pgmatch/internal/pgserr"
)

func makeScore(t *testing.T, pgsID string) string {
	t.Helper()
	content := "#pgs_id=" + pgsID + "\n#genome_build=GRCh37\n" +
		"chr_name\tchr_position\teffect_allele\tother_allele\teffect_weight\n" +
		"1\t100\tA\tG\t0.5\n"
	return writeTestFile(t, pgsID+".txt", content)
}

func TestScoringFilesSortedByAccession(t *testing.T) {
	sf, err := NewScoringFiles(BuildGRCh38, makeScore(t, "PGS000002"), makeScore(t, "PGS000001"))
	require.NoError(t, err)

	require.Equal(t, 2, sf.Len())
	assert.Equal(t, "PGS000001", sf.Files()[0].Header.Accession())
	assert.Equal(t, "PGS000002", sf.Files()[1].Header.Accession())
}

func TestScoringFilesDropsDuplicateAccessions(t *testing.T) {
	first := makeScore(t, "PGS000001")
	sf, err := NewScoringFiles(BuildGRCh38, first, makeScore(t, "PGS000002"), makeScore(t, "PGS000001"))
	require.NoError(t, err)

	require.Equal(t, 2, sf.Len())
	assert.Equal(t, "PGS000001", sf.Files()[0].Header.Accession())
	assert.Equal(t, first, sf.Files()[0].Path)
	assert.Equal(t, "PGS000002", sf.Files()[1].Header.Accession())
}

func TestScoringFilesMergeDropsDuplicateAccessions(t *testing.T) {
	a, err := NewScoringFiles(BuildGRCh38, makeScore(t, "PGS000001"))
	require.NoError(t, err)
	b, err := NewScoringFiles(BuildGRCh38, makeScore(t, "PGS000001"), makeScore(t, "PGS000002"))
	require.NoError(t, err)

	merged, err := a.Merge(b)
	require.NoError(t, err)
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, a.Files()[0].Path, merged.Files()[0].Path)
}

func TestScoringFilesMerge(t *testing.T) {
	a, err := NewScoringFiles(BuildGRCh38, makeScore(t, "PGS000001"))
	require.NoError(t, err)
	b, err := NewScoringFiles(BuildGRCh38, makeScore(t, "PGS000002"))
	require.NoError(t, err)

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
}

func TestScoringFilesMergeRejectsBuildMismatch(t *testing.T) {
	a, err := NewScoringFiles(BuildGRCh38, makeScore(t, "PGS000001"))
	require.NoError(t, err)
	b, err := NewScoringFiles(BuildGRCh37, makeScore(t, "PGS000002"))
	require.NoError(t, err)

	_, err = a.Merge(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &pgserr.Error{Kind: pgserr.KindBuildMismatch}))
}

func TestScoringFileOpenRestarts(t *testing.T) {
	f, err := NewScoringFile(makeScore(t, "PGS000001"))
	require.NoError(t, err)

	for range 2 {
		r, err := f.Open()
		require.NoError(t, err)
		variants := readAll(t, r)
		require.NoError(t, r.Close())
		assert.Len(t, variants, 1)
	}
}
