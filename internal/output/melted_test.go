package output

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstools/pgmatch/internal/scorefile"
)

func readGzipLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestMeltedWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.txt.gz")

	mw, err := CreateMelted(path)
	require.NoError(t, err)

	require.NoError(t, mw.Write(&scorefile.Variant{
		Accession:    "PGS000001",
		RowNr:        0,
		ChrName:      "11",
		ChrPosition:  69516650,
		EffectAllele: "T",
		OtherAllele:  "C",
		EffectWeight: "0.162",
	}))
	require.NoError(t, mw.Write(&scorefile.Variant{
		Accession:    "PGS000001",
		RowNr:        1,
		ChrName:      "1",
		EffectAllele: "A",
		EffectWeight: "-0.05",
		EffectType:   scorefile.EffectDominant,
		IsDuplicated: true,
	}))
	assert.Equal(t, 2, mw.Rows())
	require.NoError(t, mw.Close())

	lines := readGzipLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t,
		"chr_name\tchr_position\teffect_allele\tother_allele\teffect_weight\teffect_type\tis_duplicated\taccession\trow_nr",
		lines[0])
	assert.Equal(t, "11\t69516650\tT\tC\t0.162\tadditive\tfalse\tPGS000001\t0", lines[1])

	// missing position stays empty, not 0
	assert.Equal(t, "1\t\tA\t\t-0.05\tdominant\ttrue\tPGS000001\t1", lines[2])
}

func TestMeltedWriterStagesOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.txt.gz")

	mw, err := CreateMelted(path)
	require.NoError(t, err)

	// before Close only the temp file exists
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".tmp")
	assert.NoError(t, err)

	require.NoError(t, mw.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestMeltedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.txt.gz")

	want := []*scorefile.Variant{
		{
			Accession: "PGS000001", RowNr: 0, ChrName: "11", ChrPosition: 69516650,
			EffectAllele: "T", OtherAllele: "C", EffectWeight: "0.162",
		},
		{
			Accession: "PGS000001", RowNr: 1, ChrName: "X",
			EffectAllele: "A", EffectWeight: "-0.05",
			EffectType: scorefile.EffectRecessive, IsDuplicated: true,
		},
	}

	mw, err := CreateMelted(path)
	require.NoError(t, err)
	for _, v := range want {
		require.NoError(t, mw.Write(v))
	}
	require.NoError(t, mw.Close())

	mr, err := OpenMelted(path)
	require.NoError(t, err)
	defer mr.Close()

	for _, w := range want {
		v, err := mr.Next()
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, w, v)
	}

	v, err := mr.Next()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestOpenMeltedRejectsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("chr_name\tchr_position\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	_, err = OpenMelted(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestMeltedWriterDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.txt.gz")

	mw, err := CreateMelted(path)
	require.NoError(t, err)
	mw.Discard()

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
