package liftover

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLiftOver writes a stand-in liftOver script that shifts every
// interval by 1000 and drops positions on chrY to exercise the unmapped
// path.
func fakeLiftOver(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake liftOver script needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "liftOver")
	script := `#!/bin/sh
awk -F'\t' 'BEGIN{OFS="\t"} $1=="chrY" {print > "'$4'"; next} {print $1, $2+1000, $3+1000, $4}' "$1" > "$3"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestToolLiftBatch(t *testing.T) {
	tool := NewTool(fakeLiftOver(t), "dummy.chain")

	lifter, err := tool.LiftBatch([]Position{
		{Chrom: "11", Pos: 69331418},
		{Chrom: "1", Pos: 100},
		{Chrom: "Y", Pos: 555},
	})
	require.NoError(t, err)

	chrom, pos, ok := lifter.Lift("11", 69331418)
	require.True(t, ok)
	assert.Equal(t, "11", chrom)
	assert.Equal(t, 69332418, pos)

	chrom, pos, ok = lifter.Lift("1", 100)
	require.True(t, ok)
	assert.Equal(t, "1", chrom)
	assert.Equal(t, 1100, pos)

	// unmapped position
	_, _, ok = lifter.Lift("Y", 555)
	assert.False(t, ok)

	// never submitted
	_, _, ok = lifter.Lift("2", 42)
	assert.False(t, ok)
}

func TestToolMissingExecutable(t *testing.T) {
	tool := NewTool(filepath.Join(t.TempDir(), "no-such-liftover"), "dummy.chain")
	_, err := tool.LiftBatch([]Position{{Chrom: "1", Pos: 1}})
	require.Error(t, err)
}
