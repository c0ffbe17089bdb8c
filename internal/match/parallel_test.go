package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstools/pgmatch/internal/target"
)

func TestParallelGeneratePreservesOrder(t *testing.T) {
	const n = 200

	variants := make([]*target.Variant, n)
	for i := range variants {
		variants[i] = &target.Variant{
			Chrom: "1", Pos: 1000 + i, Ref: "C", Alt: "T",
			ID: fmt.Sprintf("1:%d:C:T", 1000+i),
		}
	}
	g := NewGenerator(targetIndex(variants...))

	items := make(chan WorkItem)
	go func() {
		for i := range n {
			items <- WorkItem{Seq: i, Variant: scoreVariant(i, "1", 1000+i, "T", "C")}
		}
		close(items)
	}()

	var rows []int
	err := OrderedCollect(g.ParallelGenerate(items, 4), func(r WorkResult) error {
		require.Len(t, r.Record.Candidates, 1)
		rows = append(rows, r.Record.Variant.RowNr)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, rows, n)
	for i, row := range rows {
		assert.Equal(t, i, row)
	}
}

func TestOrderedCollectError(t *testing.T) {
	results := make(chan WorkResult, 3)
	for i := range 3 {
		results <- WorkResult{Seq: i}
	}
	close(results)

	calls := 0
	err := OrderedCollect(results, func(WorkResult) error {
		calls++
		if calls == 2 {
			return fmt.Errorf("sink failed")
		}
		return nil
	})
	require.EqualError(t, err, "sink failed")
	assert.Equal(t, 2, calls)
}
