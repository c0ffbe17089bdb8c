// Package aggregate merges per-shard match outcomes into one canonical
// result set. Targets are usually split by chromosome, so every shard
// resolves the full scoring file against a subset of targets: a row
// matched in one shard shows up as unmatched in all the others. The merge
// reduces each row to its best outcome across shards and re-detects
// duplicate-match conflicts globally, producing the same result a single
// whole-target run would have.
package aggregate

import (
	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/match"
)

// Options control the merge.
type Options struct {
	// KeepFirstMatch keeps the lowest-row party of a cross-shard conflict
	// instead of invalidating all of them.
	KeepFirstMatch bool
	// MinOverlap is the per-accession match-rate threshold applied after
	// merging. Zero means match.DefaultMinOverlap.
	MinOverlap float64
}

// Result is a merged outcome set with its per-accession summaries.
type Result struct {
	Outcomes  []match.Outcome
	Summaries []match.Summary
}

// Merge combines shard outcomes into one outcome per scoring file row,
// re-detects duplicate-match conflicts across shard boundaries, and sorts
// the result by accession and row number. The output does not depend on
// shard order. Validation runs on the merged set; like match.Validate,
// summaries are returned even when the error is non-nil so partial success
// stays reportable.
func Merge(shards [][]match.Outcome, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	byRow := make(map[rowKey]match.Outcome)
	for _, shard := range shards {
		for _, out := range shard {
			key := keyOf(out)
			prev, ok := byRow[key]
			if !ok || better(out, prev) {
				byRow[key] = out
			}
		}
	}

	merged := make([]match.Outcome, 0, len(byRow))
	for _, out := range byRow {
		merged = append(merged, out)
	}
	match.SortOutcomes(merged)
	merged = match.InvalidateConflicts(merged, opts.KeepFirstMatch, logger)

	logger.Info("merged shard outcomes",
		zap.Int("shards", len(shards)),
		zap.Int("rows", len(merged)))

	summaries, err := match.Validate(merged, opts.MinOverlap, logger)
	return &Result{Outcomes: merged, Summaries: summaries}, err
}

type rowKey struct {
	accession string
	rowNr     int
}

func keyOf(out match.Outcome) rowKey {
	v := out.Record.Variant
	return rowKey{v.Accession, v.RowNr}
}

// better reports whether a should replace b as the merged outcome for one
// row. Matched beats excluded beats unmatched; between two matches the
// higher-priority strategy wins, with the target variant ID breaking ties
// so the choice never depends on shard order.
func better(a, b match.Outcome) bool {
	if a.Status != b.Status {
		return rank(a.Status) < rank(b.Status)
	}
	if a.Status != match.StatusMatched {
		return false
	}
	if a.Best.Type.Priority() != b.Best.Type.Priority() {
		return a.Best.Type.Priority() < b.Best.Type.Priority()
	}
	return a.Best.Target.ID < b.Best.Target.ID
}

func rank(s match.Status) int {
	switch s {
	case match.StatusMatched:
		return 0
	case match.StatusExcluded:
		return 1
	default:
		return 2
	}
}
