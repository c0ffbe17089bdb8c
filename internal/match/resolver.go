package match

import (
	"sort"

	"go.uber.org/zap"
)

// Status classifies the resolution outcome for one scoring file variant.
type Status int

const (
	// StatusMatched means exactly one best candidate survived.
	StatusMatched Status = iota
	// StatusUnmatched means no usable candidate existed.
	StatusUnmatched
	// StatusExcluded means candidates existed but configuration filtered
	// them all (ambiguous, multiallelic, strand flips).
	StatusExcluded
)

func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusExcluded:
		return "excluded"
	default:
		return "unmatched"
	}
}

// Reason explains a non-matched outcome.
type Reason int

const (
	// ReasonNone applies to matched outcomes.
	ReasonNone Reason = iota
	// ReasonNoCandidates: no strategy produced any candidate.
	ReasonNoCandidates
	// ReasonAllExcluded: every candidate was filtered by configuration.
	ReasonAllExcluded
	// ReasonConflict: the best candidate was invalidated because another
	// record resolved to the same target variant.
	ReasonConflict
)

func (r Reason) String() string {
	switch r {
	case ReasonNoCandidates:
		return "no_candidates"
	case ReasonAllExcluded:
		return "all_excluded"
	case ReasonConflict:
		return "conflict"
	default:
		return ""
	}
}

// Outcome is the final resolution for one scoring file variant: at most one
// best match, or an explicit unmatched marker with a reason code.
type Outcome struct {
	Record RecordCandidates
	Best   *Candidate // nil unless Status == StatusMatched
	Status Status
	Reason Reason
}

// ResolverOptions control which candidates can win. Filters are applied
// before ranking so an excluded candidate can never silently win by being
// the only one available.
type ResolverOptions struct {
	// KeepAmbiguous accepts candidates at strand-ambiguous (palindromic)
	// target sites. Off by default: a flip is indistinguishable from no
	// flip at those sites.
	KeepAmbiguous bool
	// KeepMultiallelic accepts candidates on multi-allelic target variants.
	KeepMultiallelic bool
	// IgnoreStrandFlips rejects every strand-flipped candidate.
	IgnoreStrandFlips bool
	// KeepFirstMatch keeps the lowest-row conflicting record instead of
	// invalidating all parties of a duplicate-match conflict.
	KeepFirstMatch bool
}

// Resolver reduces candidate sets to at most one best match per variant.
type Resolver struct {
	opts   ResolverOptions
	logger *zap.Logger
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts ResolverOptions) *Resolver {
	return &Resolver{opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for conflict reporting.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// filter returns the candidates that configuration allows to win.
func (r *Resolver) filter(cands []*Candidate) []*Candidate {
	kept := make([]*Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Ambiguous && !r.opts.KeepAmbiguous {
			continue
		}
		if c.Target.IsMultiallelic && !r.opts.KeepMultiallelic {
			continue
		}
		if c.Type.IsStrandFlipped() && r.opts.IgnoreStrandFlips {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// best picks the highest-priority candidate, breaking ties deterministically
// by target variant ID and then by generation order. Never random: runs must
// be reproducible.
func best(cands []*Candidate) *Candidate {
	winner := cands[0]
	for _, c := range cands[1:] {
		switch {
		case c.Type.Priority() < winner.Type.Priority():
			winner = c
		case c.Type.Priority() == winner.Type.Priority() && c.Target.ID < winner.Target.ID:
			winner = c
		}
	}
	return winner
}

// Resolve turns candidate sets into outcomes, one per input record, in
// input order. Duplicate-match conflicts (two records resolving to the same
// target variant) invalidate all parties unless KeepFirstMatch is set.
func (r *Resolver) Resolve(records []RecordCandidates) []Outcome {
	outcomes := make([]Outcome, len(records))

	// First pass: per-record filtering and ranking.
	for i, rec := range records {
		out := Outcome{Record: rec}
		switch kept := r.filter(rec.Candidates); {
		case len(rec.Candidates) == 0:
			out.Status = StatusUnmatched
			out.Reason = ReasonNoCandidates
		case len(kept) == 0:
			out.Status = StatusExcluded
			out.Reason = ReasonAllExcluded
		default:
			out.Status = StatusMatched
			out.Best = best(kept)
		}
		outcomes[i] = out
	}

	return InvalidateConflicts(outcomes, r.opts.KeepFirstMatch, r.logger)
}

// InvalidateConflicts re-checks matched outcomes for duplicate-match
// conflicts: two matched records claiming the same target variant within one
// accession. All parties are invalidated (never one arbitrarily kept) unless
// keepFirst is set, which keeps the record with the lowest row number. The
// aggregator re-runs this globally after merging shards, since a conflict
// can span two shards.
func InvalidateConflicts(outcomes []Outcome, keepFirst bool, logger *zap.Logger) []Outcome {
	if logger == nil {
		logger = zap.NewNop()
	}

	claims := make(map[string][]int) // accession|target ID -> outcome indices
	for i, out := range outcomes {
		if out.Status != StatusMatched {
			continue
		}
		key := out.Record.Variant.Accession + "|" + out.Best.Target.ID
		claims[key] = append(claims[key], i)
	}

	for key, idxs := range claims {
		if len(idxs) < 2 {
			continue
		}

		keep := -1
		if keepFirst {
			keep = idxs[0]
			for _, i := range idxs[1:] {
				if outcomes[i].Record.Variant.RowNr < outcomes[keep].Record.Variant.RowNr {
					keep = i
				}
			}
		}

		logger.Warn("duplicate match conflict",
			zap.String("key", key),
			zap.Int("records", len(idxs)),
			zap.Bool("keep_first", keepFirst))

		for _, i := range idxs {
			if i == keep {
				continue
			}
			outcomes[i].Best = nil
			outcomes[i].Status = StatusUnmatched
			outcomes[i].Reason = ReasonConflict
		}
	}

	return outcomes
}

// SortOutcomes orders outcomes by accession and then row number, the
// canonical output order.
func SortOutcomes(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		a, b := outcomes[i].Record.Variant, outcomes[j].Record.Variant
		if a.Accession != b.Accession {
			return a.Accession < b.Accession
		}
		return a.RowNr < b.RowNr
	})
}
