package match

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/pgserr"
)

// DefaultMinOverlap is the default minimum matched fraction per accession.
const DefaultMinOverlap = 0.75

// Summary reports resolution outcomes for one accession.
type Summary struct {
	Accession string  `json:"accession"`
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	Unmatched int     `json:"unmatched"`
	Excluded  int     `json:"excluded"`
	Conflicts int     `json:"conflicts"`
	MatchRate float64 `json:"match_rate"`
	Pass      bool    `json:"pass"`
}

// Summarize aggregates outcomes per accession, sorted by accession.
func Summarize(outcomes []Outcome) []Summary {
	byAcc := make(map[string]*Summary)
	for _, out := range outcomes {
		acc := out.Record.Variant.Accession
		s, ok := byAcc[acc]
		if !ok {
			s = &Summary{Accession: acc}
			byAcc[acc] = s
		}
		s.Total++
		switch out.Status {
		case StatusMatched:
			s.Matched++
		case StatusExcluded:
			s.Excluded++
		default:
			s.Unmatched++
			if out.Reason == ReasonConflict {
				s.Conflicts++
			}
		}
	}

	summaries := make([]Summary, 0, len(byAcc))
	for _, s := range byAcc {
		if s.Total > 0 {
			s.MatchRate = float64(s.Matched) / float64(s.Total)
		}
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Accession < summaries[j].Accession
	})
	return summaries
}

// Validate gates resolution outcomes against the minimum overlap threshold.
//
// Zero candidates across every accession is reported as its own error kind
// before any rate check: total absence usually means bad parameters or
// inputs (wrong genome build, unimputed genomes), not biological
// non-overlap. Candidates that existed but were filtered away (excluded
// sites, invalidated conflicts) are a rate failure, not a zero-match
// condition. When only some accessions fail the threshold, the error
// names exactly those accessions; passing summaries are still returned so
// partial success is never silently discarded.
func Validate(outcomes []Outcome, minOverlap float64, logger *zap.Logger) ([]Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minOverlap == 0 {
		minOverlap = DefaultMinOverlap
	}

	summaries := Summarize(outcomes)
	if len(summaries) == 0 {
		return nil, pgserr.New(pgserr.KindZeroMatches, "no variants to validate")
	}

	anyCandidates := false
	for _, s := range summaries {
		if s.Matched > 0 || s.Excluded > 0 || s.Conflicts > 0 {
			anyCandidates = true
			break
		}
	}
	if !anyCandidates {
		return summaries, pgserr.New(pgserr.KindZeroMatches,
			"no match candidates found for any accession; check genome build and target variant files")
	}

	var failed []string
	for i := range summaries {
		s := &summaries[i]
		s.Pass = s.MatchRate >= minOverlap
		if s.Pass {
			logger.Info("match rate passes threshold",
				zap.String("accession", s.Accession),
				zap.Float64("match_rate", s.MatchRate),
				zap.Float64("min_overlap", minOverlap))
			continue
		}
		logger.Error("match rate below threshold",
			zap.String("accession", s.Accession),
			zap.Float64("match_rate", s.MatchRate),
			zap.Float64("min_overlap", minOverlap))
		failed = append(failed, fmt.Sprintf("%s (%.2f)", s.Accession, s.MatchRate))
	}

	if len(failed) > 0 {
		// report the first failing accession's rate in the structured error
		var rate float64
		for _, s := range summaries {
			if !s.Pass {
				rate = s.MatchRate
				break
			}
		}
		return summaries, &pgserr.Error{
			Kind:      pgserr.KindMatchRateInsufficient,
			Accession: strings.Join(failed, ", "),
			Rate:      rate,
			Threshold: minOverlap,
			Msg:       fmt.Sprintf("%d of %d accessions below minimum overlap %.2f", len(failed), len(summaries), minOverlap),
		}
	}

	return summaries, nil
}
