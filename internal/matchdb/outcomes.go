package matchdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/pgstools/pgmatch/internal/match"
	"github.com/pgstools/pgmatch/internal/scorefile"
	"github.com/pgstools/pgmatch/internal/target"
)

// WriteOutcomes batch-inserts outcomes using the Appender API. The caller
// is responsible for writing each (accession, row_nr) pair at most once.
func (s *Store) WriteOutcomes(outcomes []match.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "match_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, out := range outcomes {
		v := out.Record.Variant

		var matchType, targetID, targetRef, targetAlt, matchedEA string
		var multiallelic, ambiguous bool
		if out.Best != nil {
			matchType = out.Best.Type.String()
			targetID = out.Best.Target.ID
			targetRef = out.Best.Target.Ref
			targetAlt = out.Best.Target.Alt
			matchedEA = out.Best.MatchedEffectAllele
			multiallelic = out.Best.Target.IsMultiallelic
			ambiguous = out.Best.Ambiguous
		}

		if err := appender.AppendRow(
			v.Accession, int64(v.RowNr), v.ChrName, int64(v.ChrPosition),
			v.EffectAllele, v.OtherAllele, v.EffectWeight, v.EffectType.String(),
			v.IsDuplicated,
			out.Status.String(), out.Reason.String(),
			matchType, targetID, targetRef, targetAlt, multiallelic,
			matchedEA, ambiguous,
		); err != nil {
			return fmt.Errorf("append match result: %w", err)
		}
	}

	return appender.Flush()
}

// ReadOutcomes loads every stored outcome, ordered by accession and row
// number. Best candidates are reconstructed from the stored target columns.
func (s *Store) ReadOutcomes() ([]match.Outcome, error) {
	rows, err := s.db.Query(`SELECT
		accession, row_nr, chr_name, chr_position,
		effect_allele, other_allele, effect_weight, effect_type,
		is_duplicated, status, reason,
		match_type, target_id, target_ref, target_alt, is_multiallelic,
		matched_effect_allele, ambiguous
		FROM match_results
		ORDER BY accession, row_nr`)
	if err != nil {
		return nil, fmt.Errorf("query match results: %w", err)
	}
	defer rows.Close()

	return scanOutcomes(rows)
}

// CountByStatus returns the number of stored outcomes per status label.
func (s *Store) CountByStatus() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM match_results GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// Clear removes all stored outcomes.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM match_results")
	return err
}

func scanOutcomes(rows *sql.Rows) ([]match.Outcome, error) {
	var outcomes []match.Outcome
	for rows.Next() {
		var (
			v          scorefile.Variant
			rowNr, pos int64
			effectType string
			status     string
			reason     string
			matchType  string
			tid        string
			tref, talt string
			multi      bool
			matchedEA  string
			ambiguous  bool
		)
		if err := rows.Scan(
			&v.Accession, &rowNr, &v.ChrName, &pos,
			&v.EffectAllele, &v.OtherAllele, &v.EffectWeight, &effectType,
			&v.IsDuplicated, &status, &reason,
			&matchType, &tid, &tref, &talt, &multi,
			&matchedEA, &ambiguous,
		); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		v.RowNr = int(rowNr)
		v.ChrPosition = int(pos)
		if et, ok := scorefile.ParseEffectType(effectType); ok {
			v.EffectType = et
		}

		out := match.Outcome{
			Record: match.RecordCandidates{Variant: &v},
			Status: parseStatus(status),
			Reason: parseReason(reason),
		}
		if out.Status == match.StatusMatched {
			mt, ok := match.ParseMatchType(matchType)
			if !ok {
				return nil, fmt.Errorf("unknown match type %q for %s row %d", matchType, v.Accession, v.RowNr)
			}
			out.Best = &match.Candidate{
				Variant: out.Record.Variant,
				Target: &target.Variant{
					Chrom: v.ChrName, Pos: v.ChrPosition,
					Ref: tref, Alt: talt, ID: tid,
					IsMultiallelic: multi,
				},
				Type:                mt,
				MatchedEffectAllele: matchedEA,
				Ambiguous:           ambiguous,
			}
		}
		outcomes = append(outcomes, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match results: %w", err)
	}
	return outcomes, nil
}

func parseStatus(s string) match.Status {
	switch s {
	case "matched":
		return match.StatusMatched
	case "excluded":
		return match.StatusExcluded
	default:
		return match.StatusUnmatched
	}
}

func parseReason(s string) match.Reason {
	switch s {
	case "no_candidates":
		return match.ReasonNoCandidates
	case "all_excluded":
		return match.ReasonAllExcluded
	case "conflict":
		return match.ReasonConflict
	default:
		return match.ReasonNone
	}
}
