package output

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pgstools/pgmatch/internal/match"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

// plinkRow is one scored target variant: the target's ID, the effect
// allele as it appears in the target, and one weight per accession.
type plinkRow struct {
	id      string
	allele  string
	weights map[string]string // accession -> formatted weight
}

// PlinkWriter writes plink2 --score compatible scoring files from resolved
// match outcomes. Outcomes are split three ways to satisfy plink2's input
// constraints:
//
//   - one file per effect type, since --score applies one dominance model
//     per invocation;
//   - within an effect type, rows whose target variant ID already appears
//     with a different effect allele spill into numbered sibling files,
//     since IDs must be unique within one scoring file.
//
// Weights for reference-aligned matches are negated so the reported effect
// direction is preserved when plink2 counts ALT dosages.
type PlinkWriter struct {
	dir    string
	prefix string
}

// NewPlinkWriter creates a writer producing files under dir named
// prefix_<effect type>_<n>.scorefile.gz.
func NewPlinkWriter(dir, prefix string) *PlinkWriter {
	return &PlinkWriter{dir: dir, prefix: prefix}
}

// Write renders scoring files from matched outcomes and returns the paths
// written. Unmatched and excluded outcomes are skipped.
func (pw *PlinkWriter) Write(outcomes []match.Outcome) ([]string, error) {
	byType := make(map[scorefile.EffectType][]match.Outcome)
	for _, out := range outcomes {
		if out.Status != match.StatusMatched {
			continue
		}
		et := out.Record.Variant.EffectType
		byType[et] = append(byType[et], out)
	}

	effectTypes := make([]scorefile.EffectType, 0, len(byType))
	for et := range byType {
		effectTypes = append(effectTypes, et)
	}
	sort.Slice(effectTypes, func(i, j int) bool { return effectTypes[i] < effectTypes[j] })

	var paths []string
	for _, et := range effectTypes {
		p, err := pw.writeEffectType(et, byType[et])
		if err != nil {
			return nil, err
		}
		paths = append(paths, p...)
	}
	return paths, nil
}

func (pw *PlinkWriter) writeEffectType(et scorefile.EffectType, outcomes []match.Outcome) ([]string, error) {
	accessions := make(map[string]bool)
	var splits [][]*plinkRow
	rowAt := make(map[string]*plinkRow) // split|id -> row

	for _, out := range outcomes {
		v := out.Record.Variant
		accessions[v.Accession] = true

		weight, err := matchedWeight(out.Best)
		if err != nil {
			return nil, err
		}

		// find the first split where this target ID is free or already
		// bound to the same effect allele
		split := -1
		for i := range splits {
			row, ok := rowAt[splitKey(i, out.Best.Target.ID)]
			if !ok || row.allele == out.Best.MatchedEffectAllele {
				split = i
				break
			}
		}
		if split == -1 {
			splits = append(splits, nil)
			split = len(splits) - 1
		}

		key := splitKey(split, out.Best.Target.ID)
		row, ok := rowAt[key]
		if !ok {
			row = &plinkRow{
				id:      out.Best.Target.ID,
				allele:  out.Best.MatchedEffectAllele,
				weights: make(map[string]string),
			}
			rowAt[key] = row
			splits[split] = append(splits[split], row)
		}
		if _, dup := row.weights[v.Accession]; dup {
			// same accession scored this (ID, allele) twice; conflicts were
			// already invalidated upstream, keep the first weight
			continue
		}
		row.weights[v.Accession] = weight
	}

	cols := make([]string, 0, len(accessions))
	for acc := range accessions {
		cols = append(cols, acc)
	}
	sort.Strings(cols)

	var paths []string
	for i, rows := range splits {
		name := fmt.Sprintf("%s_%s_%d.scorefile.gz", pw.prefix, et, i)
		path := filepath.Join(pw.dir, name)
		if err := writeScoreFile(path, cols, rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func splitKey(split int, id string) string {
	return strconv.Itoa(split) + "|" + id
}

// matchedWeight formats the effect weight for scoring, negating it when
// the effect allele aligned to the target reference allele.
func matchedWeight(c *match.Candidate) (string, error) {
	w, err := strconv.ParseFloat(c.Variant.EffectWeight, 64)
	if err != nil {
		return "", fmt.Errorf("parse effect weight for %s: %w", c.Variant, err)
	}
	if c.Type.RequiresSignFlip() {
		w = -w
	}
	return strconv.FormatFloat(w, 'g', -1, 64), nil
}

func writeScoreFile(path string, accessions []string, rows []*plinkRow) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create scoring file: %w", err)
	}
	gz := gzip.NewWriter(f)
	w := bufio.NewWriter(gz)

	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return err
	}

	header := append([]string{"ID", "effect_allele"}, accessions...)
	if _, err := w.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return fail(fmt.Errorf("write scoring file header: %w", err))
	}

	for _, row := range rows {
		fields := make([]string, 0, len(header))
		fields = append(fields, row.id, row.allele)
		for _, acc := range accessions {
			weight, ok := row.weights[acc]
			if !ok {
				// accession has no weight for this variant; plink2 treats
				// 0 as no contribution
				weight = "0"
			}
			fields = append(fields, weight)
		}
		if _, err := w.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return fail(fmt.Errorf("write scoring file row: %w", err))
		}
	}

	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flush scoring file: %w", err))
	}
	if err := gz.Close(); err != nil {
		return fail(fmt.Errorf("close gzip stream: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close scoring file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit scoring file: %w", err)
	}
	return nil
}
