package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/match"
	"github.com/pgstools/pgmatch/internal/matchdb"
	"github.com/pgstools/pgmatch/internal/output"
	"github.com/pgstools/pgmatch/internal/target"
)

func newMatchCmd(a *app) *cobra.Command {
	var scorePath, targetPath, dbPath, dataset string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match combined variants against a target variant file",
		Long: `Match the variants of a combined (normalized) scoring table against a
target variant information file (plink2 pvar or plink1 bim), resolve each
variant to at most one best match, and write plink2 --score compatible
scoring files plus a match database for later merging.`,
		Example: `  pgmatch match --scorefile combined.txt.gz --target cohort_chr1.pvar
  pgmatch match --scorefile combined.txt.gz --target cohort.bim --keep-ambiguous`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMatch(scorePath, targetPath, dbPath, dataset)
		},
	}

	cmd.Flags().StringVarP(&scorePath, "scorefile", "s", "", "combined variant table from pgmatch combine")
	cmd.Flags().StringVarP(&targetPath, "target", "t", "", "target variant information file (pvar/bim, optionally gz/zst)")
	cmd.Flags().StringVar(&dbPath, "db", "", "match database path (default <dataset>_matches.duckdb in out-dir)")
	cmd.Flags().StringVar(&dataset, "dataset", "", "output name prefix (default target file name)")
	cmd.MarkFlagRequired("scorefile")
	cmd.MarkFlagRequired("target")

	return cmd
}

func (a *app) runMatch(scorePath, targetPath, dbPath, dataset string) error {
	if err := requireFile(scorePath); err != nil {
		return err
	}
	if err := requireFile(targetPath); err != nil {
		return err
	}

	if dataset == "" {
		dataset = datasetName(targetPath)
	}
	if dbPath == "" {
		dbPath = filepath.Join(a.cfg.OutDir, dataset+"_matches.duckdb")
	}

	tr, err := target.NewReader(targetPath)
	if err != nil {
		return err
	}
	idx, err := target.NewIndex(tr)
	tr.Close()
	if err != nil {
		return err
	}
	a.logger.Info("indexed target variants",
		zap.String("target", targetPath),
		zap.Int("variants", idx.Len()))

	mr, err := output.OpenMelted(scorePath)
	if err != nil {
		return err
	}
	defer mr.Close()

	gen := match.NewGenerator(idx)
	gen.SetLogger(a.logger)

	items := make(chan match.WorkItem)
	readErr := make(chan error, 1)
	go func() {
		defer close(items)
		seq := 0
		for {
			v, err := mr.Next()
			if err != nil {
				readErr <- err
				return
			}
			if v == nil {
				readErr <- nil
				return
			}
			items <- match.WorkItem{Seq: seq, Variant: v}
			seq++
		}
	}()

	var records []match.RecordCandidates
	collectErr := match.OrderedCollect(gen.ParallelGenerate(items, a.cfg.Workers), func(r match.WorkResult) error {
		records = append(records, r.Record)
		return nil
	})
	if err := <-readErr; err != nil {
		return err
	}
	if collectErr != nil {
		return collectErr
	}

	resolver := match.NewResolver(a.cfg.ResolverOptions())
	resolver.SetLogger(a.logger)
	outcomes := resolver.Resolve(records)

	summaries, validateErr := match.Validate(outcomes, a.cfg.MinOverlap, a.logger)

	// results are written even when validation failed so partial success
	// and the failing accessions are both visible
	store, err := matchdb.Open(dbPath)
	if err != nil {
		return err
	}
	if err := store.WriteOutcomes(outcomes); err != nil {
		store.Close()
		return err
	}
	if err := store.Close(); err != nil {
		return err
	}

	if err := writeMatchResults(a, dataset, outcomes, summaries); err != nil {
		return err
	}

	a.logger.Info("match finished",
		zap.String("dataset", dataset),
		zap.String("db", dbPath),
		zap.Int("variants", len(outcomes)))
	return validateErr
}

// writeMatchResults writes the plink scoring files and the JSON summary.
func writeMatchResults(a *app, dataset string, outcomes []match.Outcome, summaries []match.Summary) error {
	paths, err := output.NewPlinkWriter(a.cfg.OutDir, dataset).Write(outcomes)
	if err != nil {
		return err
	}
	for _, p := range paths {
		a.logger.Info("wrote scoring file", zap.String("path", p))
	}

	summaryPath := filepath.Join(a.cfg.OutDir, dataset+"_summary.json")
	if err := output.WriteSummaryFile(summaryPath, summaries); err != nil {
		return err
	}
	a.logger.Info("wrote match summary", zap.String("path", summaryPath))
	return nil
}

// datasetName derives an output prefix from the target file name, e.g.
// cohort_chr1.pvar.zst -> cohort_chr1.
func datasetName(targetPath string) string {
	name := filepath.Base(targetPath)
	for {
		ext := filepath.Ext(name)
		switch strings.ToLower(ext) {
		case ".gz", ".zst", ".pvar", ".bim":
			name = strings.TrimSuffix(name, ext)
			continue
		}
		if name == "" {
			return "pgmatch"
		}
		return name
	}
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input file %s is a directory", path)
	}
	return nil
}
