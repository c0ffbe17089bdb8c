package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/aggregate"
	"github.com/pgstools/pgmatch/internal/match"
	"github.com/pgstools/pgmatch/internal/matchdb"
)

func newMergeCmd(a *app) *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "merge <matches.duckdb>...",
		Short: "Merge per-shard match databases into one result",
		Long: `Combine the match databases written by per-chromosome (or per-batch)
pgmatch match runs into one logical result, re-running duplicate-match
conflict detection across shard boundaries, then write final scoring files
and the merged match summary.`,
		Example: `  pgmatch merge cohort_chr*_matches.duckdb --dataset cohort`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMerge(args, dataset)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "merged", "output name prefix")

	return cmd
}

func (a *app) runMerge(dbPaths []string, dataset string) error {
	shards := make([][]match.Outcome, 0, len(dbPaths))
	for _, path := range dbPaths {
		if err := requireFile(path); err != nil {
			return err
		}

		store, err := matchdb.Open(path)
		if err != nil {
			return err
		}
		outcomes, err := store.ReadOutcomes()
		store.Close()
		if err != nil {
			return err
		}

		a.logger.Info("loaded shard outcomes",
			zap.String("db", path),
			zap.Int("outcomes", len(outcomes)))
		shards = append(shards, outcomes)
	}

	result, validateErr := aggregate.Merge(shards, aggregate.Options{
		KeepFirstMatch: a.cfg.KeepFirstMatch,
		MinOverlap:     a.cfg.MinOverlap,
	}, a.logger)
	if result == nil {
		return validateErr
	}

	if err := writeMatchResults(a, dataset, result.Outcomes, result.Summaries); err != nil {
		return err
	}

	a.logger.Info("merge finished",
		zap.String("dataset", dataset),
		zap.Int("shards", len(shards)),
		zap.Int("variants", len(result.Outcomes)))
	return validateErr
}
