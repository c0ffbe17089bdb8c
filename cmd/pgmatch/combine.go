package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/liftover"
	"github.com/pgstools/pgmatch/internal/normalize"
	"github.com/pgstools/pgmatch/internal/output"
	"github.com/pgstools/pgmatch/internal/pgserr"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

func newCombineCmd(a *app) *cobra.Command {
	var outFile, logFile string

	cmd := &cobra.Command{
		Use:   "combine <scoring-file>...",
		Short: "Normalize scoring files into one melted variant table",
		Long: `Parse, validate, and normalize one or more PGS Catalog scoring files
against the target genome build, writing a single gzip tab-delimited table
of canonical variant records plus a JSON log of header metadata and QC
counts per file.`,
		Example: `  pgmatch combine PGS000001_hmPOS_GRCh38.txt.gz
  pgmatch combine --target-build GRCh37 PGS*.txt.gz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCombine(args, outFile, logFile)
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "combined.txt.gz", "melted table file name (inside out-dir)")
	cmd.Flags().StringVar(&logFile, "log", "combined_log.json", "JSON score log file name (inside out-dir)")

	return cmd
}

func (a *app) runCombine(paths []string, outFile, logFile string) error {
	build, err := a.cfg.Build()
	if err != nil {
		return err
	}

	files, err := scorefile.NewScoringFiles(build, paths...)
	if err != nil {
		return err
	}

	mw, err := output.CreateMelted(filepath.Join(a.cfg.OutDir, outFile))
	if err != nil {
		return err
	}

	var logs []output.FileLog
	for _, f := range files.Files() {
		accession := f.Header.Accession()

		lifter, err := a.lifterFor(f, build)
		if err != nil {
			mw.Discard()
			return err
		}

		r, err := f.Open()
		if err != nil {
			mw.Discard()
			return err
		}

		pipe := normalize.New(r, normalize.Options{
			DropMissing:     a.cfg.DropMissing,
			Liftover:        a.cfg.Liftover,
			Lifter:          lifter,
			CurrentBuild:    f.Header.EffectiveBuild(),
			TargetBuild:     build,
			MinLiftFraction: a.cfg.MinLiftFraction,
			Harmonised:      f.Header.Harmonised(),
			Accession:       accession,
		})
		pipe.SetLogger(a.logger)

		for {
			v, err := pipe.Next()
			if err != nil {
				r.Close()
				mw.Discard()
				return err
			}
			if v == nil {
				break
			}
			if err := mw.Write(v); err != nil {
				r.Close()
				mw.Discard()
				return err
			}
		}
		r.Close()

		stats := pipe.Stats()
		logs = append(logs, output.FileLog{Accession: accession, Header: f.Header, QC: stats})
		a.logger.Info("normalized scoring file",
			zap.String("accession", accession),
			zap.Int("total", stats.Total),
			zap.Int("emitted", stats.Emitted),
			zap.Int("dropped", stats.Dropped))
	}

	if err := mw.Close(); err != nil {
		return err
	}
	if err := output.WriteScoreLogFile(filepath.Join(a.cfg.OutDir, logFile), logs); err != nil {
		return err
	}

	a.logger.Info("combine finished",
		zap.Int("files", files.Len()),
		zap.Int("variants", mw.Rows()),
		zap.String("out", filepath.Join(a.cfg.OutDir, outFile)))
	return nil
}

// lifterFor decides how a build difference between one scoring file and
// the target is handled. Coordinate conversion itself is an external
// capability: when liftover is enabled, the file's positions are collected
// in a prescan pass and converted in one run of the external liftOver
// tool; without liftover, a non-harmonized file on the wrong build is an
// error rather than a silent pass-through.
func (a *app) lifterFor(f *scorefile.ScoringFile, target scorefile.GenomeBuild) (liftover.Lifter, error) {
	h := f.Header
	if h.Harmonised() || h.EffectiveBuild() == target {
		return nil, nil
	}
	if h.EffectiveBuild() == scorefile.BuildUnknown {
		return nil, &pgserr.Error{
			Kind:      pgserr.KindBuildMismatch,
			Accession: h.Accession(),
			Msg:       "scoring file does not declare a genome build",
		}
	}

	if !a.cfg.Liftover {
		return nil, &pgserr.Error{
			Kind:      pgserr.KindBuildMismatch,
			Accession: h.Accession(),
			Msg: fmt.Sprintf("scoring file build %s does not match target build %s; enable liftover or use the catalog-harmonized file: pgmatch download --build %s %s",
				h.EffectiveBuild(), target, target, h.PgsID),
		}
	}

	chain, err := liftover.ChainPath(a.cfg.ChainDir, h.EffectiveBuild(), target)
	if err != nil {
		return nil, err
	}

	positions, err := scanPositions(f)
	if err != nil {
		return nil, err
	}

	a.logger.Info("lifting scoring file positions",
		zap.String("accession", h.Accession()),
		zap.Int("positions", len(positions)),
		zap.String("chain", chain))
	return liftover.NewTool(a.cfg.LiftoverTool, chain).LiftBatch(positions)
}

// scanPositions reads a scoring file once to collect the coordinates the
// liftover batch needs. The normalize pipeline re-reads the file from the
// start afterwards.
func scanPositions(f *scorefile.ScoringFile) ([]liftover.Position, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	seen := make(map[liftover.Position]bool)
	var positions []liftover.Position
	for {
		v, err := r.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return positions, nil
		}
		if !v.HasPosition() {
			continue
		}
		p := liftover.Position{Chrom: v.ChrName, Pos: v.ChrPosition}
		if !seen[p] {
			seen[p] = true
			positions = append(positions, p)
		}
	}
}
