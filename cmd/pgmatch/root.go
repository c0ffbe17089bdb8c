package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pgstools/pgmatch/internal/config"
)

// app carries the loaded configuration and logger into every subcommand.
type app struct {
	vp     *viper.Viper
	cfg    *config.Config
	logger *zap.Logger

	cfgFile string
	verbose bool
}

// flagBindings maps config keys to the root persistent flags that override
// them.
var flagBindings = map[string]string{
	"target_build":        "target-build",
	"min_overlap":         "min-overlap",
	"drop_missing":        "drop-missing",
	"keep_ambiguous":      "keep-ambiguous",
	"keep_multiallelic":   "keep-multiallelic",
	"ignore_strand_flips": "ignore-strand-flips",
	"keep_first_match":    "keep-first-match",
	"liftover":            "liftover",
	"chain_dir":           "chain-dir",
	"min_lift_fraction":   "min-lift-fraction",
	"liftover_tool":       "liftover-tool",
	"workers":             "workers",
	"out_dir":             "out-dir",
}

func newRootCmd() *cobra.Command {
	a := &app{vp: viper.New()}

	root := &cobra.Command{
		Use:     "pgmatch",
		Short:   "Prepare, match, and aggregate polygenic score variants",
		Long:    "pgmatch normalizes PGS Catalog scoring files, matches their variants against target genotyping data, and writes plink2-compatible scoring files.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),

		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ~/.pgmatch.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.String("target-build", "GRCh38", "genome build of the target dataset")
	pf.Float64("min-overlap", 0.75, "minimum matched fraction per scoring file")
	pf.Bool("drop-missing", false, "drop records without a chromosome position")
	pf.Bool("keep-ambiguous", false, "accept matches at strand-ambiguous (palindromic) sites")
	pf.Bool("keep-multiallelic", false, "accept matches on multi-allelic target variants")
	pf.Bool("ignore-strand-flips", false, "reject strand-flipped match candidates")
	pf.Bool("keep-first-match", false, "keep the first row of a duplicate-match conflict")
	pf.Bool("liftover", false, "convert positions to the target build")
	pf.String("chain-dir", "", "directory with UCSC chain files")
	pf.Float64("min-lift-fraction", 0.95, "minimum fraction of records that must lift")
	pf.String("liftover-tool", "liftOver", "path to the UCSC liftOver executable")
	pf.Int("workers", 0, "candidate generation workers (0 = all CPUs)")
	pf.String("out-dir", ".", "directory for result files")

	root.AddCommand(newCombineCmd(a))
	root.AddCommand(newMatchCmd(a))
	root.AddCommand(newMergeCmd(a))
	root.AddCommand(newDownloadCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// initialize loads the config file, overlays changed flags, and builds the
// logger. Runs once before any subcommand.
func (a *app) initialize(cmd *cobra.Command) error {
	config.SetDefaults(a.vp)

	if a.cfgFile != "" {
		a.vp.SetConfigFile(a.cfgFile)
		if err := a.vp.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		a.vp.AddConfigPath(home)
		a.vp.SetConfigName(".pgmatch")
		a.vp.SetConfigType("yaml")
		// a missing default config file is fine
		if err := a.vp.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}

	flags := cmd.Root().PersistentFlags()
	for key, flag := range flagBindings {
		if err := a.vp.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(a.vp)
	if err != nil {
		return err
	}
	a.cfg = cfg

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger

	return nil
}
