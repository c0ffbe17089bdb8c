// Package config holds the run configuration shared by every command.
// Values come from ~/.pgmatch.yaml via viper, overridden by command flags;
// the loaded struct is passed explicitly into each component, never read
// from global state mid-run.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pgstools/pgmatch/internal/liftover"
	"github.com/pgstools/pgmatch/internal/match"
	"github.com/pgstools/pgmatch/internal/normalize"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

// Config is the full configuration surface of one pgmatch run.
type Config struct {
	// TargetBuild is the genome build of the target dataset.
	TargetBuild string `mapstructure:"target_build"`

	// MinOverlap is the minimum matched fraction per accession.
	MinOverlap float64 `mapstructure:"min_overlap"`

	// DropMissing drops records without a chromosome position during
	// normalization instead of keeping them for logging.
	DropMissing bool `mapstructure:"drop_missing"`

	// KeepAmbiguous accepts matches at strand-ambiguous target sites.
	KeepAmbiguous bool `mapstructure:"keep_ambiguous"`

	// KeepMultiallelic accepts matches on multi-allelic target variants.
	KeepMultiallelic bool `mapstructure:"keep_multiallelic"`

	// IgnoreStrandFlips rejects strand-flipped match candidates.
	IgnoreStrandFlips bool `mapstructure:"ignore_strand_flips"`

	// KeepFirstMatch keeps the first party of a duplicate-match conflict
	// instead of invalidating all of them.
	KeepFirstMatch bool `mapstructure:"keep_first_match"`

	// Liftover enables coordinate conversion to the target build.
	Liftover bool `mapstructure:"liftover"`

	// ChainDir is the directory holding UCSC chain files.
	ChainDir string `mapstructure:"chain_dir"`

	// LiftoverTool is the external liftOver executable; looked up on PATH
	// when not an absolute path.
	LiftoverTool string `mapstructure:"liftover_tool"`

	// MinLiftFraction is the minimum fraction of records that must lift.
	MinLiftFraction float64 `mapstructure:"min_lift_fraction"`

	// Workers is the candidate generation worker count; 0 means NumCPU.
	Workers int `mapstructure:"workers"`

	// OutDir is where result files are written.
	OutDir string `mapstructure:"out_dir"`
}

// SetDefaults registers every key's default on a viper instance so config
// files only need to name what they change.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("target_build", "GRCh38")
	v.SetDefault("min_overlap", match.DefaultMinOverlap)
	v.SetDefault("drop_missing", false)
	v.SetDefault("keep_ambiguous", false)
	v.SetDefault("keep_multiallelic", false)
	v.SetDefault("ignore_strand_flips", false)
	v.SetDefault("keep_first_match", false)
	v.SetDefault("liftover", false)
	v.SetDefault("chain_dir", "")
	v.SetDefault("liftover_tool", liftover.DefaultTool)
	v.SetDefault("min_lift_fraction", normalize.DefaultMinLiftFraction)
	v.SetDefault("workers", 0)
	v.SetDefault("out_dir", ".")
}

// Load unmarshals and validates a Config from a viper instance.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range thresholds and unknown builds.
func (c *Config) Validate() error {
	if c.MinOverlap <= 0 || c.MinOverlap > 1 {
		return fmt.Errorf("min_overlap must be in (0, 1], got %v", c.MinOverlap)
	}
	if c.MinLiftFraction <= 0 || c.MinLiftFraction > 1 {
		return fmt.Errorf("min_lift_fraction must be in (0, 1], got %v", c.MinLiftFraction)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if _, err := c.Build(); err != nil {
		return err
	}
	if c.Liftover && c.ChainDir == "" {
		return fmt.Errorf("liftover requires chain_dir to be set")
	}
	return nil
}

// Build parses the configured target build.
func (c *Config) Build() (scorefile.GenomeBuild, error) {
	b := scorefile.ParseBuild(c.TargetBuild)
	if b == scorefile.BuildUnknown {
		return b, fmt.Errorf("unknown target_build %q (want GRCh37 or GRCh38)", c.TargetBuild)
	}
	return b, nil
}

// ResolverOptions maps config onto the matcher's option struct.
func (c *Config) ResolverOptions() match.ResolverOptions {
	return match.ResolverOptions{
		KeepAmbiguous:     c.KeepAmbiguous,
		KeepMultiallelic:  c.KeepMultiallelic,
		IgnoreStrandFlips: c.IgnoreStrandFlips,
		KeepFirstMatch:    c.KeepFirstMatch,
	}
}
