package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgstools/pgmatch/internal/scorefile"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "pgmatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "GRCh38", cfg.TargetBuild)
	assert.InDelta(t, 0.75, cfg.MinOverlap, 1e-9)
	assert.InDelta(t, 0.95, cfg.MinLiftFraction, 1e-9)
	assert.False(t, cfg.DropMissing)
	assert.False(t, cfg.KeepAmbiguous)
	assert.False(t, cfg.Liftover)
	assert.Equal(t, "liftOver", cfg.LiftoverTool)
	assert.Equal(t, ".", cfg.OutDir)

	b, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, scorefile.BuildGRCh38, b)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(newViper(t, `
target_build: GRCh37
min_overlap: 0.9
keep_ambiguous: true
liftover: true
chain_dir: /data/chains
`))
	require.NoError(t, err)

	assert.Equal(t, "GRCh37", cfg.TargetBuild)
	assert.InDelta(t, 0.9, cfg.MinOverlap, 1e-9)
	assert.True(t, cfg.KeepAmbiguous)
	assert.True(t, cfg.Liftover)
	assert.Equal(t, "/data/chains", cfg.ChainDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"overlap zero", "min_overlap: 0"},
		{"overlap above one", "min_overlap: 1.5"},
		{"lift fraction zero", "min_lift_fraction: 0"},
		{"negative workers", "workers: -1"},
		{"unknown build", "target_build: GRCh99"},
		{"liftover without chains", "liftover: true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestResolverOptions(t *testing.T) {
	cfg, err := Load(newViper(t, "keep_ambiguous: true\nignore_strand_flips: true\n"))
	require.NoError(t, err)

	opts := cfg.ResolverOptions()
	assert.True(t, opts.KeepAmbiguous)
	assert.True(t, opts.IgnoreStrandFlips)
	assert.False(t, opts.KeepMultiallelic)
	assert.False(t, opts.KeepFirstMatch)
}

func TestBuildAliases(t *testing.T) {
	cfg, err := Load(newViper(t, "target_build: hg19\n"))
	require.NoError(t, err)

	b, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, scorefile.BuildGRCh37, b)
}
