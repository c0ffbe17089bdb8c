package scorefile

import "strings"

// GenomeBuild identifies the reference coordinate system a scoring file's
// positions are expressed in.
type GenomeBuild int

const (
	BuildUnknown GenomeBuild = iota
	BuildNCBI36
	BuildGRCh37
	BuildGRCh38
)

// ParseBuild converts header strings like "GRCh37" or "hg19" to a GenomeBuild.
// "NR" (not reported) and empty strings map to BuildUnknown.
func ParseBuild(s string) GenomeBuild {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ncbi36", "hg18":
		return BuildNCBI36
	case "grch37", "hg19":
		return BuildGRCh37
	case "grch38", "hg38":
		return BuildGRCh38
	default:
		return BuildUnknown
	}
}

func (b GenomeBuild) String() string {
	switch b {
	case BuildNCBI36:
		return "NCBI36"
	case BuildGRCh37:
		return "GRCh37"
	case BuildGRCh38:
		return "GRCh38"
	default:
		return "NR"
	}
}

// MarshalJSON emits the build name so logs stay human-readable.
func (b GenomeBuild) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

// UCSCName returns the UCSC-style assembly name used in chain file names.
func (b GenomeBuild) UCSCName() string {
	switch b {
	case BuildNCBI36:
		return "hg18"
	case BuildGRCh37:
		return "hg19"
	case BuildGRCh38:
		return "hg38"
	default:
		return ""
	}
}
