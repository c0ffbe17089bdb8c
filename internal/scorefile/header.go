package scorefile

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pgstools/pgmatch/internal/pgserr"
)

// Header holds the metadata block at the top of a PGS Catalog scoring file.
// Header lines look like "#pgs_id=PGS000001".
type Header struct {
	PgsID          string      `json:"pgs_id"`
	PgpID          string      `json:"pgp_id"`
	PgsName        string      `json:"pgs_name"`
	GenomeBuild    GenomeBuild `json:"genome_build"`
	VariantsNumber int         `json:"variants_number"`
	TraitReported  string      `json:"trait_reported"`
	TraitEFO       string      `json:"trait_efo"`
	TraitMapped    string      `json:"trait_mapped"`
	WeightType     string      `json:"weight_type"`
	Citation       string      `json:"citation"`
	HmPOSBuild     GenomeBuild `json:"HmPOS_build"`
	HmPOSDate      string      `json:"HmPOS_date"`
	FormatVersion  string      `json:"format_version"`
	License        string      `json:"license"`
}

// Harmonised reports whether the file carries catalog-harmonized positions.
func (h *Header) Harmonised() bool {
	return h.HmPOSBuild != BuildUnknown
}

// EffectiveBuild returns the build positions are actually expressed in:
// the harmonized build when present, else the author-submitted build.
func (h *Header) EffectiveBuild() GenomeBuild {
	if h.HmPOSBuild != BuildUnknown {
		return h.HmPOSBuild
	}
	return h.GenomeBuild
}

// Accession returns the identifier used to group variants from this file.
func (h *Header) Accession() string {
	if h.PgsID != "" {
		if h.Harmonised() {
			return h.PgsID + "_hmPOS_" + h.HmPOSBuild.String()
		}
		return h.PgsID
	}
	return h.PgsName
}

// parseHeader consumes leading #key=value lines from r, stopping before the
// column header line. A scoring file must name itself and its genome build.
func parseHeader(r *bufio.Reader) (*Header, int, error) {
	h := &Header{}
	lines := 0

	for {
		peek, err := r.Peek(1)
		if err != nil {
			return nil, lines, pgserr.Wrap(pgserr.KindScoreFormatInvalid, err, "empty scoring file")
		}
		if peek[0] != '#' {
			break
		}

		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return nil, lines, pgserr.Wrap(pgserr.KindScoreFormatInvalid, err, "reading header")
		}
		lines++

		line = strings.TrimRight(strings.TrimPrefix(line, "#"), "\r\n")
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue // comment line without key=value, e.g. section banners
		}

		switch key {
		case "pgs_id":
			h.PgsID = value
		case "pgp_id":
			h.PgpID = value
		case "pgs_name":
			h.PgsName = value
		case "genome_build":
			h.GenomeBuild = ParseBuild(value)
		case "variants_number":
			h.VariantsNumber, _ = strconv.Atoi(value)
		case "trait_reported":
			h.TraitReported = value
		case "trait_efo":
			h.TraitEFO = value
		case "trait_mapped":
			h.TraitMapped = value
		case "weight_type":
			h.WeightType = value
		case "citation":
			h.Citation = value
		case "HmPOS_build":
			h.HmPOSBuild = ParseBuild(value)
		case "HmPOS_date":
			h.HmPOSDate = value
		case "format_version":
			h.FormatVersion = value
		case "license":
			h.License = value
		}
	}

	if h.PgsID == "" && h.PgsName == "" {
		return nil, lines, pgserr.New(pgserr.KindScoreFormatInvalid, "header is missing pgs_id and pgs_name")
	}

	return h, lines, nil
}
