// Package download fetches scoring files from the PGS Catalog. Score
// metadata comes from the REST API; the files themselves come from the
// catalog FTP mirror over HTTPS, with bounded retry and md5 verification.
package download

import (
	"regexp"

	"github.com/pgstools/pgmatch/internal/pgserr"
)

// AccessionKind classifies a catalog accession.
type AccessionKind int

const (
	// AccessionScore is an individual score, e.g. PGS000001.
	AccessionScore AccessionKind = iota
	// AccessionPublication is a publication, e.g. PGP000001, expanding to
	// every score it reports.
	AccessionPublication
	// AccessionTrait is an ontology trait term, e.g. EFO_0004611,
	// expanding to every score associated with the trait.
	AccessionTrait
)

var (
	scoreRe       = regexp.MustCompile(`^PGS[0-9]{6}$`)
	publicationRe = regexp.MustCompile(`^PGP[0-9]{6}$`)
	traitRe       = regexp.MustCompile(`^(EFO|HP|MONDO|OBA|GO)_[0-9]+$`)
)

// ClassifyAccession validates an accession string and reports its kind.
// Invalid accessions fail before any network traffic happens.
func ClassifyAccession(acc string) (AccessionKind, error) {
	switch {
	case scoreRe.MatchString(acc):
		return AccessionScore, nil
	case publicationRe.MatchString(acc):
		return AccessionPublication, nil
	case traitRe.MatchString(acc):
		return AccessionTrait, nil
	}
	return 0, &pgserr.Error{
		Kind:      pgserr.KindInvalidAccession,
		Accession: acc,
		Msg:       "accession must look like PGS000001, PGP000001, or EFO_0004611",
	}
}
