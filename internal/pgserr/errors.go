// Package pgserr defines the error taxonomy shared by every pgmatch
// component. Each failure kind maps to a stable process exit code so that
// automated pipelines can distinguish bad input data from environment or
// configuration problems without parsing messages.
package pgserr

import (
	"errors"
	"fmt"
)

// Kind identifies a category of failure.
type Kind int

const (
	// KindUnknown is the zero value for errors outside the taxonomy.
	KindUnknown Kind = iota

	// KindDownloadFailed is raised when a scoring file can't be downloaded.
	KindDownloadFailed

	// KindScoreFormatInvalid is raised for malformed scoring file headers,
	// columns, or effect weights. Fatal per file.
	KindScoreFormatInvalid

	// KindChecksumMismatch is raised when a downloaded scoring file fails
	// checksum validation.
	KindChecksumMismatch

	// KindQueryInvalid is raised when the Catalog API doesn't return a valid
	// response.
	KindQueryInvalid

	// KindInvalidAccession is raised when an invalid term is used to query
	// the Catalog.
	KindInvalidAccession

	// KindDuplicateMatch is raised when two scoring file rows resolve to the
	// same target variant, which would split or double-count weight in an
	// output scoring file.
	KindDuplicateMatch

	// KindMatchRateInsufficient is raised when the match rate is below the
	// minimum overlap threshold for one or more scoring files.
	KindMatchRateInsufficient

	// KindZeroMatches is raised when no candidates are found at all.
	// Distinct from KindMatchRateInsufficient because a total absence
	// usually indicates bad input data or parameters, not biological
	// non-overlap.
	KindZeroMatches

	// KindMatchValueInvalid is raised when a match function receives
	// inappropriate values, e.g. multiple chromosomes in a per-chromosome
	// shard.
	KindMatchValueInvalid

	// KindBuildMismatch is raised when there's a problem with a scoring file
	// genome build.
	KindBuildMismatch

	// KindLiftoverInsufficient is raised when liftover converted too few
	// coordinates, which suggests a mismatched or corrupt chain mapping.
	KindLiftoverInsufficient
)

// String returns the kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindDownloadFailed:
		return "DownloadFailed"
	case KindScoreFormatInvalid:
		return "ScoreFormatInvalid"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindQueryInvalid:
		return "QueryInvalid"
	case KindInvalidAccession:
		return "InvalidAccession"
	case KindDuplicateMatch:
		return "DuplicateMatchConflict"
	case KindMatchRateInsufficient:
		return "MatchRateInsufficient"
	case KindZeroMatches:
		return "ZeroMatches"
	case KindMatchValueInvalid:
		return "MatchValueInvalid"
	case KindBuildMismatch:
		return "BuildMismatch"
	case KindLiftoverInsufficient:
		return "LiftoverInsufficient"
	default:
		return "Unknown"
	}
}

// Error is a structured error carrying the failure kind and, where relevant,
// the accession and observed/threshold rates that triggered it.
type Error struct {
	Kind      Kind
	Accession string  // scoring file accession, if the error is per-file
	Rate      float64 // observed rate (match rate or lift fraction)
	Threshold float64 // configured minimum that was violated
	Msg       string
	Err       error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Accession != "" {
		s += " (" + e.Accession + ")"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same kind, so that
// errors.Is(err, &Error{Kind: KindZeroMatches}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindUnknown if err is not part of the
// taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Exit codes reserved for each failure kind. 0-2 are left to the usual
// success/generic/usage conventions.
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

var exitCodes = map[Kind]int{
	KindDownloadFailed:        8,
	KindScoreFormatInvalid:    9,
	KindChecksumMismatch:      10,
	KindQueryInvalid:          11,
	KindInvalidAccession:      12,
	KindDuplicateMatch:        13,
	KindMatchRateInsufficient: 14,
	KindZeroMatches:           15,
	KindMatchValueInvalid:     16,
	KindBuildMismatch:         17,
	KindLiftoverInsufficient:  18,
}

// ExitCode maps an error to its process exit code. Errors outside the
// taxonomy map to ExitError; nil maps to ExitSuccess.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if code, ok := exitCodes[KindOf(err)]; ok {
		return code
	}
	return ExitError
}
