package scorefile

import (
	"sort"

	"github.com/pgstools/pgmatch/internal/pgserr"
)

// ScoringFile pairs a scoring file path with its parsed header. Rows are
// read lazily via Open, so a ScoringFile is cheap to hold in collections.
type ScoringFile struct {
	Path   string
	Header *Header
}

// NewScoringFile reads just the header of the file at path.
func NewScoringFile(path string) (*ScoringFile, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return &ScoringFile{Path: path, Header: r.Header()}, nil
}

// Open returns a fresh row reader. The lazy pipeline is restartable only by
// re-invoking from the source, so each pass opens its own reader.
func (s *ScoringFile) Open() (*Reader, error) {
	return NewReader(s.Path)
}

// ScoringFiles is an owned sequence of scoring files that share a target
// genome build. It replaces ad-hoc slicing with explicit merge semantics.
type ScoringFiles struct {
	TargetBuild GenomeBuild
	files       []*ScoringFile
}

// NewScoringFiles collects the given paths, sorted by accession for
// reproducible processing order. Later copies of an already-collected
// accession are dropped: downstream results are keyed by (accession, row)
// and a repeated input would collide with itself.
func NewScoringFiles(targetBuild GenomeBuild, paths ...string) (*ScoringFiles, error) {
	sf := &ScoringFiles{TargetBuild: targetBuild}
	for _, p := range paths {
		f, err := NewScoringFile(p)
		if err != nil {
			return nil, err
		}
		sf.files = append(sf.files, f)
	}
	sf.files = dedupeByAccession(sf.files)
	sort.Slice(sf.files, func(i, j int) bool {
		return sf.files[i].Header.Accession() < sf.files[j].Header.Accession()
	})
	return sf, nil
}

// dedupeByAccession keeps the first collected file per accession.
func dedupeByAccession(files []*ScoringFile) []*ScoringFile {
	seen := make(map[string]bool, len(files))
	kept := files[:0]
	for _, f := range files {
		acc := f.Header.Accession()
		if seen[acc] {
			continue
		}
		seen[acc] = true
		kept = append(kept, f)
	}
	return kept
}

// Files returns the collected scoring files in accession order.
func (s *ScoringFiles) Files() []*ScoringFile {
	return s.files
}

// Len returns the number of collected scoring files.
func (s *ScoringFiles) Len() int {
	return len(s.files)
}

// Merge combines two collections. Collections prepared for different target
// builds must never be merged: the result would silently mix coordinate
// systems.
func (s *ScoringFiles) Merge(other *ScoringFiles) (*ScoringFiles, error) {
	if s.TargetBuild != other.TargetBuild {
		return nil, pgserr.New(pgserr.KindBuildMismatch,
			"cannot merge scoring files for %s with %s", s.TargetBuild, other.TargetBuild)
	}
	merged := &ScoringFiles{TargetBuild: s.TargetBuild}
	merged.files = append(merged.files, s.files...)
	merged.files = append(merged.files, other.files...)
	merged.files = dedupeByAccession(merged.files)
	sort.Slice(merged.files, func(i, j int) bool {
		return merged.files[i].Header.Accession() < merged.files[j].Header.Accession()
	})
	return merged, nil
}
