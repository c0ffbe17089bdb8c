package output

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pgstools/pgmatch/internal/scorefile"
)

// MeltedReader streams variants back out of a melted table written by
// MeltedWriter. It satisfies the variant source contract used by the
// matcher: Next returns nil, nil at end of stream.
type MeltedReader struct {
	f       *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	cols    map[string]int
	line    int
}

// OpenMelted opens a melted table for reading.
func OpenMelted(path string) (*MeltedReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open melted table: %w", err)
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read melted table %s: %w", path, err)
	}

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		gz.Close()
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read melted header: %w", err)
		}
		return nil, fmt.Errorf("melted table %s is empty", path)
	}

	cols := make(map[string]int)
	for i, name := range strings.Split(scanner.Text(), "\t") {
		cols[name] = i
	}
	for _, want := range meltedColumns {
		if _, ok := cols[want]; !ok {
			gz.Close()
			f.Close()
			return nil, fmt.Errorf("melted table %s missing column %s", path, want)
		}
	}

	return &MeltedReader{f: f, gz: gz, scanner: scanner, cols: cols, line: 1}, nil
}

// Next returns the next variant, or nil, nil at end of stream.
func (mr *MeltedReader) Next() (*scorefile.Variant, error) {
	if !mr.scanner.Scan() {
		if err := mr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read melted table: %w", err)
		}
		return nil, nil
	}
	mr.line++

	fields := strings.Split(mr.scanner.Text(), "\t")
	if len(fields) != len(meltedColumns) {
		return nil, fmt.Errorf("melted table line %d: expected %d fields, got %d",
			mr.line, len(meltedColumns), len(fields))
	}

	get := func(name string) string { return fields[mr.cols[name]] }

	v := &scorefile.Variant{
		ChrName:      get("chr_name"),
		EffectAllele: get("effect_allele"),
		OtherAllele:  get("other_allele"),
		EffectWeight: get("effect_weight"),
		Accession:    get("accession"),
	}

	if s := get("chr_position"); s != "" {
		pos, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("melted table line %d: bad position %q", mr.line, s)
		}
		v.ChrPosition = pos
	}

	rowNr, err := strconv.Atoi(get("row_nr"))
	if err != nil {
		return nil, fmt.Errorf("melted table line %d: bad row_nr %q", mr.line, get("row_nr"))
	}
	v.RowNr = rowNr

	et, ok := scorefile.ParseEffectType(get("effect_type"))
	if !ok {
		return nil, fmt.Errorf("melted table line %d: bad effect_type %q", mr.line, get("effect_type"))
	}
	v.EffectType = et

	dup, err := strconv.ParseBool(get("is_duplicated"))
	if err != nil {
		return nil, fmt.Errorf("melted table line %d: bad is_duplicated %q", mr.line, get("is_duplicated"))
	}
	v.IsDuplicated = dup

	return v, nil
}

// Close releases the underlying file.
func (mr *MeltedReader) Close() error {
	mr.gz.Close()
	return mr.f.Close()
}
