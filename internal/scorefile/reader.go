package scorefile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pgstools/pgmatch/internal/pgserr"
)

// Reader lazily reads scoring file rows as Variants. Rows are produced in
// file order with stable row numbers so output can be correlated with the
// source file.
type Reader struct {
	src        *decompressed
	header     *Header
	lineNumber int
	rowNr      int

	columns    map[string]int
	weightCols []string // wide format: effect_weight_<name> columns
	pending    []*Variant
}

// NewReader opens a scoring file, parses its metadata header and column
// header, and prepares for lazy row iteration. gzip and zstandard compression
// are handled transparently.
func NewReader(path string) (*Reader, error) {
	src, err := openDecompressed(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{src: src, columns: make(map[string]int)}

	r.header, r.lineNumber, err = parseHeader(src.Reader)
	if err != nil {
		src.Close()
		return nil, err
	}

	if err := r.parseColumns(); err != nil {
		src.Close()
		return nil, err
	}

	return r, nil
}

// Header returns the parsed metadata header.
func (r *Reader) Header() *Header {
	return r.header
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.src.Close()
}

// parseColumns reads the column header line and records column positions.
// Duplicate column names and missing mandatory columns are format errors.
func (r *Reader) parseColumns() error {
	line, err := r.src.Reader.ReadString('\n')
	if err != nil && line == "" {
		return pgserr.Wrap(pgserr.KindScoreFormatInvalid, err, "no column header line")
	}
	r.lineNumber++

	cols := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	for i, col := range cols {
		if _, seen := r.columns[col]; seen {
			return pgserr.New(pgserr.KindScoreFormatInvalid, "duplicated column name %q", col)
		}
		r.columns[col] = i
		if strings.HasPrefix(col, "effect_weight_") {
			r.weightCols = append(r.weightCols, col)
		}
	}

	if _, ok := r.columns["effect_allele"]; !ok {
		return pgserr.New(pgserr.KindScoreFormatInvalid, "mandatory column effect_allele is missing")
	}
	if _, ok := r.columns["effect_weight"]; !ok && len(r.weightCols) == 0 {
		return pgserr.New(pgserr.KindScoreFormatInvalid, "mandatory column effect_weight is missing")
	}

	return nil
}

// IsWide reports whether the file carries multiple effect weight columns.
// Wide rows yield one Variant per weight column, each with the column name
// as its accession.
func (r *Reader) IsWide() bool {
	return len(r.weightCols) > 0
}

// Next returns the next Variant, or nil, nil at end of file.
func (r *Reader) Next() (*Variant, error) {
	if len(r.pending) > 0 {
		v := r.pending[0]
		r.pending = r.pending[1:]
		return v, nil
	}

	line, err := r.src.Reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line == "" {
			return nil, nil
		}
		if err != io.EOF {
			return nil, fmt.Errorf("read row: %w", err)
		}
	}
	r.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return r.Next()
	}

	fields := strings.Split(line, "\t")
	if len(fields) != len(r.columns) {
		return nil, pgserr.New(pgserr.KindScoreFormatInvalid,
			"line %d: expected %d columns, found %d", r.lineNumber, len(r.columns), len(fields))
	}

	if r.IsWide() {
		for _, wc := range r.weightCols {
			v := r.parseRow(fields)
			v.Accession = strings.TrimPrefix(wc, "effect_weight_")
			v.EffectWeight = fields[r.columns[wc]]
			r.pending = append(r.pending, v)
		}
		r.rowNr++
		return r.Next()
	}

	v := r.parseRow(fields)
	v.Accession = r.header.Accession()
	v.EffectWeight = r.field(fields, "effect_weight")
	r.rowNr++
	return v, nil
}

// field returns a named column value or "" when the column is absent.
// "." and "NA" placeholders count as missing.
func (r *Reader) field(fields []string, name string) string {
	i, ok := r.columns[name]
	if !ok {
		return ""
	}
	val := fields[i]
	if val == "." || val == "NA" {
		return ""
	}
	return val
}

func (r *Reader) parseRow(fields []string) *Variant {
	v := &Variant{
		RsID:         r.field(fields, "rsID"),
		ChrName:      r.field(fields, "chr_name"),
		EffectAllele: r.field(fields, "effect_allele"),
		OtherAllele:  r.field(fields, "other_allele"),
		RowNr:        r.rowNr,

		IsDominant:    parseBool(r.field(fields, "is_dominant")),
		IsRecessive:   parseBool(r.field(fields, "is_recessive")),
		IsHaplotype:   parseBool(r.field(fields, "is_haplotype")),
		IsDiplotype:   parseBool(r.field(fields, "is_diplotype")),
		IsInteraction: parseBool(r.field(fields, "is_interaction")),

		HmChr:              r.field(fields, "hm_chr"),
		HmInferOtherAllele: r.field(fields, "hm_inferOtherAllele"),
		HmSource:           r.field(fields, "hm_source"),
	}

	if pos := r.field(fields, "chr_position"); pos != "" {
		v.ChrPosition, _ = strconv.Atoi(pos)
	}
	if pos := r.field(fields, "hm_pos"); pos != "" {
		v.HmPos, _ = strconv.Atoi(pos)
	}

	return v
}

// parseBool handles the TRUE/FALSE flag columns found in scoring files.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "t", "1", "yes":
		return true
	default:
		return false
	}
}
