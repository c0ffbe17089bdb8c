package target

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Format identifies a variant information file format.
type Format int

const (
	// FormatPVAR is the extended plink2 variant file (#CHROM POS ID REF ALT).
	FormatPVAR Format = iota + 1
	// FormatBIM is the legacy plink1 variant file (chrom, id, cm, pos, A1, A2).
	// A1/A2 aren't guaranteed to be ref/alt; plink can swap them during VCF
	// conversion, which is why matching tries both orientations.
	FormatBIM
)

// matchableChroms limits targets to chromosomes 1-22, X, and Y. Contigs and
// patches never appear in scoring files.
var matchableChroms = func() map[string]bool {
	m := make(map[string]bool)
	for i := 1; i <= 22; i++ {
		m[strconv.Itoa(i)] = true
	}
	m["X"] = true
	m["Y"] = true
	return m
}()

// Reader streams target variants from a pvar or bim file. Multi-allelic
// pvar rows are split so each ALT allele becomes an independent Variant.
type Reader struct {
	file       *os.File
	gz         *gzip.Reader
	zst        *zstd.Decoder
	reader     *bufio.Reader
	format     Format
	lineNumber int
	pending    []*Variant
}

// DetectFormat infers the file format from its name.
func DetectFormat(path string) (Format, error) {
	switch {
	case strings.Contains(path, "pvar"):
		return FormatPVAR, nil
	case strings.Contains(path, "bim"):
		return FormatBIM, nil
	default:
		return 0, fmt.Errorf("cannot detect variant file format from %q (expected pvar or bim)", path)
	}
}

// NewReader opens a variant information file, handling gzip and zstandard
// compression transparently.
func NewReader(path string) (*Reader, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variant file: %w", err)
	}

	r := &Reader{file: file, format: format}

	buf := make([]byte, 4)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read magic bytes: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek variant file: %w", err)
	}

	switch {
	case n >= 2 && buf[0] == 0x1f && buf[1] == 0x8b:
		r.gz, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gz)
	case n >= 4 && buf[0] == 0x28 && buf[1] == 0xb5 && buf[2] == 0x2f && buf[3] == 0xfd:
		r.zst, err = zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		r.reader = bufio.NewReader(r.zst)
	default:
		r.reader = bufio.NewReader(file)
	}

	return r, nil
}

// Format returns the detected file format.
func (r *Reader) Format() Format {
	return r.format
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close releases the decompressor and underlying file.
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	if r.zst != nil {
		r.zst.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Next returns the next target variant, or nil, nil when there are no more.
// Variants on non-standard chromosomes or with missing IDs are skipped.
func (r *Reader) Next() (*Variant, error) {
	if len(r.pending) > 0 {
		v := r.pending[0]
		r.pending = r.pending[1:]
		return v, nil
	}

	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" {
				return nil, nil
			}
			if err != io.EOF {
				return nil, fmt.Errorf("read variant line: %w", err)
			}
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		variants, err := r.parseLine(line)
		if err != nil {
			return nil, err
		}
		if len(variants) == 0 {
			continue // filtered out
		}

		r.pending = variants[1:]
		return variants[0], nil
	}
}

// parseLine parses one data line into zero or more variants. Multi-allelic
// pvar ALT columns are comma-separated and exploded here so the candidate
// generator can treat each allele independently.
func (r *Reader) parseLine(line string) ([]*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) == 1 {
		// bim files are sometimes space-delimited
		fields = strings.Fields(line)
	}

	var chrom, id, ref, alt string
	var posField string

	switch r.format {
	case FormatPVAR:
		if len(fields) < 5 {
			return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("expected at least 5 columns, found %d", len(fields))}
		}
		chrom, posField, id, ref, alt = fields[0], fields[1], fields[2], fields[3], fields[4]
	case FormatBIM:
		if len(fields) < 6 {
			return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("expected 6 columns, found %d", len(fields))}
		}
		// bim: chrom, id, cm, pos, A1, A2. Record A2 as ref and A1 as alt,
		// mirroring plink's usual VCF conversion.
		chrom, id, posField, alt, ref = fields[0], fields[1], fields[3], fields[4], fields[5]
	}

	chrom = strings.TrimPrefix(chrom, "chr")
	if !matchableChroms[chrom] || id == "." {
		return nil, nil
	}

	pos, err := strconv.Atoi(posField)
	if err != nil {
		return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid position: %s", posField)}
	}

	alts := strings.Split(alt, ",")
	multi := len(alts) > 1
	variants := make([]*Variant, 0, len(alts))
	for _, a := range alts {
		variants = append(variants, &Variant{
			Chrom:          chrom,
			Pos:            pos,
			Ref:            ref,
			Alt:            a,
			ID:             id,
			IsMultiallelic: multi,
		})
	}
	return variants, nil
}

// ParseError describes a malformed variant information file line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("variant file parse error at line %d: %s", e.Line, e.Message)
}
