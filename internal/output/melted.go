// Package output writes the toolkit's result files: the melted canonical
// variant table, the per-file JSON score log, and plink2 --score compatible
// scoring files.
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

// meltedColumns is the fixed column order of the melted table. One row per
// variant per scoring file, so multi-score inputs are already unpivoted.
var meltedColumns = []string{
	"chr_name",
	"chr_position",
	"effect_allele",
	"other_allele",
	"effect_weight",
	"effect_type",
	"is_duplicated",
	"accession",
	"row_nr",
}

// MeltedWriter writes the gzip tab-delimited canonical variant table.
// Output is staged to a temp file and renamed into place on Close, so a
// crashed run never leaves a plausible-looking partial table behind.
type MeltedWriter struct {
	f    *os.File
	gz   *gzip.Writer
	w    *bufio.Writer
	path string
	tmp  string
	rows int
}

// CreateMelted creates a melted table writer targeting path. The header
// line is written immediately.
func CreateMelted(path string) (*MeltedWriter, error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create melted table: %w", err)
	}

	gz := gzip.NewWriter(f)
	w := bufio.NewWriter(gz)
	mw := &MeltedWriter{f: f, gz: gz, w: w, path: path, tmp: tmp}

	if _, err := w.WriteString(strings.Join(meltedColumns, "\t") + "\n"); err != nil {
		mw.Discard()
		return nil, fmt.Errorf("write melted header: %w", err)
	}
	return mw, nil
}

// Write writes one variant row. A missing position is written as an empty
// field, not 0.
func (mw *MeltedWriter) Write(v *scorefile.Variant) error {
	pos := ""
	if v.ChrPosition != 0 {
		pos = strconv.Itoa(v.ChrPosition)
	}
	row := []string{
		v.ChrName,
		pos,
		v.EffectAllele,
		v.OtherAllele,
		v.EffectWeight,
		v.EffectType.String(),
		strconv.FormatBool(v.IsDuplicated),
		v.Accession,
		strconv.Itoa(v.RowNr),
	}
	if _, err := mw.w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
		return fmt.Errorf("write melted row: %w", err)
	}
	mw.rows++
	return nil
}

// Rows returns the number of data rows written so far.
func (mw *MeltedWriter) Rows() int {
	return mw.rows
}

// Close flushes, finalizes the gzip stream, and renames the staged file
// into place.
func (mw *MeltedWriter) Close() error {
	if err := mw.w.Flush(); err != nil {
		mw.Discard()
		return fmt.Errorf("flush melted table: %w", err)
	}
	if err := mw.gz.Close(); err != nil {
		mw.Discard()
		return fmt.Errorf("close gzip stream: %w", err)
	}
	if err := mw.f.Close(); err != nil {
		mw.Discard()
		return fmt.Errorf("close melted table: %w", err)
	}
	if err := os.Rename(mw.tmp, mw.path); err != nil {
		mw.Discard()
		return fmt.Errorf("commit melted table: %w", err)
	}
	return nil
}

// Discard abandons the staged file. Safe to call after a failed Close.
func (mw *MeltedWriter) Discard() {
	mw.f.Close()
	os.Remove(mw.tmp)
}
