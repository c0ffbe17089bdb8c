package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pgstools/pgmatch/internal/normalize"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

// FileLog is the per-scoring-file entry of the JSON score log: the parsed
// header metadata plus the normalization QC counts.
type FileLog struct {
	Accession string            `json:"accession"`
	Header    *scorefile.Header `json:"header"`
	QC        normalize.Stats   `json:"qc"`
}

// WriteScoreLog writes the JSON score log for one combine run.
func WriteScoreLog(w io.Writer, logs []FileLog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(logs); err != nil {
		return fmt.Errorf("encode score log: %w", err)
	}
	return nil
}

// WriteScoreLogFile stages the score log to a temp file and renames it
// into place on success.
func WriteScoreLogFile(path string, logs []FileLog) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create score log: %w", err)
	}

	if err := WriteScoreLog(f, logs); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close score log: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit score log: %w", err)
	}
	return nil
}
