package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pgstools/pgmatch/internal/match"
)

// WriteSummaryFile writes per-accession match summaries as JSON, staged
// through a temp file like the other outputs.
func WriteSummaryFile(path string, summaries []match.Summary) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create match summary: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode match summary: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close match summary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit match summary: %w", err)
	}
	return nil
}
