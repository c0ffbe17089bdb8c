package liftover

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultTool is the UCSC liftOver executable looked up on PATH.
const DefaultTool = "liftOver"

// Position is one chromosome/position coordinate, 1-based.
type Position struct {
	Chrom string
	Pos   int
}

// Tool converts coordinates by running an external liftOver executable
// over a batch of positions. liftOver works file-at-a-time, so callers
// collect positions up front, lift them in one invocation, and serve the
// lazy per-record Lift calls from the result.
type Tool struct {
	exe   string
	chain string
}

// NewTool wraps the executable at exe (DefaultTool if empty) with the
// given chain file.
func NewTool(exe, chainPath string) *Tool {
	if exe == "" {
		exe = DefaultTool
	}
	return &Tool{exe: exe, chain: chainPath}
}

// LiftBatch converts all positions in one liftOver run and returns a
// Lifter serving lookups from the result. Positions the chain mapping
// can't convert are simply absent, so Lift reports ok=false for them.
func (t *Tool) LiftBatch(positions []Position) (Lifter, error) {
	dir, err := os.MkdirTemp("", "pgmatch-liftover")
	if err != nil {
		return nil, fmt.Errorf("create liftover workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "in.bed")
	outPath := filepath.Join(dir, "out.bed")
	unmappedPath := filepath.Join(dir, "unmapped.bed")

	if err := writeBED(inPath, positions); err != nil {
		return nil, err
	}

	cmd := exec.Command(t.exe, inPath, t.chain, outPath, unmappedPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", t.exe, err, strings.TrimSpace(string(out)))
	}

	lifted, err := readBED(outPath)
	if err != nil {
		return nil, err
	}
	return mapLifter(lifted), nil
}

// writeBED writes 0-based half-open single-base intervals, keyed by the
// original chrom:pos in the name column so results can be joined back.
func writeBED(path string, positions []Position) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write liftover input: %w", err)
	}
	w := bufio.NewWriter(f)

	for _, p := range positions {
		chrom := p.Chrom
		if !strings.HasPrefix(chrom, "chr") {
			chrom = "chr" + chrom
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s:%d\n", chrom, p.Pos-1, p.Pos, p.Chrom, p.Pos)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write liftover input: %w", err)
	}
	return f.Close()
}

func readBED(path string) (map[string]Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read liftover output: %w", err)
	}
	defer f.Close()

	lifted := make(map[string]Position)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 4 {
			continue
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("liftover output: bad position %q", fields[2])
		}
		lifted[fields[3]] = Position{
			Chrom: strings.TrimPrefix(fields[0], "chr"),
			Pos:   end,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read liftover output: %w", err)
	}
	return lifted, nil
}

// mapLifter serves Lift calls from a precomputed position map.
type mapLifter map[string]Position

func (m mapLifter) Lift(chrom string, pos int) (string, int, bool) {
	p, ok := m[chrom+":"+strconv.Itoa(pos)]
	if !ok {
		return "", 0, false
	}
	return p.Chrom, p.Pos, true
}
