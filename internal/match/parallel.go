package match

import (
	"runtime"
	"sync"

	"github.com/pgstools/pgmatch/internal/scorefile"
)

// WorkItem holds a normalized variant queued for candidate generation.
type WorkItem struct {
	Seq     int
	Variant *scorefile.Variant
}

// WorkResult holds the candidates generated for a single variant.
type WorkResult struct {
	Seq    int
	Record RecordCandidates
}

// ParallelGenerate generates candidates using a pool of workers. The target
// index is read-only, so workers share it without locking. Results arrive
// in completion order; use OrderedCollect to consume them in sequence order
// so output row order matches input row order. If workers is 0,
// runtime.NumCPU() is used.
func (g *Generator) ParallelGenerate(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- WorkResult{
					Seq:    item.Seq,
					Record: g.Generate(item.Variant),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order results until the next expected sequence number
// arrives. Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
