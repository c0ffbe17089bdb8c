package target

import "strconv"

// PosKey builds the chrom:pos lookup key.
func PosKey(chrom string, pos int) string {
	return chrom + ":" + strconv.Itoa(pos)
}

// Index holds target variants keyed by position for candidate generation.
// It is built once per shard and read-only afterwards.
type Index struct {
	byPos map[string][]*Variant
	count int
}

// NewIndex builds an index by draining a reader.
func NewIndex(src interface {
	Next() (*Variant, error)
}) (*Index, error) {
	idx := &Index{byPos: make(map[string][]*Variant)}
	for {
		v, err := src.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return idx, nil
		}
		idx.Add(v)
	}
}

// Add inserts a variant. Insertion order per position is preserved so
// candidate generation stays deterministic.
func (idx *Index) Add(v *Variant) {
	key := v.Key()
	idx.byPos[key] = append(idx.byPos[key], v)
	idx.count++
}

// At returns all target variants at chrom:pos, in insertion order.
func (idx *Index) At(chrom string, pos int) []*Variant {
	return idx.byPos[PosKey(chrom, pos)]
}

// Len returns the number of indexed variants.
func (idx *Index) Len() int {
	return idx.count
}

// Chromosomes returns the set of chromosomes present in the index.
func (idx *Index) Chromosomes() map[string]bool {
	chroms := make(map[string]bool)
	for _, vs := range idx.byPos {
		for _, v := range vs {
			chroms[v.Chrom] = true
		}
	}
	return chroms
}
