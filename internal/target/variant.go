// Package target reads target dataset variant information files: plink2
// pvar and plink1 bim formats. Target variants are read-only reference data
// describing the genotyped samples a PGS is applied to.
package target

// Variant is a single target variant. Multiple target variants may share a
// position (multi-allelic sites); the reader splits those into independent
// records flagged IsMultiallelic.
type Variant struct {
	Chrom string
	Pos   int
	Ref   string
	Alt   string
	ID    string

	// IsMultiallelic is set when this record came from a pvar line with a
	// comma-separated ALT column.
	IsMultiallelic bool
}

// Key returns the chrom:pos grouping key used for position lookups.
func (v *Variant) Key() string {
	return PosKey(v.Chrom, v.Pos)
}
