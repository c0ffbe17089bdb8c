// Package scorefile reads PGS Catalog scoring files: tab-delimited tables of
// genetic variants and per-variant effect weights, preceded by a #key=value
// header block.
package scorefile

import "fmt"

// EffectType describes the inheritance model used when a variant's weight is
// added to a polygenic score sum.
type EffectType int

const (
	// EffectAdditive weights are always added, multiplied by dosage.
	EffectAdditive EffectType = iota
	// EffectDominant weights are added if at least one effect allele copy
	// is present.
	EffectDominant
	// EffectRecessive weights are added only with two effect allele copies.
	EffectRecessive
)

func (e EffectType) String() string {
	switch e {
	case EffectDominant:
		return "dominant"
	case EffectRecessive:
		return "recessive"
	default:
		return "additive"
	}
}

// ParseEffectType inverts String. ok is false for unknown labels.
func ParseEffectType(s string) (EffectType, bool) {
	switch s {
	case "additive":
		return EffectAdditive, true
	case "dominant":
		return EffectDominant, true
	case "recessive":
		return EffectRecessive, true
	}
	return EffectAdditive, false
}

// Variant is the canonical representation of one scoring file row.
//
// Positions are 1-based; ChrPosition 0 means missing. OtherAllele "" means
// null, which downstream matching treats as unconstrained. EffectWeight is
// kept as the validated source string to avoid float round-trip loss until
// final use.
type Variant struct {
	RsID         string
	ChrName      string
	ChrPosition  int
	EffectAllele string
	OtherAllele  string

	EffectWeight string
	EffectType   EffectType

	Accession string
	RowNr     int

	// Raw effect type flags from source columns, consumed by normalization.
	IsDominant  bool
	IsRecessive bool

	// Complex rows (haplotypes, diplotypes, interaction terms) need
	// multi-locus logic and are excluded from standard matching.
	IsHaplotype   bool
	IsDiplotype   bool
	IsInteraction bool

	IsDuplicated bool

	// Harmonized fields supplied by the Catalog, used to remap positions
	// when the file header declares itself harmonized.
	HmChr              string
	HmPos              int
	HmInferOtherAllele string
	HmSource           string
}

// IsComplex reports whether the row is a haplotype/diplotype/interaction
// term requiring manual handling.
func (v *Variant) IsComplex() bool {
	return v.IsHaplotype || v.IsDiplotype || v.IsInteraction
}

// IsHarmonised reports whether the variant carries catalog-harmonized
// position data.
func (v *Variant) IsHarmonised() bool {
	return v.HmSource != ""
}

// HasPosition reports whether both chromosome name and position are present.
func (v *Variant) HasPosition() bool {
	return v.ChrName != "" && v.ChrPosition > 0
}

// IdentityKey returns the chr:pos:effect_allele:other_allele key used for
// duplicate detection within one accession.
func (v *Variant) IdentityKey() string {
	pos := ""
	if v.ChrPosition > 0 {
		pos = fmt.Sprintf("%d", v.ChrPosition)
	}
	return v.ChrName + ":" + pos + ":" + v.EffectAllele + ":" + v.OtherAllele
}

func (v *Variant) String() string {
	return fmt.Sprintf("%s row %d (%s:%d %s/%s)",
		v.Accession, v.RowNr, v.ChrName, v.ChrPosition, v.EffectAllele, v.OtherAllele)
}
