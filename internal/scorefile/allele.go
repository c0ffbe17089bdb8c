package scorefile

import "strings"

// complement maps each nucleotide to its complement. Non-nucleotide bytes
// (HLA codes like "P"/"N", "+") are left untouched by Complement.
var complement = map[byte]byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
}

// IsSNP reports whether an allele is composed only of valid nucleotide codes.
// Multi-character insertions like "AG" count, HLA serotype codes like "P" or
// "+" don't.
func IsSNP(allele string) bool {
	if allele == "" {
		return false
	}
	for i := 0; i < len(allele); i++ {
		if _, ok := complement[allele[i]]; !ok {
			return false
		}
	}
	return true
}

// Complement returns the strand complement of an allele. Alleles that aren't
// valid DNA sequences are returned unchanged, matching how flipped columns
// are built before strand-flip matching.
func Complement(allele string) string {
	if !IsSNP(allele) {
		return allele
	}
	var sb strings.Builder
	sb.Grow(len(allele))
	for i := 0; i < len(allele); i++ {
		sb.WriteByte(complement[allele[i]])
	}
	return sb.String()
}

// IsPalindromic reports whether an allele pair is strand-ambiguous (A/T or
// C/G): complementing both alleles yields the same pair, so a strand flip is
// indistinguishable from no flip.
func IsPalindromic(a, b string) bool {
	return a != "" && b != "" && Complement(a) == b
}
