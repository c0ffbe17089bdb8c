package scorefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSNP(t *testing.T) {
	tests := []struct {
		allele string
		want   bool
	}{
		{"A", true},
		{"T", true},
		{"AG", true}, // multi-character insertion
		{"ACGT", true},
		{"P", false}, // HLA serotype code
		{"N", false},
		{"+", false},
		{"", false},
		{"A/C", false},
	}
	for _, tt := range tests {
		t.Run(tt.allele, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSNP(tt.allele))
		})
	}
}

func TestComplement(t *testing.T) {
	assert.Equal(t, "T", Complement("A"))
	assert.Equal(t, "G", Complement("C"))
	assert.Equal(t, "CT", Complement("GA"))
	// non-DNA alleles pass through unchanged
	assert.Equal(t, "P", Complement("P"))
	assert.Equal(t, "+", Complement("+"))
}

func TestIsPalindromic(t *testing.T) {
	assert.True(t, IsPalindromic("A", "T"))
	assert.True(t, IsPalindromic("C", "G"))
	assert.True(t, IsPalindromic("G", "C"))
	assert.False(t, IsPalindromic("A", "C"))
	assert.False(t, IsPalindromic("A", ""))
	assert.False(t, IsPalindromic("AT", "AT"))
}
