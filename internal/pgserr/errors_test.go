package pgserr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitError},
		{"match rate", New(KindMatchRateInsufficient, "PGS000001"), 14},
		{"zero matches", New(KindZeroMatches, "nothing matched"), 15},
		{"duplicate match", New(KindDuplicateMatch, ""), 13},
		{"liftover", New(KindLiftoverInsufficient, ""), 18},
		{"score format", New(KindScoreFormatInvalid, "bad weight"), 9},
		{"wrapped in fmt.Errorf", fmt.Errorf("outer: %w", New(KindBuildMismatch, "")), 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := &Error{Kind: KindZeroMatches, Accession: "PGS000002"}
	assert.True(t, errors.Is(err, &Error{Kind: KindZeroMatches}))
	assert.False(t, errors.Is(err, &Error{Kind: KindMatchRateInsufficient}))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Kind:      KindMatchRateInsufficient,
		Accession: "PGS000001",
		Rate:      0.5,
		Threshold: 0.75,
		Msg:       "0.50 matched, minimum 0.75",
	}
	assert.Contains(t, err.Error(), "MatchRateInsufficient")
	assert.Contains(t, err.Error(), "PGS000001")
	assert.Contains(t, err.Error(), "0.50 matched")
}

func TestKindOfUnwrapsCause(t *testing.T) {
	cause := New(KindChecksumMismatch, "md5 mismatch")
	wrapped := fmt.Errorf("downloading PGS000001: %w", cause)
	assert.Equal(t, KindChecksumMismatch, KindOf(wrapped))
}
