package lfsr

import (
	"math"
	"os"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRandomSeed         int64 = 7823434
	testMinSuccessfulTests       = 2000
)

func newTestProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(testRandomSeed)
	parameters.MinSuccessfulTests = testMinSuccessfulTests
	return gopter.NewProperties(parameters)
}

func TestFeedbackMatchesFold(t *testing.T) {
	props := newTestProperties()

	props.Property("64-bit popcount parity equals bit fold", prop.ForAll(
		func(reg, taps uint64) bool {
			return Feedback(reg, taps) == FeedbackFold(reg, taps)
		},
		gen.UInt64(), gen.UInt64(),
	))
	props.Property("8-bit popcount parity equals bit fold", prop.ForAll(
		func(reg, taps uint64) bool {
			return Feedback(reg, taps) == FeedbackFold(reg, taps)
		},
		gen.UInt64Range(0, 0xff), gen.UInt64Range(0, 0xff),
	))

	if !props.Run(gopter.NewFormatedReporter(true, 160, os.Stdout)) {
		t.Errorf("failed with initial seed: %d", testRandomSeed)
	}
}

func TestFeedbackExhaustive8(t *testing.T) {
	for reg := uint64(0); reg <= 0xff; reg++ {
		for taps := uint64(0); taps <= 0xff; taps++ {
			require.Equal(t, FeedbackFold(reg, taps), Feedback(reg, taps), "reg=%#x taps=%#x", reg, taps)
		}
	}
}

func TestStep(t *testing.T) {
	// 0x42 = 0100_0010, taps bits 0,2,3,4 select 0,0,0,0 -> feedback 0.
	next, fb := Width8.Step(0x42, 0x1d)
	assert.Equal(t, uint64(0), fb)
	assert.Equal(t, uint64(0x21), next)

	// 0x21 = 0010_0001, tap bit 0 is set -> feedback 1 enters bit 7.
	next, fb = Width8.Step(next, 0x1d)
	assert.Equal(t, uint64(1), fb)
	assert.Equal(t, uint64(0x90), next)

	next, fb = Width64.Step(1, 1)
	assert.Equal(t, uint64(1), fb)
	assert.Equal(t, uint64(1)<<63, next)
}

func TestStepStaysInWidth(t *testing.T) {
	props := newTestProperties()
	props.Property("8-bit step never sets bits above 7", prop.ForAll(
		func(reg, taps uint64) bool {
			next, _ := Width8.Step(reg, taps)
			return Width8.Contains(next)
		},
		gen.UInt64(), gen.UInt64(),
	))
	if !props.Run(gopter.NewFormatedReporter(true, 160, os.Stdout)) {
		t.Errorf("failed with initial seed: %d", testRandomSeed)
	}
}

func TestWidth(t *testing.T) {
	assert.Equal(t, uint64(0xff), Width8.Max())
	assert.Equal(t, uint64(math.MaxUint64), Width64.Max())
	assert.Equal(t, 256.0, Width8.Space())
	assert.Equal(t, 2, Width8.HexDigits())
	assert.Equal(t, 16, Width64.HexDigits())
	assert.True(t, Width8.Contains(0xff))
	assert.False(t, Width8.Contains(0x100))
	assert.True(t, Width64.Contains(math.MaxUint64))

	w, err := ParseWidth(64)
	require.NoError(t, err)
	assert.Equal(t, Width64, w)

	_, err = ParseWidth(16)
	require.ErrorIs(t, err, ErrUnsupportedWidth)
}
