package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSilenceStaysSilent(t *testing.T) {
	f := NewFilter(48000)
	f.SetCoefficients(1000, 1)
	for i := 0; i < 1000; i++ {
		out := f.Process(0, FilterLowpass)
		assert.Equal(t, float32(0), out)
	}
}

func TestFilterBoundedOutputForBoundedInput(t *testing.T) {
	f := NewFilter(48000)
	f.SetCoefficients(2000, 5)
	var in float32 = 0.5
	for i := 0; i < 48000; i++ {
		in = -in
		out := f.Process(in, FilterLowpass)
		if out > 4 || out < -4 {
			t.Fatalf("filter output diverged: %v at sample %d", out, i)
		}
	}
}

func TestFilterClampsCutoffAndQ(t *testing.T) {
	f := NewFilter(48000)
	// Out-of-range inputs must not produce a degenerate (NaN/zero) g or k.
	f.SetCoefficients(-100, 0)
	assert.Greater(t, f.g, float32(0))
	assert.Greater(t, f.k, float32(0))

	f.SetCoefficients(1e9, 1000)
	assert.Greater(t, f.g, float32(0))
	assert.Greater(t, f.k, float32(0))
}

func TestFilterModeOrdering(t *testing.T) {
	assert.Equal(t, FilterMode(0), FilterLowpass)
	assert.Equal(t, FilterMode(1), FilterBandpass)
	assert.Equal(t, FilterMode(2), FilterHighpass)
	assert.Equal(t, FilterMode(3), FilterNotch)
}
