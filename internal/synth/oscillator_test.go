package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleWaveformAllShapesStayInByteRange(t *testing.T) {
	var m MorphState
	m.Seed(0xACE1)
	for ws := 0; ws <= 15; ws++ {
		for phase := uint32(0); phase < 0xFFFFFFFF; phase += 0x08000000 {
			s := sampleWaveform(ws, &m, 60, phase, EnvSustainState)
			assert.True(t, s <= 255) // uint8, always true; guards against a future widen
		}
	}
}

func TestSampleWaveformRawSquareIsTwoValued(t *testing.T) {
	var m MorphState
	seen := map[uint8]bool{}
	for phase := uint32(0); phase < 0xFFFFFFFF; phase += 0x01000000 {
		seen[sampleWaveform(15, &m, 60, phase, EnvSustainState)] = true
	}
	assert.LessOrEqual(t, len(seen), 2)
}

func TestSampleNoiseAdvancesEveryEighthCallPair(t *testing.T) {
	var m MorphState
	m.Seed(0xACE1)
	first := m.LFSR
	for i := 0; i < 15; i++ {
		sampleNoise(&m)
	}
	assert.Equal(t, first, m.LFSR) // not yet 16 calls
	sampleNoise(&m)
	assert.NotEqual(t, first, m.LFSR)
}

func TestMorphFamiliesAdvanceDeterministically(t *testing.T) {
	var m1, m2 MorphState
	m1.Seed(0xACE1)
	m2.Seed(0xACE1)
	for family := 1; family <= 9; family++ {
		m1.Seed(0xACE1)
		m2.Seed(0xACE1)
		for i := 0; i < 64; i++ {
			a := morphSample(&m1, family, 60, uint32(i)<<20, EnvAttackState)
			b := morphSample(&m2, family, 60, uint32(i)<<20, EnvAttackState)
			assert.Equal(t, a, b, "family %d sample %d", family, i)
		}
	}
}
