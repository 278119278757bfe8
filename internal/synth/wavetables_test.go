package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetuneTableCenterIsIdentity(t *testing.T) {
	const inc = uint32(1000000)
	assert.Equal(t, inc, detuneMultiply(inc, 64))
}

func TestDetuneTableMonotonicAroundCenter(t *testing.T) {
	const inc = uint32(1000000)
	below := detuneMultiply(inc, 0)
	center := detuneMultiply(inc, 64)
	above := detuneMultiply(inc, 127)
	assert.Less(t, below, center)
	assert.Greater(t, above, center)
}

func TestMipBandMonotonicWithNote(t *testing.T) {
	lowBand := mipBand(0)
	highBand := mipBand(127)
	assert.GreaterOrEqual(t, lowBand, 0)
	assert.Less(t, highBand, mipBands)
	assert.LessOrEqual(t, lowBand, highBand)
}

func TestSampleSineIsBounded(t *testing.T) {
	for phase := uint32(0); phase < 0xFFFFFFFF; phase += 0x01000000 {
		s := sampleSine(phase)
		assert.True(t, s >= 0 && s <= 255)
	}
}

func TestU8ToQ15RoundTripsCenterToZero(t *testing.T) {
	assert.Equal(t, int16(0), u8ToQ15(128))
}

func TestSampleMipAllBandsInRange(t *testing.T) {
	for note := 0; note < 128; note += 7 {
		for phase := uint32(0); phase < 0xFFFFFFFF; phase += 0x10000000 {
			s := sampleMip(&squareMip, note, phase)
			assert.True(t, s >= 0 && s <= 255)
		}
	}
}
