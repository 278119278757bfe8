// lfo.go - Dual phase-accumulator LFO engine and modulation routing, per
// spec.md §4.6.

package synth

// LFO is one of the two independent modulation oscillators.
type LFO struct {
	Phase       uint32
	Increment   uint32
	Shape       int
	Depth       int // 0..127
	Destination int // 0..5, meaning depends on which LFO (see destination tables below)
	morph       MorphState
	noise       uint16
}

// NewLFO seeds the LFO's noise-shape LFSR. Per spec.md §9's documented open
// question, this implementation gives each LFO its own independent LFSR
// rather than reproducing the original firmware's shared function-local
// static (a correlation defect the spec explicitly permits fixing).
func NewLFO(noiseSeed uint16) *LFO {
	return &LFO{noise: noiseSeed}
}

// SetRate recomputes the phase increment from the 0..127 rate parameter for
// one render buffer, per spec.md §4.6: hz = 0.01 + (rate/127)*20.
func (l *LFO) SetRate(rate, sampleRate int) {
	hz := 0.01 + (float64(rate)/127.0)*20.0
	l.Increment = uint32(hz * 4294967296.0 / float64(sampleRate))
}

// Tick advances the LFO by one sample and returns its raw 8-bit centered
// wave value.
func (l *LFO) Tick() uint8 {
	var s uint8
	if l.Shape == 14 {
		l.noise = lfsrAdvance(l.noise)
		s = uint8(l.noise & 0xFF)
	} else {
		s = sampleWaveform(l.Shape, &l.morph, 64, l.Phase, EnvSustainState)
	}
	l.Phase += l.Increment
	return s
}

// Modulation computes the bipolar modulation amount for wave value s at the
// LFO's depth: ((wave-128)*depth) >> 7, per spec.md §4.6.
func (l *LFO) Modulation(wave uint8) int {
	return ((int(wave) - 128) * l.Depth) >> 7
}

// LFO1 destinations (spec.md §4.6). Destinations 1-3 are specified but
// deliberately inert: filter coefficients update once per buffer, not per
// sample, so per-sample filter modulation has nowhere to land.
const (
	LFO1DestAmplitude = 0
	LFO1DestFilterCutoff = 1
	LFO1DestFilterQ = 2
	LFO1DestFilterEnvAmount = 3
	LFO1DestPitch = 4
	LFO1DestDetune = 5
)

// LFO2 destinations (spec.md §4.6). Only destination 0 (osc mix) is wired
// into Render. The filter-related destinations (1, 2, 5) are inert for the
// same reason as LFO1's, and the meta-modulation destinations (3, 4) are
// reserved, not implemented.
const (
	LFO2DestOscMix = 0
	LFO2DestFilterCutoff = 1
	LFO2DestFilterQ = 2
	LFO2DestLFO1Rate = 3
	LFO2DestLFO1Depth = 4
	LFO2DestFilterAttack = 5
)

// clampParam clamps an LFO-modulated copy of a 0..127 parameter, per
// spec.md §4.6.
func clampParam(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}

// volumeCurve applies the square-law volume curve spec.md §4.6 requires
// for the modulated master-volume gain: vol_q = 32767*(vol/127)^2.
func volumeCurve(vol int) int32 {
	v := clampParam(vol)
	return int32(32767 * v * v / (127 * 127))
}
