// filter.go - Topology-preserving trapezoidal state-variable filter.
//
// Grounded on the standalone vst3go SVF (other_examples), adapted from its
// per-channel slice state to the engine's single shared filter instance and
// from its continuous SetFrequency/SetQ API to once-per-buffer coefficient
// recompute, per spec.md §4.2.

package synth

import "math"

// FilterMode selects which of the SVF's simultaneous outputs feeds the
// render loop. The ordering follows spec.md §9's chosen resolution of the
// original firmware's inconsistent LP/BP/HP ordering: 0=LP, 1=BP, 2=HP,
// 3=notch (matching the CC84 value&3 masking form).
type FilterMode int

const (
	FilterLowpass FilterMode = iota
	FilterBandpass
	FilterHighpass
	FilterNotch
)

// Filter is the shared master SVF. All three voices sum into one Filter
// instance; coefficients are recomputed once per render buffer, never per
// sample (spec.md §4.2, §4.8).
type Filter struct {
	ic1eq, ic2eq float32
	g, k         float32
	sampleRate   int
}

// NewFilter constructs a filter for the given sample rate with coefficients
// at their defaults; SetCoefficients must be called before first use.
func NewFilter(sampleRate int) *Filter {
	return &Filter{sampleRate: sampleRate}
}

// SetCoefficients recomputes g and k from a cutoff in Hz and a resonance Q,
// clamping both into the ranges spec.md §4.2 requires.
func (f *Filter) SetCoefficients(cutoffHz, q float32) {
	if cutoffHz < 10 {
		cutoffHz = 10
	}
	maxCutoff := 0.45 * float32(f.sampleRate)
	if cutoffHz > maxCutoff {
		cutoffHz = maxCutoff
	}
	if q < 0.3 {
		q = 0.3
	} else if q > 20 {
		q = 20
	}
	f.g = float32(math.Tan(math.Pi * float64(cutoffHz) / float64(f.sampleRate)))
	f.k = 1.0 / q
}

// Process runs one sample through the filter and returns the output
// selected by mode, per the recurrence in spec.md §4.2.
func (f *Filter) Process(v0 float32, mode FilterMode) float32 {
	v1 := (f.g*(v0-f.ic2eq) + f.ic1eq) / (1 + f.g*(f.g+f.k))
	v2 := f.ic2eq + f.g*v1
	f.ic1eq = 2*v1 - f.ic1eq
	f.ic2eq = 2*v2 - f.ic2eq

	switch mode {
	case FilterLowpass:
		return v2
	case FilterBandpass:
		return v1
	case FilterHighpass:
		return v0 - f.k*v1 - v2
	default: // FilterNotch
		return v0 - f.k*v1
	}
}

// Reset clears the integrator state, used when the filter must not carry
// state across a discontinuity (not exercised by the render loop itself,
// but available to callers such as tests that reinitialize the engine).
func (f *Filter) Reset() {
	f.ic1eq, f.ic2eq = 0, 0
}
