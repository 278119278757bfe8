// properties_test.go - one property-based test per spec.md §8's eight
// numbered properties, in doismellburning-samoyed's rapid+testify style.

package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// 1. Parameter clamp.
func TestPropertyParameterClamp(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := ParamID(rapid.IntRange(0, int(numParams)-1).Draw(t, "id"))
		v := rapid.IntRange(-1000, 1000).Draw(t, "v")

		s := NewParamStore()
		s.Set(id, v)
		got := s.Get(id)
		min, max := s.Bounds(id)

		assert.GreaterOrEqual(t, got, min)
		assert.LessOrEqual(t, got, max)
		if v >= min && v <= max {
			assert.Equal(t, v, got)
		}
	})
}

// 2. Note stack laws.
func TestPropertyNoteStackLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a, _ := newTestAllocator()
		held := map[int]bool{}

		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			note := rapid.IntRange(0, 20).Draw(t, "note")
			noteOn := rapid.Bool().Draw(t, "noteOn")
			if noteOn {
				a.NoteOn(note, 100, defaultVP())
				// A new note on a full stack is ignored (spec.md §7).
				if len(held) < maxStackDepth {
					held[note] = true
				}
			} else if held[note] {
				a.NoteOff(note, defaultVP())
				delete(held, note)
			}
		}

		want := len(held)
		if want > maxStackDepth {
			want = maxStackDepth
		}
		assert.Equal(t, want, a.StackSize())
	})
}

// 3. Allocator coherence.
func TestPropertyAllocatorCoherence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a, voices := newTestAllocator()
		modes := []AllocMode{AllocMono, AllocLowNote, AllocHighNote, AllocLastNote, AllocRoundRobin}
		a.SetMode(modes[rapid.IntRange(0, len(modes)-1).Draw(t, "mode")])
		a.SetThreeVoiceEnabled(rapid.Bool().Draw(t, "threeVoice"))

		stack := map[int]bool{}
		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			note := rapid.IntRange(0, 10).Draw(t, "note")
			if rapid.Bool().Draw(t, "on") {
				a.NoteOn(note, 100, defaultVP())
				stack[note] = true
			} else if stack[note] {
				a.NoteOff(note, defaultVP())
				delete(stack, note)
			}

			active := 0
			for _, v := range voices {
				if v.Active {
					active++
					// A released slot stays Active through its release tail
					// and keeps the note it was releasing.
					if v.Env != EnvReleaseState {
						assert.True(t, stack[v.Note], "active slot carries note %d not in stack", v.Note)
					}
				}
			}
			assert.LessOrEqual(t, active, a.maxVoices())
		}
	})
}

// 4. Envelope monotonicity within a segment.
func TestPropertyEnvelopeMonotonicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		attack := rapid.IntRange(0, 127).Draw(t, "attack")
		decay := rapid.IntRange(0, 127).Draw(t, "decay")
		sustain := rapid.IntRange(0, 127).Draw(t, "sustain")

		v := &Voice{}
		v.Trigger(60, 48000, false, 0, attack, decay, sustain, 0)

		var prev int32 = -1
		seg := v.Env
		for i := 0; i < v.AttackSamples+v.DecaySamples+1; i++ {
			v.Tick(0, 64, 64, 0, 2, 2, false)
			if v.Env != seg {
				seg = v.Env
				prev = -1
				continue
			}
			if prev >= 0 {
				switch seg {
				case EnvAttackState:
					assert.GreaterOrEqual(t, v.EnvLevel, prev, "attack must be nondecreasing")
				case EnvDecayState, EnvReleaseState:
					assert.LessOrEqual(t, v.EnvLevel, prev, "decay/release must be nonincreasing")
				}
			}
			prev = v.EnvLevel
		}
	})
}

// 5. Phase stability: no sample exceeds saturation bounds.
func TestPropertyPhaseStability(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		note := rapid.IntRange(0, 127).Draw(t, "note")
		frames := rapid.IntRange(1, 2000).Draw(t, "frames")

		e := NewEngine(48000)
		e.NoteOn(note, 100)
		buf := make([]int16, 2*frames)
		e.Render(buf, frames)

		for _, s := range buf {
			v := int32(s)
			if v < 0 {
				v = -v
			}
			require.LessOrEqual(t, v, int32(32767))
		}
	})
}

// 6. Silence invariant.
func TestPropertySilenceInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.IntRange(1, 2000).Draw(t, "frames")
		e := NewEngine(48000)
		// No note-on; drone_mode defaults to 0.
		buf := make([]int16, 2*frames)
		e.Render(buf, frames)
		for _, s := range buf {
			assert.Equal(t, int16(0), s)
		}
	})
}

// 7. Filter stability for white noise across the documented cutoff/Q range.
func TestPropertyFilterStability(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cutoff := rapid.Float64Range(10, 0.45*48000).Draw(t, "cutoff")
		q := rapid.Float64Range(0.3, 20).Draw(t, "q")

		f := NewFilter(48000)
		f.SetCoefficients(float32(cutoff), float32(q))

		seed := uint32(rapid.Uint32().Draw(t, "seed")) | 1
		for i := 0; i < 4800; i++ {
			seed = seed*1664525 + 1013904223
			in := (float32(int32(seed)) / float32(math.MaxInt32))
			out := f.Process(in, FilterLowpass)
			require.False(t, math.IsNaN(float64(out)))
			require.False(t, math.IsInf(float64(out), 0))
		}
	})
}

// 8. Detune symmetry.
func TestPropertyDetuneSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const inc = uint32(1 << 20)
		assert.Equal(t, inc, detuneMultiply(inc, 64))

		d := rapid.IntRange(-63, 63).Draw(t, "d")
		tune := 64 + d
		if tune < 0 {
			tune = 0
		}
		if tune > 127 {
			tune = 127
		}
		got := detuneMultiply(inc, tune)
		want := float64(inc) * math.Pow(2, float64(d)/48.0)
		assert.InEpsilon(t, want, float64(got), 0.02)
	})
}
