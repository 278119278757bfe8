// voice.go - Per-voice state machine: two phase-accumulator oscillators,
// glide on oscillator 2, detune, and the shared ADSR envelope segment
// counters, per spec.md §4.5.

package synth

// EnvState enumerates the voice envelope's five states. A tagged enum with
// a single per-sample dispatch, no virtual calls, per spec.md §9.
type EnvState int

const (
	EnvIdleState EnvState = iota
	EnvAttackState
	EnvDecayState
	EnvSustainState
	EnvReleaseState
)

// Voice is one of the three paraphonic slots. Slots are independent except
// for the one shared master filter and master gain applied by the render
// loop, per spec.md §3.
type Voice struct {
	Active bool
	Note   int

	Phase1, Phase2 uint32
	Inc1           uint32
	GlideCurrent2  uint32
	GlideTarget2   uint32

	Env          EnvState
	EnvLevel     int32 // Q1.15, 0..32767
	ReleaseStart int32
	SegCounter   int

	AttackSamples, DecaySamples, ReleaseSamples int
	SustainLevel                                int32

	Osc1Morph, Osc2Morph MorphState
}

// phaseIncrement converts a MIDI note to a u32 phase increment for a given
// sample rate.
func phaseIncrement(note, sampleRate int) uint32 {
	freq := float64(NoteToFreq(note))
	return uint32(freq * 4294967296.0 / float64(sampleRate))
}

func msToSamples(param, sampleRate int) int {
	ms := float64(param) / 127.0 * 2000.0
	samples := int(ms * float64(sampleRate) / 1000.0)
	if samples < 1 {
		samples = 1
	}
	return samples
}

// Trigger (re)starts the voice on note, per spec.md §4.5. Phase accumulators
// are deliberately left untouched to avoid clicks on reallocation.
func (v *Voice) Trigger(note, sampleRate int, subOsc bool, glide, attack, decay, sustain, release int) {
	osc2Note := note
	if subOsc {
		osc2Note = note - 12
	}
	v.Note = note
	v.Inc1 = phaseIncrement(note, sampleRate)
	v.GlideTarget2 = phaseIncrement(osc2Note, sampleRate)
	if glide == 0 {
		v.GlideCurrent2 = v.GlideTarget2
	}
	// else: target latched above, current preserved untouched.

	v.AttackSamples = msToSamples(attack, sampleRate)
	v.DecaySamples = msToSamples(decay, sampleRate)
	v.ReleaseSamples = msToSamples(release, sampleRate)
	v.SustainLevel = int32(sustain) * 32767 / 127

	v.Env = EnvAttackState
	v.SegCounter = 0
	v.EnvLevel = 0

	v.Osc1Morph.Seed(0xACE1 + uint16(note)<<8)
	v.Osc2Morph.Seed(0x5EED + uint16(note)<<8)
	v.Active = true
}

// Release moves the voice into its release segment. From Idle this is a
// no-op, per spec.md §4.5.
func (v *Voice) Release() {
	if v.Env == EnvIdleState {
		return
	}
	v.Env = EnvReleaseState
	v.SegCounter = 0
	v.ReleaseStart = v.EnvLevel
}

// Tick advances the voice by one sample and returns its Q1.15 output,
// following the six numbered steps of spec.md §4.5's per-sample tick.
// pitchTune is a second, 0..127/64-centered tune value applied to both
// oscillators via the same Q16.16 detune table — the engine's realization
// of LFO1's "pitch" destination (vibrato across the whole voice), distinct
// from tune, which only ever shapes osc 2 relative to osc 1.
func (v *Voice) Tick(glide, tune, pitchTune, mix, osc1Shape, osc2Shape int, subOsc bool) int16 {
	// 1. Glide: move osc2's current increment toward its target.
	if glide > 0 {
		diff := int64(v.GlideTarget2) - int64(v.GlideCurrent2)
		step := diff / int64(glide)
		if step == 0 {
			if diff > 0 {
				step = 1
			} else if diff < 0 {
				step = -1
			}
		}
		next := int64(v.GlideCurrent2) + step
		if (step > 0 && next > int64(v.GlideTarget2)) || (step < 0 && next < int64(v.GlideTarget2)) {
			next = int64(v.GlideTarget2)
		}
		v.GlideCurrent2 = uint32(next)
	} else {
		v.GlideCurrent2 = v.GlideTarget2
	}

	// 2. Detune multiplier on osc 2, bypassed in sub-osc mode.
	inc2 := v.GlideCurrent2
	if !subOsc {
		inc2 = detuneMultiply(inc2, tune)
	}
	inc1 := v.Inc1
	if pitchTune != 64 {
		inc1 = detuneMultiply(inc1, pitchTune)
		inc2 = detuneMultiply(inc2, pitchTune)
	}

	// 3. Sample both oscillators at the pre-advance phase and crossfade.
	s1 := sampleWaveform(osc1Shape, &v.Osc1Morph, v.Note, v.Phase1, v.Env)
	s2 := sampleWaveform(osc2Shape, &v.Osc2Morph, v.Note, v.Phase2, v.Env)
	mixed := ((127-mix)*int(s1) + mix*int(s2)) / 127

	// 4. Advance phases (unsigned wraparound is well-defined).
	v.Phase1 += inc1
	v.Phase2 += inc2

	// 5. Envelope step.
	level := v.envStep()

	// 6. Multiply sample by envelope level, Q1.15 with rounding.
	sampleQ15 := int32(u8ToQ15(uint8(mixed)))
	out := (sampleQ15*level + (1 << 14)) >> 15
	return int16(out)
}

func (v *Voice) envStep() int32 {
	switch v.Env {
	case EnvAttackState:
		v.SegCounter++
		if v.AttackSamples <= 0 {
			v.EnvLevel = 32767
		} else {
			v.EnvLevel = int32(32767 * v.SegCounter / v.AttackSamples)
		}
		if v.SegCounter >= v.AttackSamples {
			v.Env = EnvDecayState
			v.SegCounter = 0
			v.EnvLevel = 32767
		}
	case EnvDecayState:
		v.SegCounter++
		if v.DecaySamples <= 0 {
			v.EnvLevel = v.SustainLevel
		} else {
			v.EnvLevel = 32767 - int32(v.SegCounter)*(32767-v.SustainLevel)/int32(v.DecaySamples)
		}
		if v.SegCounter >= v.DecaySamples {
			v.Env = EnvSustainState
			v.SegCounter = 0
			v.EnvLevel = v.SustainLevel
		}
	case EnvSustainState:
		v.EnvLevel = v.SustainLevel
	case EnvReleaseState:
		v.SegCounter++
		if v.ReleaseSamples <= 0 || v.ReleaseStart <= 0 {
			v.EnvLevel = 0
		} else {
			v.EnvLevel = v.ReleaseStart - int32(v.SegCounter)*v.ReleaseStart/int32(v.ReleaseSamples)
		}
		if v.SegCounter >= v.ReleaseSamples || v.EnvLevel <= 0 {
			v.EnvLevel = 0
			v.Env = EnvIdleState
			v.Active = false
		}
	default:
		v.EnvLevel = 0
	}
	return v.EnvLevel
}

// Retune reassigns the voice to a new note without touching envelope
// state, used when the allocator reassigns an already-sounding slot to a
// different note (e.g. LastNote reordering) — the paraphonic contract
// forbids retriggering the shared envelope outside a 0->1 transition.
func (v *Voice) Retune(note, sampleRate int, subOsc bool, glide int) {
	osc2Note := note
	if subOsc {
		osc2Note = note - 12
	}
	v.Note = note
	v.Inc1 = phaseIncrement(note, sampleRate)
	v.GlideTarget2 = phaseIncrement(osc2Note, sampleRate)
	if glide == 0 {
		v.GlideCurrent2 = v.GlideTarget2
	}
}

// JoinFrom activates the voice on note by copying envelope progress from an
// already-active sibling, rather than restarting the envelope. This is how
// a chord addition brings in a new slot under the paraphonic contract: the
// new voice sounds in lockstep with whatever segment its siblings are in.
func (v *Voice) JoinFrom(src *Voice, note, sampleRate int, subOsc bool, glide int) {
	v.Retune(note, sampleRate, subOsc, glide)
	v.Env = src.Env
	v.EnvLevel = src.EnvLevel
	v.ReleaseStart = src.ReleaseStart
	v.SegCounter = src.SegCounter
	v.AttackSamples = src.AttackSamples
	v.DecaySamples = src.DecaySamples
	v.ReleaseSamples = src.ReleaseSamples
	v.SustainLevel = src.SustainLevel
	v.Osc1Morph.Seed(0xACE1 + uint16(note)<<8)
	v.Osc2Morph.Seed(0x5EED + uint16(note)<<8)
	v.Active = true
}

// ForceSustain drives the voice directly into Sustain at level, bypassing
// the envelope's Attack/Decay segments. Used by drone mode, per spec.md
// §4.7, where the sustain knob becomes a direct amplitude control.
func (v *Voice) ForceSustain(level int32) {
	v.Env = EnvSustainState
	v.SustainLevel = level
	v.EnvLevel = level
	v.Active = true
}
