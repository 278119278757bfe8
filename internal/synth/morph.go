// morph.go - Time-varying morph families M1-M9 (waveshapes 4-12) and the
// LFSR noise generator shared by waveshape 14 and M8's noise phase.

package synth

// MorphState is the per-oscillator-per-slot morph state described in
// spec.md §3. It is a small plain struct owned exclusively by its voice;
// nothing else reads or writes it concurrently.
type MorphState struct {
	Timer           uint8
	Index           uint8
	Index16         uint16
	State           uint8
	PhaseShifter    uint8
	PhaseShiftTimer uint8
	LFSR            uint16
}

// Seed reseeds the morph state on voice trigger. lfsrSeed is
// 0xACE1+(note<<8) for oscillator 1 and 0x5EED+(note<<8) for oscillator 2,
// per spec.md §4.5.
func (m *MorphState) Seed(lfsrSeed uint16) {
	*m = MorphState{LFSR: lfsrSeed}
}

// lfsrAdvance steps a 16-bit Fibonacci LFSR with taps 15, 13, 12, 10.
func lfsrAdvance(lfsr uint16) uint16 {
	bit := ((lfsr >> 15) ^ (lfsr >> 13) ^ (lfsr >> 12) ^ (lfsr >> 10)) & 1
	return (lfsr << 1) | bit
}

// centered clamps an arbitrary-signed combination back into [0, 255] after
// recentring on 128, used by the morph families whose output column reads
// "... centered".
func centered(v int) uint8 {
	v += 128
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return uint8(v)
}

// shiftedPhase offsets a u32 phase by a u8 step expressed in 1/256ths of a
// cycle, used wherever a morph family samples a table at "i - index".
func shiftedPhase(phase uint32, steps uint8) uint32 {
	return phase - uint32(steps)<<24
}

// morphSample dispatches waveshapes 4-12 (families M1-M9) and advances the
// morph state by exactly one sample tick, per the timer/update contracts in
// spec.md §4.4.
func morphSample(m *MorphState, family int, note int, phase uint32, env EnvState) uint8 {
	switch family {
	case 1:
		return morphM1(m, note, phase)
	case 2:
		return morphM2(m, note, phase)
	case 3:
		return morphM3(m, note, phase)
	case 4:
		return morphM4(m, note, phase)
	case 5:
		return morphM5(m, note, phase, false)
	case 6:
		return morphM5(m, note, phase, true)
	case 7:
		return morphM7(m, note, phase)
	case 8:
		return morphM8(m, note, phase)
	case 9:
		return morphM9(m, note, phase, env)
	default:
		return 128
	}
}

func tickTimer(timer *uint8, period uint8) bool {
	if *timer == 0 {
		*timer = period
		return true
	}
	*timer--
	return false
}

// morphM1: period 15, index++, output (square*index + saw180*(255-index))>>8.
func morphM1(m *MorphState, note int, phase uint32) uint8 {
	if tickTimer(&m.Timer, 15) {
		m.Index++
	}
	sq := int(sampleMip(&squareMip, note, phase))
	saw180 := int(sampleMip(&sawMip, note, phase+(1<<31)))
	idx := int(m.Index)
	return uint8((sq*idx + saw180*(255-idx)) >> 8)
}

// morphM2: period 10 for index, 50 for the phase shifter; output
// (tri*index + saw_phase_shifted*(255-index))>>8.
func morphM2(m *MorphState, note int, phase uint32) uint8 {
	if tickTimer(&m.Timer, 10) {
		m.Index++
	}
	if tickTimer(&m.PhaseShiftTimer, 50) {
		m.PhaseShifter++
	}
	tri := int(sampleMip(&triMip, note, phase))
	sawShifted := int(sampleMip(&sawMip, note, shiftedPhase(phase, m.PhaseShifter)))
	idx := int(m.Index)
	return uint8((tri*idx + sawShifted*(255-idx)) >> 8)
}

// morphM3: period 50, index++, output tri(i) - square(i-index), centered.
func morphM3(m *MorphState, note int, phase uint32) uint8 {
	if tickTimer(&m.Timer, 50) {
		m.Index++
	}
	tri := int(sampleMip(&triMip, note, phase))
	sq := int(sampleMip(&squareMip, note, shiftedPhase(phase, m.Index)))
	return centered(tri - sq)
}

// morphM4: period 250, index ping-pongs 0<->255 via the state bit, output
// saw(i) - saw(i-index), centered.
func morphM4(m *MorphState, note int, phase uint32) uint8 {
	if tickTimer(&m.Timer, 250) {
		if m.State == 0 {
			if m.Index == 255 {
				m.State = 1
				m.Index--
			} else {
				m.Index++
			}
		} else {
			if m.Index == 0 {
				m.State = 0
				m.Index++
			} else {
				m.Index--
			}
		}
	}
	saw := int(sampleMip(&sawMip, note, phase))
	sawShifted := int(sampleMip(&sawMip, note, shiftedPhase(phase, m.Index)))
	return centered(saw - sawShifted)
}

// morphM5 implements M5 (sine-then-square) and, with altFirst set, M6
// (saw-then-square): period governs index16, which wraps mod 383 and
// selects a triangular amplitude envelope over each half of the sequence.
func morphM5(m *MorphState, note int, phase uint32, altFirst bool) uint8 {
	period := uint8(10)
	if altFirst {
		period = 50
	}
	if tickTimer(&m.Timer, period) {
		m.Index16++
		if m.Index16 >= 383 {
			m.Index16 = 0
		}
	}
	const half = 191
	var base uint8
	var pos, span int
	if int(m.Index16) < half {
		pos, span = int(m.Index16), half
		if altFirst {
			base = sampleMip(&sawMip, note, phase)
		} else {
			base = sampleSine(phase)
		}
	} else {
		pos, span = int(m.Index16)-half, 383-half
		base = sampleMip(&squareMip, note, phase)
	}
	env := triangularEnvelope(pos, span)
	return envelopeScale(base, env)
}

// triangularEnvelope returns a 0..255 ramp-up-then-down shape across
// [0, span).
func triangularEnvelope(pos, span int) int {
	if span <= 0 {
		return 255
	}
	half := span / 2
	if half == 0 {
		return 255
	}
	if pos < half {
		return pos * 255 / half
	}
	return (span - pos) * 255 / half
}

// envelopeScale attenuates an 8-bit centered sample toward 128 by env/255.
func envelopeScale(s uint8, env int) uint8 {
	d := int(s) - 128
	return uint8(128 + d*env/255)
}

// morphM7: period 25, index++, variable pulse width via saw minus
// phase-shifted saw.
func morphM7(m *MorphState, note int, phase uint32) uint8 {
	if tickTimer(&m.Timer, 25) {
		m.Index++
	}
	saw := int(sampleMip(&sawMip, note, phase))
	sawShifted := int(sampleMip(&sawMip, note, shiftedPhase(phase, m.Index)))
	return centered(saw - sawShifted)
}

// morphM8: period 5, index++ driving a 4-phase state machine: triangle,
// noise, narrowing pulse, hold.
func morphM8(m *MorphState, note int, phase uint32) uint8 {
	if tickTimer(&m.Timer, 5) {
		m.Index++
	}
	m.State = m.Index >> 6 // 0..3 over the 0..255 sweep of Index
	switch m.State {
	case 0:
		return sampleMip(&triMip, note, phase)
	case 1:
		m.LFSR = lfsrAdvance(m.LFSR)
		return uint8(m.LFSR & 0xFF)
	case 2:
		width := 63 - (m.Index & 0x3F) // narrows from 63 toward 0 within this phase
		return centered(int(sampleMip(&squareMip, note, phase)) - int(sampleMip(&squareMip, note, shiftedPhase(phase, width))))
	default:
		return 128
	}
}

// morphM9 follows the voice envelope state rather than its own timer:
// triangle during Attack, a fixed pulse during Decay/Sustain, a narrowing
// pulse during Release.
func morphM9(m *MorphState, note int, phase uint32, env EnvState) uint8 {
	switch env {
	case EnvAttackState:
		return sampleMip(&triMip, note, phase)
	case EnvDecayState, EnvSustainState:
		return sampleMip(&squareMip, note, phase)
	case EnvReleaseState:
		if tickTimer(&m.Timer, 3) && m.Index < 63 {
			m.Index++
		}
		width := 63 - m.Index
		return centered(int(sampleMip(&squareMip, note, phase)) - int(sampleMip(&squareMip, note, shiftedPhase(phase, width))))
	default:
		return 128
	}
}
