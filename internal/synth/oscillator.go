// oscillator.go - Single-sample dispatch across the 16 waveshape families.

package synth

// sampleWaveform produces one raw 8-bit centered sample for shape ws at the
// given phase/note, advancing m in place when ws selects a time-varying
// morph family (4-12) or the noise family (14).
func sampleWaveform(ws int, m *MorphState, note int, phase uint32, env EnvState) uint8 {
	switch {
	case ws == 0:
		return sampleSine(phase)
	case ws >= 1 && ws <= 3:
		return sampleBasic(ws, note, phase)
	case ws >= 4 && ws <= 12:
		return morphSample(m, ws-3, note, phase, env)
	case ws == 13:
		return sampleSync(note, phase)
	case ws == 14:
		return sampleNoise(m)
	default: // 15: raw aliased square, 50% duty from the phase high bit
		if phase&0x80000000 != 0 {
			return 255
		}
		return 0
	}
}

func sampleBasic(ws int, note int, phase uint32) uint8 {
	switch ws {
	case 1:
		return sampleMip(&squareMip, note, phase)
	case 2:
		return sampleMip(&sawMip, note, phase)
	default:
		return sampleMip(&triMip, note, phase)
	}
}

// sampleNoise advances the oscillator's LFSR every 16 phase steps and
// returns its low byte as the sample, per spec.md §4.4.
func sampleNoise(m *MorphState) uint8 {
	m.PhaseShiftTimer++
	if m.PhaseShiftTimer >= 16 {
		m.PhaseShiftTimer = 0
		m.LFSR = lfsrAdvance(m.LFSR)
	}
	return uint8(m.LFSR & 0xFF)
}
