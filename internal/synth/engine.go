// engine.go - The Engine aggregate: parameter store, allocator, voices,
// filter, LFOs and drone sequencer threaded through one explicit handle
// rather than the process-wide globals of the original firmware, per
// spec.md §9's "globals -> explicit state handle" redesign note.

package synth

import "math"

// Engine is the synthesis core. One Engine drives one render stream; the
// control path (event handlers, CC, CLI, arpeggiator) and the audio path
// (Render) both operate on the same Engine, synchronized per spec.md §5.
type Engine struct {
	Params *ParamStore
	Alloc  *Allocator
	Filter *Filter
	LFO1   *LFO
	LFO2   *LFO

	voices     [3]*Voice
	drone      DroneSequencer
	patches    patchStore
	sampleRate int

	// droneNoteOn/droneNoteOff are built once in NewEngine and handed to
	// drone.Tick on every Render call. Each reads the current VoiceParams
	// itself rather than closing over a snapshot, so Render never builds a
	// closure in its per-sample loop.
	droneNoteOn  func(int)
	droneNoteOff func(int)
}

// NewEngine builds an Engine for the given sample rate with every
// parameter at its default and all voices idle.
func NewEngine(sampleRate int) *Engine {
	voices := [3]*Voice{{}, {}, {}}
	e := &Engine{
		Params:     NewParamStore(),
		Filter:     NewFilter(sampleRate),
		LFO1:       NewLFO(0xACE1),
		LFO2:       NewLFO(0x5EED),
		voices:     voices,
		sampleRate: sampleRate,
	}
	e.Alloc = NewAllocator(voices, sampleRate)
	e.droneNoteOn = func(n int) { e.Alloc.NoteOn(n, 100, e.voiceParams()) }
	e.droneNoteOff = func(n int) { e.Alloc.NoteOff(n, e.voiceParams()) }
	return e
}

func (e *Engine) voiceParams() VoiceParams {
	return VoiceParams{
		SubOsc:  e.Params.Get(SubOsc) != 0,
		Glide:   e.Params.Get(Glide),
		Attack:  e.Params.Get(EnvAttack),
		Decay:   e.Params.Get(EnvDecay),
		Sustain: e.Params.Get(EnvSustain),
		Release: e.Params.Get(EnvRelease),
	}
}

// NoteOn pushes note into the allocator's held-note stack, treating
// velocity 0 as a note-off per spec.md §6.
func (e *Engine) NoteOn(note, velocity int) {
	if velocity == 0 {
		e.NoteOff(note)
		return
	}
	e.Alloc.NoteOn(note, velocity, e.voiceParams())
}

// NoteOff removes note from the allocator's held-note stack.
func (e *Engine) NoteOff(note int) {
	e.Alloc.NoteOff(note, e.voiceParams())
}

// HandleMIDI parses one three-byte MIDI-like event and dispatches it, per
// spec.md §6. Unknown statuses are ignored silently, per spec.md §7.
func (e *Engine) HandleMIDI(status, data1, data2 byte) {
	switch {
	case status >= 0x80 && status <= 0x8F:
		e.NoteOff(int(data1))
	case status >= 0x90 && status <= 0x9F:
		e.NoteOn(int(data1), int(data2))
	case status >= 0xB0 && status <= 0xBF:
		e.HandleCC(int(data1), int(data2))
	}
}

// HandleCC applies one control-change number/value pair per the map in
// spec.md §6. Unrecognized CC numbers are ignored silently.
func (e *Engine) HandleCC(cc, value int) {
	p := e.Params
	switch cc {
	case 1:
		p.Set(LFO1Depth, value)
	case 7:
		p.Set(MasterVolume, value)
	case 70:
		p.Set(EnvRelease, value)
	case 71:
		p.Set(FilterResonance, value)
	case 72:
		p.Set(OscMix, value)
	case 73:
		p.Set(EnvAttack, value)
	case 74:
		p.Set(FilterCutoff, value)
	case 75:
		p.Set(EnvDecay, value)
	case 76:
		p.Set(SubOsc, boolToInt(value >= 64))
	case 80:
		p.Set(Osc1Shape, value>>3)
	case 81:
		p.Set(Osc2Shape, value>>3)
	case 82:
		p.Set(Tune, value)
	case 84:
		p.Set(FilterMode, value&3)
	case 85:
		p.Set(FilterEnvAmount, value)
	case 86:
		p.Set(EnvSustain, value)
	case 87:
		p.Set(LFO1Rate, value)
	case 88:
		p.Set(LFO1Shape, value>>3)
	case 89:
		p.Set(LFO1Dest, value>>4)
	case 90:
		p.Set(Glide, value)
	case 91:
		p.Set(DroneMode, boolToInt(value >= 64))
	case 92:
		_ = e.SavePatch(value >> 3)
	case 93:
		_ = e.RecallPatch(value >> 3)
	case 95:
		p.Set(LFO2Rate, value)
	case 96:
		p.Set(LFO2Depth, value)
	case 97:
		p.Set(LFO2Shape, value)
	case 98:
		p.Set(LFO2Dest, value)
	case 102:
		e.setMonoParaphonic(value >= 64)
	case 103:
		e.Alloc.SetThreeVoiceEnabled(value >= 64)
	case 104:
		e.Alloc.CycleMode()
	case 105:
		e.Alloc.SetThreeVoiceEnabled(!e.Alloc.ThreeVoiceEnabled())
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// setMonoParaphonic implements CC102. Switching into paraphonic from mono
// always selects RoundRobin; a paraphonic mode chosen earlier with CC104 is
// not remembered across a switch to mono. Switching to paraphonic while
// already paraphonic leaves the mode unchanged.
func (e *Engine) setMonoParaphonic(paraphonic bool) {
	if !paraphonic {
		e.Alloc.SetMode(AllocMono)
		return
	}
	if e.Alloc.Mode() == AllocMono {
		e.Alloc.SetMode(AllocRoundRobin)
	}
}

// SavePatch snapshots every current parameter value into slot (CC92).
func (e *Engine) SavePatch(slot int) error {
	return e.patches.Save(slot, e.Params.Snapshot())
}

// RecallPatch restores slot's snapshot into the parameter store (CC93).
func (e *Engine) RecallPatch(slot int) error {
	snap, err := e.patches.Recall(slot)
	if err != nil {
		return err
	}
	if snap == nil {
		return ErrNoParametersLoaded
	}
	e.Params.Restore(snap)
	return nil
}

// ApplyPatch restores a text-patch-file snapshot loaded by the persistence
// boundary collaborator.
func (e *Engine) ApplyPatch(values map[string]int) error {
	return e.Params.ApplyPatch(values)
}

// Snapshot exposes the current parameter values for the persistence
// boundary collaborator to serialize.
func (e *Engine) Snapshot() map[string]int {
	return e.Params.Snapshot()
}

func cutoffParamToHz(param, sampleRate int) float32 {
	const minHz = 10.0
	maxHz := 0.45 * float64(sampleRate)
	t := float64(clampParam(param)) / 127.0
	hz := minHz * math.Pow(maxHz/minHz, t)
	return float32(hz)
}

func resonanceParamToQ(param int) float32 {
	t := float64(clampParam(param)) / 127.0
	return float32(0.3 + t*(20.0-0.3))
}

func clampI16(v int32) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}

// Render fills buf (stereo interleaved, len(buf) == 2*frames) with the next
// frames samples, following spec.md §4.8's per-buffer then per-sample
// steps. Render never blocks, allocates, or logs.
func (e *Engine) Render(buf []int16, frames int) {
	vp := e.voiceParams()

	// 1-2. Snapshot parameters and recompute per-buffer filter coefficients.
	cutoffHz := cutoffParamToHz(e.Params.Get(FilterCutoff), e.sampleRate)
	q := resonanceParamToQ(e.Params.Get(FilterResonance))
	e.Filter.SetCoefficients(cutoffHz, q)
	filterMode := FilterMode(e.Params.Get(FilterMode))

	e.LFO1.SetRate(e.Params.Get(LFO1Rate), e.sampleRate)
	e.LFO1.Shape = e.Params.Get(LFO1Shape)
	e.LFO1.Depth = e.Params.Get(LFO1Depth)
	e.LFO1.Destination = e.Params.Get(LFO1Dest)

	e.LFO2.SetRate(e.Params.Get(LFO2Rate), e.sampleRate)
	e.LFO2.Shape = e.Params.Get(LFO2Shape)
	e.LFO2.Depth = e.Params.Get(LFO2Depth)
	e.LFO2.Destination = e.Params.Get(LFO2Dest)

	droneMode := e.Params.Get(DroneMode) != 0
	droneParams := DeriveDroneParams(vp.Attack, vp.Decay, vp.Sustain, vp.Release)
	arpLength := e.Params.Get(ArpLength)
	arpGate := e.Params.Get(ArpGate)

	// 3. Enter/exit the drone/arpeggio block on mode transitions.
	if droneMode && !e.drone.Active() {
		e.drone.Activate(droneParams, arpLength, e.sampleRate)
	} else if !droneMode && e.drone.Active() {
		e.drone.Deactivate()
		e.Alloc.AllNotesOff()
	}

	masterVol := e.Params.Get(MasterVolume)
	mixParam := e.Params.Get(OscMix)
	tuneParam := e.Params.Get(Tune)
	osc1Shape := e.Params.Get(Osc1Shape)
	osc2Shape := e.Params.Get(Osc2Shape)

	for i := 0; i < frames; i++ {
		// a-c. LFO wave values, modulation amounts, phase advance.
		w1 := e.LFO1.Tick()
		m1 := e.LFO1.Modulation(w1)
		w2 := e.LFO2.Tick()
		m2 := e.LFO2.Modulation(w2)

		vol := masterVol
		mix := mixParam
		tune := tuneParam
		pitchTune := 64

		switch e.LFO1.Destination {
		case LFO1DestAmplitude:
			vol = clampParam(vol + m1)
		case LFO1DestPitch:
			pitchTune = clampParam(64 + m1)
		case LFO1DestDetune:
			tune = clampParam(tune + m1)
		}
		if e.LFO2.Destination == LFO2DestOscMix {
			mix = clampParam(mix + m2)
		}

		// d. Drone/arpeggiator substate.
		if droneMode {
			e.drone.Tick(droneParams, arpGate, e.sampleRate, e.droneNoteOn, e.droneNoteOff)
			for _, v := range e.voices {
				if v.Active {
					v.ForceSustain(droneParams.Amplitude)
				}
			}
		}

		// e-f. Sum active voices, normalize.
		var sum int32
		active := 0
		for _, v := range e.voices {
			if v.Active {
				sum += int32(v.Tick(vp.Glide, tune, pitchTune, mix, osc1Shape, osc2Shape, vp.SubOsc))
				active++
			}
		}
		if active > 1 {
			sum /= int32(active)
		}

		// g. Filter.
		filtered := e.Filter.Process(float32(sum)/32768.0, filterMode)

		// h. Master volume (square-law curve). The intermediate product is
		// computed in int64: volQ reaches 2^15, and filtered*32768 is not
		// bounded by 2^15 because the resonant filter can overshoot a
		// full-scale input, so their product can exceed int32 before the
		// shift narrows it back down.
		volQ := volumeCurve(vol)
		out32 := (int64(filtered*32768.0) * int64(volQ)) >> 15
		out := clampI16(int32(out32))

		// i. Interleaved stereo write.
		buf[2*i] = int16(out)
		buf[2*i+1] = int16(out)
	}
}
