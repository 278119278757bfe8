// drone.go - Drone/arpeggiator sequencer: repurposes the envelope knobs as
// sequencer controls and drives note-on/off into the allocator, per
// spec.md §4.7.

package synth

// arpPatterns is the verbatim 16x8 table of signed semitone offsets from
// spec.md §6.
var arpPatterns = [16][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0},
	{0, 1, 2, 3, 4, 5, 6, 7},
	{0, -1, -2, -3, -4, -5, -6, -7},
	{0, 2, 4, 6, 8, 10, 12, 14},
	{0, 4, 7, 12, 4, 7, 12, 16},
	{0, 3, 7, 11, 3, 7, 11, 12},
	{0, -2, -4, -6, -8, -10, -12, -14},
	{0, 5, 2, 6, 5, 8, 6, 10},
	{0, -5, -2, -6, -5, -8, -6, -10},
	{0, 6, 2, 7, 6, 9, 7, 11},
	{0, -6, -2, -7, -6, -9, -7, -11},
	{0, 4, 7, 11, 4, 7, 11, 12},
	{0, 1, -1, 2, -2, 3, -3, 0},
	{0, 4, 7, 12, 7, 4, 0, 12},
	{0, 3, 7, 11, 7, 3, 0, 11},
}

// DroneSequencer drives the allocator's note-on/note-off in drone mode,
// reading its base note, pattern and speed from the envelope knobs per
// spec.md §4.7, and its gate from the arpeggiator gate parameter.
type DroneSequencer struct {
	active      bool
	step        int
	gateOpen    bool
	stepCounter int
	stepSamples int
	gateSamples int
	currentNote int
	pattern     int
	length      int
	baseNote    int
}

// DroneParams are the four envelope-knob-derived controls for one buffer,
// computed by the engine from the current attack/decay/sustain/release
// parameter values per spec.md §4.7.
type DroneParams struct {
	BaseNote int // attack >> 1, 0..63
	Pattern  int // decay*15/127, 0..15
	Amplitude int32 // sustain*32767/127, Q1.15, bypasses the envelope
	Speed    int // 255 - release
}

// DeriveDroneParams converts raw 0..127 envelope-knob values into drone
// controls, per spec.md §4.7.
func DeriveDroneParams(attack, decay, sustain, release int) DroneParams {
	return DroneParams{
		BaseNote:  attack >> 1,
		Pattern:   decay * 15 / 127,
		Amplitude: int32(sustain) * 32767 / 127,
		Speed:     255 - release,
	}
}

// Activate starts the sequencer fresh at step 0.
func (d *DroneSequencer) Activate(p DroneParams, length, sampleRate int) {
	d.active = true
	d.step = 0
	d.stepCounter = 0
	d.gateOpen = true
	d.pattern = p.Pattern
	d.baseNote = p.BaseNote
	d.length = clampArpLength(length)
	d.recomputeTiming(p, sampleRate)
	d.currentNote = clampNote(d.baseNote + arpPatterns[d.pattern][0])
}

// Deactivate stops the sequencer. The caller (Engine) is responsible for
// releasing all active voices, per spec.md §4.7.
func (d *DroneSequencer) Deactivate() {
	d.active = false
}

// Active reports whether drone mode is currently engaged.
func (d *DroneSequencer) Active() bool {
	return d.active
}

func (d *DroneSequencer) recomputeTiming(p DroneParams, sampleRate int) {
	// spec.md's step_samples formula is expressed against a 48kHz reference
	// (48000 - speed*360); scale it to the configured sample rate.
	stepSamples := (48000 - p.Speed*360) * sampleRate / 48000
	if stepSamples < 1 {
		stepSamples = 1
	}
	d.stepSamples = stepSamples
}

func clampArpLength(length int) int {
	if length < 1 {
		return 1
	}
	if length > 8 {
		return 8
	}
	return length
}

func clampNote(n int) int {
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return n
}

// Tick advances the sequencer by one sample, emitting note-on/note-off
// calls into the allocator through onNoteOn/onNoteOff as steps complete,
// per spec.md §4.7's arpeggiator loop.
func (d *DroneSequencer) Tick(p DroneParams, gate int, sampleRate int, onNoteOn func(note int), onNoteOff func(note int)) {
	if !d.active {
		return
	}
	d.recomputeTiming(p, sampleRate)
	gateSamples := d.stepSamples * clampParam(gate) / 127
	d.stepCounter++

	if d.gateOpen && d.stepCounter >= gateSamples {
		d.gateOpen = false
		onNoteOff(d.currentNote)
	}
	if d.stepCounter >= d.stepSamples {
		d.step = (d.step + 1) % d.length
		d.baseNote = p.BaseNote
		d.pattern = p.Pattern
		d.currentNote = clampNote(d.baseNote + arpPatterns[d.pattern][d.step])
		d.stepCounter = 0
		d.gateOpen = true
		onNoteOn(d.currentNote)
	}
}
