// allocator.go - Paraphonic voice allocator: maps a bounded held-note stack
// to up to three voice slots under one of five policies, per spec.md §4.3.
//
// Grounded on the teacher's HandleRegisterWrite (direct-value mutation under
// a short critical section) and on the vtm voice allocator's NoteOn/NoteOff
// shape (other_examples), adapted to the exact stack and retrigger
// semantics spec.md §4.3 and §4.5 require.

package synth

import "sync"

// AllocMode selects the paraphonic allocation policy.
type AllocMode int

const (
	AllocMono AllocMode = iota
	AllocLowNote
	AllocHighNote
	AllocLastNote
	AllocRoundRobin
)

const maxStackDepth = 16

// NoteEntry is one held-note record in the allocator's stack.
type NoteEntry struct {
	Note     int
	Velocity int
}

// VoiceParams are the current envelope/glide/sub-osc parameter values the
// allocator needs when it triggers, retunes, or joins a voice. The
// allocator holds none of this itself — it is read fresh from the
// parameter store by the engine on every event.
type VoiceParams struct {
	SubOsc  bool
	Glide   int
	Attack  int
	Decay   int
	Sustain int
	Release int
}

// Allocator owns the held-note stack and the mapping from notes to the
// three Voice slots. Per spec.md §5, the stack, the voice slot array, and
// the round-robin cursor form one conceptual aggregate serialized by a
// single mutex — the render loop takes a short RLock per buffer via
// Engine, never mid-sample.
type Allocator struct {
	mu sync.Mutex

	mode              AllocMode
	threeVoiceEnabled bool

	// unisonFallback reproduces the original firmware's single-held-note
	// behavior (rockit_paraphonic.c): with exactly one note held, the
	// non-mono allocators also sound it on voice 1 (one octave down) rather
	// than leaving a slot silent. Off by default so the shipped behavior
	// matches spec.md §8 S4/S5 literally; see DESIGN.md.
	unisonFallback bool

	// stack is a fixed-capacity array rather than a slice: NoteOn/NoteOff
	// run on the audio thread when the drone/arp sequencer is active
	// (Engine.Render calls them directly), so growing or reslicing a heap
	// slice here is not an option. stackLen is the live length.
	stack    [maxStackDepth]NoteEntry
	stackLen int
	rrCursor int

	// scratch and scratchNotes back selectNotes/takeNotes so sorting a
	// snapshot of the stack never allocates; both are reused across calls
	// under mu, never retained past the call that filled them.
	scratch      [maxStackDepth]NoteEntry
	scratchNotes [3]int

	voices     [3]*Voice
	sampleRate int
}

// NewAllocator builds an allocator over the three voice slots owned by the
// caller (normally Engine).
func NewAllocator(voices [3]*Voice, sampleRate int) *Allocator {
	return &Allocator{voices: voices, sampleRate: sampleRate}
}

func (a *Allocator) maxVoices() int {
	if a.threeVoiceEnabled {
		return 3
	}
	return 2
}

// SetMode sets the allocation policy.
func (a *Allocator) SetMode(m AllocMode) {
	a.mu.Lock()
	a.mode = m
	a.mu.Unlock()
}

// Mode returns the current allocation policy.
func (a *Allocator) Mode() AllocMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// CycleMode advances Low->Last->RoundRobin->High->Low, per CC104 (spec.md
// §6). Mono is not part of the cycle: from Mono it moves to LowNote. CC102
// governs mono vs. paraphonic.
func (a *Allocator) CycleMode() {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.mode {
	case AllocLowNote:
		a.mode = AllocLastNote
	case AllocLastNote:
		a.mode = AllocRoundRobin
	case AllocRoundRobin:
		a.mode = AllocHighNote
	default:
		a.mode = AllocLowNote
	}
}

// SetThreeVoiceEnabled toggles the third paraphonic voice (CC103/CC105).
func (a *Allocator) SetThreeVoiceEnabled(on bool) {
	a.mu.Lock()
	a.threeVoiceEnabled = on
	a.mu.Unlock()
}

// ThreeVoiceEnabled reports whether the third paraphonic voice is enabled.
func (a *Allocator) ThreeVoiceEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.threeVoiceEnabled
}

// SetUnisonFallback enables the original firmware's single-note unison
// behavior; see the unisonFallback field comment.
func (a *Allocator) SetUnisonFallback(on bool) {
	a.mu.Lock()
	a.unisonFallback = on
	a.mu.Unlock()
}

// StackSize reports the number of currently held notes.
func (a *Allocator) StackSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stackLen
}

// NoteOn pushes note if not already held and reallocates. Idempotent on an
// already-held note, per spec.md §4.3/§8 property 2. The drone/arp
// sequencer calls this directly from Render, so it must never allocate.
func (a *Allocator) NoteOn(note, velocity int, vp VoiceParams) {
	note = clampNote(note)
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < a.stackLen; i++ {
		if a.stack[i].Note == note {
			return
		}
	}
	if a.stackLen >= maxStackDepth {
		return
	}
	wasEmpty := a.stackLen == 0
	a.stack[a.stackLen] = NoteEntry{Note: note, Velocity: velocity}
	a.stackLen++
	a.reallocate(vp, wasEmpty, true)
}

// NoteOff removes the matching entry, if any, and reallocates.
func (a *Allocator) NoteOff(note int, vp VoiceParams) {
	note = clampNote(note)
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i := 0; i < a.stackLen; i++ {
		if a.stack[i].Note == note {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for i := idx; i < a.stackLen-1; i++ {
		a.stack[i] = a.stack[i+1]
	}
	a.stackLen--
	a.reallocate(vp, false, false)
}

// AllNotesOff clears the stack and releases every active voice.
func (a *Allocator) AllNotesOff() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stackLen = 0
	for _, v := range a.voices {
		if v.Active {
			v.Release()
		}
	}
}

func (a *Allocator) reallocate(vp VoiceParams, isFirstNoteTransition, fromNoteOn bool) {
	switch a.mode {
	case AllocMono:
		a.reallocateMono(vp, fromNoteOn)
	case AllocRoundRobin:
		a.reallocateRoundRobin(vp, isFirstNoteTransition)
	default:
		a.reallocateSorted(vp, isFirstNoteTransition)
	}

	if a.unisonFallback && a.mode != AllocMono && a.stackLen == 1 && a.maxVoices() >= 2 {
		sub := a.stack[0].Note - 12
		if sub < 0 {
			sub = 0
		}
		a.applyParaphonicAssignment(1, sub, vp, isFirstNoteTransition)
	}

	for i := a.maxVoices(); i < 3; i++ {
		if a.voices[i].Active {
			a.voices[i].Release()
		}
	}
}

func (a *Allocator) reallocateMono(vp VoiceParams, fromNoteOn bool) {
	v := a.voices[0]
	if a.stackLen == 0 {
		if v.Active {
			v.Release()
		}
		return
	}
	target := a.stack[a.stackLen-1].Note
	// "every note-on retriggers" (§4.3): a freshly-pushed note always gets a
	// full Trigger. A note-off that reveals a previously-held note instead
	// retunes the still-sounding voice without restarting its envelope.
	if fromNoteOn || !v.Active || v.Note != target {
		if v.Active && !fromNoteOn {
			v.Retune(target, a.sampleRate, vp.SubOsc, vp.Glide)
		} else {
			v.Trigger(target, a.sampleRate, vp.SubOsc, vp.Glide, vp.Attack, vp.Decay, vp.Sustain, vp.Release)
		}
	}
	for i := 1; i < 3; i++ {
		if a.voices[i].Active {
			a.voices[i].Release()
		}
	}
}

func (a *Allocator) reallocateSorted(vp VoiceParams, isFirst bool) {
	notes := a.selectNotes(a.maxVoices())
	for i := 0; i < a.maxVoices(); i++ {
		desired := -1
		if i < len(notes) {
			desired = notes[i]
		}
		a.applyParaphonicAssignment(i, desired, vp, isFirst)
	}
}

// selectNotes returns up to n notes from the stack ordered per the active
// policy: ascending for LowNote, descending for HighNote, newest-first for
// LastNote. The returned slice aliases a.scratchNotes and is only valid
// until the next call.
func (a *Allocator) selectNotes(n int) []int {
	switch a.mode {
	case AllocLowNote:
		copy(a.scratch[:a.stackLen], a.stack[:a.stackLen])
		sorted := a.scratch[:a.stackLen]
		insertionSortAsc(sorted)
		return a.takeNotes(sorted, n)
	case AllocHighNote:
		copy(a.scratch[:a.stackLen], a.stack[:a.stackLen])
		sorted := a.scratch[:a.stackLen]
		insertionSortDesc(sorted)
		return a.takeNotes(sorted, n)
	default: // AllocLastNote
		for i := 0; i < a.stackLen; i++ {
			a.scratch[a.stackLen-1-i] = a.stack[i]
		}
		return a.takeNotes(a.scratch[:a.stackLen], n)
	}
}

// takeNotes copies the Note field of the first n entries into
// a.scratchNotes, which is sized to the maximum of three voice slots.
func (a *Allocator) takeNotes(entries []NoteEntry, n int) []int {
	if n > len(entries) {
		n = len(entries)
	}
	if n > len(a.scratchNotes) {
		n = len(a.scratchNotes)
	}
	for i := 0; i < n; i++ {
		a.scratchNotes[i] = entries[i].Note
	}
	return a.scratchNotes[:n]
}

func insertionSortAsc(e []NoteEntry) {
	for i := 1; i < len(e); i++ {
		for j := i; j > 0 && e[j-1].Note > e[j].Note; j-- {
			e[j-1], e[j] = e[j], e[j-1]
		}
	}
}

func insertionSortDesc(e []NoteEntry) {
	for i := 1; i < len(e); i++ {
		for j := i; j > 0 && e[j-1].Note < e[j].Note; j-- {
			e[j-1], e[j] = e[j], e[j-1]
		}
	}
}

// applyParaphonicAssignment brings slot i to desiredNote (-1 for silent),
// using Trigger only across a 0->1 stack transition, Join when a slot
// freshly activates as part of an existing chord, Retune when an
// already-active slot's note changes, and Release when it falls silent.
func (a *Allocator) applyParaphonicAssignment(i, desiredNote int, vp VoiceParams, isFirst bool) {
	v := a.voices[i]
	if desiredNote < 0 {
		if v.Active {
			v.Release()
		}
		return
	}
	switch {
	case !v.Active:
		if isFirst {
			v.Trigger(desiredNote, a.sampleRate, vp.SubOsc, vp.Glide, vp.Attack, vp.Decay, vp.Sustain, vp.Release)
			return
		}
		if sib := a.activeSibling(i); sib != nil {
			v.JoinFrom(sib, desiredNote, a.sampleRate, vp.SubOsc, vp.Glide)
			return
		}
		v.Trigger(desiredNote, a.sampleRate, vp.SubOsc, vp.Glide, vp.Attack, vp.Decay, vp.Sustain, vp.Release)
	case v.Note != desiredNote:
		v.Retune(desiredNote, a.sampleRate, vp.SubOsc, vp.Glide)
	}
}

func (a *Allocator) activeSibling(exclude int) *Voice {
	for i, v := range a.voices {
		if i != exclude && v.Active {
			return v
		}
	}
	return nil
}

// reallocateRoundRobin preserves notes already assigned to a slot, and for
// any held note not yet assigned to a slot, steals the slot at the cursor
// and advances it, per spec.md §4.3 and the original firmware's two-phase
// assign-then-reconcile algorithm. inStack/assignedSlot are note-indexed
// (notes are clamped to 0..127 by NoteOn/NoteOff) fixed-size local arrays
// rather than maps, so this allocates nothing even from the audio thread.
func (a *Allocator) reallocateRoundRobin(vp VoiceParams, isFirst bool) {
	maxV := a.maxVoices()

	var inStack [128]bool
	for i := 0; i < a.stackLen; i++ {
		inStack[a.stack[i].Note] = true
	}

	var assignedSlot [128]bool
	for i := 0; i < maxV; i++ {
		if a.voices[i].Active {
			assignedSlot[a.voices[i].Note] = true
		}
	}

	for i := 0; i < a.stackLen; i++ {
		note := a.stack[i].Note
		if assignedSlot[note] {
			continue
		}
		slot := a.rrCursor % maxV
		a.rrCursor = (a.rrCursor + 1) % maxV
		a.applyParaphonicAssignment(slot, note, vp, isFirst)
		assignedSlot[note] = true
	}

	for i := 0; i < maxV; i++ {
		v := a.voices[i]
		if v.Active && !inStack[v.Note] {
			v.Release()
		}
	}
}
