package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator() (*Allocator, [3]*Voice) {
	voices := [3]*Voice{{}, {}, {}}
	return NewAllocator(voices, 48000), voices
}

func defaultVP() VoiceParams {
	return VoiceParams{SubOsc: false, Glide: 0, Attack: 0, Decay: 0, Sustain: 127, Release: 0}
}

func TestAllocatorMonoAlwaysRetriggers(t *testing.T) {
	a, voices := newTestAllocator()
	a.SetMode(AllocMono)
	a.SetThreeVoiceEnabled(true)

	a.NoteOn(60, 100, defaultVP())
	require.True(t, voices[0].Active)
	require.Equal(t, EnvAttackState, voices[0].Env)

	// Drive past attack into sustain, then a second note-on must retrigger
	// fresh attack.
	for i := 0; i < voices[0].AttackSamples+10; i++ {
		voices[0].Tick(0, 64, 64, 0, 2, 2, false)
	}
	a.NoteOn(64, 100, defaultVP())
	assert.Equal(t, EnvAttackState, voices[0].Env)
	assert.Equal(t, 64, voices[0].Note)
}

func TestAllocatorNoteOnIdempotentOnHeldNote(t *testing.T) {
	a, _ := newTestAllocator()
	a.NoteOn(60, 100, defaultVP())
	a.NoteOn(60, 100, defaultVP())
	assert.Equal(t, 1, a.StackSize())
}

func TestAllocatorStackOverflowIgnored(t *testing.T) {
	a, _ := newTestAllocator()
	for n := 0; n < maxStackDepth+5; n++ {
		a.NoteOn(n, 100, defaultVP())
	}
	assert.Equal(t, maxStackDepth, a.StackSize())
}

func TestAllocatorLowNoteAssignsLowestNotes(t *testing.T) {
	a, voices := newTestAllocator()
	a.SetMode(AllocLowNote)
	// threeVoiceEnabled defaults to false: two slots for three notes.

	a.NoteOn(60, 100, defaultVP())
	a.NoteOn(50, 100, defaultVP())
	a.NoteOn(70, 100, defaultVP())

	notes := map[int]bool{}
	for _, v := range voices {
		if v.Active {
			notes[v.Note] = true
		}
	}
	assert.True(t, notes[50])
	assert.True(t, notes[60])
	assert.False(t, notes[70])
}

func TestAllocatorHighNoteAssignsHighestNotes(t *testing.T) {
	a, voices := newTestAllocator()
	a.SetMode(AllocHighNote)
	// threeVoiceEnabled defaults to false: two slots for three notes.

	a.NoteOn(60, 100, defaultVP())
	a.NoteOn(50, 100, defaultVP())
	a.NoteOn(70, 100, defaultVP())

	notes := map[int]bool{}
	for _, v := range voices {
		if v.Active {
			notes[v.Note] = true
		}
	}
	assert.True(t, notes[70])
	assert.True(t, notes[60])
	assert.False(t, notes[50])
}

func TestAllocatorTwoVoiceDefaultLeavesThirdSlotSilent(t *testing.T) {
	a, voices := newTestAllocator()
	a.SetMode(AllocRoundRobin)
	// threeVoiceEnabled defaults to false.

	a.NoteOn(60, 100, defaultVP())
	a.NoteOn(64, 100, defaultVP())
	a.NoteOn(67, 100, defaultVP())

	assert.False(t, voices[2].Active)
}

func TestAllocatorReleaseClearsVoiceOnEmptyStack(t *testing.T) {
	a, voices := newTestAllocator()
	a.SetMode(AllocLastNote)
	a.NoteOn(60, 100, defaultVP())
	require.True(t, voices[0].Active)

	a.NoteOff(60, defaultVP())
	assert.Equal(t, EnvReleaseState, voices[0].Env)
}

func TestAllocatorAllNotesOffClearsStackAndReleasesVoices(t *testing.T) {
	a, voices := newTestAllocator()
	a.SetThreeVoiceEnabled(true)
	a.NoteOn(60, 100, defaultVP())
	a.NoteOn(64, 100, defaultVP())

	a.AllNotesOff()
	assert.Equal(t, 0, a.StackSize())
	for _, v := range voices {
		assert.True(t, v.Env == EnvReleaseState || v.Env == EnvIdleState)
	}
}

func TestAllocatorCycleModeOrder(t *testing.T) {
	a, _ := newTestAllocator()
	a.SetMode(AllocLowNote)
	order := []AllocMode{AllocLastNote, AllocRoundRobin, AllocHighNote, AllocLowNote}
	for _, want := range order {
		a.CycleMode()
		assert.Equal(t, want, a.Mode())
	}
}

func TestAllocatorRoundRobinStealsSlotsInOrder(t *testing.T) {
	a, voices := newTestAllocator()
	a.SetMode(AllocRoundRobin)
	a.SetThreeVoiceEnabled(true)

	a.NoteOn(60, 100, defaultVP())
	a.NoteOn(64, 100, defaultVP())
	a.NoteOn(67, 100, defaultVP())

	active := 0
	for _, v := range voices {
		if v.Active {
			active++
		}
	}
	assert.Equal(t, 3, active)
	assert.Equal(t, 60, voices[0].Note)
	assert.Equal(t, 64, voices[1].Note)
	assert.Equal(t, 67, voices[2].Note)

	// A fourth note steals the slot under the cursor, which has wrapped to 0.
	a.NoteOn(72, 100, defaultVP())
	assert.Equal(t, 72, voices[0].Note)
}
