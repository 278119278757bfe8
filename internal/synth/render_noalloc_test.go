package synth

import "testing"

// TestRenderAllocatesNoMemory verifies spec.md §9's "no dynamic allocation
// on the hot path" requirement by construction: once warmed up, repeated
// Render calls on a preallocated buffer must not allocate.
func TestRenderAllocatesNoMemory(t *testing.T) {
	e := NewEngine(48000)
	e.NoteOn(60, 100)
	buf := make([]int16, 2*256)

	// Warm up: package init LUTs are already built; this also settles any
	// first-call branch costs that wouldn't count as hot-path allocation.
	e.Render(buf, 256)

	allocs := testing.AllocsPerRun(100, func() {
		e.Render(buf, 256)
	})
	if allocs != 0 {
		t.Fatalf("Render allocated %v times per call, want 0", allocs)
	}
}

// TestRenderDroneModeAllocatesNoMemory exercises the path the plain
// TestRenderAllocatesNoMemory never reaches: drone/arp mode active, driving
// Alloc.NoteOn/NoteOff from inside Render every sample, through a
// non-mono, three-voice round-robin allocator so reallocateRoundRobin's
// stack scan runs too.
func TestRenderDroneModeAllocatesNoMemory(t *testing.T) {
	e := NewEngine(48000)
	e.Alloc.SetThreeVoiceEnabled(true)
	e.Alloc.SetMode(AllocRoundRobin)
	e.NoteOn(48, 100) // held alongside the arp-driven notes

	e.Params.Set(DroneMode, 1)
	e.Params.Set(EnvAttack, 40)  // base note
	e.Params.Set(EnvDecay, 20)   // pattern with several distinct offsets
	e.Params.Set(EnvSustain, 96) // drone amplitude
	e.Params.Set(EnvRelease, 0)  // speed 255: one arp step per sample
	e.Params.Set(ArpLength, 8)
	e.Params.Set(ArpGate, 64)

	buf := make([]int16, 2*256)
	e.Render(buf, 256)

	allocs := testing.AllocsPerRun(50, func() {
		e.Render(buf, 256)
	})
	if allocs != 0 {
		t.Fatalf("Render with drone mode active allocated %v times per call, want 0", allocs)
	}
}
