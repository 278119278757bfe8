// params.go - Bounded integer parameter store for the Rockit synthesis engine
//
// Every knob, switch, and CC destination the engine exposes lives here as a
// fixed-size table of {min, max, default, name} metadata plus one atomic
// cell per value. The control path (event handlers, the CLI, the
// arpeggiator) writes through Set; the render loop reads through Get. No
// allocation happens on either path after NewParamStore returns.

package synth

import "sync/atomic"

// ParamID indexes into the fixed parameter table.
type ParamID int

const (
	Osc1Shape ParamID = iota
	Osc2Shape
	OscMix
	Tune
	SubOsc
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
	FilterCutoff
	FilterResonance
	FilterEnvAmount
	FilterMode
	LFO1Rate
	LFO1Depth
	LFO1Dest
	LFO1Shape
	LFO2Rate
	LFO2Depth
	LFO2Dest
	LFO2Shape
	Glide
	MasterVolume
	DroneMode
	ArpPattern
	ArpSpeed
	ArpLength
	ArpGate

	numParams
)

// paramSpec describes the bounds and default of one parameter.
type paramSpec struct {
	name    string
	min     int32
	max     int32
	deflt   int32
}

var paramSpecs = [numParams]paramSpec{
	Osc1Shape:       {"osc1_shape", 0, 15, 2},
	Osc2Shape:       {"osc2_shape", 0, 15, 3},
	OscMix:          {"osc_mix", 0, 127, 64},
	Tune:            {"tune", 0, 127, 64},
	SubOsc:          {"sub_osc", 0, 1, 0},
	EnvAttack:       {"env_attack", 0, 127, 4},
	EnvDecay:        {"env_decay", 0, 127, 20},
	EnvSustain:      {"env_sustain", 0, 127, 100},
	EnvRelease:      {"env_release", 0, 127, 40},
	FilterCutoff:    {"filter_cutoff", 0, 127, 64},
	FilterResonance: {"filter_resonance", 0, 127, 0},
	FilterEnvAmount: {"filter_env_amount", 0, 127, 64},
	FilterMode:      {"filter_mode", 0, 3, 0},
	LFO1Rate:        {"lfo1_rate", 0, 127, 32},
	LFO1Depth:       {"lfo1_depth", 0, 127, 0},
	LFO1Dest:        {"lfo1_dest", 0, 5, 0},
	LFO1Shape:       {"lfo1_shape", 0, 15, 0},
	LFO2Rate:        {"lfo2_rate", 0, 127, 32},
	LFO2Depth:       {"lfo2_depth", 0, 127, 0},
	LFO2Dest:        {"lfo2_dest", 0, 5, 0},
	LFO2Shape:       {"lfo2_shape", 0, 15, 0},
	Glide:           {"glide", 0, 127, 0},
	MasterVolume:    {"master_volume", 0, 127, 100},
	DroneMode:       {"drone_mode", 0, 1, 0},
	ArpPattern:      {"arp_pattern", 0, 15, 0},
	ArpSpeed:        {"arp_speed", 0, 127, 64},
	ArpLength:       {"arp_length", 1, 8, 4},
	ArpGate:         {"arp_gate", 0, 127, 100},
}

// ParamStore holds one atomic int32 per parameter. All storage is statically
// sized at construction time; Set and Get never allocate.
type ParamStore struct {
	values [numParams]atomic.Int32
}

// NewParamStore builds a store initialised to each parameter's default.
func NewParamStore() *ParamStore {
	s := &ParamStore{}
	for id := ParamID(0); id < numParams; id++ {
		s.values[id].Store(paramSpecs[id].deflt)
	}
	return s
}

// Set clamps v into [min, max] and writes it. Unknown ids are ignored.
func (s *ParamStore) Set(id ParamID, v int) {
	if id < 0 || id >= numParams {
		return
	}
	spec := paramSpecs[id]
	clamped := int32(v)
	if clamped < spec.min {
		clamped = spec.min
	} else if clamped > spec.max {
		clamped = spec.max
	}
	s.values[id].Store(clamped)
}

// Get returns the most recently written value for id, or 0 for an unknown id.
func (s *ParamStore) Get(id ParamID) int {
	if id < 0 || id >= numParams {
		return 0
	}
	return int(s.values[id].Load())
}

// Bounds reports the [min, max] range for id.
func (s *ParamStore) Bounds(id ParamID) (min, max int) {
	if id < 0 || id >= numParams {
		return 0, 0
	}
	return int(paramSpecs[id].min), int(paramSpecs[id].max)
}

// Name returns the patch-file field name for id.
func (s *ParamStore) Name(id ParamID) string {
	if id < 0 || id >= numParams {
		return ""
	}
	return paramSpecs[id].name
}

// idByName resolves a patch-file field name back to a ParamID. Used by
// Engine.ApplyPatch; unknown names resolve ok=false so the caller can skip
// them per spec.md §6 (unknown names are skipped, not errors).
func idByName(name string) (ParamID, bool) {
	for id := ParamID(0); id < numParams; id++ {
		if paramSpecs[id].name == name {
			return id, true
		}
	}
	return 0, false
}

// Snapshot captures every parameter's current value, keyed by name, for
// save-slot storage and patch export.
func (s *ParamStore) Snapshot() map[string]int {
	out := make(map[string]int, numParams)
	for id := ParamID(0); id < numParams; id++ {
		out[paramSpecs[id].name] = s.Get(id)
	}
	return out
}

// Restore writes every value in the snapshot back into the store. Names not
// found in the parameter table are ignored.
func (s *ParamStore) Restore(snap map[string]int) {
	for name, v := range snap {
		if id, ok := idByName(name); ok {
			s.Set(id, v)
		}
	}
}
