// errors.go - Sentinel errors the core surfaces at its boundaries, per
// spec.md §7. The render path never returns or logs an error; these are
// for the control-path and patch-persistence boundary only.

package synth

import "errors"

// ErrNoParametersLoaded is returned by ApplyPatch when none of the supplied
// names matched a known parameter. Current state is left unchanged.
var ErrNoParametersLoaded = errors.New("synth: no parameters loaded")

// ErrInvalidSlot is returned by SavePatch/RecallPatch for a slot outside
// 0..15.
var ErrInvalidSlot = errors.New("synth: patch slot out of range")
