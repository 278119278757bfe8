package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceTriggerEntersAttack(t *testing.T) {
	v := &Voice{}
	v.Trigger(60, 48000, false, 0, 10, 20, 100, 30)
	assert.True(t, v.Active)
	assert.Equal(t, EnvAttackState, v.Env)
	assert.Equal(t, int32(0), v.EnvLevel)
}

func TestVoiceReleaseFromIdleIsNoop(t *testing.T) {
	v := &Voice{}
	v.Release()
	assert.Equal(t, EnvIdleState, v.Env)
}

func TestVoiceEnvelopeMonotonicThroughAttack(t *testing.T) {
	v := &Voice{}
	v.Trigger(60, 48000, false, 0, 64, 0, 127, 0)
	var prev int32 = -1
	for i := 0; i < v.AttackSamples; i++ {
		v.Tick(0, 64, 64, 0, 2, 2, false)
		require.GreaterOrEqual(t, v.EnvLevel, prev)
		prev = v.EnvLevel
	}
}

func TestVoiceBecomesInactiveAfterRelease(t *testing.T) {
	v := &Voice{}
	v.Trigger(60, 48000, false, 0, 0, 0, 100, 1)
	// Drive fully through attack+decay into sustain.
	for i := 0; i < v.AttackSamples+v.DecaySamples+10; i++ {
		v.Tick(0, 64, 64, 0, 2, 2, false)
	}
	v.Release()
	for i := 0; i < v.ReleaseSamples+10; i++ {
		v.Tick(0, 64, 64, 0, 2, 2, false)
	}
	assert.False(t, v.Active)
	assert.Equal(t, EnvIdleState, v.Env)
}

func TestVoiceGlideStepsTowardTarget(t *testing.T) {
	v := &Voice{}
	v.Trigger(60, 48000, false, 32, 0, 0, 127, 0)
	require.NotEqual(t, v.GlideTarget2, v.GlideCurrent2)

	lastDiff := int64(v.GlideTarget2) - int64(v.GlideCurrent2)
	for i := 0; i < 10000 && v.GlideCurrent2 != v.GlideTarget2; i++ {
		v.Tick(32, 64, 64, 0, 2, 2, false)
		diff := int64(v.GlideTarget2) - int64(v.GlideCurrent2)
		if diff < 0 {
			diff = -diff
		}
		if lastDiff < 0 {
			lastDiff = -lastDiff
		}
		require.LessOrEqual(t, diff, lastDiff)
		lastDiff = int64(v.GlideTarget2) - int64(v.GlideCurrent2)
	}
	assert.Equal(t, v.GlideTarget2, v.GlideCurrent2)
}

func TestVoiceGlideZeroSnapsImmediately(t *testing.T) {
	v := &Voice{}
	v.Trigger(60, 48000, true, 0, 0, 0, 127, 0)
	assert.Equal(t, v.GlideTarget2, v.GlideCurrent2)
}

func TestVoiceSubOscBypassesDetune(t *testing.T) {
	v := &Voice{}
	v.Trigger(60, 48000, true, 0, 0, 0, 127, 0)
	inc2Before := v.GlideCurrent2
	v.Tick(0, 20, 64, 0, 2, 2, true)
	// sub-osc note is fixed an octave down at Trigger; detune must not
	// additionally scale it, so osc 2's phase advanced by exactly that
	// increment (tune 20 would otherwise roughly halve it).
	assert.Equal(t, inc2Before, v.GlideCurrent2)
	assert.Equal(t, inc2Before, v.Phase2)
}

func TestJoinFromCopiesEnvelopeProgress(t *testing.T) {
	src := &Voice{}
	src.Trigger(60, 48000, false, 0, 64, 64, 100, 64)
	for i := 0; i < 500; i++ {
		src.Tick(0, 64, 64, 0, 2, 2, false)
	}

	dst := &Voice{}
	dst.JoinFrom(src, 64, 48000, false, 0)

	assert.Equal(t, src.Env, dst.Env)
	assert.Equal(t, src.EnvLevel, dst.EnvLevel)
	assert.Equal(t, 64, dst.Note)
	assert.True(t, dst.Active)
}

func TestRetuneLeavesEnvelopeUntouched(t *testing.T) {
	v := &Voice{}
	v.Trigger(60, 48000, false, 0, 64, 64, 100, 64)
	for i := 0; i < 10; i++ {
		v.Tick(0, 64, 64, 0, 2, 2, false)
	}
	levelBefore := v.EnvLevel
	envBefore := v.Env

	v.Retune(67, 48000, false, 0)
	assert.Equal(t, 67, v.Note)
	assert.Equal(t, levelBefore, v.EnvLevel)
	assert.Equal(t, envBefore, v.Env)
}
