//go:build !headless && linux

// alsa.go - Linux-native low-latency sink via cgo + ALSA, adapted from the
// teacher's audio_backend_alsa.go (float32 samples, one channel) to this
// engine's stereo interleaved Q1.15 PCM. The EPIPE -> snd_pcm_prepare ->
// retry discipline is carried over verbatim — it is the concrete grounding
// for spec.md §7's "drop/prepare and continue" sink-recovery contract.
package sink

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static int rockit_alsa_open(snd_pcm_t **handle, unsigned int rate, unsigned int periodFrames) {
	int err;
	snd_pcm_hw_params_t *params;

	err = snd_pcm_open(handle, "default", SND_PCM_STREAM_PLAYBACK, 0);
	if (err < 0) return err;

	snd_pcm_hw_params_alloca(&params);
	snd_pcm_hw_params_any(*handle, params);
	snd_pcm_hw_params_set_access(*handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
	snd_pcm_hw_params_set_format(*handle, params, SND_PCM_FORMAT_S16_LE);
	snd_pcm_hw_params_set_channels(*handle, params, 2);
	snd_pcm_hw_params_set_rate_near(*handle, params, &rate, 0);
	snd_pcm_hw_params_set_period_size_near(*handle, params, (snd_pcm_uframes_t*)&periodFrames, 0);
	err = snd_pcm_hw_params(*handle, params);
	if (err < 0) return err;

	return snd_pcm_prepare(*handle);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// AlsaSink writes stereo 16-bit PCM directly to an ALSA playback device.
type AlsaSink struct {
	handle *C.snd_pcm_t
}

// NewAlsaSink opens the default ALSA playback device at sampleRate with the
// given period size in frames.
func NewAlsaSink(sampleRate, periodFrames int) (*AlsaSink, error) {
	var handle *C.snd_pcm_t
	if rc := C.rockit_alsa_open(&handle, C.uint(sampleRate), C.uint(periodFrames)); rc < 0 {
		return nil, fmt.Errorf("alsa: open failed: %s", C.GoString(C.snd_strerror(rc)))
	}
	return &AlsaSink{handle: handle}, nil
}

func (s *AlsaSink) Start() error { return nil }

// Write blocks in snd_pcm_writei until ALSA accepts pcm. On EPIPE (buffer
// underrun) it re-prepares the device and retries once, per spec.md §7 —
// the core never owns this recovery, the sink does.
func (s *AlsaSink) Write(pcm []int16) error {
	frames := C.snd_pcm_uframes_t(len(pcm) / 2)
	ptr := unsafe.Pointer(&pcm[0])

	rc := C.snd_pcm_writei(s.handle, ptr, frames)
	if rc == -C.EPIPE {
		C.snd_pcm_prepare(s.handle)
		rc = C.snd_pcm_writei(s.handle, ptr, frames)
	}
	if rc < 0 {
		return fmt.Errorf("alsa: write failed: %s", C.GoString(C.snd_strerror(C.int(rc))))
	}
	if C.snd_pcm_uframes_t(rc) < frames {
		return fmt.Errorf("alsa: short write: %d of %d frames", int(rc), int(frames))
	}
	return nil
}

func (s *AlsaSink) Stop() error {
	C.snd_pcm_drop(s.handle)
	return nil
}

func (s *AlsaSink) Close() error {
	C.snd_pcm_close(s.handle)
	return nil
}
