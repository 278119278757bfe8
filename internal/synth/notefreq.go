// notefreq.go - MIDI note number to frequency lookup.

package synth

import "math"

// noteFreqTable holds the equal-temperament frequency, in Hz, of every MIDI
// note number 0..127, with A4 (note 69) at 440Hz. Computed once at package
// init so note-to-frequency lookups never call math.Pow.
var noteFreqTable [128]float32

func init() {
	for n := 0; n < 128; n++ {
		noteFreqTable[n] = float32(440.0 * math.Pow(2, (float64(n)-69.0)/12.0))
	}
}

// NoteToFreq returns the frequency in Hz for a MIDI note number, clamped to
// the valid 0..127 range.
func NoteToFreq(note int) float32 {
	if note < 0 {
		note = 0
	} else if note > 127 {
		note = 127
	}
	return noteFreqTable[note]
}
