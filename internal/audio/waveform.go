// Package audio loads melodies from WAV/MP3 files and captures them from the
// default microphone. Everything it produces is a mono float32 Waveform.
package audio

import "time"

// Waveform is mono PCM audio normalized to [-1.0, 1.0].
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the playing time of the waveform.
func (w *Waveform) Duration() time.Duration {
	if w == nil || w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Downmix averages interleaved multi-channel samples into a mono signal.
// A trailing partial frame is dropped.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
