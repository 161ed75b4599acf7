// Package pitch turns a mono waveform into a time-ordered track of
// fundamental-frequency estimates. The estimator itself is pluggable through
// the Tracker interface; YIN is the built-in implementation.
package pitch

import (
	"errors"
	"fmt"
	"math"
)

// Analysis range, C2 through C7.
const (
	FMin = 65.40639132514966
	FMax = 2093.004522404789
)

var (
	// ErrEmptyWaveform is returned when there is nothing to analyze.
	ErrEmptyWaveform = errors.New("waveform is empty")
	// ErrNoVoicedFrames is returned when every analysis frame is unvoiced.
	ErrNoVoicedFrames = errors.New("no voiced frames")
)

// Estimate is the tracker output for one analysis frame. Voiced is false for
// silence, noise, or ambiguous pitch; Hz is 0 in that case.
type Estimate struct {
	Frame      int
	Time       float64 // seconds from the start of the waveform
	Hz         float64
	Voiced     bool
	Confidence float64 // 0..1, higher is more periodic
}

// HasPitch reports whether e is voiced with a usable frequency. A voiced
// frame with a zero, negative or non-finite Hz counts as unvoiced.
func (e Estimate) HasPitch() bool {
	return e.Voiced && e.Hz > 0 && !math.IsInf(e.Hz, 1)
}

// Unvoiced returns the unvoiced marker for a frame.
func Unvoiced(frame int, t float64) Estimate {
	return Estimate{Frame: frame, Time: t}
}

// Tracker is a monophonic pitch estimator.
type Tracker interface {
	// Track analyzes samples and returns one estimate per frame, in frame order.
	Track(samples []float32, sampleRate int) ([]Estimate, error)
}

// Extract runs tracker over the waveform and rejects results without any
// voiced frame, so callers can report "no melody found" instead of an empty
// transcription.
func Extract(tracker Tracker, samples []float32, sampleRate int) ([]Estimate, error) {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("pitch: %w", ErrEmptyWaveform)
	}

	estimates, err := tracker.Track(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("pitch: track: %w", err)
	}

	for i, e := range estimates {
		if e.Voiced && !e.HasPitch() {
			estimates[i] = Unvoiced(e.Frame, e.Time)
		}
	}

	if CountVoiced(estimates) == 0 {
		return nil, fmt.Errorf("pitch: %w in %d frames", ErrNoVoicedFrames, len(estimates))
	}
	return estimates, nil
}

// CountVoiced returns the number of voiced estimates.
func CountVoiced(estimates []Estimate) int {
	n := 0
	for _, e := range estimates {
		if e.HasPitch() {
			n++
		}
	}
	return n
}

// Voiced returns the voiced estimates, preserving order.
func Voiced(estimates []Estimate) []Estimate {
	out := make([]Estimate, 0, len(estimates))
	for _, e := range estimates {
		if e.HasPitch() {
			out = append(out, e)
		}
	}
	return out
}
