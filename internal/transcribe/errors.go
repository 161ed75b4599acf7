package transcribe

import (
	"errors"
	"fmt"

	"github.com/chaz8081/sargam-writer/internal/pitch"
)

// Kind classifies a pipeline failure for display.
type Kind int

const (
	// KindUnknown is any failure not covered below, including recovered panics.
	KindUnknown Kind = iota
	// KindDecode means the audio could not be read, decoded, or analyzed.
	KindDecode
	// KindExtraction means the pitch tracker found no voiced content.
	KindExtraction
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "DecodeError"
	case KindExtraction:
		return "ExtractionError"
	default:
		return "UnknownError"
	}
}

// Error is the tagged error returned by Pipeline. Its message is meant to be
// shown to the user as is.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDecode:
		return fmt.Sprintf("cannot read audio from %s: %v", e.Source, e.Err)
	case KindExtraction:
		return fmt.Sprintf("failed to extract melody from %s: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("an error occurred transcribing %s: %v", e.Source, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a pipeline error, or KindUnknown for any other
// error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// classify maps errors from the extraction stage onto kinds.
func classify(err error) Kind {
	switch {
	case errors.Is(err, pitch.ErrEmptyWaveform):
		return KindDecode
	case errors.Is(err, pitch.ErrNoVoicedFrames):
		return KindExtraction
	default:
		return KindUnknown
	}
}
