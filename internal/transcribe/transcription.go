package transcribe

import (
	"time"

	"github.com/chaz8081/sargam-writer/internal/pitch"
	"github.com/chaz8081/sargam-writer/internal/sargam"
)

// Event ties one output symbol to the frame it came from.
type Event struct {
	Frame      int
	Time       float64
	Hz         float64
	Confidence float64
	Note       sargam.NoteName
	Class      sargam.Class
	Symbol     sargam.Symbol
}

// Transcription is the result of one run. It is not modified after the
// pipeline returns it.
type Transcription struct {
	ID       string
	Source   string
	Duration time.Duration
	Events   []Event
	Symbols  []sargam.Symbol
}

// Text renders the symbols joined by single spaces.
func (t *Transcription) Text() string {
	return sargam.Render(t.Symbols)
}

// Render is Text with optional merging of repeated consecutive symbols.
func (t *Transcription) Render(collapse bool) string {
	if collapse {
		return sargam.Render(sargam.Collapse(t.Symbols))
	}
	return t.Text()
}

// Convert runs the conversion stage over a pitch track. It never fails: an
// empty track gives an empty Transcription.
func Convert(estimates []pitch.Estimate) *Transcription {
	voiced := pitch.Voiced(estimates)
	notes, classes, symbols := sargam.Convert(estimates)

	events := make([]Event, len(symbols))
	for i := range symbols {
		events[i] = Event{
			Frame:      voiced[i].Frame,
			Time:       voiced[i].Time,
			Hz:         voiced[i].Hz,
			Confidence: voiced[i].Confidence,
			Note:       notes[i],
			Class:      classes[i],
			Symbol:     symbols[i],
		}
	}

	return &Transcription{Events: events, Symbols: symbols}
}
