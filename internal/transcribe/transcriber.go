// Package transcribe turns recorded melodies into Sargam notation.
//
// A run goes through Loading -> Extracting -> Converting -> Done, or ends in
// Failed with a tagged *Error. Runs share no state; callers that must stay
// responsive run Transcribe in their own goroutine.
package transcribe

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chaz8081/sargam-writer/internal/audio"
	"github.com/chaz8081/sargam-writer/internal/pitch"
)

// Pipeline converts audio into a Transcription.
type Pipeline struct {
	tracker  pitch.Tracker
	load     func(path string) (*audio.Waveform, error)
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTracker replaces the default YIN tracker.
func WithTracker(t pitch.Tracker) Option {
	return func(p *Pipeline) { p.tracker = t }
}

// WithLoader replaces audio.Load as the file decoder.
func WithLoader(load func(path string) (*audio.Waveform, error)) Option {
	return func(p *Pipeline) { p.load = load }
}

// WithObserver registers a callback for state transitions.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// New creates a Pipeline that decodes files with audio.Load and tracks pitch
// with YIN over C2..C7.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		tracker: pitch.NewYIN(),
		load:    audio.Load,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Transcribe decodes the audio file at path and transcribes it.
func (p *Pipeline) Transcribe(path string) (tr *Transcription, err error) {
	r := p.begin(path)
	defer r.recoverPanic(&tr, &err)

	r.enter(StateLoading)
	w, err := p.load(path)
	if err != nil {
		return nil, r.fail(KindDecode, err)
	}
	slog.Debug("audio loaded", "id", r.id, "source", path,
		"sample_rate", w.SampleRate, "duration", w.Duration().Round(time.Millisecond))

	return p.process(r, w)
}

// TranscribeReader decodes WAV or MP3 audio from r and transcribes it. name
// labels the run and helps format detection.
func (p *Pipeline) TranscribeReader(rs io.ReadSeeker, name string) (tr *Transcription, err error) {
	r := p.begin(name)
	defer r.recoverPanic(&tr, &err)

	r.enter(StateLoading)
	w, err := audio.Decode(rs, name)
	if err != nil {
		return nil, r.fail(KindDecode, err)
	}
	return p.process(r, w)
}

// Process transcribes an already decoded waveform, such as a microphone
// capture. source labels the run in logs and errors.
func (p *Pipeline) Process(w *audio.Waveform, source string) (tr *Transcription, err error) {
	r := p.begin(source)
	defer r.recoverPanic(&tr, &err)

	if w == nil {
		return nil, r.fail(KindDecode, fmt.Errorf("pitch: %w", pitch.ErrEmptyWaveform))
	}
	return p.process(r, w)
}

func (p *Pipeline) process(r *run, w *audio.Waveform) (*Transcription, error) {
	r.enter(StateExtracting)
	estimates, err := pitch.Extract(p.tracker, w.Samples, w.SampleRate)
	if err != nil {
		return nil, r.fail(classify(err), err)
	}
	slog.Debug("pitch track extracted", "id", r.id,
		"frames", len(estimates), "voiced", pitch.CountVoiced(estimates))

	r.enter(StateConverting)
	tr := Convert(estimates)
	tr.ID = r.id
	tr.Source = r.source
	tr.Duration = w.Duration()

	r.enter(StateDone)
	slog.Info("transcribed", "id", r.id, "source", r.source,
		"symbols", len(tr.Symbols), "elapsed", time.Since(r.start).Round(time.Millisecond))
	return tr, nil
}

// run is the bookkeeping for a single Transcribe/Process call.
type run struct {
	id       string
	source   string
	start    time.Time
	state    State
	observer Observer
}

func (p *Pipeline) begin(source string) *run {
	return &run{
		id:       uuid.NewString(),
		source:   source,
		start:    time.Now(),
		state:    StateIdle,
		observer: p.observer,
	}
}

func (r *run) enter(s State) {
	slog.Debug("transcription state", "id", r.id, "from", r.state, "to", s)
	r.state = s
	if r.observer != nil {
		r.observer(r.id, s)
	}
}

func (r *run) fail(kind Kind, err error) error {
	failedIn := r.state
	r.enter(StateFailed)
	slog.Error("transcription failed", "id", r.id, "source", r.source,
		"stage", failedIn, "kind", kind, "error", err)
	return &Error{Kind: kind, Source: r.source, Err: err}
}

// recoverPanic turns a panic anywhere in the run into an UnknownError.
func (r *run) recoverPanic(tr **Transcription, err *error) {
	v := recover()
	if v == nil {
		return
	}
	*tr = nil
	*err = r.fail(KindUnknown, fmt.Errorf("panic: %v", v))
}
