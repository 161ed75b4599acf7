// Package hotkey turns a global key combo into capture start/stop events
// using gohook. In "hold" mode the melody is captured while the combo is held
// down; in "toggle" mode each press flips capture on or off.
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// EventType is the capture transition requested by the user.
type EventType int

const (
	// EventCaptureStart asks the caller to start capturing audio.
	EventCaptureStart EventType = iota
	// EventCaptureStop asks the caller to stop capturing and transcribe.
	EventCaptureStop
)

func (t EventType) String() string {
	if t == EventCaptureStart {
		return "capture-start"
	}
	return "capture-stop"
}

// Event is emitted on the channel returned by Events.
type Event struct {
	Type EventType
}

// gate maps raw key transitions to capture events for one mode. It is kept
// apart from the hook so the mode logic can be exercised without a display.
type gate struct {
	mu        sync.Mutex
	toggle    bool
	capturing bool
}

// down handles a combo press. ok is false when no event should be sent.
func (g *gate) down() (ev Event, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.toggle {
		g.capturing = !g.capturing
		if g.capturing {
			return Event{Type: EventCaptureStart}, true
		}
		return Event{Type: EventCaptureStop}, true
	}
	if g.capturing {
		// key repeat while held
		return Event{}, false
	}
	g.capturing = true
	return Event{Type: EventCaptureStart}, true
}

// up handles a combo release.
func (g *gate) up() (ev Event, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.toggle || !g.capturing {
		return Event{}, false
	}
	g.capturing = false
	return Event{Type: EventCaptureStop}, true
}

// Listener watches a global hotkey and emits capture events.
type Listener struct {
	keys []string
	gate *gate
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// NewListener creates a Listener for the given key combo and mode.
// keys should be lowercase key names (e.g., ["ctrl", "shift", "s"]).
// Any mode other than "toggle" behaves as "hold".
func NewListener(keys []string, mode string) *Listener {
	return &Listener{
		keys: keys,
		gate: &gate{toggle: mode == "toggle"},
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives capture events.
// The channel is closed when the listener stops.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Start registers the combo and blocks until Stop is called. Run it in a
// goroutine.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(hook.Event) {
		if ev, ok := l.gate.down(); ok {
			l.emit(ev)
		}
	})
	hook.Register(hook.KeyUp, l.keys, func(hook.Event) {
		if ev, ok := l.gate.up(); ok {
			l.emit(ev)
		}
	})

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// emit never blocks the hook goroutine; events are dropped if the
// consumer falls 16 behind.
func (l *Listener) emit(ev Event) {
	select {
	case l.ch <- ev:
	default:
	}
}

// Stop terminates the listener. It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}
