package hotkey

import "testing"

type step struct {
	down bool
	want []EventType // empty means no event
}

func runGate(t *testing.T, g *gate, steps []step) {
	t.Helper()
	for i, s := range steps {
		var ev Event
		var ok bool
		if s.down {
			ev, ok = g.down()
		} else {
			ev, ok = g.up()
		}
		switch {
		case len(s.want) == 0 && ok:
			t.Errorf("step %d: got %v, want no event", i, ev.Type)
		case len(s.want) == 1 && !ok:
			t.Errorf("step %d: got no event, want %v", i, s.want[0])
		case len(s.want) == 1 && ev.Type != s.want[0]:
			t.Errorf("step %d: got %v, want %v", i, ev.Type, s.want[0])
		}
	}
}

func TestGateHold(t *testing.T) {
	runGate(t, &gate{}, []step{
		{down: true, want: []EventType{EventCaptureStart}},
		{down: true}, // key repeat
		{down: false, want: []EventType{EventCaptureStop}},
		{down: false}, // stray release
		{down: true, want: []EventType{EventCaptureStart}},
		{down: false, want: []EventType{EventCaptureStop}},
	})
}

func TestGateToggle(t *testing.T) {
	runGate(t, &gate{toggle: true}, []step{
		{down: true, want: []EventType{EventCaptureStart}},
		{down: false},
		{down: true, want: []EventType{EventCaptureStop}},
		{down: false},
		{down: true, want: []EventType{EventCaptureStart}},
	})
}

func TestNewListenerMode(t *testing.T) {
	tests := []struct {
		mode   string
		toggle bool
	}{
		{"hold", false},
		{"toggle", true},
		{"", false},
	}
	for _, tt := range tests {
		l := NewListener([]string{"ctrl", "s"}, tt.mode)
		if l.gate.toggle != tt.toggle {
			t.Errorf("NewListener(%q) toggle = %v, want %v", tt.mode, l.gate.toggle, tt.toggle)
		}
	}
}

func TestEmitDoesNotBlock(t *testing.T) {
	l := NewListener([]string{"s"}, "hold")
	for i := 0; i < cap(l.ch)+4; i++ {
		l.emit(Event{Type: EventCaptureStart})
	}
	if len(l.ch) != cap(l.ch) {
		t.Errorf("buffered events = %d, want %d", len(l.ch), cap(l.ch))
	}
}

func TestStopIdempotent(t *testing.T) {
	l := NewListener([]string{"s"}, "hold")
	l.Stop()
	l.Stop()
	select {
	case <-l.done:
	default:
		t.Error("done channel not closed after Stop")
	}
}

func TestEventTypeString(t *testing.T) {
	if EventCaptureStart.String() != "capture-start" || EventCaptureStop.String() != "capture-stop" {
		t.Errorf("unexpected names: %v %v", EventCaptureStart, EventCaptureStop)
	}
}
